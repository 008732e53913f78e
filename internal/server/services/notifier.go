// Package services contains the claim intake and review logic: claim
// submission and status workflow, document attachment and analyst
// authentication. Services own transactions and translate repository and
// storage failures into the sentinel errors of package common.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/claimdesk/internal/common"
	"github.com/dmitrijs2005/claimdesk/internal/server/models"
	"github.com/dmitrijs2005/claimdesk/internal/server/schemas"
)

// ClaimNotifier sends the claimant e-mails. *notify.Notifier implements it.
type ClaimNotifier interface {
	ClaimReceived(ctx context.Context, c *models.Claim) (bool, error)
	StatusChanged(ctx context.Context, c *models.Claim, previous models.ClaimStatus, reason *string) (bool, error)
	DocumentsRequested(ctx context.Context, c *models.Claim, documents []string, note *string) (bool, error)
}

func notificationStatus(sent bool, err error) schemas.NotificationStatus {
	switch {
	case err != nil:
		return schemas.NotificationStatus{Error: err.Error()}
	case !sent:
		return schemas.NotificationStatus{Error: "notification was not sent"}
	}
	return schemas.NotificationStatus{Sent: true}
}

// storageErr wraps a persistence failure with common.ErrorStorage. Errors that
// already carry a client-facing meaning are only annotated.
func storageErr(msg string, err error) error {
	for _, known := range []error{
		common.ErrorNotFound,
		common.ErrorInvalidTransition,
		common.ErrorValidation,
		common.ErrorUnauthorized,
		common.ErrorAlreadyExists,
	} {
		if errors.Is(err, known) {
			return fmt.Errorf("%s: %w", msg, err)
		}
	}
	return fmt.Errorf("%s: %w: %w", msg, common.ErrorStorage, err)
}
