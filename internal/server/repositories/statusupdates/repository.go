package statusupdates

import (
	"context"

	"github.com/dmitrijs2005/claimdesk/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, u *models.StatusUpdate) (*models.StatusUpdate, error)
	ListByClaimFormID(ctx context.Context, claimFormID int64) ([]*models.StatusUpdate, error)
}
