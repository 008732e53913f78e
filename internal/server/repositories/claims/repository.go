package claims

import (
	"context"
	"time"

	"github.com/dmitrijs2005/claimdesk/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, claim *models.Claim) (*models.Claim, error)
	GetByID(ctx context.Context, id int64) (*models.Claim, error)
	GetByClaimID(ctx context.Context, claimID string) (*models.Claim, error)
	// GetByClaimIDForUpdate locks the row until the surrounding transaction ends.
	GetByClaimIDForUpdate(ctx context.Context, claimID string) (*models.Claim, error)
	UpdateStatus(ctx context.Context, id int64, status models.ClaimStatus, updatedAt time.Time) error
	List(ctx context.Context, filter models.ClaimFilter) ([]*models.Claim, error)
	Count(ctx context.Context, status models.ClaimStatus) (int64, error)
	CountByStatus(ctx context.Context) (map[models.ClaimStatus]int64, error)
}
