package documents

import (
	"context"

	"github.com/dmitrijs2005/claimdesk/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, doc *models.Document) (*models.Document, error)
	GetByID(ctx context.Context, id int64) (*models.Document, error)
	ListByClaimFormID(ctx context.Context, claimFormID int64) ([]*models.Document, error)
	List(ctx context.Context, filter models.DocumentFilter) ([]*models.Document, error)
	Count(ctx context.Context, filter models.DocumentFilter) (int64, error)
	MarkVerified(ctx context.Context, id int64) (*models.Document, error)
}
