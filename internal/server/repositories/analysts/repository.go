package analysts

import (
	"context"

	"github.com/dmitrijs2005/claimdesk/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, a *models.Analyst) (*models.Analyst, error)
	GetByEmail(ctx context.Context, email string) (*models.Analyst, error)
}
