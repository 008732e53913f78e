package analysts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/claimdesk/internal/common"
	"github.com/dmitrijs2005/claimdesk/internal/dbx"
	"github.com/dmitrijs2005/claimdesk/internal/server/models"
)

const emailConstraint = "analysts_email_key"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts an analyst account; a taken email returns
// common.ErrorAlreadyExists.
func (r *PostgresRepository) Create(ctx context.Context, a *models.Analyst) (*models.Analyst, error) {
	query := `INSERT INTO analysts (email, password_hash, salt) VALUES ($1, $2, $3) RETURNING id, created_at`

	if err := r.db.QueryRowContext(ctx, query, a.Email, a.PasswordHash, a.Salt).Scan(&a.ID, &a.CreatedAt); err != nil {
		if dbx.IsUniqueViolation(err, emailConstraint) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.Analyst, error) {
	query := `SELECT id, email, password_hash, salt, created_at FROM analysts WHERE email = $1`

	a := &models.Analyst{}
	err := r.db.QueryRowContext(ctx, query, email).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Salt, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}
