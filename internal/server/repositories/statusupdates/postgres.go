// Package statusupdates stores the audit trail of claim status transitions.
package statusupdates

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/claimdesk/internal/dbx"
	"github.com/dmitrijs2005/claimdesk/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, u *models.StatusUpdate) (*models.StatusUpdate, error) {
	query := `INSERT INTO claim_status_updates (claim_form_id, old_status, new_status, reason, changed_by, changed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		u.ClaimFormID, string(u.OldStatus), string(u.NewStatus), u.Reason, u.ChangedBy, u.ChangedAt,
	).Scan(&u.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

// ListByClaimFormID returns the transitions of one claim, oldest first.
func (r *PostgresRepository) ListByClaimFormID(ctx context.Context, claimFormID int64) ([]*models.StatusUpdate, error) {
	query := `SELECT id, claim_form_id, old_status, new_status, reason, changed_by, changed_at
		FROM claim_status_updates WHERE claim_form_id = $1 ORDER BY changed_at, id`

	rows, err := r.db.QueryContext(ctx, query, claimFormID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []*models.StatusUpdate{}
	for rows.Next() {
		var (
			item         models.StatusUpdate
			oldSt, newSt string
		)
		if err := rows.Scan(&item.ID, &item.ClaimFormID, &oldSt, &newSt, &item.Reason, &item.ChangedBy, &item.ChangedAt); err != nil {
			return nil, err
		}
		item.OldStatus = models.ClaimStatus(oldSt)
		item.NewStatus = models.ClaimStatus(newSt)
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
