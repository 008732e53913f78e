package claims

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/claimdesk/internal/common"
	"github.com/dmitrijs2005/claimdesk/internal/dbx"
	"github.com/dmitrijs2005/claimdesk/internal/server/models"
)

// ClaimIDConstraint is the unique constraint guarding claim_forms.claim_id.
const ClaimIDConstraint = "claim_forms_claim_id_key"

const selectColumns = `id, claim_id, coverage_type, full_name, email, phone, policy_number,
	incident_date, incident_location, description, estimated_amount, status, created_at, updated_at`

// PostgresRepository implements claim storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a claim and fills in the generated id. A clash on claim_id
// returns common.ErrorAlreadyExists so callers can pick a new identifier.
func (r *PostgresRepository) Create(ctx context.Context, claim *models.Claim) (*models.Claim, error) {
	query := `INSERT INTO claim_forms (claim_id, coverage_type, full_name, email, phone, policy_number,
		incident_date, incident_location, description, estimated_amount, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		claim.ClaimID, claim.CoverageType, claim.FullName, claim.Email, claim.Phone, claim.PolicyNumber,
		claim.IncidentDate, claim.IncidentLocation, claim.Description, claim.EstimatedAmount,
		string(claim.Status), claim.CreatedAt, claim.UpdatedAt,
	).Scan(&claim.ID)
	if err != nil {
		if dbx.IsUniqueViolation(err, ClaimIDConstraint) {
			return nil, fmt.Errorf("claim id %s: %w", claim.ClaimID, common.ErrorAlreadyExists)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return claim, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Claim, error) {
	query := `SELECT ` + selectColumns + ` FROM claim_forms WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *PostgresRepository) GetByClaimID(ctx context.Context, claimID string) (*models.Claim, error) {
	query := `SELECT ` + selectColumns + ` FROM claim_forms WHERE claim_id = $1`
	return r.getOne(ctx, query, claimID)
}

func (r *PostgresRepository) GetByClaimIDForUpdate(ctx context.Context, claimID string) (*models.Claim, error) {
	query := `SELECT ` + selectColumns + ` FROM claim_forms WHERE claim_id = $1 FOR UPDATE`
	return r.getOne(ctx, query, claimID)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, args ...any) (*models.Claim, error) {
	claim, err := scanClaim(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return claim, nil
}

// UpdateStatus sets status and updated_at of the claim with internal id.
// Exactly one row must be affected.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id int64, status models.ClaimStatus, updatedAt time.Time) error {
	query := `UPDATE claim_forms SET status = $1, updated_at = $2 WHERE id = $3`

	res, err := r.db.ExecContext(ctx, query, string(status), updatedAt, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

// List returns a page of claims ordered by creation time, newest first.
func (r *PostgresRepository) List(ctx context.Context, filter models.ClaimFilter) ([]*models.Claim, error) {
	query := `SELECT ` + selectColumns + ` FROM claim_forms
		WHERE ($1::text = '' OR status = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, string(filter.Status), filter.Limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Claim
	for rows.Next() {
		claim, err := scanClaim(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, claim)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Count returns the number of claims in status, or of all claims when status
// is empty.
func (r *PostgresRepository) Count(ctx context.Context, status models.ClaimStatus) (int64, error) {
	query := `SELECT count(*) FROM claim_forms WHERE ($1::text = '' OR status = $1)`

	var n int64
	if err := r.db.QueryRowContext(ctx, query, string(status)).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// CountByStatus returns per-status claim counts. Statuses with no claims are
// absent from the map.
func (r *PostgresRepository) CountByStatus(ctx context.Context) (map[models.ClaimStatus]int64, error) {
	query := `SELECT status, count(*) FROM claim_forms GROUP BY status`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make(map[models.ClaimStatus]int64)
	for rows.Next() {
		var (
			status string
			n      int64
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		result[models.ClaimStatus(status)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanClaim(s scanner) (*models.Claim, error) {
	var (
		c      models.Claim
		status string
	)
	err := s.Scan(&c.ID, &c.ClaimID, &c.CoverageType, &c.FullName, &c.Email, &c.Phone, &c.PolicyNumber,
		&c.IncidentDate, &c.IncidentLocation, &c.Description, &c.EstimatedAmount, &status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.Status = models.ClaimStatus(status)
	return &c, nil
}
