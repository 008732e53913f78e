package documents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/claimdesk/internal/common"
	"github.com/dmitrijs2005/claimdesk/internal/dbx"
	"github.com/dmitrijs2005/claimdesk/internal/server/models"
)

const selectColumns = `id, claim_form_id, document_type, upload_notes, filename, original_filename,
	file_type, file_size, storage_url, storage_path, uploaded_by, is_verified, uploaded_at`

// PostgresRepository implements document metadata storage over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts document metadata. The database assigns id and uploaded_at.
// A claim_form_id that does not reference a claim yields common.ErrorNotFound.
func (r *PostgresRepository) Create(ctx context.Context, doc *models.Document) (*models.Document, error) {
	query := `INSERT INTO documents (claim_form_id, document_type, upload_notes, filename, original_filename,
		file_type, file_size, storage_url, storage_path, uploaded_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, is_verified, uploaded_at`

	err := r.db.QueryRowContext(ctx, query,
		doc.ClaimFormID, string(doc.DocumentType), doc.UploadNotes, doc.Filename, doc.OriginalFilename,
		doc.FileType, doc.FileSize, doc.StorageURL, doc.StoragePath, doc.UploadedBy,
	).Scan(&doc.ID, &doc.IsVerified, &doc.UploadedAt)
	if err != nil {
		if dbx.IsForeignKeyViolation(err) {
			return nil, fmt.Errorf("claim form %d: %w", doc.ClaimFormID, common.ErrorNotFound)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return doc, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Document, error) {
	query := `SELECT ` + selectColumns + ` FROM documents WHERE id = $1`

	doc, err := scanDocument(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return doc, nil
}

// ListByClaimFormID returns the documents of one claim in upload order.
func (r *PostgresRepository) ListByClaimFormID(ctx context.Context, claimFormID int64) ([]*models.Document, error) {
	query := `SELECT ` + selectColumns + ` FROM documents WHERE claim_form_id = $1 ORDER BY uploaded_at, id`

	rows, err := r.db.QueryContext(ctx, query, claimFormID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return scanDocuments(rows)
}

const filterClause = `WHERE ($1::bigint = 0 OR claim_form_id = $1)
	AND ($2::text = '' OR document_type = $2)
	AND ($3::boolean IS NULL OR is_verified = $3)`

// List returns a page of documents matching filter, newest upload first.
func (r *PostgresRepository) List(ctx context.Context, filter models.DocumentFilter) ([]*models.Document, error) {
	query := `SELECT ` + selectColumns + ` FROM documents ` + filterClause + `
		ORDER BY uploaded_at DESC, id DESC
		LIMIT $4 OFFSET $5`

	rows, err := r.db.QueryContext(ctx, query,
		filter.ClaimFormID, string(filter.DocumentType), filter.Verified, filter.Limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return scanDocuments(rows)
}

func (r *PostgresRepository) Count(ctx context.Context, filter models.DocumentFilter) (int64, error) {
	query := `SELECT count(*) FROM documents ` + filterClause

	var n int64
	err := r.db.QueryRowContext(ctx, query, filter.ClaimFormID, string(filter.DocumentType), filter.Verified).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func scanDocuments(rows *sql.Rows) ([]*models.Document, error) {
	defer rows.Close()

	result := []*models.Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// MarkVerified flags the document as verified and returns the updated row.
// Verifying an already verified document is a no-op.
func (r *PostgresRepository) MarkVerified(ctx context.Context, id int64) (*models.Document, error) {
	query := `UPDATE documents SET is_verified = TRUE WHERE id = $1 RETURNING ` + selectColumns

	doc, err := scanDocument(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return doc, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(s scanner) (*models.Document, error) {
	var (
		d       models.Document
		docType string
	)
	err := s.Scan(&d.ID, &d.ClaimFormID, &docType, &d.UploadNotes, &d.Filename, &d.OriginalFilename,
		&d.FileType, &d.FileSize, &d.StorageURL, &d.StoragePath, &d.UploadedBy, &d.IsVerified, &d.UploadedAt)
	if err != nil {
		return nil, err
	}
	d.DocumentType = models.DocumentType(docType)
	return &d, nil
}
