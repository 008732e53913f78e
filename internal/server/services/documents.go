package services

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dmitrijs2005/claimdesk/internal/common"
	"github.com/dmitrijs2005/claimdesk/internal/logging"
	"github.com/dmitrijs2005/claimdesk/internal/server/config"
	"github.com/dmitrijs2005/claimdesk/internal/server/models"
	"github.com/dmitrijs2005/claimdesk/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/claimdesk/internal/server/schemas"
	"github.com/dmitrijs2005/claimdesk/internal/server/storage"
)

// Upload is a file received from a client. Size is the length the client
// declared; the stored size is read back from object storage.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// DocumentService attaches supporting documents to claims and serves them
// back to analysts.
type DocumentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	store       storage.ObjectStore
	notifier    ClaimNotifier
	logger      logging.Logger

	maxUploadBytes int64
	presignTTL     time.Duration
	now            func() time.Time
}

func NewDocumentService(db *sql.DB, m repomanager.RepositoryManager, store storage.ObjectStore, notifier ClaimNotifier, logger logging.Logger, cfg *config.Config) *DocumentService {
	return &DocumentService{
		db:             db,
		repomanager:    m,
		store:          store,
		notifier:       notifier,
		logger:         logger.With("module", "documents"),
		maxUploadBytes: cfg.MaxUploadBytes,
		presignTTL:     cfg.PresignTTL,
		now:            time.Now,
	}
}

// Attach stores the uploaded file and records it against the claim. Nothing
// is written when the claim does not exist or the upload is rejected.
func (s *DocumentService) Attach(ctx context.Context, claimID string, in schemas.DocumentCreate, up Upload) (*schemas.DocumentResponse, error) {
	in, err := schemas.ValidateDocumentCreate(in)
	if err != nil {
		return nil, err
	}

	claim, err := s.repomanager.Claims(s.db).GetByClaimID(ctx, claimID)
	if err != nil {
		return nil, storageErr("error loading claim", err)
	}

	if !storage.AllowedContentType(up.ContentType) {
		return nil, fmt.Errorf("%w: %s", common.ErrorUnsupportedMedia, up.ContentType)
	}
	switch {
	case up.Size <= 0:
		return nil, common.ErrorEmptyFile
	case s.maxUploadBytes > 0 && up.Size > s.maxUploadBytes:
		return nil, fmt.Errorf("%w: %d bytes, limit %d", common.ErrorTooLarge, up.Size, s.maxUploadBytes)
	}

	now := s.now().UTC()
	key, filename := storage.ObjectKey(claim.ClaimID, in.DocumentType, up.Filename, now)

	if err := s.store.Put(ctx, key, up.Body, up.Size, up.ContentType); err != nil {
		return nil, storageErr("error storing document", err)
	}

	info, err := s.store.Head(ctx, key)
	if err != nil {
		s.discard(ctx, key)
		return nil, storageErr("error reading stored document", err)
	}
	if info.Size <= 0 {
		s.discard(ctx, key)
		return nil, fmt.Errorf("error reading stored document: %w: stored object %s is empty", common.ErrorStorage, key)
	}
	size := info.Size

	doc, err := s.repomanager.Documents(s.db).Create(ctx, &models.Document{
		ClaimFormID:      claim.ID,
		DocumentType:     in.DocumentType,
		UploadNotes:      in.UploadNotes,
		Filename:         filename,
		OriginalFilename: up.Filename,
		FileType:         up.ContentType,
		FileSize:         size,
		StorageURL:       s.store.URL(key),
		StoragePath:      key,
		UploadedBy:       in.UploadedBy,
	})
	if err != nil {
		s.discard(ctx, key)
		return nil, storageErr("error saving document", err)
	}

	s.logger.Info(ctx, "document attached", "claim_id", claim.ClaimID, "document_id", doc.ID, "type", doc.DocumentType, "size", doc.FileSize)

	out := schemas.NewDocumentResponse(doc)
	return &out, nil
}

func (s *DocumentService) discard(ctx context.Context, key string) {
	if err := s.store.Delete(ctx, key); err != nil {
		s.logger.Warn(ctx, "error deleting orphaned object", "key", key, "error", err)
	}
}

// Verify marks a document as checked by an analyst.
func (s *DocumentService) Verify(ctx context.Context, documentID int64) (*schemas.DocumentResponse, error) {
	doc, err := s.repomanager.Documents(s.db).MarkVerified(ctx, documentID)
	if err != nil {
		return nil, storageErr("error verifying document", err)
	}
	out := schemas.NewDocumentResponse(doc)
	return &out, nil
}

// DocumentFilter selects documents for the analyst document browser.
type DocumentFilter struct {
	ClaimID      string // empty means any claim
	DocumentType models.DocumentType
	Verified     *bool
	Limit        int
	Offset       int
}

// List returns a page of documents across claims, newest upload first, and
// the number of documents matching the filter.
func (s *DocumentService) List(ctx context.Context, f DocumentFilter) (*schemas.DocumentListResponse, error) {
	if f.DocumentType != "" && !f.DocumentType.Valid() {
		errs := &schemas.ValidationError{}
		errs.Add("document_type", "unknown document type")
		return nil, errs.Err()
	}
	f.Limit, f.Offset = pageBounds(f.Limit, f.Offset)

	filter := models.DocumentFilter{
		DocumentType: f.DocumentType,
		Verified:     f.Verified,
		Limit:        f.Limit,
		Offset:       f.Offset,
	}
	if f.ClaimID != "" {
		claim, err := s.repomanager.Claims(s.db).GetByClaimID(ctx, f.ClaimID)
		if err != nil {
			return nil, storageErr("error loading claim", err)
		}
		filter.ClaimFormID = claim.ID
	}

	repo := s.repomanager.Documents(s.db)
	items, err := repo.List(ctx, filter)
	if err != nil {
		return nil, storageErr("error listing documents", err)
	}
	total, err := repo.Count(ctx, filter)
	if err != nil {
		return nil, storageErr("error counting documents", err)
	}

	return &schemas.DocumentListResponse{
		Documents: schemas.NewDocumentResponses(items),
		Total:     total,
		Limit:     f.Limit,
		Offset:    f.Offset,
	}, nil
}

// ListForClaim returns every document of one claim in upload order.
func (s *DocumentService) ListForClaim(ctx context.Context, claimID string) ([]schemas.DocumentResponse, error) {
	claim, err := s.repomanager.Claims(s.db).GetByClaimID(ctx, claimID)
	if err != nil {
		return nil, storageErr("error loading claim", err)
	}
	docs, err := s.repomanager.Documents(s.db).ListByClaimFormID(ctx, claim.ID)
	if err != nil {
		return nil, storageErr("error loading documents", err)
	}
	return schemas.NewDocumentResponses(docs), nil
}

// Details returns a document together with the claim it belongs to.
func (s *DocumentService) Details(ctx context.Context, documentID int64) (*schemas.DocumentDetailsResponse, error) {
	doc, err := s.repomanager.Documents(s.db).GetByID(ctx, documentID)
	if err != nil {
		return nil, storageErr("error loading document", err)
	}
	claim, err := s.repomanager.Claims(s.db).GetByID(ctx, doc.ClaimFormID)
	if err != nil {
		return nil, storageErr("error loading claim", err)
	}
	return &schemas.DocumentDetailsResponse{
		Document: schemas.NewDocumentResponse(doc),
		Claim:    schemas.NewClaimFormResponse(claim),
	}, nil
}

// DownloadURL returns a presigned link to the stored document.
func (s *DocumentService) DownloadURL(ctx context.Context, documentID int64) (*schemas.DownloadResponse, error) {
	doc, err := s.repomanager.Documents(s.db).GetByID(ctx, documentID)
	if err != nil {
		return nil, storageErr("error loading document", err)
	}

	issued := s.now().UTC()
	url, err := s.store.PresignGet(ctx, doc.StoragePath, s.presignTTL)
	if err != nil {
		return nil, storageErr("error presigning document", err)
	}
	return &schemas.DownloadResponse{
		DocumentID: doc.ID,
		URL:        url,
		ExpiresAt:  issued.Add(s.presignTTL),
	}, nil
}

// RequestDocuments e-mails the claimant a list of documents still needed.
// Unlike the e-mails sent as a side effect, here the e-mail is the operation:
// a failed send is returned as common.ErrorNotification together with the
// status.
func (s *DocumentService) RequestDocuments(ctx context.Context, claimID string, req schemas.DocumentRequest) (*schemas.NotificationStatus, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	claim, err := s.repomanager.Claims(s.db).GetByClaimID(ctx, claimID)
	if err != nil {
		return nil, storageErr("error loading claim", err)
	}

	docs := make([]string, 0, len(req.Documents))
	for _, d := range req.Documents {
		if d = strings.TrimSpace(d); d != "" {
			docs = append(docs, d)
		}
	}

	status := notificationStatus(s.notifier.DocumentsRequested(ctx, claim, docs, req.Message))
	if !status.Sent {
		return &status, fmt.Errorf("%w: %s", common.ErrorNotification, status.Error)
	}
	s.logger.Info(ctx, "documents requested", "claim_id", claim.ClaimID, "count", len(docs))
	return &status, nil
}
