package services

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/claimdesk/internal/common"
	"github.com/dmitrijs2005/claimdesk/internal/dbx"
	"github.com/dmitrijs2005/claimdesk/internal/logging"
	"github.com/dmitrijs2005/claimdesk/internal/server/models"
	"github.com/dmitrijs2005/claimdesk/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/claimdesk/internal/server/schemas"
)

const (
	maxClaimIDAttempts = 5

	DefaultListLimit = 10
	MaxListLimit     = 100
)

// NewClaimID returns a public claim identifier: "CLM-" followed by eight
// upper-case hex characters taken from a random UUID.
func NewClaimID() string {
	id := uuid.New()
	return common.ClaimIDPrefix + strings.ToUpper(hex.EncodeToString(id[:4]))
}

// ListFilter selects a page of claims for the analyst dashboard.
type ListFilter struct {
	Status models.ClaimStatus
	Limit  int
	Offset int
}

// ClaimService handles claim submission, lookup and the review workflow.
type ClaimService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	notifier    ClaimNotifier
	logger      logging.Logger

	now        func() time.Time
	newClaimID func() string
}

func NewClaimService(db *sql.DB, m repomanager.RepositoryManager, notifier ClaimNotifier, logger logging.Logger) *ClaimService {
	return &ClaimService{
		db:          db,
		repomanager: m,
		notifier:    notifier,
		logger:      logger.With("module", "claims"),
		now:         time.Now,
		newClaimID:  NewClaimID,
	}
}

// Create stores a new claim in status submitted and sends the acknowledgement
// e-mail. A failed e-mail is reported in the response, never as an error.
func (s *ClaimService) Create(ctx context.Context, in schemas.ClaimFormCreate) (*schemas.ClaimCreatedResponse, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	repo := s.repomanager.Claims(s.db)
	now := s.now().UTC()

	var saved *models.Claim
	for attempt := 1; ; attempt++ {
		c := in.ToModel()
		c.ClaimID = s.newClaimID()
		c.Status = models.InitialStatus
		c.CreatedAt = now
		c.UpdatedAt = now

		var err error
		saved, err = repo.Create(ctx, c)
		if err == nil {
			break
		}
		if errors.Is(err, common.ErrorAlreadyExists) {
			if attempt < maxClaimIDAttempts {
				s.logger.Debug(ctx, "claim id collision, retrying", "claim_id", c.ClaimID, "attempt", attempt)
				continue
			}
			return nil, fmt.Errorf("error creating claim: %w: no free claim id after %d attempts", common.ErrorStorage, attempt)
		}
		return nil, storageErr("error creating claim", err)
	}

	s.logger.Info(ctx, "claim created", "claim_id", saved.ClaimID, "coverage_type", saved.CoverageType)

	sent, err := s.notifier.ClaimReceived(ctx, saved)
	return &schemas.ClaimCreatedResponse{
		ClaimFormResponse: schemas.NewClaimFormResponse(saved),
		Notification:      notificationStatus(sent, err),
	}, nil
}

// UpdateStatus moves a claim to next, recording the change in the status
// history. The claim row stays locked for the duration of the transaction,
// so concurrent updates of one claim are applied one after another.
func (s *ClaimService) UpdateStatus(ctx context.Context, claimID string, next models.ClaimStatus, reason, changedBy *string) (*schemas.ClaimStatusResponse, error) {
	if err := (schemas.StatusUpdateRequest{Status: next}).Validate(); err != nil {
		return nil, err
	}

	var (
		claim    *models.Claim
		previous models.ClaimStatus
	)
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Claims(tx)

		c, err := repo.GetByClaimIDForUpdate(ctx, claimID)
		if err != nil {
			return err
		}
		if !c.Status.CanTransition(next) {
			return fmt.Errorf("%w: %s to %s", common.ErrorInvalidTransition, c.Status, next)
		}

		now := s.now().UTC()
		if err := repo.UpdateStatus(ctx, c.ID, next, now); err != nil {
			return err
		}
		if _, err := s.repomanager.StatusUpdates(tx).Create(ctx, &models.StatusUpdate{
			ClaimFormID: c.ID,
			OldStatus:   c.Status,
			NewStatus:   next,
			Reason:      reason,
			ChangedBy:   changedBy,
			ChangedAt:   now,
		}); err != nil {
			return err
		}

		previous = c.Status
		c.Status = next
		c.UpdatedAt = now
		claim = c
		return nil
	})
	if err != nil {
		return nil, storageErr("error updating claim status", err)
	}

	s.logger.Info(ctx, "claim status changed", "claim_id", claim.ClaimID, "from", previous, "to", next)

	sent, nerr := s.notifier.StatusChanged(ctx, claim, previous, reason)
	return &schemas.ClaimStatusResponse{
		ClaimFormResponse: schemas.NewClaimFormResponse(claim),
		PreviousStatus:    previous,
		Notification:      notificationStatus(sent, nerr),
	}, nil
}

// Get returns a claim with its documents.
func (s *ClaimService) Get(ctx context.Context, claimID string) (*schemas.ClaimFormWithDocuments, error) {
	c, err := s.repomanager.Claims(s.db).GetByClaimID(ctx, claimID)
	if err != nil {
		return nil, storageErr("error loading claim", err)
	}
	docs, err := s.repomanager.Documents(s.db).ListByClaimFormID(ctx, c.ID)
	if err != nil {
		return nil, storageErr("error loading documents", err)
	}
	out := schemas.NewClaimFormWithDocuments(c, docs)
	return &out, nil
}

// List returns a page of claims, newest first, and the number of claims
// matching the filter.
func (s *ClaimService) List(ctx context.Context, f ListFilter) (*schemas.ClaimListResponse, error) {
	if f.Status != "" && !f.Status.Valid() {
		errs := &schemas.ValidationError{}
		errs.Add("status", "unknown status")
		return nil, errs.Err()
	}
	f.Limit, f.Offset = pageBounds(f.Limit, f.Offset)

	repo := s.repomanager.Claims(s.db)
	items, err := repo.List(ctx, models.ClaimFilter{Status: f.Status, Limit: f.Limit, Offset: f.Offset})
	if err != nil {
		return nil, storageErr("error listing claims", err)
	}
	total, err := repo.Count(ctx, f.Status)
	if err != nil {
		return nil, storageErr("error counting claims", err)
	}

	out := &schemas.ClaimListResponse{
		Claims: make([]schemas.ClaimFormResponse, 0, len(items)),
		Total:  total,
		Limit:  f.Limit,
		Offset: f.Offset,
	}
	for _, c := range items {
		out.Claims = append(out.Claims, schemas.NewClaimFormResponse(c))
	}
	return out, nil
}

// History returns the applied status transitions of a claim, oldest first.
func (s *ClaimService) History(ctx context.Context, claimID string) ([]schemas.StatusUpdateResponse, error) {
	c, err := s.repomanager.Claims(s.db).GetByClaimID(ctx, claimID)
	if err != nil {
		return nil, storageErr("error loading claim", err)
	}
	items, err := s.repomanager.StatusUpdates(s.db).ListByClaimFormID(ctx, c.ID)
	if err != nil {
		return nil, storageErr("error loading status history", err)
	}
	return schemas.NewStatusUpdateResponses(items), nil
}

// Stats counts claims per status. Every known status is present in the
// result, with zero when no claim has it.
func (s *ClaimService) Stats(ctx context.Context) (*schemas.StatsResponse, error) {
	counts, err := s.repomanager.Claims(s.db).CountByStatus(ctx)
	if err != nil {
		return nil, storageErr("error counting claims", err)
	}

	out := &schemas.StatsResponse{ByStatus: make(map[models.ClaimStatus]int64, len(models.AllStatuses()))}
	for _, st := range models.AllStatuses() {
		out.ByStatus[st] = counts[st]
		out.Total += counts[st]
	}
	return out, nil
}

// pageBounds applies the default and maximum page size and clamps negative
// offsets to zero.
func pageBounds(limit, offset int) (int, int) {
	switch {
	case limit <= 0:
		limit = DefaultListLimit
	case limit > MaxListLimit:
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
