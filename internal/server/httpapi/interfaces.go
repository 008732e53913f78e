// Package httpapi exposes the claim services over HTTP using echo. Every
// response, success or failure, is a schemas.Result envelope.
package httpapi

import (
	"context"

	"github.com/dmitrijs2005/claimdesk/internal/server/auth"
	"github.com/dmitrijs2005/claimdesk/internal/server/models"
	"github.com/dmitrijs2005/claimdesk/internal/server/schemas"
	"github.com/dmitrijs2005/claimdesk/internal/server/services"
)

type ClaimService interface {
	Create(ctx context.Context, in schemas.ClaimFormCreate) (*schemas.ClaimCreatedResponse, error)
	Get(ctx context.Context, claimID string) (*schemas.ClaimFormWithDocuments, error)
	UpdateStatus(ctx context.Context, claimID string, next models.ClaimStatus, reason, changedBy *string) (*schemas.ClaimStatusResponse, error)
	List(ctx context.Context, f services.ListFilter) (*schemas.ClaimListResponse, error)
	History(ctx context.Context, claimID string) ([]schemas.StatusUpdateResponse, error)
	Stats(ctx context.Context) (*schemas.StatsResponse, error)
}

type DocumentService interface {
	Attach(ctx context.Context, claimID string, in schemas.DocumentCreate, up services.Upload) (*schemas.DocumentResponse, error)
	List(ctx context.Context, f services.DocumentFilter) (*schemas.DocumentListResponse, error)
	ListForClaim(ctx context.Context, claimID string) ([]schemas.DocumentResponse, error)
	Details(ctx context.Context, documentID int64) (*schemas.DocumentDetailsResponse, error)
	Verify(ctx context.Context, documentID int64) (*schemas.DocumentResponse, error)
	DownloadURL(ctx context.Context, documentID int64) (*schemas.DownloadResponse, error)
	RequestDocuments(ctx context.Context, claimID string, req schemas.DocumentRequest) (*schemas.NotificationStatus, error)
}

type AnalystService interface {
	Login(ctx context.Context, req schemas.LoginRequest) (*schemas.TokenResponse, error)
	Authenticate(token string) (*auth.Principal, error)
}

// Pinger reports whether a backing service is reachable. *sql.DB
// implements it.
type Pinger interface {
	PingContext(ctx context.Context) error
}
