package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/dmitrijs2005/claimdesk/internal/logging"
)

// bodyOverhead is allowed on top of the upload limit for multipart framing
// and the other form fields.
const bodyOverhead = 1 << 20

// Dependencies holds everything the handlers need.
type Dependencies struct {
	Claims         ClaimService
	Documents      DocumentService
	Analysts       AnalystService
	DB             Pinger
	Logger         logging.Logger
	MaxUploadBytes int64
	AllowOrigins   []string
	Version        string
}

// Handlers holds all handler instances.
type Handlers struct {
	Health  *HealthHandler
	Claims  *ClaimHandler
	Analyst *AnalystHandler
}

func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Health:  NewHealthHandler(deps.DB, deps.Version),
		Claims:  NewClaimHandler(deps.Claims, deps.Documents),
		Analyst: NewAnalystHandler(deps.Analysts, deps.Claims, deps.Documents),
	}
}

// NewEcho builds the echo instance with middleware, error handling and all
// routes registered.
func NewEcho(deps *Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = ErrorHandler(deps.Logger)

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(RequestLogger(deps.Logger))
	e.Use(middleware.Recover())
	if deps.MaxUploadBytes > 0 {
		e.Use(middleware.BodyLimit(fmt.Sprintf("%dK", (deps.MaxUploadBytes+bodyOverhead)/1024)))
	}

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: corsOrigins(deps.AllowOrigins),
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	RegisterRoutes(e, NewHandlers(deps), RequireAnalyst(deps.Analysts))
	return e
}

// corsOrigins drops blank entries and trailing slashes, since browsers send
// Origin without a path. No origins means any.
func corsOrigins(configured []string) []string {
	var out []string
	for _, o := range configured {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// RegisterRoutes registers all API routes. Analyst routes are wrapped in
// requireAnalyst.
func RegisterRoutes(e *echo.Echo, h *Handlers, requireAnalyst echo.MiddlewareFunc) {
	api := e.Group("/api")

	api.GET("/health", h.Health.HandleHealth)

	claims := api.Group("/claims")
	claims.POST("", h.Claims.HandleCreateClaim)
	claims.POST("/frontend", h.Claims.HandleCreateFrontendClaim)
	claims.GET("/:claimId", h.Claims.HandleGetClaim)
	claims.POST("/:claimId/documents", h.Claims.HandleAttachDocument)

	api.POST("/auth/login", h.Analyst.HandleLogin)

	analyst := api.Group("/analyst", requireAnalyst)
	analyst.GET("/claims", h.Analyst.HandleListClaims)
	analyst.GET("/stats", h.Analyst.HandleStats)
	analyst.PUT("/claims/:claimId/status", h.Analyst.HandleUpdateStatus)
	analyst.GET("/claims/:claimId/history", h.Analyst.HandleHistory)
	analyst.GET("/claims/:claimId/documents", h.Analyst.HandleClaimDocuments)
	analyst.POST("/claims/:claimId/document-requests", h.Analyst.HandleRequestDocuments)
	analyst.GET("/documents", h.Analyst.HandleListDocuments)
	analyst.GET("/documents/:id", h.Analyst.HandleDocumentDetails)
	analyst.POST("/documents/:id/verify", h.Analyst.HandleVerifyDocument)
	analyst.GET("/documents/:id/download", h.Analyst.HandleDownloadDocument)
}
