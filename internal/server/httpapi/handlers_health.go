package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dmitrijs2005/claimdesk/internal/server/schemas"
)

const healthPingTimeout = 2 * time.Second

type HealthHandler struct {
	db      Pinger
	version string
}

func NewHealthHandler(db Pinger, version string) *HealthHandler {
	return &HealthHandler{db: db, version: version}
}

// HandleHealth reports service and database status. An unreachable database
// yields a 503 failure envelope.
func (h *HealthHandler) HandleHealth(c echo.Context) error {
	health := map[string]string{
		"status":   "ok",
		"service":  "claimdesk",
		"version":  h.version,
		"database": "ok",
	}
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), healthPingTimeout)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			health["status"] = "degraded"
			health["database"] = "unreachable"
			return c.JSON(http.StatusServiceUnavailable, schemas.Fail[map[string]string]("Service degraded", schemas.ErrorBody{
				Code:    schemas.CodeStorage,
				Details: "database unreachable",
				Fields:  health,
			}))
		}
	}
	return c.JSON(http.StatusOK, schemas.OK("Service healthy", health))
}
