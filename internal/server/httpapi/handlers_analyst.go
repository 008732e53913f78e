package httpapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/dmitrijs2005/claimdesk/internal/server/models"
	"github.com/dmitrijs2005/claimdesk/internal/server/schemas"
	"github.com/dmitrijs2005/claimdesk/internal/server/services"
)

// AnalystHandler serves login and the authenticated review endpoints.
type AnalystHandler struct {
	analysts  AnalystService
	claims    ClaimService
	documents DocumentService
}

func NewAnalystHandler(analysts AnalystService, claims ClaimService, documents DocumentService) *AnalystHandler {
	return &AnalystHandler{analysts: analysts, claims: claims, documents: documents}
}

func (h *AnalystHandler) HandleLogin(c echo.Context) error {
	var req schemas.LoginRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	res, err := h.analysts.Login(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, schemas.OK("Login successful", *res))
}

// HandleListClaims supports ?status=&limit=&offset=.
func (h *AnalystHandler) HandleListClaims(c echo.Context) error {
	var (
		f      services.ListFilter
		status string
	)
	if err := echo.QueryParamsBinder(c).
		String("status", &status).
		Int("limit", &f.Limit).
		Int("offset", &f.Offset).
		BindError(); err != nil {
		return err
	}
	f.Status = models.ClaimStatus(status)

	res, err := h.claims.List(c.Request().Context(), f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, schemas.OK("Claims retrieved successfully", *res))
}

func (h *AnalystHandler) HandleStats(c echo.Context) error {
	res, err := h.claims.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, schemas.OK("Statistics retrieved successfully", *res))
}

func (h *AnalystHandler) HandleUpdateStatus(c echo.Context) error {
	claimID := c.Param("claimId")

	var req schemas.StatusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return err
	}

	var changedBy *string
	if p := principal(c); p != nil {
		changedBy = &p.Email
	}

	res, err := h.claims.UpdateStatus(c.Request().Context(), claimID, req.Status, req.Reason, changedBy)
	if err != nil {
		return claimErr(err, claimID)
	}
	return c.JSON(http.StatusOK, schemas.OK("Claim status updated to "+string(res.Status), *res))
}

func (h *AnalystHandler) HandleHistory(c echo.Context) error {
	claimID := c.Param("claimId")
	res, err := h.claims.History(c.Request().Context(), claimID)
	if err != nil {
		return claimErr(err, claimID)
	}
	return c.JSON(http.StatusOK, schemas.OK("Status history retrieved successfully", res))
}

func (h *AnalystHandler) HandleRequestDocuments(c echo.Context) error {
	claimID := c.Param("claimId")

	var req schemas.DocumentRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	res, err := h.documents.RequestDocuments(c.Request().Context(), claimID, req)
	if err != nil {
		return claimErr(err, claimID)
	}
	return c.JSON(http.StatusOK, schemas.OK("Document request sent", *res))
}

// HandleListDocuments supports ?claim_id=&document_type=&verified=&limit=&offset=.
func (h *AnalystHandler) HandleListDocuments(c echo.Context) error {
	var (
		f        services.DocumentFilter
		docType  string
		verified string
	)
	if err := echo.QueryParamsBinder(c).
		String("claim_id", &f.ClaimID).
		String("document_type", &docType).
		String("verified", &verified).
		Int("limit", &f.Limit).
		Int("offset", &f.Offset).
		BindError(); err != nil {
		return err
	}
	f.DocumentType = models.DocumentType(docType)
	if verified != "" {
		v, err := strconv.ParseBool(verified)
		if err != nil {
			return NewFieldError("verified", "must be a boolean")
		}
		f.Verified = &v
	}

	res, err := h.documents.List(c.Request().Context(), f)
	if err != nil {
		return claimErr(err, f.ClaimID)
	}
	return c.JSON(http.StatusOK, schemas.OK("Documents retrieved successfully", *res))
}

func (h *AnalystHandler) HandleClaimDocuments(c echo.Context) error {
	claimID := c.Param("claimId")
	res, err := h.documents.ListForClaim(c.Request().Context(), claimID)
	if err != nil {
		return claimErr(err, claimID)
	}
	return c.JSON(http.StatusOK, schemas.OK("Documents retrieved successfully", res))
}

func (h *AnalystHandler) HandleDocumentDetails(c echo.Context) error {
	id, err := documentID(c)
	if err != nil {
		return err
	}
	res, err := h.documents.Details(c.Request().Context(), id)
	if err != nil {
		return documentErr(err, c.Param("id"))
	}
	return c.JSON(http.StatusOK, schemas.OK("Document retrieved successfully", *res))
}

func (h *AnalystHandler) HandleVerifyDocument(c echo.Context) error {
	id, err := documentID(c)
	if err != nil {
		return err
	}
	res, err := h.documents.Verify(c.Request().Context(), id)
	if err != nil {
		return documentErr(err, c.Param("id"))
	}
	return c.JSON(http.StatusOK, schemas.OK("Document verified", *res))
}

func (h *AnalystHandler) HandleDownloadDocument(c echo.Context) error {
	id, err := documentID(c)
	if err != nil {
		return err
	}
	res, err := h.documents.DownloadURL(c.Request().Context(), id)
	if err != nil {
		return documentErr(err, c.Param("id"))
	}
	return c.JSON(http.StatusOK, schemas.OK("Download link created", *res))
}

func documentID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, NewFieldError("id", "must be a positive integer")
	}
	return id, nil
}

func documentErr(err error, id string) error {
	if apiErr := toAPIError(err); apiErr.Status == http.StatusNotFound {
		return NewNotFoundError("document", id)
	}
	return err
}
