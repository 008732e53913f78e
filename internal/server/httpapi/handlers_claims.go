package httpapi

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/labstack/echo/v4"

	"github.com/dmitrijs2005/claimdesk/internal/common"
	"github.com/dmitrijs2005/claimdesk/internal/server/models"
	"github.com/dmitrijs2005/claimdesk/internal/server/schemas"
	"github.com/dmitrijs2005/claimdesk/internal/server/services"
)

const (
	msgClaimSubmitted    = "Claim submitted successfully"
	msgClaimRetrieved    = "Claim retrieved successfully"
	msgDocumentAttached  = "Document uploaded successfully"
	msgNotificationLater = "Claim submitted successfully, but the confirmation e-mail could not be sent"
)

// ClaimHandler serves the public claimant endpoints.
type ClaimHandler struct {
	claims    ClaimService
	documents DocumentService
}

func NewClaimHandler(claims ClaimService, documents DocumentService) *ClaimHandler {
	return &ClaimHandler{claims: claims, documents: documents}
}

// claimErr names the claim in not-found failures.
func claimErr(err error, claimID string) error {
	if errors.Is(err, common.ErrorNotFound) {
		return NewNotFoundError("claim", claimID)
	}
	return err
}

// HandleCreateClaim accepts the plain claim form.
func (h *ClaimHandler) HandleCreateClaim(c echo.Context) error {
	return h.create(c, schemas.ParseClaimFormCreate)
}

// HandleCreateFrontendClaim accepts the browser form, with split address and
// an expense list.
func (h *ClaimHandler) HandleCreateFrontendClaim(c echo.Context) error {
	return h.create(c, schemas.ParseFrontendClaimForm)
}

func (h *ClaimHandler) create(c echo.Context, parse func([]byte) (schemas.ClaimFormCreate, error)) error {
	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return err
	}
	in, err := parse(raw)
	if err != nil {
		return err
	}

	res, err := h.claims.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}

	msg := msgClaimSubmitted
	if !res.Notification.Sent {
		msg = msgNotificationLater
	}
	return c.JSON(http.StatusCreated, schemas.OK(msg, *res))
}

func (h *ClaimHandler) HandleGetClaim(c echo.Context) error {
	claimID := c.Param("claimId")
	res, err := h.claims.Get(c.Request().Context(), claimID)
	if err != nil {
		return claimErr(err, claimID)
	}
	return c.JSON(http.StatusOK, schemas.OK(msgClaimRetrieved, *res))
}

// HandleAttachDocument stores one multipart file for a claim. Form fields:
// file, document_type, upload_notes, uploaded_by.
func (h *ClaimHandler) HandleAttachDocument(c echo.Context) error {
	claimID := c.Param("claimId")

	fh, err := c.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return NewFieldError("file", "field required")
		}
		return err
	}
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	in := schemas.DocumentCreate{
		DocumentType: models.DocumentType(c.FormValue("document_type")),
		UploadNotes:  formOptional(c, "upload_notes"),
		UploadedBy:   formOptional(c, "uploaded_by"),
	}
	up := services.Upload{
		Filename:    fh.Filename,
		ContentType: uploadContentType(fh.Header.Get(echo.HeaderContentType), fh.Filename),
		Size:        fh.Size,
		Body:        f,
	}

	res, err := h.documents.Attach(c.Request().Context(), claimID, in, up)
	if err != nil {
		return claimErr(err, claimID)
	}
	return c.JSON(http.StatusCreated, schemas.OK(msgDocumentAttached, *res))
}

func formOptional(c echo.Context, name string) *string {
	v := c.FormValue(name)
	if v == "" {
		return nil
	}
	return &v
}

// uploadContentType prefers the part's declared type and falls back to the
// file extension when the client sent none or a generic one.
func uploadContentType(declared, filename string) string {
	if declared != "" && declared != echo.MIMEOctetStream {
		return declared
	}
	if byExt := mime.TypeByExtension(filepath.Ext(filename)); byExt != "" {
		return byExt
	}
	return declared
}
