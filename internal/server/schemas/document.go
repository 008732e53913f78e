package schemas

import (
	"strings"
	"time"

	"github.com/dmitrijs2005/claimdesk/internal/server/models"
)

// DocumentCreate carries the form fields sent with an upload.
type DocumentCreate struct {
	DocumentType models.DocumentType `json:"document_type"`
	UploadNotes  *string             `json:"upload_notes"`
	UploadedBy   *string             `json:"uploaded_by"`
}

// ValidateDocumentCreate normalises and checks the upload form fields.
// Blank notes and uploader become nil.
func ValidateDocumentCreate(d DocumentCreate) (DocumentCreate, error) {
	errs := &ValidationError{}

	d.DocumentType = models.DocumentType(strings.ToLower(strings.TrimSpace(string(d.DocumentType))))
	switch {
	case d.DocumentType == "":
		errs.Add("document_type", msgRequired)
	case !d.DocumentType.Valid():
		errs.Add("document_type", "must be one of "+documentTypeList())
	}

	d.UploadNotes = trimOptional(d.UploadNotes)
	d.UploadedBy = trimOptional(d.UploadedBy)

	if err := errs.Err(); err != nil {
		return DocumentCreate{}, err
	}
	return d, nil
}

func documentTypeList() string {
	types := models.DocumentTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	return optional(*s)
}

// DocumentResponse is stored document metadata as returned by the API.
type DocumentResponse struct {
	ID               int64               `json:"id"`
	ClaimFormID      int64               `json:"claim_form_id"`
	DocumentType     models.DocumentType `json:"document_type"`
	UploadNotes      *string             `json:"upload_notes"`
	Filename         string              `json:"filename"`
	OriginalFilename string              `json:"original_filename"`
	FileType         string              `json:"file_type"`
	FileSize         int64               `json:"file_size"`
	StorageURL       string              `json:"storage_url"`
	StoragePath      string              `json:"storage_path"`
	UploadedBy       *string             `json:"uploaded_by"`
	IsVerified       bool                `json:"is_verified"`
	UploadedAt       time.Time           `json:"uploaded_at"`
}

func NewDocumentResponse(d *models.Document) DocumentResponse {
	return DocumentResponse{
		ID:               d.ID,
		ClaimFormID:      d.ClaimFormID,
		DocumentType:     d.DocumentType,
		UploadNotes:      d.UploadNotes,
		Filename:         d.Filename,
		OriginalFilename: d.OriginalFilename,
		FileType:         d.FileType,
		FileSize:         d.FileSize,
		StorageURL:       d.StorageURL,
		StoragePath:      d.StoragePath,
		UploadedBy:       d.UploadedBy,
		IsVerified:       d.IsVerified,
		UploadedAt:       d.UploadedAt,
	}
}

func NewDocumentResponses(docs []*models.Document) []DocumentResponse {
	out := make([]DocumentResponse, 0, len(docs))
	for _, d := range docs {
		out = append(out, NewDocumentResponse(d))
	}
	return out
}

type DocumentListResponse struct {
	Documents []DocumentResponse `json:"documents"`
	Total     int64              `json:"total"`
	Limit     int                `json:"limit"`
	Offset    int                `json:"offset"`
}

// DocumentDetailsResponse is one document with the claim it is attached to.
type DocumentDetailsResponse struct {
	Document DocumentResponse  `json:"document"`
	Claim    ClaimFormResponse `json:"claim"`
}

// DownloadResponse carries a time-limited link to a stored document.
type DownloadResponse struct {
	DocumentID int64     `json:"document_id"`
	URL        string    `json:"url"`
	ExpiresAt  time.Time `json:"expires_at"`
}
