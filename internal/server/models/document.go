package models

import "time"

// DocumentType classifies a supporting document.
type DocumentType string

const (
	DocumentPoliceReport   DocumentType = "police_report"
	DocumentPhoto          DocumentType = "photo"
	DocumentReceipt        DocumentType = "receipt"
	DocumentInvoice        DocumentType = "invoice"
	DocumentMedicalReport  DocumentType = "medical_report"
	DocumentEstimate       DocumentType = "estimate"
	DocumentIdentification DocumentType = "identification"
	DocumentOther          DocumentType = "other"
)

// DocumentTypes returns every accepted document type.
func DocumentTypes() []DocumentType {
	return []DocumentType{
		DocumentPoliceReport, DocumentPhoto, DocumentReceipt, DocumentInvoice,
		DocumentMedicalReport, DocumentEstimate, DocumentIdentification, DocumentOther,
	}
}

func (t DocumentType) Valid() bool {
	for _, v := range DocumentTypes() {
		if v == t {
			return true
		}
	}
	return false
}

// Document describes an uploaded file attached to one claim. The binary
// lives in object storage under StoragePath; StorageURL addresses the same
// object.
type Document struct {
	ID          int64
	ClaimFormID int64

	DocumentType DocumentType
	UploadNotes  *string

	// Filename is the generated object name, OriginalFilename what the
	// uploader sent.
	Filename         string
	OriginalFilename string
	FileType         string
	FileSize         int64

	StorageURL  string
	StoragePath string

	// UploadedBy is nil for anonymous public uploads.
	UploadedBy *string
	IsVerified bool
	UploadedAt time.Time
}

// DocumentFilter selects a page of documents across claims, newest first.
type DocumentFilter struct {
	ClaimFormID  int64        // 0 means any
	DocumentType DocumentType // empty means any
	Verified     *bool
	Limit        int
	Offset       int
}
