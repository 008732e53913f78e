package storage

import (
	"mime"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/claimdesk/internal/server/models"
	"github.com/oklog/ulid/v2"
)

// KeyPrefix is the folder all claim documents live under.
const KeyPrefix = "claims"

const maxExtLen = 10

// ObjectKey builds the storage key and stored file name for an upload:
// claims/<claim_id>/<type>_<utc timestamp>_<ulid><ext>. The ULID keeps names
// unique and sortable when one claim receives several uploads per second.
func ObjectKey(claimID string, docType models.DocumentType, originalName string, now time.Time) (key, filename string) {
	filename = string(docType) + "_" + now.UTC().Format("20060102T150405") + "_" +
		ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String() + extension(originalName)
	return path.Join(KeyPrefix, claimID, filename), filename
}

// extension returns the lower-cased extension of name when it is short and
// alphanumeric, "" otherwise.
func extension(name string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(strings.ReplaceAll(name, `\`, "/"))))
	if len(ext) < 2 || len(ext) > maxExtLen {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}

// AllowedContentType reports whether uploads of contentType are accepted:
// any image type or PDF. Parameters such as charset are ignored.
func AllowedContentType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mediaType, "image/") || mediaType == "application/pdf"
}
