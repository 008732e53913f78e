package services

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/dmitrijs2005/claimdesk/internal/common"
	"github.com/dmitrijs2005/claimdesk/internal/dbx"
	"github.com/dmitrijs2005/claimdesk/internal/server/models"
	"github.com/dmitrijs2005/claimdesk/internal/server/repositories/analysts"
	"github.com/dmitrijs2005/claimdesk/internal/server/repositories/claims"
	"github.com/dmitrijs2005/claimdesk/internal/server/repositories/documents"
	"github.com/dmitrijs2005/claimdesk/internal/server/repositories/statusupdates"
	"github.com/dmitrijs2005/claimdesk/internal/server/storage"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

// --- claims ---

type memClaims struct {
	mu     sync.Mutex
	items  []*models.Claim
	nextID int64

	createErrs []error // consumed one per Create call
	getErr     error
	updateErr  error
	listErr    error

	forUpdate  int
	lastFilter models.ClaimFilter
}

func (m *memClaims) find(claimID string) *models.Claim {
	for _, c := range m.items {
		if c.ClaimID == claimID {
			return c
		}
	}
	return nil
}

func (m *memClaims) Create(_ context.Context, c *models.Claim) (*models.Claim, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.createErrs) > 0 {
		err := m.createErrs[0]
		m.createErrs = m.createErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	if m.find(c.ClaimID) != nil {
		return nil, fmt.Errorf("claim id %s: %w", c.ClaimID, common.ErrorAlreadyExists)
	}
	m.nextID++
	saved := *c
	saved.ID = m.nextID
	m.items = append(m.items, &saved)
	out := saved
	return &out, nil
}

func (m *memClaims) GetByClaimID(_ context.Context, claimID string) (*models.Claim, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	c := m.find(claimID)
	if c == nil {
		return nil, common.ErrorNotFound
	}
	out := *c
	return &out, nil
}

func (m *memClaims) GetByID(_ context.Context, id int64) (*models.Claim, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, c := range m.items {
		if c.ID == id {
			out := *c
			return &out, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (m *memClaims) GetByClaimIDForUpdate(ctx context.Context, claimID string) (*models.Claim, error) {
	m.mu.Lock()
	m.forUpdate++
	m.mu.Unlock()
	return m.GetByClaimID(ctx, claimID)
}

func (m *memClaims) UpdateStatus(_ context.Context, id int64, status models.ClaimStatus, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	for _, c := range m.items {
		if c.ID == id {
			c.Status = status
			c.UpdatedAt = updatedAt
			return nil
		}
	}
	return common.ErrorNotFound
}

func (m *memClaims) matching(status models.ClaimStatus) []*models.Claim {
	var out []*models.Claim
	for _, c := range m.items {
		if status == "" || c.Status == status {
			out = append(out, c)
		}
	}
	return out
}

func (m *memClaims) List(_ context.Context, f models.ClaimFilter) ([]*models.Claim, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastFilter = f
	if m.listErr != nil {
		return nil, m.listErr
	}
	items := m.matching(f.Status)
	sort.Slice(items, func(i, j int) bool { return items[i].ID > items[j].ID })
	if f.Offset >= len(items) {
		return []*models.Claim{}, nil
	}
	items = items[f.Offset:]
	if len(items) > f.Limit {
		items = items[:f.Limit]
	}
	return items, nil
}

func (m *memClaims) Count(_ context.Context, status models.ClaimStatus) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return 0, m.listErr
	}
	return int64(len(m.matching(status))), nil
}

func (m *memClaims) CountByStatus(context.Context) (map[models.ClaimStatus]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := map[models.ClaimStatus]int64{}
	for _, c := range m.items {
		out[c.Status]++
	}
	return out, nil
}

func (m *memClaims) seed(c models.Claim) *models.Claim {
	m.nextID++
	c.ID = m.nextID
	if c.Status == "" {
		c.Status = models.InitialStatus
	}
	m.items = append(m.items, &c)
	return &c
}

// --- documents ---

type memDocuments struct {
	mu     sync.Mutex
	items  []*models.Document
	nextID int64

	createErr  error
	listErr    error
	lastFilter models.DocumentFilter
}

func (m *memDocuments) Create(_ context.Context, d *models.Document) (*models.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.nextID++
	saved := *d
	saved.ID = m.nextID
	saved.UploadedAt = fixedNow
	m.items = append(m.items, &saved)
	out := saved
	return &out, nil
}

func (m *memDocuments) GetByID(_ context.Context, id int64) (*models.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.items {
		if d.ID == id {
			out := *d
			return &out, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (m *memDocuments) ListByClaimFormID(_ context.Context, claimFormID int64) ([]*models.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.Document{}
	for _, d := range m.items {
		if d.ClaimFormID == claimFormID {
			c := *d
			out = append(out, &c)
		}
	}
	return out, nil
}

func (m *memDocuments) matching(f models.DocumentFilter) []*models.Document {
	out := []*models.Document{}
	for i := len(m.items) - 1; i >= 0; i-- {
		d := m.items[i]
		if f.ClaimFormID != 0 && d.ClaimFormID != f.ClaimFormID {
			continue
		}
		if f.DocumentType != "" && d.DocumentType != f.DocumentType {
			continue
		}
		if f.Verified != nil && d.IsVerified != *f.Verified {
			continue
		}
		c := *d
		out = append(out, &c)
	}
	return out
}

func (m *memDocuments) List(_ context.Context, f models.DocumentFilter) ([]*models.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastFilter = f
	if m.listErr != nil {
		return nil, m.listErr
	}
	all := m.matching(f)
	if f.Offset >= len(all) {
		return []*models.Document{}, nil
	}
	end := min(f.Offset+f.Limit, len(all))
	return all[f.Offset:end], nil
}

func (m *memDocuments) Count(_ context.Context, f models.DocumentFilter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.matching(f))), nil
}

func (m *memDocuments) MarkVerified(ctx context.Context, id int64) (*models.Document, error) {
	m.mu.Lock()
	for _, d := range m.items {
		if d.ID == id {
			d.IsVerified = true
		}
	}
	m.mu.Unlock()
	return m.GetByID(ctx, id)
}

// --- status updates ---

type memStatusUpdates struct {
	mu        sync.Mutex
	items     []*models.StatusUpdate
	createErr error
}

func (m *memStatusUpdates) Create(_ context.Context, u *models.StatusUpdate) (*models.StatusUpdate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return nil, m.createErr
	}
	saved := *u
	saved.ID = int64(len(m.items) + 1)
	m.items = append(m.items, &saved)
	return &saved, nil
}

func (m *memStatusUpdates) ListByClaimFormID(_ context.Context, claimFormID int64) ([]*models.StatusUpdate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.StatusUpdate{}
	for _, u := range m.items {
		if u.ClaimFormID == claimFormID {
			out = append(out, u)
		}
	}
	return out, nil
}

// --- analysts ---

type memAnalysts struct {
	mu     sync.Mutex
	items  map[string]*models.Analyst
	getErr error
}

func (m *memAnalysts) Create(_ context.Context, a *models.Analyst) (*models.Analyst, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.items == nil {
		m.items = map[string]*models.Analyst{}
	}
	if _, ok := m.items[a.Email]; ok {
		return nil, common.ErrorAlreadyExists
	}
	saved := *a
	saved.ID = int64(len(m.items) + 1)
	m.items[a.Email] = &saved
	return &saved, nil
}

func (m *memAnalysts) GetByEmail(_ context.Context, email string) (*models.Analyst, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	a, ok := m.items[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return a, nil
}

// --- repository manager ---

type fakeRepoManager struct {
	claims   *memClaims
	docs     *memDocuments
	updates  *memStatusUpdates
	analysts *memAnalysts
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		claims:   &memClaims{},
		docs:     &memDocuments{},
		updates:  &memStatusUpdates{},
		analysts: &memAnalysts{},
	}
}

func (f *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (f *fakeRepoManager) SchemaVersion(context.Context, *sql.DB) (int64, error) { return 0, nil }
func (f *fakeRepoManager) Claims(dbx.DBTX) claims.Repository                     { return f.claims }
func (f *fakeRepoManager) Documents(dbx.DBTX) documents.Repository               { return f.docs }
func (f *fakeRepoManager) StatusUpdates(dbx.DBTX) statusupdates.Repository {
	return f.updates
}
func (f *fakeRepoManager) Analysts(dbx.DBTX) analysts.Repository { return f.analysts }

// --- notifier ---

type notifyCall struct {
	kind     string
	claimID  string
	previous models.ClaimStatus
	docs     []string
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []notifyCall
	sent  bool
	err   error
}

func newFakeNotifier() *fakeNotifier { return &fakeNotifier{sent: true} }

func (f *fakeNotifier) record(c notifyCall) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
	return f.sent, f.err
}

func (f *fakeNotifier) ClaimReceived(_ context.Context, c *models.Claim) (bool, error) {
	return f.record(notifyCall{kind: "received", claimID: c.ClaimID})
}

func (f *fakeNotifier) StatusChanged(_ context.Context, c *models.Claim, previous models.ClaimStatus, _ *string) (bool, error) {
	return f.record(notifyCall{kind: "status", claimID: c.ClaimID, previous: previous})
}

func (f *fakeNotifier) DocumentsRequested(_ context.Context, c *models.Claim, docs []string, _ *string) (bool, error) {
	return f.record(notifyCall{kind: "documents", claimID: c.ClaimID, docs: docs})
}

// --- object store ---

type storedObject struct {
	data        []byte
	contentType string
}

type fakeStore struct {
	mu      sync.Mutex
	objects map[string]storedObject
	deleted []string

	putErr     error
	headErr    error
	presignErr error
}

func newFakeStore() *fakeStore { return &fakeStore{objects: map[string]storedObject{}} }

func (f *fakeStore) Put(_ context.Context, key string, body io.Reader, _ int64, contentType string) error {
	if f.putErr != nil {
		return f.putErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = storedObject{data: data, contentType: contentType}
	return nil
}

func (f *fakeStore) Head(_ context.Context, key string) (storage.ObjectInfo, error) {
	if f.headErr != nil {
		return storage.ObjectInfo{}, f.headErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.objects[key]
	if !ok {
		return storage.ObjectInfo{}, common.ErrorNotFound
	}
	return storage.ObjectInfo{Size: int64(len(o.data)), ContentType: o.contentType}, nil
}

func (f *fakeStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeStore) PresignGet(_ context.Context, key string, ttl time.Duration) (string, error) {
	if f.presignErr != nil {
		return "", f.presignErr
	}
	return fmt.Sprintf("https://signed.example/%s?ttl=%d", key, int(ttl.Seconds())), nil
}

func (f *fakeStore) URL(key string) string { return "http://minio:9000/claim-documents/" + key }

func pdfUpload(name string, body string) Upload {
	return Upload{
		Filename:    name,
		ContentType: "application/pdf",
		Size:        int64(len(body)),
		Body:        bytes.NewReader([]byte(body)),
	}
}

var errDB = errors.New("connection reset")
