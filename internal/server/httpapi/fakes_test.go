package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/claimdesk/internal/common"
	"github.com/dmitrijs2005/claimdesk/internal/logging"
	"github.com/dmitrijs2005/claimdesk/internal/server/auth"
	"github.com/dmitrijs2005/claimdesk/internal/server/models"
	"github.com/dmitrijs2005/claimdesk/internal/server/schemas"
	"github.com/dmitrijs2005/claimdesk/internal/server/services"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

const goodToken = "good-token"

type fakeClaims struct {
	created    []schemas.ClaimFormCreate
	createRes  *schemas.ClaimCreatedResponse
	createErr  error
	getErr     error
	updateErr  error
	lastUpdate struct {
		claimID   string
		next      models.ClaimStatus
		reason    *string
		changedBy *string
	}
	lastFilter services.ListFilter
	listErr    error
}

func claimResponse(in schemas.ClaimFormCreate) schemas.ClaimFormResponse {
	c := in.ToModel()
	c.ID = 1
	c.ClaimID = "CLM-0A1B2C3D"
	c.Status = models.StatusSubmitted
	c.CreatedAt = fixedNow
	c.UpdatedAt = fixedNow
	return schemas.NewClaimFormResponse(c)
}

func (f *fakeClaims) Create(_ context.Context, in schemas.ClaimFormCreate) (*schemas.ClaimCreatedResponse, error) {
	f.created = append(f.created, in)
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createRes != nil {
		return f.createRes, nil
	}
	return &schemas.ClaimCreatedResponse{
		ClaimFormResponse: claimResponse(in),
		Notification:      schemas.NotificationStatus{Sent: true},
	}, nil
}

func (f *fakeClaims) Get(_ context.Context, claimID string) (*schemas.ClaimFormWithDocuments, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	c := &models.Claim{ID: 1, ClaimID: claimID, FullName: "Jane Doe", Status: models.StatusSubmitted}
	out := schemas.NewClaimFormWithDocuments(c, []*models.Document{{ID: 3, ClaimFormID: 1, DocumentType: models.DocumentPhoto}})
	return &out, nil
}

func (f *fakeClaims) UpdateStatus(_ context.Context, claimID string, next models.ClaimStatus, reason, changedBy *string) (*schemas.ClaimStatusResponse, error) {
	f.lastUpdate.claimID = claimID
	f.lastUpdate.next = next
	f.lastUpdate.reason = reason
	f.lastUpdate.changedBy = changedBy
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	c := &models.Claim{ID: 1, ClaimID: claimID, Status: next, UpdatedAt: fixedNow}
	return &schemas.ClaimStatusResponse{
		ClaimFormResponse: schemas.NewClaimFormResponse(c),
		PreviousStatus:    models.StatusSubmitted,
		Notification:      schemas.NotificationStatus{Sent: true},
	}, nil
}

func (f *fakeClaims) List(_ context.Context, lf services.ListFilter) (*schemas.ClaimListResponse, error) {
	f.lastFilter = lf
	if f.listErr != nil {
		return nil, f.listErr
	}
	return &schemas.ClaimListResponse{Claims: []schemas.ClaimFormResponse{}, Total: 0, Limit: lf.Limit, Offset: lf.Offset}, nil
}

func (f *fakeClaims) History(_ context.Context, claimID string) ([]schemas.StatusUpdateResponse, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return []schemas.StatusUpdateResponse{{OldStatus: models.StatusSubmitted, NewStatus: models.StatusUnderReview, ChangedAt: fixedNow}}, nil
}

func (f *fakeClaims) Stats(context.Context) (*schemas.StatsResponse, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return &schemas.StatsResponse{Total: 2, ByStatus: map[models.ClaimStatus]int64{models.StatusSubmitted: 2}}, nil
}

type attachCall struct {
	claimID string
	in      schemas.DocumentCreate
	upload  services.Upload
	body    []byte
}

type fakeDocuments struct {
	attached   []attachCall
	attachErr  error
	verifyErr  error
	requestErr error
	listErr    error
	lastFilter services.DocumentFilter
}

func (f *fakeDocuments) List(_ context.Context, filter services.DocumentFilter) (*schemas.DocumentListResponse, error) {
	f.lastFilter = filter
	if f.listErr != nil {
		return nil, f.listErr
	}
	return &schemas.DocumentListResponse{
		Documents: []schemas.DocumentResponse{{ID: 3, ClaimFormID: 1, DocumentType: models.DocumentPhoto}},
		Total:     1,
		Limit:     10,
	}, nil
}

func (f *fakeDocuments) ListForClaim(_ context.Context, claimID string) ([]schemas.DocumentResponse, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return []schemas.DocumentResponse{{ID: 3, ClaimFormID: 1}, {ID: 4, ClaimFormID: 1}}, nil
}

func (f *fakeDocuments) Details(_ context.Context, id int64) (*schemas.DocumentDetailsResponse, error) {
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	return &schemas.DocumentDetailsResponse{
		Document: schemas.DocumentResponse{ID: id, ClaimFormID: 1},
		Claim:    schemas.ClaimFormResponse{ID: 1, ClaimID: "CLM-0A1B2C3D"},
	}, nil
}

func (f *fakeDocuments) Attach(_ context.Context, claimID string, in schemas.DocumentCreate, up services.Upload) (*schemas.DocumentResponse, error) {
	body, _ := io.ReadAll(up.Body)
	f.attached = append(f.attached, attachCall{claimID: claimID, in: in, upload: up, body: body})
	if f.attachErr != nil {
		return nil, f.attachErr
	}
	return &schemas.DocumentResponse{
		ID:               5,
		ClaimFormID:      1,
		DocumentType:     in.DocumentType,
		OriginalFilename: up.Filename,
		FileType:         up.ContentType,
		FileSize:         int64(len(body)),
		UploadedAt:       fixedNow,
	}, nil
}

func (f *fakeDocuments) Verify(_ context.Context, id int64) (*schemas.DocumentResponse, error) {
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	return &schemas.DocumentResponse{ID: id, IsVerified: true}, nil
}

func (f *fakeDocuments) DownloadURL(_ context.Context, id int64) (*schemas.DownloadResponse, error) {
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	return &schemas.DownloadResponse{DocumentID: id, URL: "https://signed.example/doc", ExpiresAt: fixedNow}, nil
}

func (f *fakeDocuments) RequestDocuments(context.Context, string, schemas.DocumentRequest) (*schemas.NotificationStatus, error) {
	if f.requestErr != nil {
		return &schemas.NotificationStatus{Error: f.requestErr.Error()}, f.requestErr
	}
	return &schemas.NotificationStatus{Sent: true}, nil
}

type fakeAnalysts struct {
	loginErr error
}

func (f *fakeAnalysts) Login(_ context.Context, req schemas.LoginRequest) (*schemas.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &schemas.TokenResponse{AccessToken: goodToken, TokenType: "Bearer", ExpiresAt: fixedNow}, nil
}

func (f *fakeAnalysts) Authenticate(token string) (*auth.Principal, error) {
	switch token {
	case goodToken:
		return &auth.Principal{AnalystID: 7, Email: "reviewer@example.com"}, nil
	case "expired":
		return nil, common.ErrTokenExpired
	}
	return nil, common.ErrInvalidToken
}

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

type testAPI struct {
	e         *echo.Echo
	claims    *fakeClaims
	documents *fakeDocuments
	analysts  *fakeAnalysts
	pinger    *fakePinger
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	api := &testAPI{
		claims:    &fakeClaims{},
		documents: &fakeDocuments{},
		analysts:  &fakeAnalysts{},
		pinger:    &fakePinger{},
	}
	api.e = NewEcho(&Dependencies{
		Claims:         api.claims,
		Documents:      api.documents,
		Analysts:       api.analysts,
		DB:             api.pinger,
		Logger:         logging.Nop{},
		MaxUploadBytes: 1 << 20,
		Version:        "test",
	})
	return api
}

func (a *testAPI) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func withToken(req *http.Request, token string) *http.Request {
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	return req
}

type filePart struct {
	name        string
	contentType string
	data        string
}

func multipartRequest(t *testing.T, target string, fields map[string]string, file *filePart) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if file != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="file"; filename="`+file.name+`"`)
		if file.contentType != "" {
			h.Set("Content-Type", file.contentType)
		}
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write([]byte(file.data))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func decodeResult[T any](t *testing.T, rec *httptest.ResponseRecorder) schemas.Result[T] {
	t.Helper()
	var res schemas.Result[T]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res), rec.Body.String())
	return res
}

var errBoom = errors.New("boom")
