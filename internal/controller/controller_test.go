package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"docqa-be/internal/dto"
	"docqa-be/internal/pkg/serverutils"
	"docqa-be/internal/service"
	"docqa-be/pkg/rag"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

type stubDocuments struct {
	got *dto.UploadDocumentRequest
	err error
}

func (s *stubDocuments) Upload(ctx context.Context, req *dto.UploadDocumentRequest) (*dto.UploadDocumentResponse, error) {
	s.got = req
	if s.err != nil {
		return nil, s.err
	}
	return &dto.UploadDocumentResponse{DocumentId: "doc-1", FileName: req.FileName}, nil
}

func (s *stubDocuments) Restore(ctx context.Context) error { return nil }

type stubQueries struct {
	res *dto.QueryResponse
	err error
}

func (s *stubQueries) Ask(ctx context.Context, accountId uuid.UUID, req *dto.QueryRequest) (*dto.QueryResponse, error) {
	return s.res, s.err
}

type stubBilling struct {
	service.IBillingService
	notifyErr error
}

func (s *stubBilling) SetSender(ctx context.Context, req *dto.SetSenderRequest) (*dto.SetSenderResponse, error) {
	return &dto.SetSenderResponse{CustomerId: uuid.New(), Email: req.SenderEmail, Token: "tok"}, nil
}

func (s *stubBilling) ListUsage(ctx context.Context, accountId uuid.UUID, limit, offset int) (*dto.UsageListResponse, error) {
	return &dto.UsageListResponse{Total: 1, Records: []dto.UsageRecordResponse{{Question: "q"}}}, nil
}

func (s *stubBilling) HandleNotification(ctx context.Context, req *dto.MidtransWebhookRequest) error {
	return s.notifyErr
}

func newApp(docs service.IDocumentService, queries service.IQueryService, billing service.IBillingService) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: serverutils.NewErrorHandler(nil)})
	api := app.Group("/api")
	NewDocumentController(docs).RegisterRoutes(api)
	NewQueryController(queries, secret).RegisterRoutes(api)
	NewBillingController(billing, secret).RegisterRoutes(api)
	return app
}

func decode(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &out), string(body))
	return out
}

func multipartUpload(t *testing.T, field, name string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func bearer(t *testing.T) string {
	t.Helper()
	token, err := serverutils.IssueToken(secret, uuid.New(), time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestUpload(t *testing.T) {
	docs := &stubDocuments{}
	app := newApp(docs, &stubQueries{}, &stubBilling{})

	resp, err := app.Test(multipartUpload(t, "file", "facts.txt", []byte("The sky is blue.")))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]interface{}{"message": "File uploaded and processed successfully"}, decode(t, resp))
	assert.Equal(t, "facts.txt", docs.got.FileName)
	assert.Equal(t, []byte("The sky is blue."), docs.got.Data)
}

func TestUpload_Errors(t *testing.T) {
	tests := []struct {
		name   string
		req    func(t *testing.T) *http.Request
		err    error
		status int
	}{
		{
			name:   "missing file part",
			req:    func(t *testing.T) *http.Request { return multipartUpload(t, "other", "a.txt", []byte("x")) },
			status: http.StatusBadRequest,
		},
		{
			name:   "unsupported type",
			req:    func(t *testing.T) *http.Request { return multipartUpload(t, "file", "a.exe", []byte("x")) },
			err:    service.ErrUnsupportedFileType,
			status: http.StatusBadRequest,
		},
		{
			name:   "unparseable pdf",
			req:    func(t *testing.T) *http.Request { return multipartUpload(t, "file", "a.pdf", []byte("x")) },
			err:    rag.Errorf(rag.KindExtraction, "not a pdf"),
			status: http.StatusUnprocessableEntity,
		},
		{
			name:   "embedding provider down",
			req:    func(t *testing.T) *http.Request { return multipartUpload(t, "file", "a.txt", []byte("x")) },
			err:    rag.Errorf(rag.KindEmbedding, "provider unavailable"),
			status: http.StatusBadGateway,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newApp(&stubDocuments{err: tt.err}, &stubQueries{}, &stubBilling{})
			resp, err := app.Test(tt.req(t))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
			body := decode(t, resp)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestQuery(t *testing.T) {
	ts := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	queries := &stubQueries{res: &dto.QueryResponse{
		Answer:    "Blue.",
		Timestamp: ts,
		Payment:   &dto.PaymentInfo{Status: "pending", Amount: 100, RedirectURL: "https://pay.example/x"},
	}}
	app := newApp(&stubDocuments{}, queries, &stubBilling{})

	req := httptest.NewRequest(http.MethodPost, "/api/query", bytes.NewBufferString(`{"question":"What color is the sky?"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer(t))

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode(t, resp)
	assert.Equal(t, "Blue.", body["answer"])
	assert.Equal(t, "2026-10-15T12:00:00Z", body["timestamp"])
	payment := body["payment"].(map[string]interface{})
	assert.Equal(t, "pending", payment["status"])
	assert.Equal(t, "https://pay.example/x", payment["redirect_url"])
}

func TestQuery_Errors(t *testing.T) {
	tests := []struct {
		name   string
		auth   bool
		body   string
		err    error
		status int
	}{
		{name: "no token", auth: false, body: `{"question":"q"}`, status: http.StatusUnauthorized},
		{name: "empty question", auth: true, body: `{"question":""}`, status: http.StatusBadRequest},
		{name: "not ready", auth: true, body: `{"question":"q"}`, err: rag.ErrNotReady, status: http.StatusConflict},
		{name: "quota", auth: true, body: `{"question":"q"}`, err: service.ErrQuotaExceeded, status: http.StatusTooManyRequests},
		{name: "generation", auth: true, body: `{"question":"q"}`, err: rag.Errorf(rag.KindGeneration, "down"), status: http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newApp(&stubDocuments{}, &stubQueries{err: tt.err, res: &dto.QueryResponse{}}, &stubBilling{})
			req := httptest.NewRequest(http.MethodPost, "/api/query", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			if tt.auth {
				req.Header.Set("Authorization", bearer(t))
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.NotEmpty(t, decode(t, resp)["error"])
		})
	}
}

func TestSetSender(t *testing.T) {
	app := newApp(&stubDocuments{}, &stubQueries{}, &stubBilling{})

	req := httptest.NewRequest(http.MethodPost, "/api/set_sender", bytes.NewBufferString(`{"sender_email":"eve@example.com","sender_name":"Eve"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, "eve@example.com", body["email"])
	assert.Equal(t, "tok", body["token"])
	assert.NotEmpty(t, body["customer_id"])

	bad := httptest.NewRequest(http.MethodPost, "/api/set_sender", bytes.NewBufferString(`{"sender_email":"nope","sender_name":"Eve"}`))
	bad.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(bad)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUsageAndWebhook(t *testing.T) {
	billing := &stubBilling{}
	app := newApp(&stubDocuments{}, &stubQueries{}, billing)

	req := httptest.NewRequest(http.MethodGet, "/api/usage?limit=5", nil)
	req.Header.Set("Authorization", bearer(t))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	data := decode(t, resp)["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["total"])

	webhook := func() *http.Request {
		r := httptest.NewRequest(http.MethodPost, "/api/billing/midtrans/notification",
			bytes.NewBufferString(`{"order_id":"DOCQA-1","transaction_status":"settlement","signature_key":"sig","status_code":"200","gross_amount":"100.00"}`))
		r.Header.Set("Content-Type", "application/json")
		return r
	}

	resp, err = app.Test(webhook())
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	billing.notifyErr = service.ErrInvalidSignature
	resp, err = app.Test(webhook())
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "invalid signature", decode(t, resp)["error"])
}
