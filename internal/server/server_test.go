package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wardenlabs/warden/internal/config"
	"github.com/wardenlabs/warden/internal/notify"
)

type stubVerifier struct {
	fid int64
	err error
}

func (s *stubVerifier) Verify(context.Context, string, string) (int64, error) {
	return s.fid, s.err
}

type stubReminder struct {
	out *notify.Outcome
	err error
}

func (s *stubReminder) Remind(context.Context) (*notify.Outcome, error) {
	return s.out, s.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, cfg config.ServerConfig, store notify.Store, rem Reminder, auth TokenVerifier) *Server {
	t.Helper()
	if store == nil {
		store = notify.NewMemStore()
	}
	return New(cfg, store, rem, auth, testLogger())
}

func do(t *testing.T, s *Server, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, config.ServerConfig{}, nil, nil, nil)
	rec := do(t, s, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestIDHeaderSet(t *testing.T) {
	s := newTestServer(t, config.ServerConfig{}, nil, nil, nil)
	rec := do(t, s, http.MethodGet, "/healthz", "", nil)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestRequestLoggerRecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	s := New(config.ServerConfig{}, notify.NewMemStore(), nil, nil, log)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	s.Handler().ServeHTTP(httptest.NewRecorder(), req)
	assert.Contains(t, buf.String(), "status=200")

	buf.Reset()
	req = httptest.NewRequest(http.MethodGet, "/nope", nil)
	s.Handler().ServeHTTP(httptest.NewRecorder(), req)
	assert.Contains(t, buf.String(), "status=404")
}

func TestShutdownStopsStart(t *testing.T) {
	s := newTestServer(t, config.ServerConfig{Addr: "127.0.0.1:0"}, nil, nil, nil)

	errCh := make(chan error, 1)
	go func() { errCh <- s.Start() }()

	require.NoError(t, s.Shutdown(context.Background()))
	assert.ErrorIs(t, <-errCh, http.ErrServerClosed)
}

// --- webhook ---

func TestWebhookEnableUpserts(t *testing.T) {
	store := notify.NewMemStore()
	s := newTestServer(t, config.ServerConfig{}, store, nil, nil)

	body := `{"fid":42,"event":"notifications_enabled","notificationDetails":{"token":"tok","url":"https://push.example"}}`
	rec := do(t, s, http.MethodPost, "/api/webhook", body, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)

	subs, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, notify.Subscriber{FID: 42, Token: "tok", URL: "https://push.example"}, subs[0])
}

func TestWebhookUpsertIdempotentPerFID(t *testing.T) {
	store := notify.NewMemStore()
	s := newTestServer(t, config.ServerConfig{}, store, nil, nil)

	first := `{"fid":42,"notificationDetails":{"token":"old","url":"u"}}`
	second := `{"fid":42,"notificationDetails":{"token":"new","url":"u"}}`
	do(t, s, http.MethodPost, "/api/webhook", first, nil)
	do(t, s, http.MethodPost, "/api/webhook", second, nil)

	subs, _ := store.List(context.Background())
	require.Len(t, subs, 1)
	assert.Equal(t, "new", subs[0].Token)
}

func TestWebhookDisableDeletes(t *testing.T) {
	store := notify.NewMemStore()
	require.NoError(t, store.Upsert(context.Background(), notify.Subscriber{FID: 42, Token: "t", URL: "u"}))
	s := newTestServer(t, config.ServerConfig{}, store, nil, nil)

	for _, event := range []string{"notifications_disabled", "frame_removed", "miniapp_removed"} {
		require.NoError(t, store.Upsert(context.Background(), notify.Subscriber{FID: 42, Token: "t", URL: "u"}))

		rec := do(t, s, http.MethodPost, "/api/webhook", fmt.Sprintf(`{"fid":42,"event":%q}`, event), nil)
		require.Equal(t, http.StatusOK, rec.Code)

		subs, _ := store.List(context.Background())
		assert.Empty(t, subs, "event %s must delete the subscriber", event)
	}
}

func TestWebhookMalformedBodyIgnored(t *testing.T) {
	store := notify.NewMemStore()
	s := newTestServer(t, config.ServerConfig{}, store, nil, nil)

	for _, body := range []string{`{not json`, `{"event":"x"}`, `{"fid":0}`} {
		rec := do(t, s, http.MethodPost, "/api/webhook", body, nil)
		assert.Equal(t, http.StatusOK, rec.Code, "body %q", body)
		assert.Contains(t, rec.Body.String(), `"success":false`)
	}

	subs, _ := store.List(context.Background())
	assert.Empty(t, subs)
}

// --- auth ---

func TestAuthMissingToken(t *testing.T) {
	s := newTestServer(t, config.ServerConfig{}, nil, nil, &stubVerifier{})

	for _, h := range []map[string]string{
		nil,
		{"Authorization": "Basic abc"},
		{"Authorization": "Bearer "},
	} {
		rec := do(t, s, http.MethodGet, "/api/auth", "", h)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Missing token")
	}
}

func TestAuthInvalidToken(t *testing.T) {
	auth := &stubVerifier{err: fmt.Errorf("%w: bad signature", ErrInvalidToken)}
	s := newTestServer(t, config.ServerConfig{}, nil, nil, auth)

	rec := do(t, s, http.MethodGet, "/api/auth", "", map[string]string{"Authorization": "Bearer x.y.z"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid token")
}

func TestAuthInternalError(t *testing.T) {
	auth := &stubVerifier{err: errors.New("jwks unreachable")}
	s := newTestServer(t, config.ServerConfig{}, nil, nil, auth)

	rec := do(t, s, http.MethodGet, "/api/auth", "", map[string]string{"Authorization": "Bearer x.y.z"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestAuthSuccessReturnsFID(t *testing.T) {
	s := newTestServer(t, config.ServerConfig{Domain: "warden.example"}, nil, nil, &stubVerifier{fid: 777})

	rec := do(t, s, http.MethodGet, "/api/auth", "", map[string]string{"Authorization": "Bearer x.y.z"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool `json:"success"`
		User    struct {
			FID int64 `json:"fid"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, int64(777), resp.User.FID)
}

// --- cron ---

func TestCronRejectsBadBearer(t *testing.T) {
	cfg := config.ServerConfig{CronSecret: "s3cret"}
	s := newTestServer(t, cfg, nil, &stubReminder{out: &notify.Outcome{}}, nil)

	for _, h := range []map[string]string{
		nil,
		{"Authorization": "Bearer wrong"},
		{"Authorization": "s3cret"},
	} {
		rec := do(t, s, http.MethodGet, "/api/cron/remind", "", h)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}
}

func TestCronRejectsWhenSecretUnset(t *testing.T) {
	s := newTestServer(t, config.ServerConfig{}, nil, &stubReminder{out: &notify.Outcome{}}, nil)

	rec := do(t, s, http.MethodGet, "/api/cron/remind", "", map[string]string{"Authorization": "Bearer "})
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "an empty secret must never authorize")
}

func TestCronRunsReminder(t *testing.T) {
	cfg := config.ServerConfig{CronSecret: "s3cret"}
	rem := &stubReminder{out: &notify.Outcome{Sent: 3, Failed: 1, Skipped: 2}}
	s := newTestServer(t, cfg, nil, rem, nil)

	rec := do(t, s, http.MethodGet, "/api/cron/remind", "", map[string]string{"Authorization": "Bearer s3cret"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"sent":3`)
	assert.Contains(t, rec.Body.String(), `"failed":1`)
	assert.Contains(t, rec.Body.String(), `"skipped":2`)
}

func TestCronReminderFailure(t *testing.T) {
	cfg := config.ServerConfig{CronSecret: "s3cret"}
	s := newTestServer(t, cfg, nil, &stubReminder{err: errors.New("db down")}, nil)

	rec := do(t, s, http.MethodGet, "/api/cron/remind", "", map[string]string{"Authorization": "Bearer s3cret"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

// --- manifest ---

func TestManifest(t *testing.T) {
	cfg := config.ServerConfig{
		AppURL:         "https://warden.example",
		AssocHeader:    "hdr",
		AssocPayload:   "pld",
		AssocSignature: "sig",
	}
	s := newTestServer(t, cfg, nil, nil, nil)

	rec := do(t, s, http.MethodGet, "/.well-known/farcaster.json", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var m struct {
		AccountAssociation struct {
			Header    string `json:"header"`
			Payload   string `json:"payload"`
			Signature string `json:"signature"`
		} `json:"accountAssociation"`
		Frame struct {
			Version              string   `json:"version"`
			HomeURL              string   `json:"homeUrl"`
			WebhookURL           string   `json:"webhookUrl"`
			RequiredChains       []string `json:"requiredChains"`
			RequiredCapabilities []string `json:"requiredCapabilities"`
		} `json:"frame"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	assert.Equal(t, "hdr", m.AccountAssociation.Header)
	assert.Equal(t, "sig", m.AccountAssociation.Signature)
	assert.Equal(t, "https://warden.example", m.Frame.HomeURL)
	assert.Equal(t, "https://warden.example/api/webhook", m.Frame.WebhookURL)
	assert.Contains(t, m.Frame.RequiredChains, "eip155:8453")
	assert.Contains(t, m.Frame.RequiredCapabilities, "wallet.getEthereumProvider")
}
