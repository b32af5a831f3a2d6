package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shadowcleaner/internal/api/handlers"
	"shadowcleaner/internal/config"
	"shadowcleaner/internal/domain/models"
	"shadowcleaner/internal/domain/services/ai"
	"shadowcleaner/internal/domain/services/classifier"
	"shadowcleaner/internal/domain/services/history"
	"shadowcleaner/internal/domain/services/scan"
	"shadowcleaner/internal/domain/services/waitlist"
	"shadowcleaner/pkg/logger"
)

type fakeExposures struct{}

func (fakeExposures) CheckEmail(_ context.Context, email string) (*models.ExposureReport, error) {
	return models.NewExposureReport(models.ExposureEmail, email, []models.Breach{{Name: "Example", Title: "Example"}}), nil
}

func (fakeExposures) CheckPhone(_ context.Context, phone string) (*models.ExposureReport, error) {
	return models.NewExposureReport(models.ExposurePhone, phone, nil), nil
}

type fakePasswords struct{}

func (fakePasswords) Check(_ context.Context, password string) (models.PasswordExposure, error) {
	if password == "password" {
		return models.PasswordExposure{IsExposed: true, ExposureCount: 42}, nil
	}
	return models.PasswordExposure{}, nil
}

func newTestServer(t *testing.T, cfg config.Config) *httptest.Server {
	t.Helper()
	log := logger.NewNop()

	store := history.NewStore(history.NewMemoryBackend(), 10, log)
	rules := classifier.New(log)
	scanner := scan.NewService(fakeExposures{}, rules, log, scan.WithHistory(store))

	h := handlers.NewHandlers(handlers.Dependencies{
		Version:    "test",
		Scanner:    scanner,
		Exposures:  fakeExposures{},
		Passwords:  fakePasswords{},
		Classifier: rules,
		Messages:   ai.NewFallback(ai.NewRuleClassifier(), 0, log),
		History:    store,
		Waitlist:   waitlist.NewStore(waitlist.NewMemoryRepository(), time.Now, log),
		Logger:     log,
	})

	srv := httptest.NewServer(NewRouter(cfg, h, nil, nil, log).Setup())
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url string, body any, headers map[string]string) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, config.Config{})

	resp := do(t, http.MethodGet, srv.URL+"/health", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/ready", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestScanEndpoint(t *testing.T) {
	srv := newTestServer(t, config.Config{})

	t.Run("empty request", func(t *testing.T) {
		resp := do(t, http.MethodPost, srv.URL+"/api/v1/scan", map[string]any{}, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decode[handlers.ErrorResponse](t, resp)
		assert.Equal(t, "At least one input is required", body.Error)
	})

	t.Run("malformed body", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/v1/scan", strings.NewReader("{"))
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("info", func(t *testing.T) {
		resp := do(t, http.MethodGet, srv.URL+"/api/v1/scan", nil, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		info := decode[handlers.EndpointInfo](t, resp)
		assert.Equal(t, http.MethodPost, info.Method)
	})

	t.Run("email scan", func(t *testing.T) {
		resp := do(t, http.MethodPost, srv.URL+"/api/v1/scan", models.ScanRequest{Email: "user@example.com"}, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := decode[models.ScanResponse](t, resp)
		assert.NotEmpty(t, body.ScanID)
		require.Len(t, body.Exposures, 1)
		assert.Equal(t, "user@example.com", body.Exposures[0].Value)
	})
}

func TestHistoryEndpoints(t *testing.T) {
	srv := newTestServer(t, config.Config{})
	base := srv.URL + "/api/v1/history"

	for range 2 {
		resp := do(t, http.MethodPost, srv.URL+"/api/v1/scan", models.ScanRequest{Email: "user@example.com"}, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp := do(t, http.MethodGet, base, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[handlers.HistoryListResponse](t, resp)
	require.Len(t, list.Entries, 2)
	assert.Equal(t, 10, list.MaxEntries)
	id := list.Entries[0].ID

	resp = do(t, http.MethodGet, base+"/"+id, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, id, decode[models.ScanHistoryEntry](t, resp).ID)

	resp = do(t, http.MethodGet, base+"/"+id+"/compare", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cmp := decode[models.ScanComparison](t, resp)
	require.NotNil(t, cmp.Previous)
	assert.Equal(t, 0, cmp.ScoreDelta)
	assert.Equal(t, 0, cmp.NewExposures)

	resp = do(t, http.MethodGet, base+"/"+id+"/export?format=markdown", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/markdown"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), id)

	resp = do(t, http.MethodGet, base+"/"+id+"/export?format=text", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/plain"))

	resp = do(t, http.MethodGet, base+"/"+id+"/export?format=xml", nil, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, http.MethodDelete, base+"/"+id, nil, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, http.MethodGet, base+"/"+id, nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, http.MethodDelete, base+"/"+id, nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, http.MethodDelete, base, nil, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, http.MethodGet, base, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[handlers.HistoryListResponse](t, resp).Entries)
}

func TestChannelEndpoints(t *testing.T) {
	srv := newTestServer(t, config.Config{})

	resp := do(t, http.MethodPost, srv.URL+"/api/v1/telegram", handlers.TelegramRequest{}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	age := 5
	resp = do(t, http.MethodPost, srv.URL+"/api/v1/telegram", handlers.TelegramRequest{
		Contacts: []models.TelegramContact{
			{AccountAge: &age, LastMessage: "Guaranteed profit with bitcoin"},
			{FirstName: "Alice", LastMessage: "see you tomorrow"},
		},
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[models.ChannelScanResponse](t, resp)
	assert.Len(t, body.Threats, 1)
	assert.Equal(t, 1, body.SafeCount)

	resp = do(t, http.MethodPost, srv.URL+"/api/v1/sms", handlers.SMSRequest{}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExposureEndpoints(t *testing.T) {
	srv := newTestServer(t, config.Config{})

	resp := do(t, http.MethodPost, srv.URL+"/api/v1/exposure", handlers.ExposureRequest{}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, http.MethodPost, srv.URL+"/api/v1/exposure", handlers.ExposureRequest{Email: "user@example.com"}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[handlers.ExposureResponse](t, resp)
	assert.Len(t, body.Exposures, 1)
	assert.Equal(t, 1, body.TotalBreaches)

	resp = do(t, http.MethodPost, srv.URL+"/api/v1/password", handlers.PasswordRequest{}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, http.MethodPost, srv.URL+"/api/v1/password", handlers.PasswordRequest{Password: "password"}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	pw := decode[models.PasswordExposure](t, resp)
	assert.True(t, pw.IsExposed)
	assert.Equal(t, 42, pw.ExposureCount)
}

func TestClassifyEndpoint(t *testing.T) {
	srv := newTestServer(t, config.Config{})

	resp := do(t, http.MethodPost, srv.URL+"/api/v1/classify", models.ClassificationRequest{Message: "  "}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, http.MethodPost, srv.URL+"/api/v1/classify", models.ClassificationRequest{Message: "hello there"}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[handlers.ClassifyResponse](t, resp)
	assert.Equal(t, "rules", body.Classifier)
}

func TestWaitlistEndpoints(t *testing.T) {
	srv := newTestServer(t, config.Config{})
	url := srv.URL + "/api/v1/waitlist"

	resp := do(t, http.MethodPost, url, handlers.WaitlistRequest{Email: "not-an-email"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Valid email is required", decode[handlers.ErrorResponse](t, resp).Error)

	resp = do(t, http.MethodPost, url, handlers.WaitlistRequest{Email: "a@b.com", Source: "billboard"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, http.MethodPost, url, handlers.WaitlistRequest{Email: "A@B.com", Source: models.WaitlistHomepage}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	joined := decode[models.WaitlistJoinResult](t, resp)
	assert.True(t, joined.Success)
	assert.Equal(t, 1, joined.Position)
	assert.False(t, joined.AlreadyJoined)

	resp = do(t, http.MethodPost, url, handlers.WaitlistRequest{Email: "a@b.com"}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	again := decode[models.WaitlistJoinResult](t, resp)
	assert.True(t, again.AlreadyJoined)
	assert.Equal(t, 1, again.Position)

	resp = do(t, http.MethodGet, url, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stats := decode[handlers.WaitlistStats](t, resp)
	assert.Equal(t, 1, stats.Total)
}

func TestAPIKeyAuth(t *testing.T) {
	cfg := config.Config{Auth: config.AuthConfig{Enabled: true, APIKeys: []string{"secret-key"}}}
	srv := newTestServer(t, cfg)
	url := srv.URL + "/api/v1/waitlist"

	resp := do(t, http.MethodGet, url, nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = do(t, http.MethodGet, url, nil, map[string]string{"Authorization": "Bearer wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = do(t, http.MethodGet, url, nil, map[string]string{"Authorization": "Bearer secret-key"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, http.MethodGet, url, nil, map[string]string{"X-API-Key": "secret-key"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// probes stay public
	resp = do(t, http.MethodGet, srv.URL+"/health", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRateLimitWithoutRedis(t *testing.T) {
	cfg := config.Config{RateLimit: config.RateLimitConfig{Enabled: true, RequestsPerMinute: 2}}
	srv := newTestServer(t, cfg)
	url := srv.URL + "/api/v1/waitlist"

	for range 2 {
		resp := do(t, http.MethodGet, url, nil, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "2", resp.Header.Get("X-RateLimit-Limit"))
	}

	resp := do(t, http.MethodGet, url, nil, nil)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))
}
