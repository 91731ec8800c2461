package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conversion-guard/config"
	"conversion-guard/internal/model"
	"conversion-guard/internal/orchestrator"
	"conversion-guard/pkg/jwt"
	"conversion-guard/pkg/metrics"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type nopLogger struct{}

func (nopLogger) Debug(context.Context, ...any)          {}
func (nopLogger) Debugf(context.Context, string, ...any) {}
func (nopLogger) Info(context.Context, ...any)           {}
func (nopLogger) Infof(context.Context, string, ...any)  {}
func (nopLogger) Warn(context.Context, ...any)           {}
func (nopLogger) Warnf(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, ...any)          {}
func (nopLogger) Errorf(context.Context, string, ...any) {}
func (nopLogger) Fatal(context.Context, ...any)          {}
func (nopLogger) Fatalf(context.Context, string, ...any) {}

type stubRepo struct {
	actions []model.ConversionAction
}

func (r *stubRepo) ConversionActions(ctx context.Context) ([]model.ConversionAction, error) {
	return r.actions, nil
}

func (r *stubRepo) AnalyticsEvents(ctx context.Context) ([]model.AnalyticsEvent, error) {
	return nil, nil
}

func (r *stubRepo) StoreReleases(ctx context.Context, marketplace model.Marketplace) ([]model.StoreRelease, error) {
	return nil, nil
}

func (r *stubRepo) ReplaceConversionActions(ctx context.Context, rows []model.ConversionAction) error {
	return nil
}

func (r *stubRepo) AppendAnalyticsEvents(ctx context.Context, rows []model.AnalyticsEvent) error {
	return nil
}

func (r *stubRepo) AppendStoreReleases(ctx context.Context, marketplace model.Marketplace, rows []model.StoreRelease) error {
	return nil
}

func (r *stubRepo) WriteAlerts(ctx context.Context, alerts []model.Alert) (bool, error) {
	return false, nil
}

func (r *stubRepo) AlertsForAppSince(ctx context.Context, appID string, since time.Time) ([]model.Alert, error) {
	return nil, nil
}

func (r *stubRepo) LastRun(ctx context.Context, name, taskType string) (time.Time, error) {
	return time.Time{}, nil
}

func (r *stubRepo) UpdateLastRun(ctx context.Context, name, taskType string) error {
	return nil
}

func newTestServer(t *testing.T, repo *stubRepo, healthCheck func(ctx context.Context) error) *HTTPServer {
	t.Helper()

	l := nopLogger{}
	orch := orchestrator.New(nil, nil, nil, nil, repo, metrics.New(prometheus.NewRegistry()), l)

	srv, err := New(l, Config{
		Port:         8080,
		Environment:  "production",
		Orchestrator: orch,
		Repo:         repo,
		App: &config.Config{
			Environment: config.EnvironmentConfig{Name: "production"},
			Rules: config.RulesConfig{
				IntervalLookback: 24 * time.Hour,
				ReleaseGrace:     24 * time.Hour,
				StoreLookback:    168 * time.Hour,
			},
			Apps: map[string]config.AppConfig{
				"com.test.app": {Alerts: config.AlertConfig{Emails: []string{"ops@example.com"}}},
			},
		},
		Validator:   jwt.NewValidator(jwt.Config{SecretKey: testSecret}),
		HealthCheck: healthCheck,
	})
	require.NoError(t, err)
	require.NoError(t, srv.mapHandlers())
	return srv
}

func bearerToken(t *testing.T) string {
	t.Helper()
	token := gojwt.NewWithClaims(gojwt.SigningMethodHS256, gojwt.MapClaims{
		"sub": "admin",
		"exp": float64(time.Now().Add(time.Hour).Unix()),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + signed
}

func doRequest(srv *HTTPServer, method, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	srv.gin.ServeHTTP(w, req)
	return w
}

func TestNew_MissingDependencies(t *testing.T) {
	_, err := New(nopLogger{}, Config{Port: 8080})
	require.Error(t, err)
}

func TestLiveCheck(t *testing.T) {
	srv := newTestServer(t, &stubRepo{}, nil)

	w := doRequest(srv, http.MethodGet, "/live", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alive")
}

func TestHealthCheck_DatabaseDown(t *testing.T) {
	srv := newTestServer(t, &stubRepo{}, func(ctx context.Context) error {
		return context.DeadlineExceeded
	})

	w := doRequest(srv, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAPI_RequiresAuth(t *testing.T) {
	srv := newTestServer(t, &stubRepo{}, nil)

	for _, path := range []string{"/api/v1/apps", "/api/v1/events", "/api/v1/config"} {
		w := doRequest(srv, http.MethodGet, path, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}

	w := doRequest(srv, http.MethodPost, "/api/v1/run", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetAppIDs(t *testing.T) {
	repo := &stubRepo{actions: []model.ConversionAction{
		{AppID: "com.x.y", EventName: "purchase"},
		{AppID: "1072235449", EventName: "first_open"},
		{AppID: "com.x.y", EventName: "first_open"},
		{EventName: "orphan"},
	}}
	srv := newTestServer(t, repo, nil)

	w := doRequest(srv, http.MethodGet, "/api/v1/apps", bearerToken(t))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			AppIDs []string `json:"app_ids"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"1072235449", "com.x.y"}, resp.Data.AppIDs)
}

func TestGetEventNames(t *testing.T) {
	repo := &stubRepo{actions: []model.ConversionAction{
		{AppID: "com.x.y", EventName: "purchase"},
		{AppID: "com.x.y", EventName: "first_open"},
		{AppID: "1072235449", EventName: "purchase"},
	}}
	srv := newTestServer(t, repo, nil)

	w := doRequest(srv, http.MethodGet, "/api/v1/events", bearerToken(t))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			EventNames []string `json:"event_names"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"first_open", "purchase"}, resp.Data.EventNames)
}

func TestGetConfig_RedactsSecrets(t *testing.T) {
	srv := newTestServer(t, &stubRepo{}, nil)

	w := doRequest(srv, http.MethodGet, "/api/v1/config", bearerToken(t))
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, "com.test.app")
	assert.Contains(t, body, "168h")
	assert.NotContains(t, body, testSecret)
}

func TestTriggerRun(t *testing.T) {
	srv := newTestServer(t, &stubRepo{}, nil)

	w := doRequest(srv, http.MethodPost, "/api/v1/run", bearerToken(t))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "started")
}
