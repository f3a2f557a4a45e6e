package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mentorlab/internal/audit"
	audithandler "mentorlab/internal/audit/handler"
	auditmem "mentorlab/internal/audit/store/memory"
	"mentorlab/internal/monitor"
	monitorhandler "mentorlab/internal/monitor/handler"
	monitormem "mentorlab/internal/monitor/store/memory"
	"mentorlab/internal/platform/middleware"
	"mentorlab/internal/users"
	id "mentorlab/pkg/domain"
)

const signingKey = "test-signing-key"

type noopRunner struct{}

func (noopRunner) Run(context.Context) error { return nil }

func newRouter(t *testing.T, checks map[string]func(ctx context.Context) error) http.Handler {
	t.Helper()

	logger := slog.Default()
	auditStore := auditmem.NewInMemoryStore()
	recorder := audit.NewRecorder(auditStore)
	t.Cleanup(recorder.Close)

	svc := monitor.NewService(monitormem.NewInMemoryStore(), users.NewInMemory())

	return NewRouter(Deps{
		Logger:       logger,
		Validator:    middleware.NewHMACValidator(signingKey),
		Audit:        audithandler.New(auditStore, logger),
		Monitor:      monitorhandler.New(svc, noopRunner{}, recorder, logger, nil),
		HealthChecks: checks,
	})
}

func signToken(t *testing.T, role id.Role) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  id.NewUserID().String(),
		"role": role.String(),
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(signingKey))
	require.NoError(t, err)
	return signed
}

func TestHealthz(t *testing.T) {
	router := newRouter(t, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthz_FailingCheckDegrades(t *testing.T) {
	router := newRouter(t, map[string]func(ctx context.Context) error{
		"postgres": func(context.Context) error { return errors.New("connection refused") },
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpointIsOpen(t *testing.T) {
	router := newRouter(t, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdmin_RequiresToken(t *testing.T) {
	router := newRouter(t, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/monitored-users", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdmin_RejectsBadToken(t *testing.T) {
	router := newRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/admin/monitored-users", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdmin_RejectsNonAdminRole(t *testing.T) {
	router := newRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/admin/monitored-users", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, id.RoleMentor))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdmin_AllowsAdmin(t *testing.T) {
	router := newRouter(t, nil)

	for _, path := range []string{
		"/admin/monitored-users",
		"/admin/monitored-users/active",
		"/admin/audit-logs/recent",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, id.RoleAdmin))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}
