// Package httpapi assembles the service's HTTP surface: health and metrics on
// the open router, everything else behind JWT auth and the admin role.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	audithandler "mentorlab/internal/audit/handler"
	monitorhandler "mentorlab/internal/monitor/handler"
	"mentorlab/internal/platform/middleware"
	"mentorlab/pkg/platform/httputil"
)

const requestTimeout = 60 * time.Second

// Deps carries everything the router mounts.
type Deps struct {
	Logger    *slog.Logger
	Validator middleware.JWTValidator

	Audit   *audithandler.Handler
	Monitor *monitorhandler.Handler

	// HealthChecks run on /healthz; a failing check turns the status to 503.
	HealthChecks map[string]func(ctx context.Context) error
}

// NewRouter wires the middleware chain and mounts all endpoints.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", handleHealth(deps.HealthChecks))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/admin", func(admin chi.Router) {
		admin.Use(middleware.RequireAuth(deps.Validator, deps.Logger))
		admin.Use(middleware.RequireAdmin(deps.Logger))

		deps.Audit.Register(admin)
		deps.Monitor.Register(admin)
	})

	return r
}

func handleHealth(checks map[string]func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		status := http.StatusOK
		body := map[string]string{"status": "ok"}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				body["status"] = "degraded"
				body[name] = err.Error()
			}
		}
		httputil.WriteJSON(w, status, body)
	}
}
