package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	id "mentorlab/pkg/domain"
	dErrors "mentorlab/pkg/domain-errors"
	"mentorlab/pkg/platform/httputil"
	"mentorlab/pkg/requestcontext"

	"mentorlab/internal/monitor"
	"mentorlab/internal/platform/metrics"
)

// Service is the registry surface the handler needs.
type Service interface {
	ListAll(ctx context.Context) ([]monitor.EnrichedMonitoredUser, error)
	ListActive(ctx context.Context) ([]monitor.EnrichedMonitoredUser, error)
	Get(ctx context.Context, recordID id.MonitoredUserID) (monitor.EnrichedMonitoredUser, error)
	Resolve(ctx context.Context, recordID id.MonitoredUserID, resolvedBy id.UserID, notes string) (monitor.EnrichedMonitoredUser, error)
	Update(ctx context.Context, recordID id.MonitoredUserID, patch monitor.UpdatePatch) (monitor.EnrichedMonitoredUser, error)
}

// Runner triggers one aggregation run; the manual path shares it with the
// scheduler.
type Runner interface {
	Run(ctx context.Context) error
}

// Recorder is the audit hook for operator actions.
type Recorder interface {
	Record(ctx context.Context, actorID id.UserID, action id.Action, entityType id.EntityType, entityID, details string)
}

// Handler serves the admin monitored-user endpoints.
type Handler struct {
	service  Service
	runner   Runner
	recorder Recorder
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// New constructs a monitor handler with its dependencies.
func New(service Service, runner Runner, recorder Recorder, logger *slog.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{
		service:  service,
		runner:   runner,
		recorder: recorder,
		logger:   logger,
		metrics:  metrics,
	}
}

// Register mounts monitored-user endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/monitored-users", h.HandleListAll)
	r.Get("/monitored-users/active", h.HandleListActive)
	r.Get("/monitored-users/{recordID}", h.HandleGet)
	r.Post("/monitored-users/{recordID}/resolve", h.HandleResolve)
	r.Patch("/monitored-users/{recordID}", h.HandleUpdate)
	r.Post("/monitoring/run", h.HandleRunNow)
}

// HandleListAll handles GET /admin/monitored-users.
func (h *Handler) HandleListAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	records, err := h.service.ListAll(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list monitored users failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRecords(records))
}

// HandleListActive handles GET /admin/monitored-users/active.
func (h *Handler) HandleListActive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	records, err := h.service.ListActive(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list active monitored users failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRecords(records))
}

// HandleGet handles GET /admin/monitored-users/{recordID}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	recordID, err := id.ParseMonitoredUserID(chi.URLParam(r, "recordID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	record, err := h.service.Get(ctx, recordID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRecord(record))
}

// HandleResolve handles POST /admin/monitored-users/{recordID}/resolve.
func (h *Handler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	operator := requestcontext.UserID(ctx)
	if operator.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	recordID, err := id.ParseMonitoredUserID(chi.URLParam(r, "recordID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[ResolveRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	record, err := h.service.Resolve(ctx, recordID, operator, req.Notes)
	if err != nil {
		h.logger.ErrorContext(ctx, "resolve monitored user failed",
			"request_id", requestID,
			"record_id", recordID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.MonitoredResolved.Inc()
	}
	h.recorder.Record(ctx, operator, id.ActionUpdate, id.EntityUser, record.UserID.String(),
		"resolved monitoring record "+recordID.String())

	httputil.WriteJSON(w, http.StatusOK, FromRecord(record))
}

// HandleUpdate handles PATCH /admin/monitored-users/{recordID}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	operator := requestcontext.UserID(ctx)
	if operator.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	recordID, err := id.ParseMonitoredUserID(chi.URLParam(r, "recordID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[UpdateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	record, err := h.service.Update(ctx, recordID, req.Patch())
	if err != nil {
		h.logger.ErrorContext(ctx, "update monitored user failed",
			"request_id", requestID,
			"record_id", recordID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.recorder.Record(ctx, operator, id.ActionUpdate, id.EntityUser, record.UserID.String(),
		"amended monitoring record "+recordID.String())

	httputil.WriteJSON(w, http.StatusOK, FromRecord(record))
}

// HandleRunNow handles POST /admin/monitoring/run. Unlike the scheduled path,
// the manual trigger surfaces pass errors to the operator.
func (h *Handler) HandleRunNow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	if err := h.runner.Run(ctx); err != nil {
		h.logger.ErrorContext(ctx, "manual aggregation finished with errors",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "aggregation finished with errors"))
		return
	}

	h.logger.InfoContext(ctx, "manual aggregation complete",
		"request_id", requestcontext.RequestID(ctx),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusAccepted, RunResponse{Status: "completed"})
}
