package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	id "mentorlab/pkg/domain"
	dErrors "mentorlab/pkg/domain-errors"
	"mentorlab/pkg/platform/httputil"
	"mentorlab/pkg/requestcontext"

	"mentorlab/internal/audit"
)

// maxQueryLimit caps admin reads; the log grows without bound.
const (
	defaultQueryLimit = 100
	maxQueryLimit     = 1000
)

// Handler serves the admin audit log read endpoints. Routes are mounted
// behind the admin middleware; the handler itself only reads.
type Handler struct {
	store  audit.Store
	logger *slog.Logger
}

// New constructs an audit handler over the given store.
func New(store audit.Store, logger *slog.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// Register mounts audit endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/audit-logs/recent", h.HandleRecent)
	r.Get("/audit-logs/actor/{actorID}", h.HandleByActor)
	r.Get("/audit-logs/entity/{entityType}/{entityID}", h.HandleByEntity)
}

// HandleRecent handles GET /admin/audit-logs/recent.
func (h *Handler) HandleRecent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	window, err := parseTimeRange(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	limit, err := parseLimit(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	events, err := h.store.QueryByTimeRange(ctx, window.start, window.end, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "audit log query failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to query audit log"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromEvents(events))
}

// HandleByActor handles GET /admin/audit-logs/actor/{actorID}.
func (h *Handler) HandleByActor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actorID, err := id.ParseUserID(chi.URLParam(r, "actorID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	limit, err := parseLimit(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	events, err := h.store.QueryByActor(ctx, actorID, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "audit log query failed",
			"request_id", requestcontext.RequestID(ctx),
			"actor_id", actorID.String(),
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to query audit log"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromEvents(events))
}

// HandleByEntity handles GET /admin/audit-logs/entity/{entityType}/{entityID}.
func (h *Handler) HandleByEntity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	entityType, err := id.ParseEntityType(chi.URLParam(r, "entityType"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	entityID := chi.URLParam(r, "entityID")
	if entityID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "entity id is required"))
		return
	}
	limit, err := parseLimit(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	events, err := h.store.QueryByEntity(ctx, entityType, entityID, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "audit log query failed",
			"request_id", requestcontext.RequestID(ctx),
			"entity_type", entityType.String(),
			"entity_id", entityID,
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to query audit log"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromEvents(events))
}

// parseLimit reads the optional ?limit= query parameter.
func parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultQueryLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "limit must be a positive integer")
	}
	if limit > maxQueryLimit {
		limit = maxQueryLimit
	}
	return limit, nil
}
