package event

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/bts-green-line/explorer/internal/api"
	"github.com/bts-green-line/explorer/internal/types"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

type Handler struct {
	logger  *slog.Logger
	service Service
}

func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:  logger,
		service: service,
	}
}

// GetEvents handles GET /api/events - calendar listing joined with place and
// station, newest event date first.
func (h *Handler) GetEvents(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("EventHandler").Start(r.Context(), "GetEvents")
	defer span.End()

	events, err := h.service.GetEvents(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to fetch events", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Service operation failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to fetch events")
		return
	}
	if events == nil {
		events = []types.EventWithPlace{}
	}

	api.SuccessResponse(w, r, http.StatusOK, events)
}

// CreateEvent handles POST /api/events/add (and POST /api/events).
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("EventHandler").Start(r.Context(), "CreateEvent")
	defer span.End()

	var req types.EventUpsertRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := api.ValidateStruct(req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.service.CreateEvent(ctx, req)
	if err != nil {
		if errors.Is(err, types.ErrValidation) {
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.ErrorContext(ctx, "Failed to create event", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Service operation failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to create event")
		return
	}

	api.SuccessResponse(w, r, http.StatusCreated, created)
}

// UpdateEvent handles PUT /api/events/{id}; missing ids report changes: 0.
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("EventHandler").Start(r.Context(), "UpdateEvent")
	defer span.End()

	eventID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid event ID format")
		return
	}

	var req types.EventUpsertRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := api.ValidateStruct(req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	changes, err := h.service.UpdateEvent(ctx, eventID, req)
	if err != nil {
		if errors.Is(err, types.ErrValidation) {
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.ErrorContext(ctx, "Failed to update event", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Service operation failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to update event")
		return
	}

	api.SuccessResponse(w, r, http.StatusOK, map[string]int64{"changes": changes})
}

// DeleteEvent handles DELETE /api/events/{id}.
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("EventHandler").Start(r.Context(), "DeleteEvent")
	defer span.End()

	eventID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid event ID format")
		return
	}

	changes, err := h.service.DeleteEvent(ctx, eventID)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to delete event", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Service operation failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to delete event")
		return
	}

	api.SuccessResponse(w, r, http.StatusOK, map[string]int64{"changes": changes})
}
