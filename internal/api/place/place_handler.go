package place

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

// GetPlacesByStation handles GET /api/places/{stationID} - public listing
// with aggregated review stats per place.
func (h *Handler) GetPlacesByStation(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlaceHandler").Start(r.Context(), "GetPlacesByStation")
	defer span.End()

	l := h.logger.With(slog.String("handler", "GetPlacesByStation"))

	stationID := chi.URLParam(r, "id")
	if stationID == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Station ID is required")
		return
	}

	places, err := h.service.GetPlacesByStation(ctx, stationID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to fetch places", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Service operation failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to fetch places")
		return
	}
	if places == nil {
		places = []types.PlaceWithStats{}
	}

	api.SuccessResponse(w, r, http.StatusOK, places)
}

// GetAllPlaces handles GET /api/places - unfiltered admin listing.
func (h *Handler) GetAllPlaces(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlaceHandler").Start(r.Context(), "GetAllPlaces")
	defer span.End()

	places, err := h.service.GetAllPlaces(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to fetch places", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Service operation failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to fetch places")
		return
	}
	if places == nil {
		places = []types.Place{}
	}

	api.SuccessResponse(w, r, http.StatusOK, places)
}

// CreatePlace handles POST /api/places and POST /api/places/add.
func (h *Handler) CreatePlace(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlaceHandler").Start(r.Context(), "CreatePlace")
	defer span.End()

	l := h.logger.With(slog.String("handler", "CreatePlace"))

	var req types.PlaceUpsertRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := api.ValidateStruct(req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.service.CreatePlace(ctx, req)
	if err != nil {
		if errors.Is(err, types.ErrValidation) {
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
			return
		}
		l.ErrorContext(ctx, "Failed to create place", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Service operation failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to create place")
		return
	}

	api.SuccessResponse(w, r, http.StatusCreated, created)
}

// UpdatePlace handles PUT /api/places/{id} with full-replace semantics.
// A missing id is reported as changes: 0, not an error.
func (h *Handler) UpdatePlace(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlaceHandler").Start(r.Context(), "UpdatePlace")
	defer span.End()

	placeID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid place ID format")
		return
	}

	var req types.PlaceUpsertRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := api.ValidateStruct(req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	changes, err := h.service.UpdatePlace(ctx, placeID, req)
	if err != nil {
		if errors.Is(err, types.ErrValidation) {
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.ErrorContext(ctx, "Failed to update place", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Service operation failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to update place")
		return
	}

	api.SuccessResponse(w, r, http.StatusOK, map[string]int64{"changes": changes})
}

// DeletePlace handles DELETE /api/places/{id}, cascading to reviews and
// events atomically. Deleting a missing id reports changes: 0.
func (h *Handler) DeletePlace(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlaceHandler").Start(r.Context(), "DeletePlace")
	defer span.End()

	placeID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid place ID format")
		return
	}

	changes, err := h.service.DeletePlace(ctx, placeID)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to delete place", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Service operation failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to delete place")
		return
	}

	api.SuccessResponse(w, r, http.StatusOK, map[string]int64{"changes": changes})
}
