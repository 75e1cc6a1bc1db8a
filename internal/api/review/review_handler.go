package review

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

// GetReviewsForPlace handles GET /api/reviews/place/{placeID}, newest first.
func (h *Handler) GetReviewsForPlace(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ReviewHandler").Start(r.Context(), "GetReviewsForPlace")
	defer span.End()

	placeID, err := uuid.Parse(chi.URLParam(r, "placeID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid place ID format")
		return
	}

	reviews, err := h.service.GetReviewsForPlace(ctx, placeID)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to fetch reviews", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Service operation failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to fetch reviews")
		return
	}
	if reviews == nil {
		reviews = []types.Review{}
	}

	api.SuccessResponse(w, r, http.StatusOK, reviews)
}

// AddReview handles POST /api/places/{placeID}/reviews. There is no auth
// gate; any caller can submit. A successful insert triggers the broadcast.
func (h *Handler) AddReview(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ReviewHandler").Start(r.Context(), "AddReview")
	defer span.End()

	l := h.logger.With(slog.String("handler", "AddReview"))

	placeID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid place ID format")
		return
	}

	var req types.CreateReviewRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := api.ValidateStruct(req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.service.AddReview(ctx, placeID, req)
	if err != nil {
		if errors.Is(err, types.ErrValidation) {
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
			return
		}
		l.ErrorContext(ctx, "Failed to add review", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Service operation failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to add review")
		return
	}

	api.MessageResponse(w, r, http.StatusCreated, "Review added successfully", created)
}

// DeleteReview handles DELETE /api/reviews/{id}; a missing id is a 404.
func (h *Handler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ReviewHandler").Start(r.Context(), "DeleteReview")
	defer span.End()

	reviewID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid review ID format")
		return
	}

	if err := h.service.DeleteReview(ctx, reviewID); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Review not found")
			return
		}
		h.logger.ErrorContext(ctx, "Failed to delete review", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Service operation failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to delete review")
		return
	}

	api.SuccessResponse(w, r, http.StatusOK, map[string]int64{"changes": 1})
}
