package station

import (
	"log/slog"
	"net/http"

	"github.com/bts-green-line/explorer/internal/api"
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

// GetStations handles GET /api/stations - returns the full station
// directory in operational order.
func (h *Handler) GetStations(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("StationHandler").Start(r.Context(), "GetStations")
	defer span.End()

	l := h.logger.With(slog.String("handler", "GetStations"))

	stations, err := h.service.GetStations(ctx)
	if err != nil {
		l.ErrorContext(ctx, "Failed to retrieve stations", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Service operation failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to fetch stations")
		return
	}

	api.SuccessResponse(w, r, http.StatusOK, stations)
}
