package place

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/bts-green-line/explorer/internal/types"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	GetPlacesByStation(ctx context.Context, stationID string) ([]types.PlaceWithStats, error)
	GetAllPlaces(ctx context.Context) ([]types.Place, error)
	CreatePlace(ctx context.Context, req types.PlaceUpsertRequest) (*types.Place, error)
	UpdatePlace(ctx context.Context, placeID uuid.UUID, req types.PlaceUpsertRequest) (int64, error)
	DeletePlace(ctx context.Context, placeID uuid.UUID) (int64, error)
}

type ServiceImpl struct {
	logger *slog.Logger
	repo   Repository
}

func NewService(repo Repository, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		repo:   repo,
	}
}

func (s *ServiceImpl) GetPlacesByStation(ctx context.Context, stationID string) ([]types.PlaceWithStats, error) {
	ctx, span := otel.Tracer("PlaceService").Start(ctx, "GetPlacesByStation", trace.WithAttributes(
		attribute.String("station.id", stationID),
	))
	defer span.End()

	places, err := s.repo.ListPlacesByStation(ctx, stationID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to list places")
		return nil, fmt.Errorf("failed to list places for station: %w", err)
	}
	return places, nil
}

func (s *ServiceImpl) GetAllPlaces(ctx context.Context) ([]types.Place, error) {
	ctx, span := otel.Tracer("PlaceService").Start(ctx, "GetAllPlaces")
	defer span.End()

	places, err := s.repo.ListAllPlaces(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to list places")
		return nil, fmt.Errorf("failed to list places: %w", err)
	}
	return places, nil
}

func (s *ServiceImpl) CreatePlace(ctx context.Context, req types.PlaceUpsertRequest) (*types.Place, error) {
	ctx, span := otel.Tracer("PlaceService").Start(ctx, "CreatePlace", trace.WithAttributes(
		attribute.String("place.name", req.Name),
		attribute.String("station.id", req.StationID),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "CreatePlace"))

	place := buildPlace(req)
	place.ID = uuid.New()
	place.CreatedAt = time.Now()

	id, err := s.repo.CreatePlace(ctx, place)
	if err != nil {
		l.ErrorContext(ctx, "Failed to create place", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create place")
		return nil, err
	}
	place.ID = id

	l.InfoContext(ctx, "Place created", slog.String("place_id", id.String()))
	return &place, nil
}

// UpdatePlace has full-replace semantics: every column is overwritten with
// the request's values, so callers must resend unchanged fields.
func (s *ServiceImpl) UpdatePlace(ctx context.Context, placeID uuid.UUID, req types.PlaceUpsertRequest) (int64, error) {
	ctx, span := otel.Tracer("PlaceService").Start(ctx, "UpdatePlace", trace.WithAttributes(
		attribute.String("place.id", placeID.String()),
	))
	defer span.End()

	place := buildPlace(req)
	place.ID = placeID

	changes, err := s.repo.UpdatePlace(ctx, place)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to update place")
		return 0, err
	}
	return changes, nil
}

func (s *ServiceImpl) DeletePlace(ctx context.Context, placeID uuid.UUID) (int64, error) {
	ctx, span := otel.Tracer("PlaceService").Start(ctx, "DeletePlace", trace.WithAttributes(
		attribute.String("place.id", placeID.String()),
	))
	defer span.End()

	changes, err := s.repo.DeletePlace(ctx, placeID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to delete place")
		return 0, err
	}
	s.logger.InfoContext(ctx, "Place deleted",
		slog.String("place_id", placeID.String()), slog.Int64("changes", changes))
	return changes, nil
}

func buildPlace(req types.PlaceUpsertRequest) types.Place {
	gallery := req.Gallery
	if gallery == nil {
		gallery = []string{}
	}
	contact := req.Contact
	if contact == nil {
		contact = map[string]string{}
	}
	return types.Place{
		StationID:    req.StationID,
		Name:         req.Name,
		Category:     req.Category,
		Description:  req.Description,
		Image:        req.Image,
		Gallery:      gallery,
		OpeningHours: req.OpeningHours,
		TravelInfo:   req.TravelInfo,
		Phone:        req.Phone,
		Contact:      contact,
		Location:     ParseLocation(req.Latitude, req.Longitude),
	}
}

// ParseLocation turns form-input coordinate strings into a structured pair.
// Both values must be present and numeric; anything else is treated as
// absent, not as an error.
func ParseLocation(latStr, lngStr string) *types.LatLng {
	if latStr == "" || lngStr == "" {
		return nil
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return nil
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return nil
	}
	return &types.LatLng{Lat: lat, Lng: lng}
}
