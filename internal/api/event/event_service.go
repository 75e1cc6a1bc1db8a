package event

import (
	"context"
	"fmt"
	"log/slog"
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
	GetEvents(ctx context.Context) ([]types.EventWithPlace, error)
	CreateEvent(ctx context.Context, req types.EventUpsertRequest) (*types.Event, error)
	UpdateEvent(ctx context.Context, eventID uuid.UUID, req types.EventUpsertRequest) (int64, error)
	DeleteEvent(ctx context.Context, eventID uuid.UUID) (int64, error)
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

func (s *ServiceImpl) GetEvents(ctx context.Context) ([]types.EventWithPlace, error) {
	ctx, span := otel.Tracer("EventService").Start(ctx, "GetEvents")
	defer span.End()

	events, err := s.repo.ListEvents(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to list events")
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

func (s *ServiceImpl) CreateEvent(ctx context.Context, req types.EventUpsertRequest) (*types.Event, error) {
	ctx, span := otel.Tracer("EventService").Start(ctx, "CreateEvent", trace.WithAttributes(
		attribute.String("place.id", req.PlaceID.String()),
		attribute.String("event.title", req.Title),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "CreateEvent"))

	event := types.Event{
		ID:          uuid.New(),
		PlaceID:     req.PlaceID,
		EventDate:   req.EventDate,
		Title:       req.Title,
		Description: req.Description,
		CreatedAt:   time.Now(),
	}

	id, err := s.repo.CreateEvent(ctx, event)
	if err != nil {
		l.ErrorContext(ctx, "Failed to create event", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create event")
		return nil, err
	}
	event.ID = id

	l.InfoContext(ctx, "Event created", slog.String("event_id", id.String()))
	return &event, nil
}

// UpdateEvent has full-replace semantics, like place updates.
func (s *ServiceImpl) UpdateEvent(ctx context.Context, eventID uuid.UUID, req types.EventUpsertRequest) (int64, error) {
	ctx, span := otel.Tracer("EventService").Start(ctx, "UpdateEvent", trace.WithAttributes(
		attribute.String("event.id", eventID.String()),
	))
	defer span.End()

	event := types.Event{
		ID:          eventID,
		PlaceID:     req.PlaceID,
		EventDate:   req.EventDate,
		Title:       req.Title,
		Description: req.Description,
	}

	changes, err := s.repo.UpdateEvent(ctx, event)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to update event")
		return 0, err
	}
	return changes, nil
}

func (s *ServiceImpl) DeleteEvent(ctx context.Context, eventID uuid.UUID) (int64, error) {
	ctx, span := otel.Tracer("EventService").Start(ctx, "DeleteEvent", trace.WithAttributes(
		attribute.String("event.id", eventID.String()),
	))
	defer span.End()

	changes, err := s.repo.DeleteEvent(ctx, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to delete event")
		return 0, err
	}
	return changes, nil
}
