package review

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bts-green-line/explorer/app/observability/metrics"
	"github.com/bts-green-line/explorer/internal/api/place"
	"github.com/bts-green-line/explorer/internal/broadcast"
	"github.com/bts-green-line/explorer/internal/types"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	GetReviewsForPlace(ctx context.Context, placeID uuid.UUID) ([]types.Review, error)
	AddReview(ctx context.Context, placeID uuid.UUID, req types.CreateReviewRequest) (*types.Review, error)
	DeleteReview(ctx context.Context, reviewID uuid.UUID) error
}

// ServiceImpl persists reviews and publishes a review_updated notification on
// every successful insert.
type ServiceImpl struct {
	logger    *slog.Logger
	repo      Repository
	placeRepo place.Repository
	notifier  broadcast.Notifier
}

func NewService(repo Repository, placeRepo place.Repository, notifier broadcast.Notifier, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:    logger,
		repo:      repo,
		placeRepo: placeRepo,
		notifier:  notifier,
	}
}

func (s *ServiceImpl) GetReviewsForPlace(ctx context.Context, placeID uuid.UUID) ([]types.Review, error) {
	ctx, span := otel.Tracer("ReviewService").Start(ctx, "GetReviewsForPlace", trace.WithAttributes(
		attribute.String("place.id", placeID.String()),
	))
	defer span.End()

	reviews, err := s.repo.ListByPlace(ctx, placeID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to list reviews")
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

// AddReview persists a review and, on success only, publishes one
// review_updated message to all connected sessions. A failed insert (place
// missing, store error) never triggers a broadcast.
func (s *ServiceImpl) AddReview(ctx context.Context, placeID uuid.UUID, req types.CreateReviewRequest) (*types.Review, error) {
	ctx, span := otel.Tracer("ReviewService").Start(ctx, "AddReview", trace.WithAttributes(
		attribute.String("place.id", placeID.String()),
		attribute.Int("review.rating", req.Rating),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "AddReview"), slog.String("placeID", placeID.String()))

	review := types.Review{
		ID:        uuid.New(),
		PlaceID:   placeID,
		User:      req.User,
		Rating:    req.Rating,
		Comment:   req.Comment,
		CreatedAt: time.Now(),
	}

	id, err := s.repo.CreateReview(ctx, review)
	if err != nil {
		l.ErrorContext(ctx, "Failed to create review", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create review")
		return nil, err
	}
	review.ID = id
	metrics.Get().ReviewsCreatedTotal.Add(ctx, 1)

	payload := broadcast.ReviewUpdatedPayload{PlaceID: placeID}
	// Attach the refreshed place so clients can update without a re-fetch;
	// the notification still goes out with just the id if the fetch fails.
	if updated, err := s.placeRepo.GetPlaceWithStats(ctx, placeID); err == nil {
		payload.Place = updated
	} else {
		l.WarnContext(ctx, "Could not load updated place for broadcast", slog.Any("error", err))
	}

	s.notifier.Notify(broadcast.EventReviewUpdated, payload)
	metrics.Get().BroadcastsSentTotal.Add(ctx, 1)

	l.InfoContext(ctx, "Review created", slog.String("review_id", id.String()))
	return &review, nil
}

func (s *ServiceImpl) DeleteReview(ctx context.Context, reviewID uuid.UUID) error {
	ctx, span := otel.Tracer("ReviewService").Start(ctx, "DeleteReview", trace.WithAttributes(
		attribute.String("review.id", reviewID.String()),
	))
	defer span.End()

	changes, err := s.repo.DeleteReview(ctx, reviewID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to delete review")
		return fmt.Errorf("failed to delete review: %w", err)
	}
	if changes == 0 {
		return types.ErrNotFound
	}
	return nil
}
