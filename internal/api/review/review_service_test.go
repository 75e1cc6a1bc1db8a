package review

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/bts-green-line/explorer/app/observability/metrics"
	"github.com/bts-green-line/explorer/internal/broadcast"
	"github.com/bts-green-line/explorer/internal/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	metrics.InitAppMetrics()
	os.Exit(m.Run())
}

// MockReviewRepository is a mock implementation of Repository
type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) ListByPlace(ctx context.Context, placeID uuid.UUID) ([]types.Review, error) {
	args := m.Called(ctx, placeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Review), args.Error(1)
}

func (m *MockReviewRepository) CreateReview(ctx context.Context, review types.Review) (uuid.UUID, error) {
	args := m.Called(ctx, review)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockReviewRepository) DeleteReview(ctx context.Context, reviewID uuid.UUID) (int64, error) {
	args := m.Called(ctx, reviewID)
	return args.Get(0).(int64), args.Error(1)
}

// MockPlaceRepository mocks the place lookup used to enrich broadcasts.
type MockPlaceRepository struct {
	mock.Mock
}

func (m *MockPlaceRepository) ListAllPlaces(ctx context.Context) ([]types.Place, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Place), args.Error(1)
}

func (m *MockPlaceRepository) ListPlacesByStation(ctx context.Context, stationID string) ([]types.PlaceWithStats, error) {
	args := m.Called(ctx, stationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.PlaceWithStats), args.Error(1)
}

func (m *MockPlaceRepository) GetPlaceWithStats(ctx context.Context, placeID uuid.UUID) (*types.PlaceWithStats, error) {
	args := m.Called(ctx, placeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.PlaceWithStats), args.Error(1)
}

func (m *MockPlaceRepository) CreatePlace(ctx context.Context, place types.Place) (uuid.UUID, error) {
	args := m.Called(ctx, place)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockPlaceRepository) UpdatePlace(ctx context.Context, place types.Place) (int64, error) {
	args := m.Called(ctx, place)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPlaceRepository) DeletePlace(ctx context.Context, placeID uuid.UUID) (int64, error) {
	args := m.Called(ctx, placeID)
	return args.Get(0).(int64), args.Error(1)
}

// recordingNotifier captures published notifications for assertions.
type recordingNotifier struct {
	events   []string
	payloads []any
}

func (n *recordingNotifier) Notify(event string, payload any) {
	n.events = append(n.events, event)
	n.payloads = append(n.payloads, payload)
}

func setupReviewServiceTest() (*ServiceImpl, *MockReviewRepository, *MockPlaceRepository, *recordingNotifier) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mockRepo := new(MockReviewRepository)
	mockPlaceRepo := new(MockPlaceRepository)
	notifier := &recordingNotifier{}
	service := NewService(mockRepo, mockPlaceRepo, notifier, logger)
	return service, mockRepo, mockPlaceRepo, notifier
}

func TestServiceImpl_AddReview(t *testing.T) {
	ctx := context.Background()
	placeID := uuid.New()
	req := types.CreateReviewRequest{User: "Nok", Rating: 5, Comment: "Great"}

	t.Run("success publishes one review_updated with the refreshed place", func(t *testing.T) {
		service, mockRepo, mockPlaceRepo, notifier := setupReviewServiceTest()
		reviewID := uuid.New()
		avg := 4.5
		updated := &types.PlaceWithStats{AverageRating: &avg, ReviewCount: 2}
		updated.ID = placeID
		mockRepo.On("CreateReview", ctx, mock.MatchedBy(func(rv types.Review) bool {
			return rv.PlaceID == placeID && rv.User == "Nok" && rv.Rating == 5
		})).Return(reviewID, nil).Once()
		mockPlaceRepo.On("GetPlaceWithStats", ctx, placeID).Return(updated, nil).Once()

		review, err := service.AddReview(ctx, placeID, req)
		require.NoError(t, err)
		assert.Equal(t, reviewID, review.ID)

		require.Len(t, notifier.events, 1)
		assert.Equal(t, broadcast.EventReviewUpdated, notifier.events[0])
		payload, ok := notifier.payloads[0].(broadcast.ReviewUpdatedPayload)
		require.True(t, ok)
		assert.Equal(t, placeID, payload.PlaceID)
		assert.Equal(t, updated, payload.Place)
		mockRepo.AssertExpectations(t)
		mockPlaceRepo.AssertExpectations(t)
	})

	t.Run("failed insert publishes nothing", func(t *testing.T) {
		service, mockRepo, mockPlaceRepo, notifier := setupReviewServiceTest()
		mockRepo.On("CreateReview", ctx, mock.Anything).
			Return(uuid.Nil, types.ErrValidation).Once()

		_, err := service.AddReview(ctx, placeID, req)
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrValidation))
		assert.Empty(t, notifier.events)
		mockPlaceRepo.AssertNotCalled(t, "GetPlaceWithStats", mock.Anything, mock.Anything)
		mockRepo.AssertExpectations(t)
	})

	t.Run("place lookup failure still publishes with the id only", func(t *testing.T) {
		service, mockRepo, mockPlaceRepo, notifier := setupReviewServiceTest()
		reviewID := uuid.New()
		mockRepo.On("CreateReview", ctx, mock.Anything).Return(reviewID, nil).Once()
		mockPlaceRepo.On("GetPlaceWithStats", ctx, placeID).
			Return(nil, errors.New("read replica down")).Once()

		_, err := service.AddReview(ctx, placeID, req)
		require.NoError(t, err)

		require.Len(t, notifier.events, 1)
		payload := notifier.payloads[0].(broadcast.ReviewUpdatedPayload)
		assert.Equal(t, placeID, payload.PlaceID)
		assert.Nil(t, payload.Place)
		mockRepo.AssertExpectations(t)
		mockPlaceRepo.AssertExpectations(t)
	})
}

func TestServiceImpl_DeleteReview(t *testing.T) {
	ctx := context.Background()
	reviewID := uuid.New()

	t.Run("success", func(t *testing.T) {
		service, mockRepo, _, _ := setupReviewServiceTest()
		mockRepo.On("DeleteReview", ctx, reviewID).Return(int64(1), nil).Once()

		err := service.DeleteReview(ctx, reviewID)
		require.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("missing review maps to not found", func(t *testing.T) {
		service, mockRepo, _, _ := setupReviewServiceTest()
		mockRepo.On("DeleteReview", ctx, reviewID).Return(int64(0), nil).Once()

		err := service.DeleteReview(ctx, reviewID)
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrNotFound))
		mockRepo.AssertExpectations(t)
	})

	t.Run("repository error", func(t *testing.T) {
		service, mockRepo, _, _ := setupReviewServiceTest()
		repoErr := errors.New("database connection error")
		mockRepo.On("DeleteReview", ctx, reviewID).Return(int64(0), repoErr).Once()

		err := service.DeleteReview(ctx, reviewID)
		require.Error(t, err)
		assert.True(t, errors.Is(err, repoErr))
		mockRepo.AssertExpectations(t)
	})
}

func TestServiceImpl_GetReviewsForPlace(t *testing.T) {
	ctx := context.Background()
	placeID := uuid.New()

	t.Run("success", func(t *testing.T) {
		service, mockRepo, _, _ := setupReviewServiceTest()
		expected := []types.Review{
			{ID: uuid.New(), PlaceID: placeID, User: "Nok", Rating: 5},
			{ID: uuid.New(), PlaceID: placeID, User: "Ploy", Rating: 3},
		}
		mockRepo.On("ListByPlace", ctx, placeID).Return(expected, nil).Once()

		reviews, err := service.GetReviewsForPlace(ctx, placeID)
		require.NoError(t, err)
		assert.Equal(t, expected, reviews)
		mockRepo.AssertExpectations(t)
	})

	t.Run("repository error", func(t *testing.T) {
		service, mockRepo, _, _ := setupReviewServiceTest()
		repoErr := errors.New("query timeout")
		mockRepo.On("ListByPlace", ctx, placeID).Return(nil, repoErr).Once()

		_, err := service.GetReviewsForPlace(ctx, placeID)
		require.Error(t, err)
		assert.True(t, errors.Is(err, repoErr))
		mockRepo.AssertExpectations(t)
	})
}
