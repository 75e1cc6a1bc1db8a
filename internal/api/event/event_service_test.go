package event

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/bts-green-line/explorer/internal/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockEventRepository is a mock implementation of Repository
type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) ListEvents(ctx context.Context) ([]types.EventWithPlace, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.EventWithPlace), args.Error(1)
}

func (m *MockEventRepository) CreateEvent(ctx context.Context, event types.Event) (uuid.UUID, error) {
	args := m.Called(ctx, event)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockEventRepository) UpdateEvent(ctx context.Context, event types.Event) (int64, error) {
	args := m.Called(ctx, event)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockEventRepository) DeleteEvent(ctx context.Context, eventID uuid.UUID) (int64, error) {
	args := m.Called(ctx, eventID)
	return args.Get(0).(int64), args.Error(1)
}

func setupEventServiceTest() (*ServiceImpl, *MockEventRepository) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mockRepo := new(MockEventRepository)
	service := NewService(mockRepo, logger)
	return service, mockRepo
}

func TestServiceImpl_GetEvents(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		service, mockRepo := setupEventServiceTest()
		expected := []types.EventWithPlace{
			{
				Event: types.Event{
					ID:        uuid.New(),
					PlaceID:   uuid.New(),
					EventDate: types.NewDate(2026, time.September, 12),
					Title:     "Night Market",
				},
				PlaceName:   "Chatuchak Weekend Market",
				StationID:   "N8",
				StationName: "Mo Chit",
			},
		}
		mockRepo.On("ListEvents", ctx).Return(expected, nil).Once()

		events, err := service.GetEvents(ctx)
		require.NoError(t, err)
		assert.Equal(t, expected, events)
		mockRepo.AssertExpectations(t)
	})

	t.Run("repository error", func(t *testing.T) {
		service, mockRepo := setupEventServiceTest()
		repoErr := errors.New("database connection error")
		mockRepo.On("ListEvents", ctx).Return(nil, repoErr).Once()

		_, err := service.GetEvents(ctx)
		require.Error(t, err)
		assert.True(t, errors.Is(err, repoErr))
		mockRepo.AssertExpectations(t)
	})
}

func TestServiceImpl_CreateEvent(t *testing.T) {
	ctx := context.Background()
	placeID := uuid.New()
	req := types.EventUpsertRequest{
		PlaceID:   placeID,
		EventDate: types.NewDate(2026, time.October, 31),
		Title:     "Halloween Pop-up",
	}

	t.Run("success assigns id and timestamp", func(t *testing.T) {
		service, mockRepo := setupEventServiceTest()
		newID := uuid.New()
		mockRepo.On("CreateEvent", ctx, mock.MatchedBy(func(ev types.Event) bool {
			return ev.PlaceID == placeID &&
				ev.Title == "Halloween Pop-up" &&
				ev.EventDate.String() == "2026-10-31"
		})).Return(newID, nil).Once()

		created, err := service.CreateEvent(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, newID, created.ID)
		assert.False(t, created.CreatedAt.IsZero())
		mockRepo.AssertExpectations(t)
	})

	t.Run("unknown place returns validation error", func(t *testing.T) {
		service, mockRepo := setupEventServiceTest()
		mockRepo.On("CreateEvent", ctx, mock.Anything).
			Return(uuid.Nil, types.ErrValidation).Once()

		_, err := service.CreateEvent(ctx, req)
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrValidation))
		mockRepo.AssertExpectations(t)
	})
}

func TestServiceImpl_UpdateEvent(t *testing.T) {
	ctx := context.Background()
	eventID := uuid.New()
	req := types.EventUpsertRequest{
		PlaceID:   uuid.New(),
		EventDate: types.NewDate(2026, time.November, 1),
		Title:     "Rescheduled",
	}

	t.Run("success reports affected rows", func(t *testing.T) {
		service, mockRepo := setupEventServiceTest()
		mockRepo.On("UpdateEvent", ctx, mock.MatchedBy(func(ev types.Event) bool {
			return ev.ID == eventID && ev.Title == "Rescheduled"
		})).Return(int64(1), nil).Once()

		changes, err := service.UpdateEvent(ctx, eventID, req)
		require.NoError(t, err)
		assert.Equal(t, int64(1), changes)
		mockRepo.AssertExpectations(t)
	})

	t.Run("missing event yields zero changes without error", func(t *testing.T) {
		service, mockRepo := setupEventServiceTest()
		mockRepo.On("UpdateEvent", ctx, mock.Anything).Return(int64(0), nil).Once()

		changes, err := service.UpdateEvent(ctx, eventID, req)
		require.NoError(t, err)
		assert.Equal(t, int64(0), changes)
		mockRepo.AssertExpectations(t)
	})
}

func TestServiceImpl_DeleteEvent(t *testing.T) {
	ctx := context.Background()
	eventID := uuid.New()

	t.Run("success", func(t *testing.T) {
		service, mockRepo := setupEventServiceTest()
		mockRepo.On("DeleteEvent", ctx, eventID).Return(int64(1), nil).Once()

		changes, err := service.DeleteEvent(ctx, eventID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), changes)
		mockRepo.AssertExpectations(t)
	})

	t.Run("missing event yields zero changes", func(t *testing.T) {
		service, mockRepo := setupEventServiceTest()
		mockRepo.On("DeleteEvent", ctx, eventID).Return(int64(0), nil).Once()

		changes, err := service.DeleteEvent(ctx, eventID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), changes)
		mockRepo.AssertExpectations(t)
	})
}
