package station

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/bts-green-line/explorer/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockStationRepository is a mock implementation of Repository
type MockStationRepository struct {
	mock.Mock
}

func (m *MockStationRepository) ListStations(ctx context.Context) ([]types.Station, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Station), args.Error(1)
}

func setupStationServiceTest() (*ServiceImpl, *MockStationRepository) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mockRepo := new(MockStationRepository)
	service := NewService(mockRepo, logger)
	return service, mockRepo
}

func TestServiceImpl_GetStations(t *testing.T) {
	ctx := context.Background()

	t.Run("success returns stations sorted by code", func(t *testing.T) {
		service, mockRepo := setupStationServiceTest()
		unsorted := []types.Station{
			{ID: "N12", Name: "Lat Phrao"},
			{ID: "N8", Name: "Mo Chit"},
			{ID: "N19", Name: "Saphan Mai"},
		}
		mockRepo.On("ListStations", ctx).Return(unsorted, nil).Once()

		stations, err := service.GetStations(ctx)
		require.NoError(t, err)
		require.Len(t, stations, 3)
		assert.Equal(t, "N8", stations[0].ID)
		assert.Equal(t, "N12", stations[1].ID)
		assert.Equal(t, "N19", stations[2].ID)
		mockRepo.AssertExpectations(t)
	})

	t.Run("second call served from cache", func(t *testing.T) {
		service, mockRepo := setupStationServiceTest()
		mockRepo.On("ListStations", ctx).
			Return([]types.Station{{ID: "N8", Name: "Mo Chit"}}, nil).Once()

		first, err := service.GetStations(ctx)
		require.NoError(t, err)
		second, err := service.GetStations(ctx)
		require.NoError(t, err)
		assert.Equal(t, first, second)
		// Only one repository hit for both calls.
		mockRepo.AssertNumberOfCalls(t, "ListStations", 1)
	})

	t.Run("repository error is wrapped and not cached", func(t *testing.T) {
		service, mockRepo := setupStationServiceTest()
		repoErr := errors.New("database connection error")
		mockRepo.On("ListStations", ctx).Return(nil, repoErr).Twice()

		_, err := service.GetStations(ctx)
		require.Error(t, err)
		assert.True(t, errors.Is(err, repoErr))

		_, err = service.GetStations(ctx)
		require.Error(t, err)
		mockRepo.AssertExpectations(t)
	})
}

func TestSortStations(t *testing.T) {
	t.Run("numeric suffix sorts numerically within a prefix", func(t *testing.T) {
		stations := []types.Station{
			{ID: "N10"}, {ID: "N2"}, {ID: "N9"}, {ID: "N1"},
		}
		SortStations(stations)
		ids := []string{stations[0].ID, stations[1].ID, stations[2].ID, stations[3].ID}
		assert.Equal(t, []string{"N1", "N2", "N9", "N10"}, ids)
	})

	t.Run("prefix sorts before numeric suffix", func(t *testing.T) {
		stations := []types.Station{
			{ID: "N2"}, {ID: "E1"}, {ID: "N1"}, {ID: "E10"},
		}
		SortStations(stations)
		ids := []string{stations[0].ID, stations[1].ID, stations[2].ID, stations[3].ID}
		assert.Equal(t, []string{"E1", "E10", "N1", "N2"}, ids)
	})

	t.Run("ids without the code pattern fall back to lexical order", func(t *testing.T) {
		stations := []types.Station{
			{ID: "N2"}, {ID: "CEN"}, {ID: "N10"},
		}
		SortStations(stations)
		assert.Equal(t, "CEN", stations[0].ID)
		assert.Equal(t, "N2", stations[1].ID)
		assert.Equal(t, "N10", stations[2].ID)
	})

	t.Run("empty slice is a no-op", func(t *testing.T) {
		stations := []types.Station{}
		SortStations(stations)
		assert.Empty(t, stations)
	})
}
