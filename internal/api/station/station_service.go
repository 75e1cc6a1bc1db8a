package station

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/bts-green-line/explorer/internal/types"
	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	GetStations(ctx context.Context) ([]types.Station, error)
}

const (
	stationCacheKey = "stations:sorted"
	stationCacheTTL = 10 * time.Minute
)

// ServiceImpl sorts the station directory operationally and caches the
// result; the directory is immutable reference data.
type ServiceImpl struct {
	logger *slog.Logger
	repo   Repository
	cache  *cache.Cache
}

func NewService(repo Repository, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		repo:   repo,
		cache:  cache.New(stationCacheTTL, 2*stationCacheTTL),
	}
}

func (s *ServiceImpl) GetStations(ctx context.Context) ([]types.Station, error) {
	ctx, span := otel.Tracer("StationService").Start(ctx, "GetStations")
	defer span.End()

	if cached, found := s.cache.Get(stationCacheKey); found {
		return cached.([]types.Station), nil
	}

	stations, err := s.repo.ListStations(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list stations", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to list stations")
		return nil, fmt.Errorf("failed to list stations: %w", err)
	}

	SortStations(stations)
	s.cache.Set(stationCacheKey, stations, cache.DefaultExpiration)
	return stations, nil
}

// stationCodeRe matches line-prefixed codes like "N8" or "E12".
var stationCodeRe = regexp.MustCompile(`^([A-Za-z]+)([0-9]+)$`)

// SortStations orders stations by alphabetic prefix, then numeric suffix
// ascending, so N9 sorts before N10. Ids that don't match the
// prefix+digits pattern fall back to full lexical comparison.
func SortStations(stations []types.Station) {
	sort.SliceStable(stations, func(i, j int) bool {
		return stationIDLess(stations[i].ID, stations[j].ID)
	})
}

func stationIDLess(a, b string) bool {
	ma := stationCodeRe.FindStringSubmatch(a)
	mb := stationCodeRe.FindStringSubmatch(b)
	if ma == nil || mb == nil {
		return a < b
	}
	if ma[1] != mb[1] {
		return ma[1] < mb[1]
	}
	na, _ := strconv.Atoi(ma[2])
	nb, _ := strconv.Atoi(mb[2])
	return na < nb
}
