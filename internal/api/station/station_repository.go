package station

import (
	"context"
	"fmt"
	"log/slog"

	database "github.com/bts-green-line/explorer/app/db"
	"github.com/bts-green-line/explorer/internal/types"
)

var _ Repository = (*RepositoryImpl)(nil)

// Repository defines read access to the station directory. Stations are
// reference data seeded by migrations; there is no write path.
type Repository interface {
	ListStations(ctx context.Context) ([]types.Station, error)
}

type RepositoryImpl struct {
	logger *slog.Logger
	pgpool database.Querier
}

func NewRepository(pgxpool database.Querier, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		logger: logger,
		pgpool: pgxpool,
	}
}

func (r *RepositoryImpl) ListStations(ctx context.Context) ([]types.Station, error) {
	query := `SELECT id, name FROM stations`
	rows, err := r.pgpool.Query(ctx, query)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query stations", slog.Any("error", err))
		return nil, fmt.Errorf("failed to query stations: %w", err)
	}
	defer rows.Close()

	var stations []types.Station
	for rows.Next() {
		var s types.Station
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, fmt.Errorf("failed to scan station: %w", err)
		}
		stations = append(stations, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating station rows: %w", err)
	}
	return stations, nil
}
