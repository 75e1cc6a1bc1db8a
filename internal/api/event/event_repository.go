package event

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	database "github.com/bts-green-line/explorer/app/db"
	"github.com/bts-green-line/explorer/internal/types"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

var _ Repository = (*RepositoryImpl)(nil)

type Repository interface {
	ListEvents(ctx context.Context) ([]types.EventWithPlace, error)
	CreateEvent(ctx context.Context, event types.Event) (uuid.UUID, error)
	UpdateEvent(ctx context.Context, event types.Event) (int64, error)
	DeleteEvent(ctx context.Context, eventID uuid.UUID) (int64, error)
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

// ListEvents returns all events joined with place and station for the public
// calendar view, most recent event date first.
func (r *RepositoryImpl) ListEvents(ctx context.Context) ([]types.EventWithPlace, error) {
	query := `
        SELECT e.id, e.place_id, e.event_date, e.title, COALESCE(e.description, ''), e.created_at,
               p.name, s.id, s.name
        FROM events e
        JOIN places p ON p.id = e.place_id
        JOIN stations s ON s.id = p.station_id
        ORDER BY e.event_date DESC, e.created_at DESC
    `
	rows, err := r.pgpool.Query(ctx, query)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query events", slog.Any("error", err))
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []types.EventWithPlace
	for rows.Next() {
		var e types.EventWithPlace
		var eventDate time.Time
		err := rows.Scan(
			&e.ID, &e.PlaceID, &eventDate, &e.Title, &e.Description, &e.CreatedAt,
			&e.PlaceName, &e.StationID, &e.StationName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		e.EventDate = types.Date{Time: eventDate}
		events = append(events, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event rows: %w", err)
	}
	return events, nil
}

func (r *RepositoryImpl) CreateEvent(ctx context.Context, event types.Event) (uuid.UUID, error) {
	query := `
        INSERT INTO events (id, place_id, event_date, title, description, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id
    `
	var id uuid.UUID
	err := r.pgpool.QueryRow(ctx, query,
		event.ID, event.PlaceID, event.EventDate.Time, event.Title,
		textOrNil(event.Description), event.CreatedAt,
	).Scan(&id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return uuid.Nil, fmt.Errorf("place %s does not exist: %w", event.PlaceID, types.ErrValidation)
		}
		r.logger.ErrorContext(ctx, "Failed to insert event", slog.Any("error", err))
		return uuid.Nil, fmt.Errorf("failed to insert event: %w", err)
	}
	return id, nil
}

// UpdateEvent overwrites every column (full-replace).
func (r *RepositoryImpl) UpdateEvent(ctx context.Context, event types.Event) (int64, error) {
	query := `
        UPDATE events SET place_id = $2, event_date = $3, title = $4, description = $5
        WHERE id = $1
    `
	ct, err := r.pgpool.Exec(ctx, query,
		event.ID, event.PlaceID, event.EventDate.Time, event.Title, textOrNil(event.Description),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, fmt.Errorf("place %s does not exist: %w", event.PlaceID, types.ErrValidation)
		}
		r.logger.ErrorContext(ctx, "Failed to update event", slog.Any("error", err))
		return 0, fmt.Errorf("failed to update event: %w", err)
	}
	return ct.RowsAffected(), nil
}

func (r *RepositoryImpl) DeleteEvent(ctx context.Context, eventID uuid.UUID) (int64, error) {
	ct, err := r.pgpool.Exec(ctx, `DELETE FROM events WHERE id = $1`, eventID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to delete event", slog.Any("error", err))
		return 0, fmt.Errorf("failed to delete event: %w", err)
	}
	return ct.RowsAffected(), nil
}

func textOrNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
