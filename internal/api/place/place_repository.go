package place

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	database "github.com/bts-green-line/explorer/app/db"
	"github.com/bts-green-line/explorer/app/observability/metrics"
	"github.com/bts-green-line/explorer/internal/types"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var _ Repository = (*RepositoryImpl)(nil)

// Repository defines place persistence. Sub-fields (gallery, contact,
// location) are stored as JSONB and always decoded before leaving this layer.
type Repository interface {
	ListAllPlaces(ctx context.Context) ([]types.Place, error)
	ListPlacesByStation(ctx context.Context, stationID string) ([]types.PlaceWithStats, error)
	GetPlaceWithStats(ctx context.Context, placeID uuid.UUID) (*types.PlaceWithStats, error)
	CreatePlace(ctx context.Context, place types.Place) (uuid.UUID, error)
	UpdatePlace(ctx context.Context, place types.Place) (int64, error)
	DeletePlace(ctx context.Context, placeID uuid.UUID) (int64, error)
}

type RepositoryImpl struct {
	logger *slog.Logger
	pgpool database.Querier
}

func NewRepository(pgpool database.Querier, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		logger: logger,
		pgpool: pgpool,
	}
}

const placeColumns = `p.id, p.station_id, p.name, COALESCE(p.category, ''), COALESCE(p.description, ''),
       COALESCE(p.image, ''), p.gallery, COALESCE(p.opening_hours, ''), COALESCE(p.travel_info, ''),
       COALESCE(p.phone, ''), p.contact, p.location, p.created_at`

func (r *RepositoryImpl) ListAllPlaces(ctx context.Context) ([]types.Place, error) {
	query := `
        SELECT ` + placeColumns + `
        FROM places p
        ORDER BY p.name
    `
	rows, err := r.pgpool.Query(ctx, query)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query places", slog.Any("error", err))
		return nil, fmt.Errorf("failed to query places: %w", err)
	}
	defer rows.Close()

	var places []types.Place
	for rows.Next() {
		p, err := scanPlace(rows)
		if err != nil {
			return nil, err
		}
		places = append(places, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating place rows: %w", err)
	}
	return places, nil
}

func (r *RepositoryImpl) ListPlacesByStation(ctx context.Context, stationID string) ([]types.PlaceWithStats, error) {
	start := time.Now()
	query := `
        SELECT ` + placeColumns + `,
               AVG(rv.rating)::float8, COUNT(rv.id)
        FROM places p
        LEFT JOIN reviews rv ON rv.place_id = p.id
        WHERE p.station_id = $1
        GROUP BY p.id
        ORDER BY p.name
    `
	rows, err := r.pgpool.Query(ctx, query, stationID)
	if err != nil {
		metrics.Get().DbQueryErrorsTotal.Add(ctx, 1)
		r.logger.ErrorContext(ctx, "Failed to query places for station",
			slog.String("station_id", stationID), slog.Any("error", err))
		return nil, fmt.Errorf("failed to query places for station %s: %w", stationID, err)
	}
	defer rows.Close()

	var places []types.PlaceWithStats
	var placeIDs []uuid.UUID
	for rows.Next() {
		p, err := scanPlaceWithStats(rows)
		if err != nil {
			return nil, err
		}
		places = append(places, p)
		placeIDs = append(placeIDs, p.ID)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating place rows: %w", err)
	}

	if len(placeIDs) > 0 {
		reviewsByPlace, err := r.loadReviewSummaries(ctx, placeIDs)
		if err != nil {
			return nil, err
		}
		for i := range places {
			if summaries, ok := reviewsByPlace[places[i].ID]; ok {
				places[i].Reviews = summaries
			}
		}
	}

	metrics.Get().DbQueryDurationSeconds.Record(ctx, time.Since(start).Seconds())
	return places, nil
}

func (r *RepositoryImpl) GetPlaceWithStats(ctx context.Context, placeID uuid.UUID) (*types.PlaceWithStats, error) {
	query := `
        SELECT ` + placeColumns + `,
               AVG(rv.rating)::float8, COUNT(rv.id)
        FROM places p
        LEFT JOIN reviews rv ON rv.place_id = p.id
        WHERE p.id = $1
        GROUP BY p.id
    `
	rows, err := r.pgpool.Query(ctx, query, placeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query place %s: %w", placeID, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return nil, fmt.Errorf("error reading place row: %w", err)
		}
		return nil, types.ErrNotFound
	}
	p, err := scanPlaceWithStats(rows)
	if err != nil {
		return nil, err
	}
	rows.Close()

	reviewsByPlace, err := r.loadReviewSummaries(ctx, []uuid.UUID{p.ID})
	if err != nil {
		return nil, err
	}
	if summaries, ok := reviewsByPlace[p.ID]; ok {
		p.Reviews = summaries
	}
	return &p, nil
}

// loadReviewSummaries fetches reviews for the given places, newest first.
func (r *RepositoryImpl) loadReviewSummaries(ctx context.Context, placeIDs []uuid.UUID) (map[uuid.UUID][]types.ReviewSummary, error) {
	query := `
        SELECT place_id, user_name, rating, COALESCE(comment, '')
        FROM reviews
        WHERE place_id = ANY($1)
        ORDER BY created_at DESC, id DESC
    `
	rows, err := r.pgpool.Query(ctx, query, placeIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews for places: %w", err)
	}
	defer rows.Close()

	byPlace := make(map[uuid.UUID][]types.ReviewSummary)
	for rows.Next() {
		var placeID uuid.UUID
		var summary types.ReviewSummary
		if err := rows.Scan(&placeID, &summary.User, &summary.Rating, &summary.Comment); err != nil {
			return nil, fmt.Errorf("failed to scan review summary: %w", err)
		}
		byPlace[placeID] = append(byPlace[placeID], summary)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating review rows: %w", err)
	}
	return byPlace, nil
}

func (r *RepositoryImpl) CreatePlace(ctx context.Context, place types.Place) (uuid.UUID, error) {
	query := `
        INSERT INTO places (
            id, station_id, name, category, description, image, gallery,
            opening_hours, travel_info, phone, contact, location, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
        RETURNING id
    `
	var id uuid.UUID
	err := r.pgpool.QueryRow(ctx, query,
		place.ID, place.StationID, place.Name,
		textOrNil(place.Category), textOrNil(place.Description), textOrNil(place.Image),
		encodeJSONField(place.Gallery, "[]"),
		textOrNil(place.OpeningHours), textOrNil(place.TravelInfo), textOrNil(place.Phone),
		encodeJSONField(place.Contact, "{}"),
		encodeLocation(place.Location),
		place.CreatedAt,
	).Scan(&id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return uuid.Nil, fmt.Errorf("station %q does not exist: %w", place.StationID, types.ErrValidation)
		}
		r.logger.ErrorContext(ctx, "Failed to insert place", slog.Any("error", err))
		return uuid.Nil, fmt.Errorf("failed to insert place: %w", err)
	}
	return id, nil
}

// UpdatePlace overwrites every column: full-replace semantics, callers must
// resend unchanged fields.
func (r *RepositoryImpl) UpdatePlace(ctx context.Context, place types.Place) (int64, error) {
	query := `
        UPDATE places SET
            station_id = $2, name = $3, category = $4, description = $5, image = $6,
            gallery = $7, opening_hours = $8, travel_info = $9, phone = $10,
            contact = $11, location = $12
        WHERE id = $1
    `
	ct, err := r.pgpool.Exec(ctx, query,
		place.ID, place.StationID, place.Name,
		textOrNil(place.Category), textOrNil(place.Description), textOrNil(place.Image),
		encodeJSONField(place.Gallery, "[]"),
		textOrNil(place.OpeningHours), textOrNil(place.TravelInfo), textOrNil(place.Phone),
		encodeJSONField(place.Contact, "{}"),
		encodeLocation(place.Location),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, fmt.Errorf("station %q does not exist: %w", place.StationID, types.ErrValidation)
		}
		r.logger.ErrorContext(ctx, "Failed to update place", slog.Any("error", err))
		return 0, fmt.Errorf("failed to update place: %w", err)
	}
	return ct.RowsAffected(), nil
}

// DeletePlace removes a place together with its dependent reviews and events
// in a single transaction so a partial cascade never persists.
func (r *RepositoryImpl) DeletePlace(ctx context.Context, placeID uuid.UUID) (int64, error) {
	tx, err := r.pgpool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM reviews WHERE place_id = $1`, placeID); err != nil {
		metrics.Get().DbQueryErrorsTotal.Add(ctx, 1)
		return 0, fmt.Errorf("failed to delete reviews for place: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM events WHERE place_id = $1`, placeID); err != nil {
		metrics.Get().DbQueryErrorsTotal.Add(ctx, 1)
		return 0, fmt.Errorf("failed to delete events for place: %w", err)
	}
	ct, err := tx.Exec(ctx, `DELETE FROM places WHERE id = $1`, placeID)
	if err != nil {
		metrics.Get().DbQueryErrorsTotal.Add(ctx, 1)
		return 0, fmt.Errorf("failed to delete place: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return ct.RowsAffected(), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlace(row rowScanner) (types.Place, error) {
	var p types.Place
	var gallery, contact, location []byte
	err := row.Scan(
		&p.ID, &p.StationID, &p.Name, &p.Category, &p.Description, &p.Image,
		&gallery, &p.OpeningHours, &p.TravelInfo, &p.Phone, &contact, &location, &p.CreatedAt,
	)
	if err != nil {
		return types.Place{}, fmt.Errorf("failed to scan place: %w", err)
	}
	p.Gallery = decodeGallery(gallery)
	p.Contact = decodeContact(contact)
	p.Location = decodeLocation(location)
	return p, nil
}

func scanPlaceWithStats(row rowScanner) (types.PlaceWithStats, error) {
	var p types.PlaceWithStats
	var gallery, contact, location []byte
	var avg *float64
	var count int64
	err := row.Scan(
		&p.ID, &p.StationID, &p.Name, &p.Category, &p.Description, &p.Image,
		&gallery, &p.OpeningHours, &p.TravelInfo, &p.Phone, &contact, &location, &p.CreatedAt,
		&avg, &count,
	)
	if err != nil {
		return types.PlaceWithStats{}, fmt.Errorf("failed to scan place with stats: %w", err)
	}
	p.Gallery = decodeGallery(gallery)
	p.Contact = decodeContact(contact)
	p.Location = decodeLocation(location)
	p.AverageRating = avg
	p.ReviewCount = int(count)
	p.Reviews = []types.ReviewSummary{}
	return p, nil
}

// decodeGallery degrades malformed stored JSON to an empty list instead of
// failing the request.
func decodeGallery(raw []byte) []string {
	if len(raw) == 0 {
		return []string{}
	}
	var gallery []string
	if err := json.Unmarshal(raw, &gallery); err != nil || gallery == nil {
		return []string{}
	}
	return gallery
}

func decodeContact(raw []byte) map[string]string {
	if len(raw) == 0 {
		return map[string]string{}
	}
	var contact map[string]string
	if err := json.Unmarshal(raw, &contact); err != nil || contact == nil {
		return map[string]string{}
	}
	return contact
}

func decodeLocation(raw []byte) *types.LatLng {
	if len(raw) == 0 {
		return nil
	}
	var loc types.LatLng
	if err := json.Unmarshal(raw, &loc); err != nil {
		return nil
	}
	return &loc
}

func encodeJSONField(v any, empty string) []byte {
	raw, err := json.Marshal(v)
	if err != nil || string(raw) == "null" {
		return []byte(empty)
	}
	return raw
}

func encodeLocation(loc *types.LatLng) any {
	if loc == nil {
		return nil
	}
	raw, err := json.Marshal(loc)
	if err != nil {
		return nil
	}
	return raw
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
