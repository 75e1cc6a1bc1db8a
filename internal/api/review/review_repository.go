package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	database "github.com/bts-green-line/explorer/app/db"
	"github.com/bts-green-line/explorer/internal/types"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

var _ Repository = (*RepositoryImpl)(nil)

type Repository interface {
	ListByPlace(ctx context.Context, placeID uuid.UUID) ([]types.Review, error)
	CreateReview(ctx context.Context, review types.Review) (uuid.UUID, error)
	DeleteReview(ctx context.Context, reviewID uuid.UUID) (int64, error)
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

func (r *RepositoryImpl) ListByPlace(ctx context.Context, placeID uuid.UUID) ([]types.Review, error) {
	query := `
        SELECT id, place_id, user_name, rating, COALESCE(comment, ''), created_at
        FROM reviews
        WHERE place_id = $1
        ORDER BY created_at DESC, id DESC
    `
	rows, err := r.pgpool.Query(ctx, query, placeID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query reviews", slog.Any("error", err))
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer rows.Close()

	var reviews []types.Review
	for rows.Next() {
		var rv types.Review
		if err := rows.Scan(&rv.ID, &rv.PlaceID, &rv.User, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, rv)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating review rows: %w", err)
	}
	return reviews, nil
}

func (r *RepositoryImpl) CreateReview(ctx context.Context, review types.Review) (uuid.UUID, error) {
	query := `
        INSERT INTO reviews (id, place_id, user_name, rating, comment, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id
    `
	var id uuid.UUID
	err := r.pgpool.QueryRow(ctx, query,
		review.ID, review.PlaceID, review.User, review.Rating,
		review.Comment, review.CreatedAt,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return uuid.Nil, fmt.Errorf("place %s does not exist: %w", review.PlaceID, types.ErrValidation)
		}
		r.logger.ErrorContext(ctx, "Failed to insert review", slog.Any("error", err))
		return uuid.Nil, fmt.Errorf("failed to insert review: %w", err)
	}
	return id, nil
}

func (r *RepositoryImpl) DeleteReview(ctx context.Context, reviewID uuid.UUID) (int64, error) {
	ct, err := r.pgpool.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, reviewID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to delete review", slog.Any("error", err))
		return 0, fmt.Errorf("failed to delete review: %w", err)
	}
	return ct.RowsAffected(), nil
}
