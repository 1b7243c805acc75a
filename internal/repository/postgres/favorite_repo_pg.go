package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/atlasimmo/atlas-immo-api/internal/domain"
)

type FavoriteRepository struct {
	db *sqlx.DB
}

func NewFavoriteRepo(db *sqlx.DB) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

func (r *FavoriteRepository) Add(ctx context.Context, userID, listingID uuid.UUID) (*domain.Favorite, error) {
	const query = `
        INSERT INTO favorite (user_id, listing_id)
        VALUES ($1, $2)
        RETURNING id, user_id, listing_id, created_at
    `
	row := r.db.QueryRowxContext(ctx, query, userID, listingID)
	var favorite domain.Favorite
	if err := row.StructScan(&favorite); err != nil {
		return nil, err
	}
	return &favorite, nil
}

func (r *FavoriteRepository) Remove(ctx context.Context, userID, listingID uuid.UUID) error {
	const query = `DELETE FROM favorite WHERE user_id = $1 AND listing_id = $2`

	result, err := r.db.ExecContext(ctx, query, userID, listingID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *FavoriteRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.FavoriteListItem, error) {
	const query = `
        SELECT
            f.id,
            f.user_id,
            f.listing_id,
            f.created_at,
            l.title AS listing_title,
            l.city AS listing_city,
            l.price_cents AS listing_price_cents,
            l.status AS listing_status,
            l.photos[1] AS listing_photo
        FROM favorite f
        JOIN listing l ON l.id = f.listing_id
        WHERE f.user_id = $1
        ORDER BY f.created_at DESC
        LIMIT $2 OFFSET $3
    `
	items := []domain.FavoriteListItem{}
	if err := r.db.SelectContext(ctx, &items, query, userID, limit, offset); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *FavoriteRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	const query = `SELECT COUNT(*) FROM favorite WHERE user_id = $1`

	var total int64
	if err := r.db.GetContext(ctx, &total, query, userID); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *FavoriteRepository) CountByListing(ctx context.Context, listingID uuid.UUID) (int64, error) {
	const query = `SELECT COUNT(*) FROM favorite WHERE listing_id = $1`

	var total int64
	if err := r.db.GetContext(ctx, &total, query, listingID); err != nil {
		return 0, err
	}
	return total, nil
}
