package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/atlasimmo/atlas-immo-api/internal/domain"
)

type FavoriteRepository interface {
	Add(ctx context.Context, userID, listingID uuid.UUID) (*domain.Favorite, error)
	Remove(ctx context.Context, userID, listingID uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.FavoriteListItem, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	CountByListing(ctx context.Context, listingID uuid.UUID) (int64, error)
}
