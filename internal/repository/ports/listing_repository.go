package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/atlasimmo/atlas-immo-api/internal/domain"
)

type ListingRepository interface {
	Create(ctx context.Context, listing *domain.Listing) (*domain.Listing, error)
	Update(ctx context.Context, listing *domain.Listing) (*domain.Listing, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error)
	ListPublished(ctx context.Context, filter domain.ListingListFilter) ([]domain.Listing, error)
	CountPublished(ctx context.Context, filter domain.ListingListFilter) (int64, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]domain.Listing, error)
	SetStatus(ctx context.Context, id uuid.UUID, status string) error
	AppendPhoto(ctx context.Context, id uuid.UUID, photoURL string) (*domain.Listing, error)
}
