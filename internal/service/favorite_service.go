package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/atlasimmo/atlas-immo-api/internal/domain"
	"github.com/atlasimmo/atlas-immo-api/internal/repository/ports"
)

var (
	ErrFavoriteAlreadyExists = errors.New("listing already saved to favorites")
	ErrFavoriteNotFound      = errors.New("favorite not found")
)

type FavoriteService struct {
	favorites ports.FavoriteRepository
	listings  ports.ListingRepository
}

type FavoriteListResult struct {
	Items  []domain.FavoriteListItem
	Total  int64
	Limit  int
	Offset int
}

func NewFavoriteService(favoriteRepo ports.FavoriteRepository, listingRepo ports.ListingRepository) *FavoriteService {
	return &FavoriteService{
		favorites: favoriteRepo,
		listings:  listingRepo,
	}
}

func (s *FavoriteService) Save(ctx context.Context, userID, listingID uuid.UUID) (*domain.Favorite, error) {
	listing, err := s.listings.FindByID(ctx, listingID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	if !listing.IsPublished() {
		return nil, ErrListingNotFound
	}

	favorite, err := s.favorites.Add(ctx, userID, listingID)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return nil, ErrFavoriteAlreadyExists
		default:
			return nil, err
		}
	}
	return favorite, nil
}

func (s *FavoriteService) Remove(ctx context.Context, userID, listingID uuid.UUID) error {
	if err := s.favorites.Remove(ctx, userID, listingID); err != nil {
		if isNotFound(err) {
			return ErrFavoriteNotFound
		}
		return err
	}
	return nil
}

func (s *FavoriteService) List(ctx context.Context, userID uuid.UUID, limit, offset int) (*FavoriteListResult, error) {
	nLimit, nOffset := normalizePagination(limit, offset)

	items, err := s.favorites.ListByUser(ctx, userID, nLimit, nOffset)
	if err != nil {
		return nil, err
	}

	total, err := s.favorites.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &FavoriteListResult{
		Items:  items,
		Total:  total,
		Limit:  nLimit,
		Offset: nOffset,
	}, nil
}

func (s *FavoriteService) Count(ctx context.Context, listingID uuid.UUID) (int64, error) {
	if _, err := s.listings.FindByID(ctx, listingID); err != nil {
		if isNotFound(err) {
			return 0, ErrListingNotFound
		}
		return 0, err
	}
	return s.favorites.CountByListing(ctx, listingID)
}
