package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/atlasimmo/atlas-immo-api/internal/domain"
	"github.com/atlasimmo/atlas-immo-api/internal/media"
	"github.com/atlasimmo/atlas-immo-api/internal/repository/ports"
)

var (
	ErrListingNotFound      = errors.New("listing not found")
	ErrListingForbidden     = errors.New("not allowed to manage this listing")
	ErrListingValidation    = errors.New("listing validation failed")
	ErrPhotoRequired        = errors.New("photo file required")
	ErrPhotoTooLarge        = errors.New("photo exceeds maximum size")
	ErrPhotoUnsupportedType = errors.New("unsupported photo content type")
	ErrPhotoStorageOffline  = errors.New("photo storage not configured")
)

// ListingInput carries the mutable fields of a listing.
type ListingInput struct {
	Title           string
	Description     *string
	PriceCents      int64
	PropertyType    string
	TransactionType string
	SurfaceM2       *float64
	Rooms           *int
	Bedrooms        *int
	City            string
	PostalCode      string
	Address         *string
	Latitude        *float64
	Longitude       *float64
	Publish         bool
}

type ListingPhotoUpload struct {
	Reader      io.Reader
	Size        int64
	FileName    string
	ContentType string
}

type ListingListResult struct {
	Items  []domain.Listing
	Total  int64
	Limit  int
	Offset int
}

type ListingService struct {
	listings ports.ListingRepository
	storage  ports.ObjectStorage

	bucket        string
	publicBase    string
	maxPhotoBytes int64
	processor     media.Processor
	maxDimension  int
}

type ListingServiceConfig struct {
	Bucket            string
	PublicBaseURL     string
	MaxPhotoBytes     int64
	ImageProcessor    media.Processor
	ImageMaxDimension int
}

var allowedPhotoTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

func NewListingService(listingRepo ports.ListingRepository, storage ports.ObjectStorage, cfg ListingServiceConfig) *ListingService {
	maxBytes := cfg.MaxPhotoBytes
	if maxBytes <= 0 {
		maxBytes = 5 * 1024 * 1024
	}
	return &ListingService{
		listings:      listingRepo,
		storage:       storage,
		bucket:        cfg.Bucket,
		publicBase:    strings.TrimRight(cfg.PublicBaseURL, "/"),
		maxPhotoBytes: maxBytes,
		processor:     cfg.ImageProcessor,
		maxDimension:  cfg.ImageMaxDimension,
	}
}

func (s *ListingService) Create(ctx context.Context, ownerID uuid.UUID, input ListingInput) (*domain.Listing, error) {
	if err := validateListingInput(input); err != nil {
		return nil, err
	}

	status := domain.ListingStatusDraft
	if input.Publish {
		status = domain.ListingStatusPublished
	}

	listing := &domain.Listing{
		OwnerID:         ownerID,
		Title:           strings.TrimSpace(input.Title),
		Description:     input.Description,
		PriceCents:      input.PriceCents,
		PropertyType:    input.PropertyType,
		TransactionType: input.TransactionType,
		SurfaceM2:       input.SurfaceM2,
		Rooms:           input.Rooms,
		Bedrooms:        input.Bedrooms,
		City:            strings.TrimSpace(input.City),
		PostalCode:      strings.TrimSpace(input.PostalCode),
		Address:         input.Address,
		Latitude:        input.Latitude,
		Longitude:       input.Longitude,
		Status:          status,
	}
	return s.listings.Create(ctx, listing)
}

func (s *ListingService) Update(ctx context.Context, id, requesterID uuid.UUID, isAdmin bool, input ListingInput) (*domain.Listing, error) {
	listing, err := s.authorizedListing(ctx, id, requesterID, isAdmin)
	if err != nil {
		return nil, err
	}
	if err := validateListingInput(input); err != nil {
		return nil, err
	}

	listing.Title = strings.TrimSpace(input.Title)
	listing.Description = input.Description
	listing.PriceCents = input.PriceCents
	listing.PropertyType = input.PropertyType
	listing.TransactionType = input.TransactionType
	listing.SurfaceM2 = input.SurfaceM2
	listing.Rooms = input.Rooms
	listing.Bedrooms = input.Bedrooms
	listing.City = strings.TrimSpace(input.City)
	listing.PostalCode = strings.TrimSpace(input.PostalCode)
	listing.Address = input.Address
	listing.Latitude = input.Latitude
	listing.Longitude = input.Longitude
	if input.Publish {
		listing.Status = domain.ListingStatusPublished
	} else if listing.Status == domain.ListingStatusPublished {
		listing.Status = domain.ListingStatusDraft
	}

	return s.listings.Update(ctx, listing)
}

// Archive retires a listing from the catalogue. There is no hard delete:
// conversations and favorites keep referencing the row.
func (s *ListingService) Archive(ctx context.Context, id, requesterID uuid.UUID, isAdmin bool) error {
	if _, err := s.authorizedListing(ctx, id, requesterID, isAdmin); err != nil {
		return err
	}
	return s.listings.SetStatus(ctx, id, domain.ListingStatusArchived)
}

func (s *ListingService) GetPublished(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	listing, err := s.listings.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	if !listing.IsPublished() {
		return nil, ErrListingNotFound
	}
	return listing, nil
}

func (s *ListingService) ListPublished(ctx context.Context, filter domain.ListingListFilter) (*ListingListResult, error) {
	filter.Limit, filter.Offset = normalizePagination(filter.Limit, filter.Offset)

	items, err := s.listings.ListPublished(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.listings.CountPublished(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &ListingListResult{Items: items, Total: total, Limit: filter.Limit, Offset: filter.Offset}, nil
}

func (s *ListingService) ListMine(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]domain.Listing, error) {
	limit, offset = normalizePagination(limit, offset)
	return s.listings.ListByOwner(ctx, ownerID, limit, offset)
}

func (s *ListingService) AddPhoto(ctx context.Context, id, requesterID uuid.UUID, isAdmin bool, upload ListingPhotoUpload) (*domain.Listing, error) {
	if s.storage == nil {
		return nil, ErrPhotoStorageOffline
	}
	listing, err := s.authorizedListing(ctx, id, requesterID, isAdmin)
	if err != nil {
		return nil, err
	}
	if upload.Reader == nil || upload.Size <= 0 {
		return nil, ErrPhotoRequired
	}
	if upload.Size > s.maxPhotoBytes {
		return nil, ErrPhotoTooLarge
	}
	ext, ok := allowedPhotoTypes[strings.ToLower(strings.TrimSpace(upload.ContentType))]
	if !ok {
		return nil, ErrPhotoUnsupportedType
	}

	reader, size, contentType, err := prepareImageForUpload(ctx, s.processor, media.Upload{
		Reader:      upload.Reader,
		Size:        upload.Size,
		FileName:    upload.FileName,
		ContentType: upload.ContentType,
	}, s.maxDimension)
	if err != nil {
		return nil, err
	}

	objectName := fmt.Sprintf("listings/%s/%d%s", listing.ID, time.Now().UnixNano(), ext)
	url, err := s.storage.Upload(ctx, s.bucket, objectName, contentType, reader, size)
	if err != nil {
		return nil, err
	}
	if s.publicBase != "" {
		url = s.publicBase + "/" + s.bucket + "/" + objectName
	}

	return s.listings.AppendPhoto(ctx, listing.ID, url)
}

func (s *ListingService) authorizedListing(ctx context.Context, id, requesterID uuid.UUID, isAdmin bool) (*domain.Listing, error) {
	listing, err := s.listings.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	if listing.OwnerID != requesterID && !isAdmin {
		return nil, ErrListingForbidden
	}
	return listing, nil
}

func validateListingInput(input ListingInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return ErrListingValidation
	}
	if input.PriceCents <= 0 {
		return ErrListingValidation
	}
	if !domain.ValidPropertyType(input.PropertyType) {
		return ErrListingValidation
	}
	if !domain.ValidTransactionType(input.TransactionType) {
		return ErrListingValidation
	}
	if strings.TrimSpace(input.City) == "" || strings.TrimSpace(input.PostalCode) == "" {
		return ErrListingValidation
	}
	if input.SurfaceM2 != nil && *input.SurfaceM2 <= 0 {
		return ErrListingValidation
	}
	return nil
}

func normalizePagination(limit, offset int) (int, int) {
	const (
		defaultLimit = 20
		maxLimit     = 100
	)

	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
