package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/atlasimmo/atlas-immo-api/internal/domain"
)

type memoryListingRepo struct {
	mu       sync.Mutex
	listings map[uuid.UUID]*domain.Listing
}

func newMemoryListingRepo() *memoryListingRepo {
	return &memoryListingRepo{listings: make(map[uuid.UUID]*domain.Listing)}
}

func cloneListing(l *domain.Listing) *domain.Listing {
	clone := *l
	clone.Photos = append([]string(nil), l.Photos...)
	return &clone
}

func (r *memoryListingRepo) Create(ctx context.Context, listing *domain.Listing) (*domain.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := cloneListing(listing)
	stored.ID = uuid.New()
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	r.listings[stored.ID] = stored
	return cloneListing(stored), nil
}

func (r *memoryListingRepo) Update(ctx context.Context, listing *domain.Listing) (*domain.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.listings[listing.ID]; !ok {
		return nil, sql.ErrNoRows
	}
	stored := cloneListing(listing)
	stored.UpdatedAt = time.Now()
	r.listings[stored.ID] = stored
	return cloneListing(stored), nil
}

func (r *memoryListingRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.listings[id]; ok {
		return cloneListing(l), nil
	}
	return nil, sql.ErrNoRows
}

func (r *memoryListingRepo) ListPublished(ctx context.Context, filter domain.ListingListFilter) ([]domain.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Listing, 0)
	for _, l := range r.listings {
		if l.Status == domain.ListingStatusPublished {
			out = append(out, *cloneListing(l))
		}
	}
	return out, nil
}

func (r *memoryListingRepo) CountPublished(ctx context.Context, filter domain.ListingListFilter) (int64, error) {
	items, _ := r.ListPublished(ctx, filter)
	return int64(len(items)), nil
}

func (r *memoryListingRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]domain.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Listing, 0)
	for _, l := range r.listings {
		if l.OwnerID == ownerID {
			out = append(out, *cloneListing(l))
		}
	}
	return out, nil
}

func (r *memoryListingRepo) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.listings[id]
	if !ok {
		return sql.ErrNoRows
	}
	l.Status = status
	return nil
}

func (r *memoryListingRepo) AppendPhoto(ctx context.Context, id uuid.UUID, photoURL string) (*domain.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.listings[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	l.Photos = append(l.Photos, photoURL)
	return cloneListing(l), nil
}

type recordingStorage struct {
	bucket      string
	objectName  string
	contentType string
	size        int64
	err         error
}

func (s *recordingStorage) Upload(ctx context.Context, bucket, objectName, contentType string, reader io.Reader, size int64) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.bucket = bucket
	s.objectName = objectName
	s.contentType = contentType
	s.size = size
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return "", err
	}
	return "http://storage.local/" + bucket + "/" + objectName, nil
}

func validListingInput() ListingInput {
	return ListingInput{
		Title:           "T3 lumineux centre-ville",
		PriceCents:      25500000,
		PropertyType:    domain.PropertyTypeApartment,
		TransactionType: domain.TransactionSale,
		City:            "Lyon",
		PostalCode:      "69002",
	}
}

func newListingServiceForTests(repo *memoryListingRepo, storage *recordingStorage) *ListingService {
	svc := NewListingService(repo, nil, ListingServiceConfig{
		Bucket:        "listings-test",
		MaxPhotoBytes: 1024,
	})
	if storage != nil {
		svc.storage = storage
	}
	return svc
}

func TestCreateListingDraftByDefault(t *testing.T) {
	repo := newMemoryListingRepo()
	svc := newListingServiceForTests(repo, nil)
	ownerID := uuid.New()

	listing, err := svc.Create(context.Background(), ownerID, validListingInput())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if listing.Status != domain.ListingStatusDraft {
		t.Fatalf("expected draft status, got %q", listing.Status)
	}
	if listing.OwnerID != ownerID {
		t.Fatalf("expected owner to be the caller")
	}
}

func TestCreateListingPublish(t *testing.T) {
	repo := newMemoryListingRepo()
	svc := newListingServiceForTests(repo, nil)

	input := validListingInput()
	input.Publish = true
	listing, err := svc.Create(context.Background(), uuid.New(), input)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if listing.Status != domain.ListingStatusPublished {
		t.Fatalf("expected published status, got %q", listing.Status)
	}
}

func TestCreateListingValidation(t *testing.T) {
	repo := newMemoryListingRepo()
	svc := newListingServiceForTests(repo, nil)

	cases := map[string]func(*ListingInput){
		"empty title":         func(in *ListingInput) { in.Title = "  " },
		"zero price":          func(in *ListingInput) { in.PriceCents = 0 },
		"bad property type":   func(in *ListingInput) { in.PropertyType = "castle" },
		"bad transaction":     func(in *ListingInput) { in.TransactionType = "swap" },
		"missing city":        func(in *ListingInput) { in.City = "" },
		"missing postal code": func(in *ListingInput) { in.PostalCode = "" },
		"negative surface":    func(in *ListingInput) { s := -1.0; in.SurfaceM2 = &s },
	}
	for name, mutate := range cases {
		input := validListingInput()
		mutate(&input)
		if _, err := svc.Create(context.Background(), uuid.New(), input); !errors.Is(err, ErrListingValidation) {
			t.Errorf("%s: expected ErrListingValidation, got %v", name, err)
		}
	}
}

func TestUpdateListingOwnership(t *testing.T) {
	repo := newMemoryListingRepo()
	svc := newListingServiceForTests(repo, nil)
	ownerID := uuid.New()

	listing, err := svc.Create(context.Background(), ownerID, validListingInput())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	input := validListingInput()
	input.Title = "T3 rénové centre-ville"

	if _, err := svc.Update(context.Background(), listing.ID, uuid.New(), false, input); !errors.Is(err, ErrListingForbidden) {
		t.Fatalf("expected ErrListingForbidden for stranger, got %v", err)
	}

	updated, err := svc.Update(context.Background(), listing.ID, uuid.New(), true, input)
	if err != nil {
		t.Fatalf("expected admin update to succeed, got %v", err)
	}
	if updated.Title != "T3 rénové centre-ville" {
		t.Fatalf("expected updated title, got %q", updated.Title)
	}
}

func TestArchiveListingKeepsRow(t *testing.T) {
	repo := newMemoryListingRepo()
	svc := newListingServiceForTests(repo, nil)
	ownerID := uuid.New()

	input := validListingInput()
	input.Publish = true
	listing, err := svc.Create(context.Background(), ownerID, input)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := svc.Archive(context.Background(), listing.ID, ownerID, false); err != nil {
		t.Fatalf("Archive returned error: %v", err)
	}

	stored, err := repo.FindByID(context.Background(), listing.ID)
	if err != nil {
		t.Fatalf("expected the row to survive archival: %v", err)
	}
	if stored.Status != domain.ListingStatusArchived {
		t.Fatalf("expected archived status, got %q", stored.Status)
	}

	if _, err := svc.GetPublished(context.Background(), listing.ID); !errors.Is(err, ErrListingNotFound) {
		t.Fatalf("expected archived listing hidden from the catalogue, got %v", err)
	}
}

func TestGetPublishedHidesDrafts(t *testing.T) {
	repo := newMemoryListingRepo()
	svc := newListingServiceForTests(repo, nil)

	listing, err := svc.Create(context.Background(), uuid.New(), validListingInput())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if _, err := svc.GetPublished(context.Background(), listing.ID); !errors.Is(err, ErrListingNotFound) {
		t.Fatalf("expected draft to be invisible, got %v", err)
	}
}

func TestAddPhotoValidatesUpload(t *testing.T) {
	repo := newMemoryListingRepo()
	storage := &recordingStorage{}
	svc := newListingServiceForTests(repo, storage)
	ownerID := uuid.New()

	listing, err := svc.Create(context.Background(), ownerID, validListingInput())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	payload := strings.Repeat("x", 64)

	if _, err := svc.AddPhoto(context.Background(), listing.ID, ownerID, false, ListingPhotoUpload{}); !errors.Is(err, ErrPhotoRequired) {
		t.Fatalf("expected ErrPhotoRequired, got %v", err)
	}
	if _, err := svc.AddPhoto(context.Background(), listing.ID, ownerID, false, ListingPhotoUpload{
		Reader:      bytes.NewReader(make([]byte, 2048)),
		Size:        2048,
		ContentType: "image/jpeg",
	}); !errors.Is(err, ErrPhotoTooLarge) {
		t.Fatalf("expected ErrPhotoTooLarge, got %v", err)
	}
	if _, err := svc.AddPhoto(context.Background(), listing.ID, ownerID, false, ListingPhotoUpload{
		Reader:      strings.NewReader(payload),
		Size:        int64(len(payload)),
		ContentType: "application/pdf",
	}); !errors.Is(err, ErrPhotoUnsupportedType) {
		t.Fatalf("expected ErrPhotoUnsupportedType, got %v", err)
	}

	updated, err := svc.AddPhoto(context.Background(), listing.ID, ownerID, false, ListingPhotoUpload{
		Reader:      strings.NewReader(payload),
		Size:        int64(len(payload)),
		FileName:    "salon.jpg",
		ContentType: "image/jpeg",
	})
	if err != nil {
		t.Fatalf("AddPhoto returned error: %v", err)
	}
	if len(updated.Photos) != 1 {
		t.Fatalf("expected one photo, got %d", len(updated.Photos))
	}
	if storage.bucket != "listings-test" {
		t.Fatalf("expected upload into the configured bucket, got %q", storage.bucket)
	}
	if !strings.HasPrefix(storage.objectName, "listings/"+listing.ID.String()+"/") {
		t.Fatalf("unexpected object name %q", storage.objectName)
	}
	if !strings.HasSuffix(storage.objectName, ".jpg") {
		t.Fatalf("expected jpg extension, got %q", storage.objectName)
	}
}

func TestAddPhotoWithoutStorage(t *testing.T) {
	repo := newMemoryListingRepo()
	svc := newListingServiceForTests(repo, nil)
	ownerID := uuid.New()

	listing, err := svc.Create(context.Background(), ownerID, validListingInput())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	_, err = svc.AddPhoto(context.Background(), listing.ID, ownerID, false, ListingPhotoUpload{
		Reader:      strings.NewReader("data"),
		Size:        4,
		ContentType: "image/png",
	})
	if !errors.Is(err, ErrPhotoStorageOffline) {
		t.Fatalf("expected ErrPhotoStorageOffline, got %v", err)
	}
}

func TestNormalizePagination(t *testing.T) {
	cases := []struct {
		limit, offset         int
		wantLimit, wantOffset int
	}{
		{0, 0, 20, 0},
		{-5, -3, 20, 0},
		{50, 10, 50, 10},
		{500, 0, 100, 0},
	}
	for _, tc := range cases {
		limit, offset := normalizePagination(tc.limit, tc.offset)
		if limit != tc.wantLimit || offset != tc.wantOffset {
			t.Errorf("normalizePagination(%d,%d) = (%d,%d), want (%d,%d)",
				tc.limit, tc.offset, limit, offset, tc.wantLimit, tc.wantOffset)
		}
	}
}
