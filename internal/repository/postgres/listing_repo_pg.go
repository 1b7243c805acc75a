package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/atlasimmo/atlas-immo-api/internal/domain"
)

const listingColumns = `id, owner_id, title, description, price_cents, property_type, transaction_type,
        surface_m2, rooms, bedrooms, city, postal_code, address, latitude, longitude,
        photos, status, created_at, updated_at`

type ListingRepository struct {
	db *sqlx.DB
}

func NewListingRepo(db *sqlx.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

func (r *ListingRepository) Create(ctx context.Context, listing *domain.Listing) (*domain.Listing, error) {
	const query = `
        INSERT INTO listing (
            owner_id, title, description, price_cents, property_type, transaction_type,
            surface_m2, rooms, bedrooms, city, postal_code, address, latitude, longitude,
            photos, status
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
        RETURNING ` + listingColumns

	photos := listing.Photos
	if photos == nil {
		photos = pq.StringArray{}
	}

	row := r.db.QueryRowxContext(ctx, query,
		listing.OwnerID, listing.Title, listing.Description, listing.PriceCents,
		listing.PropertyType, listing.TransactionType, listing.SurfaceM2,
		listing.Rooms, listing.Bedrooms, listing.City, listing.PostalCode,
		listing.Address, listing.Latitude, listing.Longitude, photos, listing.Status,
	)
	var stored domain.Listing
	if err := row.StructScan(&stored); err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *ListingRepository) Update(ctx context.Context, listing *domain.Listing) (*domain.Listing, error) {
	const query = `
        UPDATE listing
        SET title = $2,
            description = $3,
            price_cents = $4,
            property_type = $5,
            transaction_type = $6,
            surface_m2 = $7,
            rooms = $8,
            bedrooms = $9,
            city = $10,
            postal_code = $11,
            address = $12,
            latitude = $13,
            longitude = $14,
            status = $15,
            updated_at = NOW()
        WHERE id = $1
        RETURNING ` + listingColumns

	row := r.db.QueryRowxContext(ctx, query,
		listing.ID, listing.Title, listing.Description, listing.PriceCents,
		listing.PropertyType, listing.TransactionType, listing.SurfaceM2,
		listing.Rooms, listing.Bedrooms, listing.City, listing.PostalCode,
		listing.Address, listing.Latitude, listing.Longitude, listing.Status,
	)
	var stored domain.Listing
	if err := row.StructScan(&stored); err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *ListingRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	const query = `SELECT ` + listingColumns + ` FROM listing WHERE id = $1`

	var listing domain.Listing
	if err := r.db.GetContext(ctx, &listing, query, id); err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *ListingRepository) ListPublished(ctx context.Context, filter domain.ListingListFilter) ([]domain.Listing, error) {
	builder, params := buildPublishedListingQuery(`SELECT `+listingColumns+` FROM listing`, filter)

	builder.WriteString("\n\tORDER BY created_at DESC")
	builder.WriteString(fmt.Sprintf("\n\tLIMIT $%d OFFSET $%d", len(params)+1, len(params)+2))
	params = append(params, filter.Limit, filter.Offset)

	listings := []domain.Listing{}
	if err := r.db.SelectContext(ctx, &listings, builder.String(), params...); err != nil {
		return nil, err
	}
	return listings, nil
}

func (r *ListingRepository) CountPublished(ctx context.Context, filter domain.ListingListFilter) (int64, error) {
	builder, params := buildPublishedListingQuery(`SELECT COUNT(*) FROM listing`, filter)

	var total int64
	if err := r.db.GetContext(ctx, &total, builder.String(), params...); err != nil {
		return 0, err
	}
	return total, nil
}

func buildPublishedListingQuery(base string, filter domain.ListingListFilter) (*strings.Builder, []any) {
	params := make([]any, 0, 6)
	builder := &strings.Builder{}
	builder.WriteString(base)
	builder.WriteString("\n\tWHERE status = 'published'")

	if city := strings.TrimSpace(filter.City); city != "" {
		placeholder := fmt.Sprintf("$%d", len(params)+1)
		builder.WriteString("\n\tAND city ILIKE " + placeholder)
		params = append(params, "%"+city+"%")
	}

	if len(filter.PropertyTypes) > 0 {
		placeholder := fmt.Sprintf("$%d", len(params)+1)
		builder.WriteString("\n\tAND property_type = ANY(" + placeholder + ")")
		params = append(params, pq.StringArray(filter.PropertyTypes))
	}

	if filter.TransactionType != "" {
		placeholder := fmt.Sprintf("$%d", len(params)+1)
		builder.WriteString("\n\tAND transaction_type = " + placeholder)
		params = append(params, filter.TransactionType)
	}

	if filter.MinPriceCents != nil {
		placeholder := fmt.Sprintf("$%d", len(params)+1)
		builder.WriteString("\n\tAND price_cents >= " + placeholder)
		params = append(params, *filter.MinPriceCents)
	}

	if filter.MaxPriceCents != nil {
		placeholder := fmt.Sprintf("$%d", len(params)+1)
		builder.WriteString("\n\tAND price_cents <= " + placeholder)
		params = append(params, *filter.MaxPriceCents)
	}

	if filter.MinSurfaceM2 != nil {
		placeholder := fmt.Sprintf("$%d", len(params)+1)
		builder.WriteString("\n\tAND surface_m2 >= " + placeholder)
		params = append(params, *filter.MinSurfaceM2)
	}

	return builder, params
}

func (r *ListingRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]domain.Listing, error) {
	const query = `
        SELECT ` + listingColumns + `
        FROM listing
        WHERE owner_id = $1
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3
    `
	listings := []domain.Listing{}
	if err := r.db.SelectContext(ctx, &listings, query, ownerID, limit, offset); err != nil {
		return nil, err
	}
	return listings, nil
}

func (r *ListingRepository) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	const query = `
        UPDATE listing
        SET status = $2,
            updated_at = NOW()
        WHERE id = $1
    `
	_, err := r.db.ExecContext(ctx, query, id, status)
	return err
}

func (r *ListingRepository) AppendPhoto(ctx context.Context, id uuid.UUID, photoURL string) (*domain.Listing, error) {
	const query = `
        UPDATE listing
        SET photos = array_append(photos, $2),
            updated_at = NOW()
        WHERE id = $1
        RETURNING ` + listingColumns

	row := r.db.QueryRowxContext(ctx, query, id, photoURL)
	var listing domain.Listing
	if err := row.StructScan(&listing); err != nil {
		return nil, err
	}
	return &listing, nil
}
