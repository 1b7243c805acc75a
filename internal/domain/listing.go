package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	ListingStatusDraft     = "draft"
	ListingStatusPublished = "published"
	ListingStatusArchived  = "archived"
)

const (
	PropertyTypeApartment  = "apartment"
	PropertyTypeHouse      = "house"
	PropertyTypeLand       = "land"
	PropertyTypeCommercial = "commercial"
	PropertyTypeParking    = "parking"
)

const (
	TransactionSale = "sale"
	TransactionRent = "rent"
)

// Listing is a property advert. PriceCents avoids floating-point money;
// Photos holds public object-storage URLs in display order.
type Listing struct {
	ID              uuid.UUID      `db:"id" json:"id"`
	OwnerID         uuid.UUID      `db:"owner_id" json:"owner_id"`
	Title           string         `db:"title" json:"title"`
	Description     *string        `db:"description" json:"description,omitempty"`
	PriceCents      int64          `db:"price_cents" json:"price_cents"`
	PropertyType    string         `db:"property_type" json:"property_type"`
	TransactionType string         `db:"transaction_type" json:"transaction_type"`
	SurfaceM2       *float64       `db:"surface_m2" json:"surface_m2,omitempty"`
	Rooms           *int           `db:"rooms" json:"rooms,omitempty"`
	Bedrooms        *int           `db:"bedrooms" json:"bedrooms,omitempty"`
	City            string         `db:"city" json:"city"`
	PostalCode      string         `db:"postal_code" json:"postal_code"`
	Address         *string        `db:"address" json:"address,omitempty"`
	Latitude        *float64       `db:"latitude" json:"latitude,omitempty"`
	Longitude       *float64       `db:"longitude" json:"longitude,omitempty"`
	Photos          pq.StringArray `db:"photos" json:"photos"`
	Status          string         `db:"status" json:"status"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}

func (l *Listing) IsPublished() bool {
	return l.Status == ListingStatusPublished
}

// ListingListFilter narrows the public catalogue queries.
type ListingListFilter struct {
	City            string
	PropertyTypes   []string
	TransactionType string
	MinPriceCents   *int64
	MaxPriceCents   *int64
	MinSurfaceM2    *float64
	Limit           int
	Offset          int
}

func ValidPropertyType(value string) bool {
	switch value {
	case PropertyTypeApartment, PropertyTypeHouse, PropertyTypeLand, PropertyTypeCommercial, PropertyTypeParking:
		return true
	}
	return false
}

func ValidTransactionType(value string) bool {
	return value == TransactionSale || value == TransactionRent
}
