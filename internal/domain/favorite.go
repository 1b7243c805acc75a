package domain

import (
	"time"

	"github.com/google/uuid"
)

type Favorite struct {
	ID        int64     `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	ListingID uuid.UUID `db:"listing_id" json:"listing_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// FavoriteListItem joins the saved listing summary onto the favorite row.
type FavoriteListItem struct {
	Favorite
	ListingTitle  string  `db:"listing_title" json:"listing_title"`
	ListingCity   string  `db:"listing_city" json:"listing_city"`
	ListingPrice  int64   `db:"listing_price_cents" json:"listing_price_cents"`
	ListingStatus string  `db:"listing_status" json:"listing_status"`
	ListingPhoto  *string `db:"listing_photo" json:"listing_photo,omitempty"`
}
