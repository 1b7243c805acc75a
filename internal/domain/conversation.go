package domain

import (
	"time"

	"github.com/google/uuid"
)

// Conversation ties a buyer to the owner of a listing. One conversation per
// (listing, buyer) pair.
type Conversation struct {
	ID        uuid.UUID `db:"id" json:"id"`
	ListingID uuid.UUID `db:"listing_id" json:"listing_id"`
	BuyerID   uuid.UUID `db:"buyer_id" json:"buyer_id"`
	SellerID  uuid.UUID `db:"seller_id" json:"seller_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

func (c *Conversation) HasParticipant(userID uuid.UUID) bool {
	return c.BuyerID == userID || c.SellerID == userID
}

type Message struct {
	ID             int64      `db:"id" json:"id"`
	ConversationID uuid.UUID  `db:"conversation_id" json:"conversation_id"`
	SenderID       uuid.UUID  `db:"sender_id" json:"sender_id"`
	Body           string     `db:"body" json:"body"`
	ReadAt         *time.Time `db:"read_at" json:"read_at,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}

// ConversationListItem is the inbox row: conversation plus listing title and
// last-message preview.
type ConversationListItem struct {
	Conversation
	ListingTitle    string     `db:"listing_title" json:"listing_title"`
	LastMessageBody *string    `db:"last_message_body" json:"last_message_body,omitempty"`
	LastMessageAt   *time.Time `db:"last_message_at" json:"last_message_at,omitempty"`
	UnreadCount     int64      `db:"unread_count" json:"unread_count"`
}
