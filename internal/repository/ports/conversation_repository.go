package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/atlasimmo/atlas-immo-api/internal/domain"
)

type ConversationRepository interface {
	Create(ctx context.Context, listingID, buyerID, sellerID uuid.UUID) (*domain.Conversation, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Conversation, error)
	FindByListingAndBuyer(ctx context.Context, listingID, buyerID uuid.UUID) (*domain.Conversation, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.ConversationListItem, error)

	AddMessage(ctx context.Context, conversationID, senderID uuid.UUID, body string) (*domain.Message, error)
	ListMessages(ctx context.Context, conversationID uuid.UUID, limit, offset int) ([]domain.Message, error)
	// MarkRead stamps every message not sent by readerID as read.
	MarkRead(ctx context.Context, conversationID, readerID uuid.UUID) error
}
