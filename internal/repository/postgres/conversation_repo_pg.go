package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/atlasimmo/atlas-immo-api/internal/domain"
)

const conversationColumns = `id, listing_id, buyer_id, seller_id, created_at`

type ConversationRepository struct {
	db *sqlx.DB
}

func NewConversationRepo(db *sqlx.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

func (r *ConversationRepository) Create(ctx context.Context, listingID, buyerID, sellerID uuid.UUID) (*domain.Conversation, error) {
	const query = `
        INSERT INTO conversation (listing_id, buyer_id, seller_id)
        VALUES ($1, $2, $3)
        RETURNING ` + conversationColumns

	row := r.db.QueryRowxContext(ctx, query, listingID, buyerID, sellerID)
	var conv domain.Conversation
	if err := row.StructScan(&conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *ConversationRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Conversation, error) {
	const query = `SELECT ` + conversationColumns + ` FROM conversation WHERE id = $1`

	var conv domain.Conversation
	if err := r.db.GetContext(ctx, &conv, query, id); err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *ConversationRepository) FindByListingAndBuyer(ctx context.Context, listingID, buyerID uuid.UUID) (*domain.Conversation, error) {
	const query = `
        SELECT ` + conversationColumns + `
        FROM conversation
        WHERE listing_id = $1 AND buyer_id = $2
    `
	var conv domain.Conversation
	if err := r.db.GetContext(ctx, &conv, query, listingID, buyerID); err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *ConversationRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.ConversationListItem, error) {
	const query = `
        SELECT
            c.id,
            c.listing_id,
            c.buyer_id,
            c.seller_id,
            c.created_at,
            l.title AS listing_title,
            last_msg.body AS last_message_body,
            last_msg.created_at AS last_message_at,
            COALESCE(unread.count, 0) AS unread_count
        FROM conversation c
        JOIN listing l ON l.id = c.listing_id
        LEFT JOIN LATERAL (
            SELECT m.body, m.created_at
            FROM message m
            WHERE m.conversation_id = c.id
            ORDER BY m.created_at DESC
            LIMIT 1
        ) last_msg ON TRUE
        LEFT JOIN LATERAL (
            SELECT COUNT(*) AS count
            FROM message m
            WHERE m.conversation_id = c.id
              AND m.sender_id <> $1
              AND m.read_at IS NULL
        ) unread ON TRUE
        WHERE c.buyer_id = $1 OR c.seller_id = $1
        ORDER BY COALESCE(last_msg.created_at, c.created_at) DESC
        LIMIT $2 OFFSET $3
    `
	items := []domain.ConversationListItem{}
	if err := r.db.SelectContext(ctx, &items, query, userID, limit, offset); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *ConversationRepository) AddMessage(ctx context.Context, conversationID, senderID uuid.UUID, body string) (*domain.Message, error) {
	const query = `
        INSERT INTO message (conversation_id, sender_id, body)
        VALUES ($1, $2, $3)
        RETURNING id, conversation_id, sender_id, body, read_at, created_at
    `
	row := r.db.QueryRowxContext(ctx, query, conversationID, senderID, body)
	var msg domain.Message
	if err := row.StructScan(&msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *ConversationRepository) ListMessages(ctx context.Context, conversationID uuid.UUID, limit, offset int) ([]domain.Message, error) {
	const query = `
        SELECT id, conversation_id, sender_id, body, read_at, created_at
        FROM message
        WHERE conversation_id = $1
        ORDER BY created_at ASC
        LIMIT $2 OFFSET $3
    `
	messages := []domain.Message{}
	if err := r.db.SelectContext(ctx, &messages, query, conversationID, limit, offset); err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *ConversationRepository) MarkRead(ctx context.Context, conversationID, readerID uuid.UUID) error {
	const query = `
        UPDATE message
        SET read_at = NOW()
        WHERE conversation_id = $1
          AND sender_id <> $2
          AND read_at IS NULL
    `
	_, err := r.db.ExecContext(ctx, query, conversationID, readerID)
	return err
}
