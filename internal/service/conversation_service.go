package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/atlasimmo/atlas-immo-api/internal/domain"
	"github.com/atlasimmo/atlas-immo-api/internal/repository/ports"
)

var (
	ErrConversationNotFound   = errors.New("conversation not found")
	ErrConversationForbidden  = errors.New("not a participant of this conversation")
	ErrMessageValidation      = errors.New("message body required")
	ErrOwnListingConversation = errors.New("cannot start a conversation on your own listing")
)

const maxMessageLength = 4000

type ConversationService struct {
	conversations ports.ConversationRepository
	listings      ports.ListingRepository
}

func NewConversationService(conversationRepo ports.ConversationRepository, listingRepo ports.ListingRepository) *ConversationService {
	return &ConversationService{conversations: conversationRepo, listings: listingRepo}
}

// Start opens (or reuses) the conversation between buyer and the listing
// owner, and posts the first message in the same call.
func (s *ConversationService) Start(ctx context.Context, listingID, buyerID uuid.UUID, body string) (*domain.Conversation, *domain.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" || len(body) > maxMessageLength {
		return nil, nil, ErrMessageValidation
	}

	listing, err := s.listings.FindByID(ctx, listingID)
	if err != nil {
		if isNotFound(err) {
			return nil, nil, ErrListingNotFound
		}
		return nil, nil, err
	}
	if !listing.IsPublished() {
		return nil, nil, ErrListingNotFound
	}
	if listing.OwnerID == buyerID {
		return nil, nil, ErrOwnListingConversation
	}

	conv, err := s.conversations.FindByListingAndBuyer(ctx, listingID, buyerID)
	if err != nil {
		if !isNotFound(err) {
			return nil, nil, err
		}
		conv, err = s.conversations.Create(ctx, listingID, buyerID, listing.OwnerID)
		if err != nil {
			// Lost the race against a concurrent Start for the same pair.
			if isUniqueViolation(err) {
				conv, err = s.conversations.FindByListingAndBuyer(ctx, listingID, buyerID)
			}
			if err != nil {
				return nil, nil, err
			}
		}
	}

	msg, err := s.conversations.AddMessage(ctx, conv.ID, buyerID, body)
	if err != nil {
		return nil, nil, err
	}
	return conv, msg, nil
}

func (s *ConversationService) ListMine(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.ConversationListItem, error) {
	limit, offset = normalizePagination(limit, offset)
	return s.conversations.ListByUser(ctx, userID, limit, offset)
}

func (s *ConversationService) Messages(ctx context.Context, conversationID, requesterID uuid.UUID, limit, offset int) ([]domain.Message, error) {
	conv, err := s.participantConversation(ctx, conversationID, requesterID)
	if err != nil {
		return nil, err
	}
	limit, offset = normalizePagination(limit, offset)
	return s.conversations.ListMessages(ctx, conv.ID, limit, offset)
}

func (s *ConversationService) Send(ctx context.Context, conversationID, senderID uuid.UUID, body string) (*domain.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" || len(body) > maxMessageLength {
		return nil, ErrMessageValidation
	}

	conv, err := s.participantConversation(ctx, conversationID, senderID)
	if err != nil {
		return nil, err
	}
	return s.conversations.AddMessage(ctx, conv.ID, senderID, body)
}

func (s *ConversationService) MarkRead(ctx context.Context, conversationID, readerID uuid.UUID) error {
	conv, err := s.participantConversation(ctx, conversationID, readerID)
	if err != nil {
		return err
	}
	return s.conversations.MarkRead(ctx, conv.ID, readerID)
}

func (s *ConversationService) participantConversation(ctx context.Context, conversationID, userID uuid.UUID) (*domain.Conversation, error) {
	conv, err := s.conversations.FindByID(ctx, conversationID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}
	if !conv.HasParticipant(userID) {
		return nil, ErrConversationForbidden
	}
	return conv, nil
}
