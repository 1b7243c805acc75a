package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/atlasimmo/atlas-immo-api/internal/domain"
	"github.com/atlasimmo/atlas-immo-api/internal/repository/ports"
	"github.com/atlasimmo/atlas-immo-api/internal/transport/mail"
)

var (
	ErrTicketNotFound      = errors.New("ticket not found")
	ErrTicketForbidden     = errors.New("not allowed to view this ticket")
	ErrTicketValidation    = errors.New("ticket subject and body required")
	ErrInvalidTicketStatus = errors.New("invalid ticket status")
)

var ticketStatusLabels = map[string]string{
	domain.TicketStatusOpen:       "ouvert",
	domain.TicketStatusInProgress: "en cours de traitement",
	domain.TicketStatusClosed:     "clôturé",
}

type TicketService struct {
	tickets  ports.TicketRepository
	users    ports.UserRepository
	notifier mail.Notifier
}

func NewTicketService(ticketRepo ports.TicketRepository, userRepo ports.UserRepository, notifier mail.Notifier) *TicketService {
	return &TicketService{tickets: ticketRepo, users: userRepo, notifier: notifier}
}

func (s *TicketService) Create(ctx context.Context, userID uuid.UUID, subject, body string) (*domain.Ticket, error) {
	subject = strings.TrimSpace(subject)
	body = strings.TrimSpace(body)
	if subject == "" || body == "" {
		return nil, ErrTicketValidation
	}
	return s.tickets.Create(ctx, userID, subject, body)
}

func (s *TicketService) Get(ctx context.Context, id, requesterID uuid.UUID, isAdmin bool) (*domain.Ticket, error) {
	ticket, err := s.tickets.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}
	if ticket.UserID != requesterID && !isAdmin {
		return nil, ErrTicketForbidden
	}
	return ticket, nil
}

func (s *TicketService) ListMine(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Ticket, error) {
	limit, offset = normalizePagination(limit, offset)
	return s.tickets.ListByUser(ctx, userID, limit, offset)
}

func (s *TicketService) List(ctx context.Context, status string, limit, offset int) ([]domain.Ticket, error) {
	if status != "" && !domain.ValidTicketStatus(status) {
		return nil, ErrInvalidTicketStatus
	}
	limit, offset = normalizePagination(limit, offset)
	return s.tickets.List(ctx, status, limit, offset)
}

// UpdateStatus moves a ticket through its lifecycle and notifies the
// requester best-effort.
func (s *TicketService) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*domain.Ticket, error) {
	if !domain.ValidTicketStatus(status) {
		return nil, ErrInvalidTicketStatus
	}

	ticket, err := s.tickets.UpdateStatus(ctx, id, status)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}

	s.notifyStatusChange(ctx, ticket)
	return ticket, nil
}

func (s *TicketService) notifyStatusChange(ctx context.Context, ticket *domain.Ticket) {
	if s.notifier == nil {
		return
	}
	user, err := s.users.FindByID(ctx, ticket.UserID)
	if err != nil {
		log.Printf("ticket: lookup requester %s failed: %v", ticket.UserID, err)
		return
	}

	label := ticketStatusLabels[ticket.Status]
	subject := fmt.Sprintf("Votre ticket « %s » est %s", ticket.Subject, label)
	body := fmt.Sprintf(`<p>Bonjour,</p>
<p>Le statut de votre demande de support « %s » est maintenant : <strong>%s</strong>.</p>`, ticket.Subject, label)

	notifier := s.notifier
	email := user.Email
	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := notifier.Send(sendCtx, email, subject, body); err != nil {
			log.Printf("ticket: notification to %s dropped: %v", email, err)
		}
	}()
}
