package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/atlasimmo/atlas-immo-api/internal/domain"
)

type memoryTicketRepo struct {
	mu      sync.Mutex
	tickets map[uuid.UUID]*domain.Ticket
}

func newMemoryTicketRepo() *memoryTicketRepo {
	return &memoryTicketRepo{tickets: make(map[uuid.UUID]*domain.Ticket)}
}

func (r *memoryTicketRepo) Create(ctx context.Context, userID uuid.UUID, subject, body string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	ticket := &domain.Ticket{
		ID:        uuid.New(),
		UserID:    userID,
		Subject:   subject,
		Body:      body,
		Status:    domain.TicketStatusOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.tickets[ticket.ID] = ticket
	clone := *ticket
	return &clone, nil
}

func (r *memoryTicketRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tickets[id]; ok {
		clone := *t
		return &clone, nil
	}
	return nil, sql.ErrNoRows
}

func (r *memoryTicketRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Ticket, 0)
	for _, t := range r.tickets {
		if t.UserID == userID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *memoryTicketRepo) List(ctx context.Context, status string, limit, offset int) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Ticket, 0)
	for _, t := range r.tickets {
		if status == "" || t.Status == status {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *memoryTicketRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickets[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	t.Status = status
	t.UpdatedAt = time.Now()
	clone := *t
	return &clone, nil
}

func newTicketServiceForTests(t *testing.T) (*TicketService, *memoryTicketRepo, *memoryUserRepo, *channelNotifier) {
	t.Helper()
	tickets := newMemoryTicketRepo()
	users := newMemoryUserRepo()
	notifier := newChannelNotifier()
	return NewTicketService(tickets, users, notifier), tickets, users, notifier
}

func TestCreateTicket(t *testing.T) {
	svc, _, _, _ := newTicketServiceForTests(t)
	userID := uuid.New()

	ticket, err := svc.Create(context.Background(), userID, "  Problème de connexion  ", "Je ne peux plus me connecter.")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if ticket.Subject != "Problème de connexion" {
		t.Fatalf("expected trimmed subject, got %q", ticket.Subject)
	}
	if ticket.Status != domain.TicketStatusOpen {
		t.Fatalf("expected open status, got %q", ticket.Status)
	}

	if _, err := svc.Create(context.Background(), userID, "", "corps"); !errors.Is(err, ErrTicketValidation) {
		t.Fatalf("expected ErrTicketValidation, got %v", err)
	}
	if _, err := svc.Create(context.Background(), userID, "sujet", "   "); !errors.Is(err, ErrTicketValidation) {
		t.Fatalf("expected ErrTicketValidation for blank body, got %v", err)
	}
}

func TestGetTicketOwnership(t *testing.T) {
	svc, _, _, _ := newTicketServiceForTests(t)
	ownerID := uuid.New()

	ticket, err := svc.Create(context.Background(), ownerID, "Sujet", "Corps")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if _, err := svc.Get(context.Background(), ticket.ID, ownerID, false); err != nil {
		t.Fatalf("owner Get returned error: %v", err)
	}
	if _, err := svc.Get(context.Background(), ticket.ID, uuid.New(), false); !errors.Is(err, ErrTicketForbidden) {
		t.Fatalf("expected ErrTicketForbidden, got %v", err)
	}
	if _, err := svc.Get(context.Background(), ticket.ID, uuid.New(), true); err != nil {
		t.Fatalf("admin Get returned error: %v", err)
	}
	if _, err := svc.Get(context.Background(), uuid.New(), ownerID, false); !errors.Is(err, ErrTicketNotFound) {
		t.Fatalf("expected ErrTicketNotFound, got %v", err)
	}
}

func TestListTicketsStatusFilter(t *testing.T) {
	svc, _, _, _ := newTicketServiceForTests(t)

	if _, err := svc.List(context.Background(), "escalated", 0, 0); !errors.Is(err, ErrInvalidTicketStatus) {
		t.Fatalf("expected ErrInvalidTicketStatus, got %v", err)
	}
	if _, err := svc.List(context.Background(), domain.TicketStatusOpen, 0, 0); err != nil {
		t.Fatalf("List returned error: %v", err)
	}
}

func TestUpdateTicketStatusNotifiesRequester(t *testing.T) {
	svc, _, users, notifier := newTicketServiceForTests(t)

	hash := "x"
	requester, err := users.Create(context.Background(), "client@example.com", hash, nil, nil)
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}

	ticket, err := svc.Create(context.Background(), requester.ID, "Annonce bloquée", "Mon annonce a disparu.")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if _, err := svc.UpdateStatus(context.Background(), ticket.ID, "escalated"); !errors.Is(err, ErrInvalidTicketStatus) {
		t.Fatalf("expected ErrInvalidTicketStatus, got %v", err)
	}

	updated, err := svc.UpdateStatus(context.Background(), ticket.ID, domain.TicketStatusInProgress)
	if err != nil {
		t.Fatalf("UpdateStatus returned error: %v", err)
	}
	if updated.Status != domain.TicketStatusInProgress {
		t.Fatalf("expected in_progress, got %q", updated.Status)
	}

	mail := notifier.waitForMail(t)
	if mail.to != "client@example.com" {
		t.Fatalf("expected notification to the requester, got %s", mail.to)
	}
	if !strings.Contains(mail.subject, "Annonce bloquée") {
		t.Fatalf("expected the subject to name the ticket, got %q", mail.subject)
	}
}
