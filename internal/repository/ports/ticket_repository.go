package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/atlasimmo/atlas-immo-api/internal/domain"
)

type TicketRepository interface {
	Create(ctx context.Context, userID uuid.UUID, subject, body string) (*domain.Ticket, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Ticket, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Ticket, error)
	List(ctx context.Context, status string, limit, offset int) ([]domain.Ticket, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*domain.Ticket, error)
}
