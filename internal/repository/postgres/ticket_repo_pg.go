package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/atlasimmo/atlas-immo-api/internal/domain"
)

const ticketColumns = `id, user_id, subject, body, status, created_at, updated_at`

type TicketRepository struct {
	db *sqlx.DB
}

func NewTicketRepo(db *sqlx.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

func (r *TicketRepository) Create(ctx context.Context, userID uuid.UUID, subject, body string) (*domain.Ticket, error) {
	const query = `
        INSERT INTO ticket (user_id, subject, body, status)
        VALUES ($1, $2, $3, 'open')
        RETURNING ` + ticketColumns

	row := r.db.QueryRowxContext(ctx, query, userID, subject, body)
	var ticket domain.Ticket
	if err := row.StructScan(&ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *TicketRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + ` FROM ticket WHERE id = $1`

	var ticket domain.Ticket
	if err := r.db.GetContext(ctx, &ticket, query, id); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *TicketRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Ticket, error) {
	const query = `
        SELECT ` + ticketColumns + `
        FROM ticket
        WHERE user_id = $1
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3
    `
	tickets := []domain.Ticket{}
	if err := r.db.SelectContext(ctx, &tickets, query, userID, limit, offset); err != nil {
		return nil, err
	}
	return tickets, nil
}

func (r *TicketRepository) List(ctx context.Context, status string, limit, offset int) ([]domain.Ticket, error) {
	params := make([]any, 0, 3)
	builder := strings.Builder{}
	builder.WriteString(`SELECT ` + ticketColumns + ` FROM ticket`)

	if status != "" {
		builder.WriteString("\n\tWHERE status = $1")
		params = append(params, status)
	}

	builder.WriteString("\n\tORDER BY created_at DESC")
	builder.WriteString(fmt.Sprintf("\n\tLIMIT $%d OFFSET $%d", len(params)+1, len(params)+2))
	params = append(params, limit, offset)

	tickets := []domain.Ticket{}
	if err := r.db.SelectContext(ctx, &tickets, builder.String(), params...); err != nil {
		return nil, err
	}
	return tickets, nil
}

func (r *TicketRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*domain.Ticket, error) {
	const query = `
        UPDATE ticket
        SET status = $2,
            updated_at = NOW()
        WHERE id = $1
        RETURNING ` + ticketColumns

	row := r.db.QueryRowxContext(ctx, query, id, status)
	var ticket domain.Ticket
	if err := row.StructScan(&ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}
