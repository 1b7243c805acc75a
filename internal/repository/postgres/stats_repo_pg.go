package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/atlasimmo/atlas-immo-api/internal/domain"
)

type StatsRepository struct {
	db *sqlx.DB
}

func NewStatsRepo(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

func (r *StatsRepository) Collect(ctx context.Context) (*domain.AdminStats, error) {
	stats := &domain.AdminStats{
		ListingsByStatus: map[string]int64{},
		TicketsByStatus:  map[string]int64{},
	}

	if err := r.db.GetContext(ctx, &stats.TotalUsers, `SELECT COUNT(*) FROM user_account`); err != nil {
		return nil, err
	}
	if err := r.db.GetContext(ctx, &stats.SignupsLast30Days,
		`SELECT COUNT(*) FROM user_account WHERE created_at >= NOW() - INTERVAL '30 days'`); err != nil {
		return nil, err
	}
	if err := r.db.GetContext(ctx, &stats.TotalConversations, `SELECT COUNT(*) FROM conversation`); err != nil {
		return nil, err
	}
	if err := r.db.GetContext(ctx, &stats.TotalMessages, `SELECT COUNT(*) FROM message`); err != nil {
		return nil, err
	}

	type statusCount struct {
		Status string `db:"status"`
		Count  int64  `db:"count"`
	}

	listingCounts := []statusCount{}
	if err := r.db.SelectContext(ctx, &listingCounts,
		`SELECT status, COUNT(*) AS count FROM listing GROUP BY status`); err != nil {
		return nil, err
	}
	for _, row := range listingCounts {
		stats.ListingsByStatus[row.Status] = row.Count
	}

	ticketCounts := []statusCount{}
	if err := r.db.SelectContext(ctx, &ticketCounts,
		`SELECT status, COUNT(*) AS count FROM ticket GROUP BY status`); err != nil {
		return nil, err
	}
	for _, row := range ticketCounts {
		stats.TicketsByStatus[row.Status] = row.Count
	}

	return stats, nil
}
