package ports

import (
	"context"

	"github.com/atlasimmo/atlas-immo-api/internal/domain"
)

type StatsRepository interface {
	Collect(ctx context.Context) (*domain.AdminStats, error)
}
