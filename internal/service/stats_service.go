package service

import (
	"context"

	"github.com/atlasimmo/atlas-immo-api/internal/domain"
	"github.com/atlasimmo/atlas-immo-api/internal/repository/ports"
)

type StatsService struct {
	stats ports.StatsRepository
}

func NewStatsService(statsRepo ports.StatsRepository) *StatsService {
	return &StatsService{stats: statsRepo}
}

func (s *StatsService) Overview(ctx context.Context) (*domain.AdminStats, error) {
	return s.stats.Collect(ctx)
}
