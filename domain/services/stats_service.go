package services

import (
	"context"
	"fmt"
	"time"

	"tapown/domain/entities"
	"tapown/domain/interfaces"
)

// DailyActiveWindow bounds the "active today" stat
const DailyActiveWindow = 24 * time.Hour

type statsService struct {
	accountRepo interfaces.AccountRepository
}

// NewStatsService creates a read-only aggregator over the account store
func NewStatsService(accountRepo interfaces.AccountRepository) *statsService {
	return &statsService{accountRepo: accountRepo}
}

// GlobalStats derives the global counters from the committed account state
func (s *statsService) GlobalStats(ctx context.Context, now time.Time) (*entities.GlobalStats, error) {
	stats, err := s.accountRepo.AggregateStats(ctx, now, DailyActiveWindow)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate global stats: %w", err)
	}
	return stats, nil
}
