package services

import (
	"context"
	"fmt"

	"tapown/domain/entities"
	"tapown/domain/interfaces"
)

type leaderboardService struct {
	accountRepo interfaces.AccountRepository
}

// NewLeaderboardService creates a read-only top-N projection over the account store
func NewLeaderboardService(accountRepo interfaces.AccountRepository) *leaderboardService {
	return &leaderboardService{accountRepo: accountRepo}
}

// Top returns up to n ranked entries, ordered by balance descending with ties
// broken by account id ascending for determinism.
func (s *leaderboardService) Top(ctx context.Context, n int) ([]*entities.LeaderboardEntry, error) {
	accounts, err := s.accountRepo.ListTop(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("failed to list top accounts: %w", err)
	}

	entries := make([]*entities.LeaderboardEntry, len(accounts))
	for i, account := range accounts {
		entries[i] = &entities.LeaderboardEntry{
			Rank:        i + 1,
			AccountID:   account.ID,
			DisplayName: account.DisplayName,
			Balance:     account.Balance,
		}
	}
	return entries, nil
}
