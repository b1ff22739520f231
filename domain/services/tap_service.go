package services

import (
	"context"
	"fmt"

	"tapown/domain/entities"
	"tapown/domain/events"
	"tapown/domain/interfaces"
)

type tapService struct {
	accountRepo    interfaces.AccountRepository
	ledgerRepo     interfaces.LedgerRepository
	eventPublisher interfaces.EventPublisher
	engine         *RewardEngine
}

// NewTapService creates a service handling primitive tap actions
func NewTapService(
	accountRepo interfaces.AccountRepository,
	ledgerRepo interfaces.LedgerRepository,
	eventPublisher interfaces.EventPublisher,
	engine *RewardEngine,
) *tapService {
	return &tapService{
		accountRepo:    accountRepo,
		ledgerRepo:     ledgerRepo,
		eventPublisher: eventPublisher,
		engine:         engine,
	}
}

// Tap applies one tap: the account is created lazily if absent, the tap
// reward is computed and applied atomically, and the change is recorded in
// the ledger.
func (s *tapService) Tap(ctx context.Context, accountID int64, displayName string) (*interfaces.TapResult, error) {
	account, created, err := s.accountRepo.GetOrCreate(ctx, accountID, displayName)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create account %d: %w", accountID, err)
	}
	if created && s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(events.AccountCreatedEvent{
			AccountID:   account.ID,
			DisplayName: account.DisplayName,
		}); err != nil {
			return nil, fmt.Errorf("failed to publish account created event: %w", err)
		}
	}

	reward := s.engine.TapReward()

	updated, err := s.accountRepo.ApplyDelta(ctx, accountID, reward, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to apply tap reward to account %d: %w", accountID, err)
	}

	if err := recordReward(ctx, s.ledgerRepo, s.eventPublisher,
		accountID, updated.Balance-reward, updated.Balance, entities.ReasonTap, nil); err != nil {
		return nil, err
	}

	return &interfaces.TapResult{Account: updated, Reward: reward}, nil
}
