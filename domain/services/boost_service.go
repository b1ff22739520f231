package services

import (
	"context"
	"fmt"
	"time"

	"tapown/domain/entities"
	"tapown/domain/events"
	"tapown/domain/interfaces"
)

type boostService struct {
	accountRepo    interfaces.AccountRepository
	ledgerRepo     interfaces.LedgerRepository
	eventPublisher interfaces.EventPublisher
	engine         *RewardEngine
}

// NewBoostService creates a service handling the once-per-day boost game
func NewBoostService(
	accountRepo interfaces.AccountRepository,
	ledgerRepo interfaces.LedgerRepository,
	eventPublisher interfaces.EventPublisher,
	engine *RewardEngine,
) *boostService {
	return &boostService{
		accountRepo:    accountRepo,
		ledgerRepo:     ledgerRepo,
		eventPublisher: eventPublisher,
		engine:         engine,
	}
}

// Play consumes the daily boost gate and evaluates the guess. The gate is a
// single compare-and-set on the stored last-play date, so two concurrent
// plays on the same day cannot both succeed. The secret is drawn after the
// gate is taken, fresh for this evaluation.
//
// Returns entities.ErrBoostAlreadyPlayed when the gate was already consumed
// today.
func (s *boostService) Play(ctx context.Context, accountID int64, displayName string, guess int, now time.Time) (*interfaces.BoostResult, error) {
	if _, _, err := s.accountRepo.GetOrCreate(ctx, accountID, displayName); err != nil {
		return nil, fmt.Errorf("failed to get or create account %d: %w", accountID, err)
	}

	today := entities.DayOf(now)
	consumed, err := s.accountRepo.SetLastBoostDate(ctx, accountID, today)
	if err != nil {
		return nil, fmt.Errorf("failed to consume boost gate for account %d: %w", accountID, err)
	}
	if !consumed {
		return nil, entities.ErrBoostAlreadyPlayed
	}

	var secret int
	won, reward := s.engine.BoostOutcome(guess, func() int {
		secret = s.engine.DrawBoostSecret()
		return secret
	})

	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account %d: %w", accountID, err)
	}
	if account == nil {
		return nil, entities.ErrAccountNotFound
	}

	if won {
		account, err = s.accountRepo.ApplyDelta(ctx, accountID, reward, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to apply boost reward to account %d: %w", accountID, err)
		}

		if err := recordReward(ctx, s.ledgerRepo, s.eventPublisher,
			accountID, account.Balance-reward, account.Balance, entities.ReasonBoostWin,
			map[string]any{"guess": guess, "secret": secret}); err != nil {
			return nil, err
		}
	}

	if s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(events.BoostPlayedEvent{
			AccountID: accountID,
			Guess:     guess,
			Secret:    secret,
			Won:       won,
			Reward:    reward,
		}); err != nil {
			return nil, fmt.Errorf("failed to publish boost played event: %w", err)
		}
	}

	return &interfaces.BoostResult{Account: account, Won: won, Secret: secret, Reward: reward}, nil
}
