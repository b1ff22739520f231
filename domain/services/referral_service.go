package services

import (
	"context"
	"fmt"
	"strconv"

	"tapown/domain/entities"
	"tapown/domain/events"
	"tapown/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

type referralService struct {
	accountRepo    interfaces.AccountRepository
	referralRepo   interfaces.ReferralEdgeRepository
	ledgerRepo     interfaces.LedgerRepository
	eventPublisher interfaces.EventPublisher
	engine         *RewardEngine
}

// NewReferralService creates a service handling referral attribution
func NewReferralService(
	accountRepo interfaces.AccountRepository,
	referralRepo interfaces.ReferralEdgeRepository,
	ledgerRepo interfaces.LedgerRepository,
	eventPublisher interfaces.EventPublisher,
	engine *RewardEngine,
) *referralService {
	return &referralService{
		accountRepo:    accountRepo,
		referralRepo:   referralRepo,
		ledgerRepo:     ledgerRepo,
		eventPublisher: eventPublisher,
		engine:         engine,
	}
}

// ResolveReferrer resolves a referral code to an account id. A code is the
// referrer's display handle or their numeric id.
// Returns entities.ErrReferrerNotFound when nothing matches.
func (s *referralService) ResolveReferrer(ctx context.Context, code string) (int64, error) {
	if id, err := strconv.ParseInt(code, 10, 64); err == nil {
		account, err := s.accountRepo.GetByID(ctx, id)
		if err != nil {
			return 0, fmt.Errorf("failed to resolve referral code %q: %w", code, err)
		}
		if account != nil {
			return account.ID, nil
		}
	}

	account, err := s.accountRepo.ResolveByDisplayName(ctx, code)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve referral code %q: %w", code, err)
	}
	if account == nil {
		return 0, entities.ErrReferrerNotFound
	}
	return account.ID, nil
}

// Attribute writes the referral edge and pays the configured rewards. The
// caller runs it inside one unit of work so the edge, both account updates
// and the ledger entries commit together.
//
// Self-referrals and repeated attributions for the same referred account are
// no-ops, never errors: they must not break account creation.
func (s *referralService) Attribute(ctx context.Context, referrerID, referredID int64) (*interfaces.ReferralResult, error) {
	if referrerID == referredID {
		log.WithField("account_id", referredID).Debug("Ignoring self-referral")
		return &interfaces.ReferralResult{}, nil
	}

	created, err := s.referralRepo.Create(ctx, referrerID, referredID)
	if err != nil {
		return nil, fmt.Errorf("failed to create referral edge %d -> %d: %w", referrerID, referredID, err)
	}
	if !created {
		// First write won already; this attribution attempt changes nothing.
		return &interfaces.ReferralResult{}, nil
	}

	referrer, err := s.accountRepo.IncrementReferralCount(ctx, referrerID)
	if err != nil {
		return nil, fmt.Errorf("failed to increment referral count for account %d: %w", referrerID, err)
	}

	referrerReward := s.engine.ReferralReward(referrer.ReferralCount)
	if referrerReward > 0 {
		referrer, err = s.accountRepo.ApplyDelta(ctx, referrerID, referrerReward, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to apply referral reward to account %d: %w", referrerID, err)
		}

		reason := entities.ReasonReferralTier
		if s.engine.ReferredWelcomeReward() > 0 {
			reason = entities.ReasonReferralFlat
		}
		if err := recordReward(ctx, s.ledgerRepo, s.eventPublisher,
			referrerID, referrer.Balance-referrerReward, referrer.Balance, reason,
			map[string]any{"referred_id": referredID, "referral_count": referrer.ReferralCount}); err != nil {
			return nil, err
		}
	}

	referredReward := s.engine.ReferredWelcomeReward()
	if referredReward > 0 {
		referred, err := s.accountRepo.ApplyDelta(ctx, referredID, referredReward, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to apply welcome reward to account %d: %w", referredID, err)
		}

		if err := recordReward(ctx, s.ledgerRepo, s.eventPublisher,
			referredID, referred.Balance-referredReward, referred.Balance, entities.ReasonReferralWelcome,
			map[string]any{"referrer_id": referrerID}); err != nil {
			return nil, err
		}
	}

	if s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(events.ReferralAttributedEvent{
			ReferrerID:    referrerID,
			ReferredID:    referredID,
			ReferralCount: referrer.ReferralCount,
			Reward:        referrerReward,
		}); err != nil {
			return nil, fmt.Errorf("failed to publish referral attributed event: %w", err)
		}
	}

	return &interfaces.ReferralResult{
		Attributed:     true,
		Referrer:       referrer,
		ReferrerReward: referrerReward,
		ReferredReward: referredReward,
	}, nil
}
