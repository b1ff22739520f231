package entities

import (
	"fmt"
	"time"
)

// RewardReason classifies why a balance changed
type RewardReason string

const (
	ReasonTap             RewardReason = "tap"
	ReasonBoostWin        RewardReason = "boost_win"
	ReasonReferralTier    RewardReason = "referral_tier"
	ReasonReferralFlat    RewardReason = "referral_flat"
	ReasonReferralWelcome RewardReason = "referral_welcome"
	ReasonMission         RewardReason = "mission"
)

// LedgerEntry records one applied reward: the balance on either side of the
// change, the positive amount, and why it happened. Entries are append-only.
type LedgerEntry struct {
	ID            int64
	AccountID     int64
	BalanceBefore int64
	BalanceAfter  int64
	ChangeAmount  int64
	Reason        RewardReason
	Metadata      map[string]any
	CreatedAt     time.Time
}

// Validate checks the entry is internally consistent before it is recorded
func (e *LedgerEntry) Validate() error {
	if e.ChangeAmount <= 0 {
		return ErrInvalidDelta
	}
	if e.BalanceBefore+e.ChangeAmount != e.BalanceAfter {
		return fmt.Errorf("inconsistent balance change: %d + %d != %d",
			e.BalanceBefore, e.ChangeAmount, e.BalanceAfter)
	}
	return nil
}
