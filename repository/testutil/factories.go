package testutil

import (
	"time"

	"tapown/domain/entities"
)

// CreateTestLedgerEntry creates a consistent ledger entry with default values
func CreateTestLedgerEntry(accountID int64, reason entities.RewardReason) *entities.LedgerEntry {
	return &entities.LedgerEntry{
		AccountID:     accountID,
		BalanceBefore: 0,
		BalanceAfter:  100,
		ChangeAmount:  100,
		Reason:        reason,
		Metadata: map[string]any{
			"test": true,
		},
		CreatedAt: time.Now(),
	}
}

// CreateTestLedgerEntryWithAmounts creates a ledger entry with specific amounts
func CreateTestLedgerEntryWithAmounts(accountID int64, before, after int64, reason entities.RewardReason) *entities.LedgerEntry {
	entry := CreateTestLedgerEntry(accountID, reason)
	entry.BalanceBefore = before
	entry.BalanceAfter = after
	entry.ChangeAmount = after - before
	return entry
}
