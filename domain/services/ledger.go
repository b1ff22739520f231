package services

import (
	"context"
	"fmt"

	"tapown/domain/entities"
	"tapown/domain/events"
	"tapown/domain/interfaces"
)

// recordReward validates and records a ledger entry for an applied reward and
// publishes the matching balance change event. Called inside the unit of work
// that applied the delta, so the entry commits or rolls back with it.
func recordReward(
	ctx context.Context,
	ledgerRepo interfaces.LedgerRepository,
	publisher interfaces.EventPublisher,
	accountID int64,
	balanceBefore, balanceAfter int64,
	reason entities.RewardReason,
	metadata map[string]any,
) error {
	entry := &entities.LedgerEntry{
		AccountID:     accountID,
		BalanceBefore: balanceBefore,
		BalanceAfter:  balanceAfter,
		ChangeAmount:  balanceAfter - balanceBefore,
		Reason:        reason,
		Metadata:      metadata,
	}

	if err := entry.Validate(); err != nil {
		return fmt.Errorf("invalid ledger entry for account %d: %w", accountID, err)
	}

	if err := ledgerRepo.Record(ctx, entry); err != nil {
		return fmt.Errorf("failed to record ledger entry: %w", err)
	}

	if publisher != nil {
		if err := publisher.Publish(events.BalanceChangeEvent{
			AccountID:    accountID,
			OldBalance:   balanceBefore,
			NewBalance:   balanceAfter,
			Reason:       reason,
			ChangeAmount: balanceAfter - balanceBefore,
		}); err != nil {
			return fmt.Errorf("failed to publish balance change event: %w", err)
		}
	}

	return nil
}
