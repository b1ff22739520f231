package repository

import (
	"context"
	"fmt"

	"tapown/database"
	"tapown/domain/entities"
	"tapown/domain/interfaces"
)

// ledgerRepository implements interfaces.LedgerRepository
type ledgerRepository struct {
	q Queryable
}

// NewLedgerRepository creates a new ledger repository over the pool
func NewLedgerRepository(db *database.DB) interfaces.LedgerRepository {
	return &ledgerRepository{q: db.Pool}
}

// newLedgerRepositoryWithTx creates a new ledger repository bound to a transaction
func newLedgerRepositoryWithTx(tx Queryable) interfaces.LedgerRepository {
	return &ledgerRepository{q: tx}
}

// Record creates a new ledger entry
func (r *ledgerRepository) Record(ctx context.Context, entry *entities.LedgerEntry) error {
	query := `
		INSERT INTO ledger_entries (account_id, balance_before, balance_after, change_amount, reason, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	metadata := entry.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}

	err := r.q.QueryRow(ctx, query,
		entry.AccountID,
		entry.BalanceBefore,
		entry.BalanceAfter,
		entry.ChangeAmount,
		entry.Reason,
		metadata,
	).Scan(&entry.ID, &entry.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to record ledger entry for account %d: %w", entry.AccountID, err)
	}

	return nil
}

// GetByAccount returns recent entries for an account, newest first
func (r *ledgerRepository) GetByAccount(ctx context.Context, accountID int64, limit int) ([]*entities.LedgerEntry, error) {
	query := `
		SELECT id, account_id, balance_before, balance_after, change_amount, reason, metadata, created_at
		FROM ledger_entries
		WHERE account_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`

	rows, err := r.q.Query(ctx, query, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger entries for account %d: %w", accountID, err)
	}
	defer rows.Close()

	var entries []*entities.LedgerEntry
	for rows.Next() {
		var entry entities.LedgerEntry
		err := rows.Scan(
			&entry.ID,
			&entry.AccountID,
			&entry.BalanceBefore,
			&entry.BalanceAfter,
			&entry.ChangeAmount,
			&entry.Reason,
			&entry.Metadata,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ledger entries: %w", err)
	}

	return entries, nil
}

// GetTotalRewarded returns the sum of all recorded changes for an account
func (r *ledgerRepository) GetTotalRewarded(ctx context.Context, accountID int64) (int64, error) {
	query := `
		SELECT COALESCE(SUM(change_amount), 0)
		FROM ledger_entries
		WHERE account_id = $1`

	var total int64
	if err := r.q.QueryRow(ctx, query, accountID).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum ledger entries for account %d: %w", accountID, err)
	}
	return total, nil
}
