package repository

import (
	"context"
	"fmt"
	"time"

	"tapown/database"
	"tapown/domain/entities"
	"tapown/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

const accountColumns = `id, display_name, balance, tap_count, referral_count, last_active_at, last_boost_at, created_at, updated_at`

// accountRepository implements interfaces.AccountRepository
type accountRepository struct {
	q Queryable
}

// NewAccountRepository creates a new account repository over the pool
func NewAccountRepository(db *database.DB) interfaces.AccountRepository {
	return &accountRepository{q: db.Pool}
}

// newAccountRepositoryWithTx creates a new account repository bound to a transaction
func newAccountRepositoryWithTx(tx Queryable) interfaces.AccountRepository {
	return &accountRepository{q: tx}
}

func scanAccount(row pgx.Row) (*entities.Account, error) {
	var account entities.Account
	err := row.Scan(
		&account.ID,
		&account.DisplayName,
		&account.Balance,
		&account.TapCount,
		&account.ReferralCount,
		&account.LastActiveAt,
		&account.LastBoostAt,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// GetByID retrieves an account by id, or (nil, nil) if absent
func (r *accountRepository) GetByID(ctx context.Context, id int64) (*entities.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	account, err := scanAccount(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account %d: %w", id, err)
	}
	return account, nil
}

// GetOrCreate returns the existing account or creates it with zeroed
// counters. The insert uses ON CONFLICT DO NOTHING so exactly one concurrent
// creation wins; losers read back the winner's row. An existing account's
// display name is left untouched.
func (r *accountRepository) GetOrCreate(ctx context.Context, id int64, displayName string) (*entities.Account, bool, error) {
	insert := `
		INSERT INTO accounts (id, display_name)
		VALUES ($1, $2)
		ON CONFLICT (id) DO NOTHING
		RETURNING ` + accountColumns

	account, err := scanAccount(r.q.QueryRow(ctx, insert, id, displayName))
	if err == nil {
		return account, true, nil
	}
	if err != pgx.ErrNoRows {
		return nil, false, fmt.Errorf("failed to create account %d: %w", id, err)
	}

	account, err = r.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if account == nil {
		return nil, false, fmt.Errorf("account %d vanished during creation", id)
	}
	return account, false, nil
}

// ApplyDelta atomically adds the deltas and refreshes last_active_at. The
// single UPDATE serializes concurrent deltas on the same row, so no update
// is ever lost.
func (r *accountRepository) ApplyDelta(ctx context.Context, id int64, balanceDelta, tapDelta int64) (*entities.Account, error) {
	if balanceDelta < 0 || tapDelta < 0 {
		return nil, entities.ErrInvalidDelta
	}

	query := `
		UPDATE accounts
		SET balance = balance + $2,
		    tap_count = tap_count + $3,
		    last_active_at = NOW(),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + accountColumns

	account, err := scanAccount(r.q.QueryRow(ctx, query, id, balanceDelta, tapDelta))
	if err == pgx.ErrNoRows {
		return nil, entities.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to apply delta to account %d: %w", id, err)
	}
	return account, nil
}

// IncrementReferralCount atomically bumps referral_count by one
func (r *accountRepository) IncrementReferralCount(ctx context.Context, id int64) (*entities.Account, error) {
	query := `
		UPDATE accounts
		SET referral_count = referral_count + 1,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + accountColumns

	account, err := scanAccount(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, entities.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to increment referral count for account %d: %w", id, err)
	}
	return account, nil
}

// SetLastBoostDate performs the daily-gate compare-and-set: the update only
// lands when the stored date is absent or strictly earlier than day, so two
// concurrent plays on the same day cannot both succeed.
func (r *accountRepository) SetLastBoostDate(ctx context.Context, id int64, day time.Time) (bool, error) {
	query := `
		UPDATE accounts
		SET last_boost_at = $2,
		    last_active_at = NOW(),
		    updated_at = NOW()
		WHERE id = $1 AND (last_boost_at IS NULL OR last_boost_at < $2)`

	result, err := r.q.Exec(ctx, query, id, day)
	if err != nil {
		return false, fmt.Errorf("failed to set last boost date for account %d: %w", id, err)
	}
	return result.RowsAffected() > 0, nil
}

// ResolveByDisplayName resolves a referral handle to the oldest account
// carrying it, or (nil, nil) if none does
func (r *accountRepository) ResolveByDisplayName(ctx context.Context, displayName string) (*entities.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE display_name = $1
		ORDER BY created_at ASC
		LIMIT 1`

	account, err := scanAccount(r.q.QueryRow(ctx, query, displayName))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve display name %q: %w", displayName, err)
	}
	return account, nil
}

// ListTop returns up to n accounts ordered by balance descending, ties broken
// by id ascending
func (r *accountRepository) ListTop(ctx context.Context, n int) ([]*entities.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		ORDER BY balance DESC, id ASC
		LIMIT $1`

	rows, err := r.q.Query(ctx, query, n)
	if err != nil {
		return nil, fmt.Errorf("failed to list top accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*entities.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}

	return accounts, nil
}

// AggregateStats derives the global counters in one aggregate query so they
// always reflect the committed account state at read time.
func (r *accountRepository) AggregateStats(ctx context.Context, now time.Time, activeWindow time.Duration) (*entities.GlobalStats, error) {
	query := `
		SELECT
			COALESCE(SUM(balance), 0),
			COALESCE(SUM(tap_count), 0),
			COUNT(*),
			COUNT(*) FILTER (WHERE last_active_at >= $1)
		FROM accounts`

	var stats entities.GlobalStats
	err := r.q.QueryRow(ctx, query, now.Add(-activeWindow)).Scan(
		&stats.TotalBalance,
		&stats.TotalTaps,
		&stats.TotalAccounts,
		&stats.DailyActive,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate account stats: %w", err)
	}
	return &stats, nil
}
