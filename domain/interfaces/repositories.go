package interfaces

import (
	"context"
	"time"

	"tapown/domain/entities"
	"tapown/domain/events"
)

// AccountRepository defines the interface for account data access.
// All balance mutations are atomic per account: concurrent deltas against the
// same id serialize in the store, concurrent deltas against distinct ids do
// not block each other.
type AccountRepository interface {
	// GetByID retrieves an account by id, or (nil, nil) if absent
	GetByID(ctx context.Context, id int64) (*entities.Account, error)

	// GetOrCreate returns the existing account unchanged, or creates it with
	// zeroed counters. Exactly one creation wins under concurrency; the
	// returned flag reports whether this call created the account.
	GetOrCreate(ctx context.Context, id int64, displayName string) (*entities.Account, bool, error)

	// ApplyDelta atomically adds the (non-negative) deltas and refreshes
	// last_active_at, returning the updated account.
	// Returns entities.ErrAccountNotFound if the account does not exist.
	ApplyDelta(ctx context.Context, id int64, balanceDelta, tapDelta int64) (*entities.Account, error)

	// IncrementReferralCount atomically bumps referral_count by one
	IncrementReferralCount(ctx context.Context, id int64) (*entities.Account, error)

	// SetLastBoostDate performs a compare-and-set on last_boost_at: it
	// succeeds only if the stored date is absent or strictly earlier than day.
	// Returns false without mutation when the gate was already consumed.
	SetLastBoostDate(ctx context.Context, id int64, day time.Time) (bool, error)

	// ResolveByDisplayName resolves a referral handle to an account, or
	// (nil, nil) if no account carries that handle
	ResolveByDisplayName(ctx context.Context, displayName string) (*entities.Account, error)

	// ListTop returns up to n accounts ordered by balance descending, ties
	// broken by id ascending
	ListTop(ctx context.Context, n int) ([]*entities.Account, error)

	// AggregateStats derives the global counters from the current account
	// state; activeWindow bounds the daily-active count
	AggregateStats(ctx context.Context, now time.Time, activeWindow time.Duration) (*entities.GlobalStats, error)
}

// ReferralEdgeRepository defines the interface for referral attribution links
type ReferralEdgeRepository interface {
	// Create writes the edge unless the referred account already has one;
	// returns whether this call created it (first write wins)
	Create(ctx context.Context, referrerID, referredID int64) (bool, error)

	// GetByReferred returns the edge for a referred account, or (nil, nil)
	GetByReferred(ctx context.Context, referredID int64) (*entities.ReferralEdge, error)

	// CountByReferrer returns how many edges point at the referrer
	CountByReferrer(ctx context.Context, referrerID int64) (int64, error)
}

// PendingMissionRepository defines the interface for mission completion state
type PendingMissionRepository interface {
	// CreatePending records an unresolved verification request unless one
	// already exists for the pair; returns whether this call created it
	CreatePending(ctx context.Context, accountID int64, missionID string, requestedAt time.Time) (bool, error)

	// CreateResolved records an instantly-verified completion unless the pair
	// already has a row; returns whether this call created it
	CreateResolved(ctx context.Context, accountID int64, missionID string, resolvedAt time.Time) (bool, error)

	// Get returns the row for the pair, or (nil, nil)
	Get(ctx context.Context, accountID int64, missionID string) (*entities.PendingMission, error)

	// ListDue returns unresolved rows requested at or before the cutoff
	ListDue(ctx context.Context, cutoff time.Time) ([]*entities.PendingMission, error)

	// Resolve marks the pair resolved; the update is guarded on
	// resolved = false so exactly one caller observes true
	Resolve(ctx context.Context, accountID int64, missionID string, resolvedAt time.Time) (bool, error)
}

// LedgerRepository defines the interface for reward event records
type LedgerRepository interface {
	// Record creates a new ledger entry
	Record(ctx context.Context, entry *entities.LedgerEntry) error

	// GetByAccount returns recent entries for an account, newest first
	GetByAccount(ctx context.Context, accountID int64, limit int) ([]*entities.LedgerEntry, error)

	// GetTotalRewarded returns the sum of all recorded changes for an account
	GetTotalRewarded(ctx context.Context, accountID int64) (int64, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event) error
}
