package application

import (
	"context"

	"tapown/domain/interfaces"
)

// TransactionalEventPublisher buffers events during a transaction and
// publishes them only after the transaction commits
type TransactionalEventPublisher interface {
	interfaces.EventPublisher

	// Flush publishes all buffered events; called after a successful commit
	Flush(ctx context.Context) error

	// Discard drops all buffered events; called on rollback
	Discard()
}

// UnitOfWork bundles the repositories over one database transaction so a
// multi-step mutation (a referral touching two accounts, a mission resolution
// paying a reward) commits or rolls back as a whole.
type UnitOfWork interface {
	// Begin starts the transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction and flushes buffered events
	Commit() error

	// Rollback rolls back the transaction and discards buffered events.
	// Safe to call after Commit; it is then a no-op.
	Rollback() error

	// AccountRepository returns the account repository for this unit of work
	AccountRepository() interfaces.AccountRepository

	// ReferralEdgeRepository returns the referral edge repository for this unit of work
	ReferralEdgeRepository() interfaces.ReferralEdgeRepository

	// PendingMissionRepository returns the pending mission repository for this unit of work
	PendingMissionRepository() interfaces.PendingMissionRepository

	// LedgerRepository returns the ledger repository for this unit of work
	LedgerRepository() interfaces.LedgerRepository

	// EventBus returns the transaction-scoped event publisher
	EventBus() interfaces.EventPublisher
}

// UnitOfWorkFactory creates units of work
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}
