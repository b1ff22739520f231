package repository

import (
	"context"
	"fmt"

	"tapown/application"
	"tapown/database"
	"tapown/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

// unitOfWork implements the application.UnitOfWork interface
type unitOfWork struct {
	db                     *database.DB
	tx                     pgx.Tx
	ctx                    context.Context
	transactionalPublisher application.TransactionalEventPublisher
	accountRepo            interfaces.AccountRepository
	referralEdgeRepo       interfaces.ReferralEdgeRepository
	pendingMissionRepo     interfaces.PendingMissionRepository
	ledgerRepo             interfaces.LedgerRepository
}

type unitOfWorkFactory struct {
	db           *database.DB
	newPublisher func() application.TransactionalEventPublisher
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory. newPublisher is
// invoked once per unit of work to produce the transaction-scoped event
// publisher.
func NewUnitOfWorkFactory(db *database.DB, newPublisher func() application.TransactionalEventPublisher) *unitOfWorkFactory {
	return &unitOfWorkFactory{
		db:           db,
		newPublisher: newPublisher,
	}
}

// Create creates a new UnitOfWork with its own transactional publisher
func (f *unitOfWorkFactory) Create() application.UnitOfWork {
	return &unitOfWork{
		db:                     f.db,
		transactionalPublisher: f.newPublisher(),
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	// Bind repositories to the transaction
	u.accountRepo = newAccountRepositoryWithTx(tx)
	u.referralEdgeRepo = newReferralEdgeRepositoryWithTx(tx)
	u.pendingMissionRepo = newPendingMissionRepositoryWithTx(tx)
	u.ledgerRepo = newLedgerRepositoryWithTx(tx)

	return nil
}

// Commit commits the transaction and flushes buffered events
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	err := u.tx.Commit(u.ctx)
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil

	if u.transactionalPublisher != nil {
		u.transactionalPublisher.Flush(u.ctx)
	}

	return nil
}

// Rollback rolls back the transaction and discards buffered events
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil // Nothing to rollback
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && err != pgx.ErrTxClosed {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	u.tx = nil

	if u.transactionalPublisher != nil {
		u.transactionalPublisher.Discard()
	}

	return nil
}

// AccountRepository returns the account repository for this unit of work
func (u *unitOfWork) AccountRepository() interfaces.AccountRepository {
	return u.accountRepo
}

// ReferralEdgeRepository returns the referral edge repository for this unit of work
func (u *unitOfWork) ReferralEdgeRepository() interfaces.ReferralEdgeRepository {
	return u.referralEdgeRepo
}

// PendingMissionRepository returns the pending mission repository for this unit of work
func (u *unitOfWork) PendingMissionRepository() interfaces.PendingMissionRepository {
	return u.pendingMissionRepo
}

// LedgerRepository returns the ledger repository for this unit of work
func (u *unitOfWork) LedgerRepository() interfaces.LedgerRepository {
	return u.ledgerRepo
}

// EventBus returns the transaction-scoped event publisher
func (u *unitOfWork) EventBus() interfaces.EventPublisher {
	return u.transactionalPublisher
}
