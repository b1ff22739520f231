package application

import (
	"context"

	"tapown/domain/interfaces"
	"tapown/domain/testhelpers"
)

// mockUnitOfWork is an in-memory UnitOfWork over the shared repository mocks.
// Begin, Commit and Rollback only track state; the mocks hold expectations.
type mockUnitOfWork struct {
	accountRepo  *testhelpers.MockAccountRepository
	referralRepo *testhelpers.MockReferralEdgeRepository
	missionRepo  *testhelpers.MockPendingMissionRepository
	ledgerRepo   *testhelpers.MockLedgerRepository
	publisher    *testhelpers.MockEventPublisher

	began      bool
	committed  bool
	rolledBack bool
}

func newMockUnitOfWork() *mockUnitOfWork {
	return &mockUnitOfWork{
		accountRepo:  new(testhelpers.MockAccountRepository),
		referralRepo: new(testhelpers.MockReferralEdgeRepository),
		missionRepo:  new(testhelpers.MockPendingMissionRepository),
		ledgerRepo:   new(testhelpers.MockLedgerRepository),
		publisher:    new(testhelpers.MockEventPublisher),
	}
}

func (m *mockUnitOfWork) Begin(ctx context.Context) error {
	m.began = true
	return nil
}

func (m *mockUnitOfWork) Commit() error {
	m.committed = true
	return nil
}

func (m *mockUnitOfWork) Rollback() error {
	if !m.committed {
		m.rolledBack = true
	}
	return nil
}

func (m *mockUnitOfWork) AccountRepository() interfaces.AccountRepository {
	return m.accountRepo
}

func (m *mockUnitOfWork) ReferralEdgeRepository() interfaces.ReferralEdgeRepository {
	return m.referralRepo
}

func (m *mockUnitOfWork) PendingMissionRepository() interfaces.PendingMissionRepository {
	return m.missionRepo
}

func (m *mockUnitOfWork) LedgerRepository() interfaces.LedgerRepository {
	return m.ledgerRepo
}

func (m *mockUnitOfWork) EventBus() interfaces.EventPublisher {
	return m.publisher
}

// mockUnitOfWorkFactory hands out the same mock unit of work so tests can
// inspect it afterwards
type mockUnitOfWorkFactory struct {
	uow *mockUnitOfWork
}

func newMockUnitOfWorkFactory() *mockUnitOfWorkFactory {
	return &mockUnitOfWorkFactory{uow: newMockUnitOfWork()}
}

func (f *mockUnitOfWorkFactory) Create() UnitOfWork {
	return f.uow
}
