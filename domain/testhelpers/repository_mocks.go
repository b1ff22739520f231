package testhelpers

import (
	"context"
	"time"

	"tapown/domain/entities"
	"tapown/domain/events"

	"github.com/stretchr/testify/mock"
)

// MockAccountRepository is a mock implementation of AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id int64) (*entities.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1)
}

func (m *MockAccountRepository) GetOrCreate(ctx context.Context, id int64, displayName string) (*entities.Account, bool, error) {
	args := m.Called(ctx, id, displayName)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*entities.Account), args.Bool(1), args.Error(2)
}

func (m *MockAccountRepository) ApplyDelta(ctx context.Context, id int64, balanceDelta, tapDelta int64) (*entities.Account, error) {
	args := m.Called(ctx, id, balanceDelta, tapDelta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1)
}

func (m *MockAccountRepository) IncrementReferralCount(ctx context.Context, id int64) (*entities.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1)
}

func (m *MockAccountRepository) SetLastBoostDate(ctx context.Context, id int64, day time.Time) (bool, error) {
	args := m.Called(ctx, id, day)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountRepository) ResolveByDisplayName(ctx context.Context, displayName string) (*entities.Account, error) {
	args := m.Called(ctx, displayName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1)
}

func (m *MockAccountRepository) ListTop(ctx context.Context, n int) ([]*entities.Account, error) {
	args := m.Called(ctx, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Account), args.Error(1)
}

func (m *MockAccountRepository) AggregateStats(ctx context.Context, now time.Time, activeWindow time.Duration) (*entities.GlobalStats, error) {
	args := m.Called(ctx, now, activeWindow)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.GlobalStats), args.Error(1)
}

// MockReferralEdgeRepository is a mock implementation of ReferralEdgeRepository
type MockReferralEdgeRepository struct {
	mock.Mock
}

func (m *MockReferralEdgeRepository) Create(ctx context.Context, referrerID, referredID int64) (bool, error) {
	args := m.Called(ctx, referrerID, referredID)
	return args.Bool(0), args.Error(1)
}

func (m *MockReferralEdgeRepository) GetByReferred(ctx context.Context, referredID int64) (*entities.ReferralEdge, error) {
	args := m.Called(ctx, referredID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ReferralEdge), args.Error(1)
}

func (m *MockReferralEdgeRepository) CountByReferrer(ctx context.Context, referrerID int64) (int64, error) {
	args := m.Called(ctx, referrerID)
	return args.Get(0).(int64), args.Error(1)
}

// MockPendingMissionRepository is a mock implementation of PendingMissionRepository
type MockPendingMissionRepository struct {
	mock.Mock
}

func (m *MockPendingMissionRepository) CreatePending(ctx context.Context, accountID int64, missionID string, requestedAt time.Time) (bool, error) {
	args := m.Called(ctx, accountID, missionID, requestedAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockPendingMissionRepository) CreateResolved(ctx context.Context, accountID int64, missionID string, resolvedAt time.Time) (bool, error) {
	args := m.Called(ctx, accountID, missionID, resolvedAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockPendingMissionRepository) Get(ctx context.Context, accountID int64, missionID string) (*entities.PendingMission, error) {
	args := m.Called(ctx, accountID, missionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PendingMission), args.Error(1)
}

func (m *MockPendingMissionRepository) ListDue(ctx context.Context, cutoff time.Time) ([]*entities.PendingMission, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.PendingMission), args.Error(1)
}

func (m *MockPendingMissionRepository) Resolve(ctx context.Context, accountID int64, missionID string, resolvedAt time.Time) (bool, error) {
	args := m.Called(ctx, accountID, missionID, resolvedAt)
	return args.Bool(0), args.Error(1)
}

// MockLedgerRepository is a mock implementation of LedgerRepository
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) Record(ctx context.Context, entry *entities.LedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLedgerRepository) GetByAccount(ctx context.Context, accountID int64, limit int) ([]*entities.LedgerEntry, error) {
	args := m.Called(ctx, accountID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) GetTotalRewarded(ctx context.Context, accountID int64) (int64, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(int64), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}

// MockMembershipVerifier is a mock implementation of MembershipVerifier
type MockMembershipVerifier struct {
	mock.Mock
}

func (m *MockMembershipVerifier) IsMember(ctx context.Context, platform entities.Platform, channelRef string, accountID int64) (bool, error) {
	args := m.Called(ctx, platform, channelRef, accountID)
	return args.Bool(0), args.Error(1)
}
