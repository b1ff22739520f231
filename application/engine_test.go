package application

import (
	"context"
	"testing"
	"time"

	"tapown/config"
	"tapown/domain/entities"
	"tapown/domain/services"
	"tapown/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestEngine(factory *mockUnitOfWorkFactory, verifier *testhelpers.MockMembershipVerifier) *Engine {
	cfg := config.NewTestConfig()
	return NewEngine(factory, verifier, entities.DefaultMissionCatalog(), services.NewRewardEngine(cfg), cfg)
}

func TestEngine_HandleTap(t *testing.T) {
	ctx := context.Background()
	factory := newMockUnitOfWorkFactory()
	uow := factory.uow

	account := &entities.Account{ID: 1, DisplayName: "tapper"}
	updated := &entities.Account{ID: 1, DisplayName: "tapper", Balance: 1, TapCount: 1}

	uow.accountRepo.On("GetOrCreate", ctx, int64(1), "tapper").Return(account, false, nil)
	uow.accountRepo.On("ApplyDelta", ctx, int64(1), int64(1), int64(1)).Return(updated, nil)
	uow.ledgerRepo.On("Record", ctx, mock.Anything).Return(nil)
	uow.publisher.On("Publish", mock.Anything).Return(nil)

	engine := newTestEngine(factory, nil)

	result, err := engine.Handle(ctx, Action{Kind: ActionTap, AccountID: 1, DisplayName: "tapper"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.RewardDelta)
	assert.Equal(t, int64(1), result.NewBalance)
	assert.Contains(t, result.Text, "+1")

	assert.True(t, uow.committed, "mutating action must commit")
}

func TestEngine_HandleBoost(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects out-of-range guess before touching storage", func(t *testing.T) {
		factory := newMockUnitOfWorkFactory()
		engine := newTestEngine(factory, nil)

		result, err := engine.Handle(ctx, Action{Kind: ActionBoost, AccountID: 1, DisplayName: "p", Payload: "42"})
		require.NoError(t, err)
		assert.Contains(t, result.Text, "between 1 and 10")
		assert.False(t, factory.uow.began)
	})

	t.Run("rejects junk payload", func(t *testing.T) {
		factory := newMockUnitOfWorkFactory()
		engine := newTestEngine(factory, nil)

		result, err := engine.Handle(ctx, Action{Kind: ActionBoost, AccountID: 1, DisplayName: "p", Payload: "banana"})
		require.NoError(t, err)
		assert.Contains(t, result.Text, "between 1 and 10")
	})

	t.Run("already played renders friendly text", func(t *testing.T) {
		factory := newMockUnitOfWorkFactory()
		uow := factory.uow

		uow.accountRepo.On("GetOrCreate", ctx, int64(2), "greedy").Return(&entities.Account{ID: 2}, false, nil)
		uow.accountRepo.On("SetLastBoostDate", ctx, int64(2), mock.AnythingOfType("time.Time")).Return(false, nil)

		engine := newTestEngine(factory, nil)

		result, err := engine.Handle(ctx, Action{Kind: ActionBoost, AccountID: 2, DisplayName: "greedy", Payload: "5"})
		require.NoError(t, err)
		assert.Contains(t, result.Text, "already played")
		assert.False(t, uow.committed)
	})
}

func TestEngine_HandleReferralJoin(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown code still creates the account", func(t *testing.T) {
		factory := newMockUnitOfWorkFactory()
		uow := factory.uow

		uow.accountRepo.On("GetOrCreate", ctx, int64(3), "stray").Return(&entities.Account{ID: 3}, true, nil)
		uow.accountRepo.On("ResolveByDisplayName", ctx, "nobody").Return(nil, nil)

		engine := newTestEngine(factory, nil)

		result, err := engine.Handle(ctx, Action{Kind: ActionReferralJoin, AccountID: 3, DisplayName: "stray", Payload: "nobody"})
		require.NoError(t, err)
		assert.Contains(t, result.Text, "did not match")
		assert.True(t, uow.committed)
	})

	t.Run("valid code attributes and rewards", func(t *testing.T) {
		factory := newMockUnitOfWorkFactory()
		uow := factory.uow

		uow.accountRepo.On("GetOrCreate", ctx, int64(4), "joiner").Return(&entities.Account{ID: 4}, true, nil)
		uow.accountRepo.On("GetByID", ctx, int64(100)).Return(&entities.Account{ID: 100}, nil)
		uow.referralRepo.On("Create", ctx, int64(100), int64(4)).Return(true, nil)
		uow.accountRepo.On("IncrementReferralCount", ctx, int64(100)).
			Return(&entities.Account{ID: 100, ReferralCount: 1, Balance: 0}, nil)
		uow.accountRepo.On("ApplyDelta", ctx, int64(100), int64(5000), int64(0)).
			Return(&entities.Account{ID: 100, ReferralCount: 1, Balance: 5000}, nil)
		uow.ledgerRepo.On("Record", ctx, mock.Anything).Return(nil)
		uow.publisher.On("Publish", mock.Anything).Return(nil)

		engine := newTestEngine(factory, nil)

		result, err := engine.Handle(ctx, Action{Kind: ActionReferralJoin, AccountID: 4, DisplayName: "joiner", Payload: "100"})
		require.NoError(t, err)
		assert.Contains(t, result.Text, "Welcome")
		assert.True(t, uow.committed)
	})
}

func TestEngine_HandleMissionCheck(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown mission", func(t *testing.T) {
		factory := newMockUnitOfWorkFactory()
		engine := newTestEngine(factory, new(testhelpers.MockMembershipVerifier))

		result, err := engine.Handle(ctx, Action{Kind: ActionMissionCheck, AccountID: 5, DisplayName: "p", Payload: "ghost"})
		require.NoError(t, err)
		assert.Equal(t, "Unknown mission.", result.Text)
	})

	t.Run("instant mission pays through one transaction", func(t *testing.T) {
		factory := newMockUnitOfWorkFactory()
		uow := factory.uow
		verifier := new(testhelpers.MockMembershipVerifier)

		uow.accountRepo.On("GetOrCreate", ctx, int64(6), "member").Return(&entities.Account{ID: 6}, false, nil)
		uow.missionRepo.On("Get", ctx, int64(6), "tapown").Return(nil, nil)
		verifier.On("IsMember", ctx, entities.PlatformTelegram, "@tapown", int64(6)).Return(true, nil)
		uow.missionRepo.On("CreateResolved", ctx, int64(6), "tapown", mock.AnythingOfType("time.Time")).Return(true, nil)
		uow.accountRepo.On("ApplyDelta", ctx, int64(6), int64(10000), int64(0)).
			Return(&entities.Account{ID: 6, Balance: 10000}, nil)
		uow.ledgerRepo.On("Record", ctx, mock.Anything).Return(nil)
		uow.publisher.On("Publish", mock.Anything).Return(nil)

		engine := newTestEngine(factory, verifier)

		result, err := engine.Handle(ctx, Action{Kind: ActionMissionCheck, AccountID: 6, DisplayName: "member", Payload: "tapown"})
		require.NoError(t, err)
		assert.Equal(t, int64(10000), result.RewardDelta)
		assert.True(t, uow.committed)
	})
}

func TestEngine_HandleLeaderboardAndStats(t *testing.T) {
	ctx := context.Background()

	t.Run("leaderboard", func(t *testing.T) {
		factory := newMockUnitOfWorkFactory()
		factory.uow.accountRepo.On("ListTop", ctx, 50).Return([]*entities.Account{
			{ID: 1, DisplayName: "alice", Balance: 500},
			{ID: 2, DisplayName: "bob", Balance: 300},
		}, nil)

		engine := newTestEngine(factory, nil)

		result, err := engine.Handle(ctx, Action{Kind: ActionLeaderboard})
		require.NoError(t, err)
		assert.Contains(t, result.Text, "1. alice: 500")
		assert.Contains(t, result.Text, "2. bob: 300")
	})

	t.Run("stats", func(t *testing.T) {
		factory := newMockUnitOfWorkFactory()
		factory.uow.accountRepo.On("AggregateStats", ctx, mock.AnythingOfType("time.Time"), 24*time.Hour).
			Return(&entities.GlobalStats{TotalBalance: 60, TotalTaps: 10, TotalAccounts: 3, DailyActive: 2}, nil)

		engine := newTestEngine(factory, nil)

		result, err := engine.Handle(ctx, Action{Kind: ActionStats})
		require.NoError(t, err)
		assert.Contains(t, result.Text, "Players: 3")
		assert.Contains(t, result.Text, "Total taps: 10")
	})
}

func TestEngine_HandleBalance(t *testing.T) {
	ctx := context.Background()
	factory := newMockUnitOfWorkFactory()
	factory.uow.accountRepo.On("GetOrCreate", ctx, int64(7), "curious").
		Return(&entities.Account{ID: 7, DisplayName: "curious", Balance: 123, TapCount: 4, ReferralCount: 1}, false, nil)

	engine := newTestEngine(factory, nil)

	result, err := engine.Handle(ctx, Action{Kind: ActionBalance, AccountID: 7, DisplayName: "curious"})
	require.NoError(t, err)
	assert.Equal(t, int64(123), result.NewBalance)
	assert.Contains(t, result.Text, "Balance: 123")
}

func TestEngine_UnknownAction(t *testing.T) {
	engine := newTestEngine(newMockUnitOfWorkFactory(), nil)

	_, err := engine.Handle(context.Background(), Action{Kind: "dance"})
	assert.Error(t, err)
}
