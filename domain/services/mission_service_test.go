package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"tapown/domain/entities"
	"tapown/domain/events"
	"tapown/domain/interfaces"
	"tapown/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMissionService_RequestCheck(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	catalog := entities.DefaultMissionCatalog()

	t.Run("unknown mission", func(t *testing.T) {
		service := NewMissionService(nil, nil, nil, nil, nil, catalog)

		_, err := service.RequestCheck(ctx, 1, "player", "ghost", now)
		assert.ErrorIs(t, err, entities.ErrUnknownMission)
	})

	t.Run("instant mission verified and paid", func(t *testing.T) {
		accountRepo := new(testhelpers.MockAccountRepository)
		missionRepo := new(testhelpers.MockPendingMissionRepository)
		ledgerRepo := new(testhelpers.MockLedgerRepository)
		publisher := new(testhelpers.MockEventPublisher)
		verifier := new(testhelpers.MockMembershipVerifier)

		account := &entities.Account{ID: 1, DisplayName: "member"}
		rewarded := &entities.Account{ID: 1, DisplayName: "member", Balance: 10000}

		accountRepo.On("GetOrCreate", ctx, int64(1), "member").Return(account, false, nil)
		missionRepo.On("Get", ctx, int64(1), "tapown").Return(nil, nil)
		verifier.On("IsMember", ctx, entities.PlatformTelegram, "@tapown", int64(1)).Return(true, nil)
		missionRepo.On("CreateResolved", ctx, int64(1), "tapown", now).Return(true, nil)
		accountRepo.On("ApplyDelta", ctx, int64(1), int64(10000), int64(0)).Return(rewarded, nil)
		ledgerRepo.On("Record", ctx, mock.MatchedBy(func(e *entities.LedgerEntry) bool {
			return e.Reason == entities.ReasonMission && e.ChangeAmount == 10000
		})).Return(nil)
		publisher.On("Publish", mock.AnythingOfType("events.BalanceChangeEvent")).Return(nil)
		publisher.On("Publish", events.MissionResolvedEvent{
			AccountID: 1, MissionID: "tapown", Reward: 10000, Delayed: false,
		}).Return(nil)

		service := NewMissionService(accountRepo, missionRepo, ledgerRepo, publisher, verifier, catalog)

		result, err := service.RequestCheck(ctx, 1, "member", "tapown", now)
		require.NoError(t, err)
		assert.Equal(t, interfaces.MissionStatusRewarded, result.Status)
		assert.Equal(t, int64(10000), result.Reward)
		assert.Equal(t, int64(10000), result.Account.Balance)

		missionRepo.AssertExpectations(t)
		publisher.AssertExpectations(t)
	})

	t.Run("instant mission not a member", func(t *testing.T) {
		accountRepo := new(testhelpers.MockAccountRepository)
		missionRepo := new(testhelpers.MockPendingMissionRepository)
		verifier := new(testhelpers.MockMembershipVerifier)

		accountRepo.On("GetOrCreate", ctx, int64(2), "outsider").Return(&entities.Account{ID: 2}, false, nil)
		missionRepo.On("Get", ctx, int64(2), "kross").Return(nil, nil)
		verifier.On("IsMember", ctx, entities.PlatformTelegram, "@krosscoin_kss", int64(2)).Return(false, nil)

		service := NewMissionService(accountRepo, missionRepo, nil, nil, verifier, catalog)

		result, err := service.RequestCheck(ctx, 2, "outsider", "kross", now)
		require.NoError(t, err)
		assert.Equal(t, interfaces.MissionStatusNotMember, result.Status)

		missionRepo.AssertNotCalled(t, "CreateResolved", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("verifier outage reads as not a member", func(t *testing.T) {
		accountRepo := new(testhelpers.MockAccountRepository)
		missionRepo := new(testhelpers.MockPendingMissionRepository)
		verifier := new(testhelpers.MockMembershipVerifier)

		accountRepo.On("GetOrCreate", ctx, int64(3), "unlucky").Return(&entities.Account{ID: 3}, false, nil)
		missionRepo.On("Get", ctx, int64(3), "kross").Return(nil, nil)
		verifier.On("IsMember", ctx, entities.PlatformTelegram, "@krosscoin_kss", int64(3)).
			Return(false, errors.New("api timeout"))

		service := NewMissionService(accountRepo, missionRepo, nil, nil, verifier, catalog)

		result, err := service.RequestCheck(ctx, 3, "unlucky", "kross", now)
		require.NoError(t, err)
		assert.Equal(t, interfaces.MissionStatusNotMember, result.Status)
	})

	t.Run("already resolved mission", func(t *testing.T) {
		accountRepo := new(testhelpers.MockAccountRepository)
		missionRepo := new(testhelpers.MockPendingMissionRepository)

		accountRepo.On("GetOrCreate", ctx, int64(4), "done").Return(&entities.Account{ID: 4}, false, nil)
		missionRepo.On("Get", ctx, int64(4), "tapown").
			Return(&entities.PendingMission{AccountID: 4, MissionID: "tapown", Resolved: true}, nil)

		service := NewMissionService(accountRepo, missionRepo, nil, nil, nil, catalog)

		result, err := service.RequestCheck(ctx, 4, "done", "tapown", now)
		require.NoError(t, err)
		assert.Equal(t, interfaces.MissionStatusAlreadyCompleted, result.Status)
	})

	t.Run("delayed mission goes pending without verification", func(t *testing.T) {
		accountRepo := new(testhelpers.MockAccountRepository)
		missionRepo := new(testhelpers.MockPendingMissionRepository)
		verifier := new(testhelpers.MockMembershipVerifier)

		accountRepo.On("GetOrCreate", ctx, int64(5), "patient").Return(&entities.Account{ID: 5}, false, nil)
		missionRepo.On("Get", ctx, int64(5), "kross_x").Return(nil, nil)
		missionRepo.On("CreatePending", ctx, int64(5), "kross_x", now).Return(true, nil)

		service := NewMissionService(accountRepo, missionRepo, nil, nil, verifier, catalog)

		result, err := service.RequestCheck(ctx, 5, "patient", "kross_x", now)
		require.NoError(t, err)
		assert.Equal(t, interfaces.MissionStatusPending, result.Status)

		verifier.AssertNotCalled(t, "IsMember", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("concurrent instant check pays at most once", func(t *testing.T) {
		accountRepo := new(testhelpers.MockAccountRepository)
		missionRepo := new(testhelpers.MockPendingMissionRepository)
		verifier := new(testhelpers.MockMembershipVerifier)

		accountRepo.On("GetOrCreate", ctx, int64(6), "racer").Return(&entities.Account{ID: 6}, false, nil)
		missionRepo.On("Get", ctx, int64(6), "tapown").Return(nil, nil)
		verifier.On("IsMember", ctx, entities.PlatformTelegram, "@tapown", int64(6)).Return(true, nil)
		// Another check already won the unique pair
		missionRepo.On("CreateResolved", ctx, int64(6), "tapown", now).Return(false, nil)

		service := NewMissionService(accountRepo, missionRepo, nil, nil, verifier, catalog)

		result, err := service.RequestCheck(ctx, 6, "racer", "tapown", now)
		require.NoError(t, err)
		assert.Equal(t, interfaces.MissionStatusAlreadyCompleted, result.Status)

		accountRepo.AssertNotCalled(t, "ApplyDelta", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestMissionService_ResolveDue(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	catalog := entities.DefaultMissionCatalog()

	t.Run("resolves and pays the delayed reward", func(t *testing.T) {
		accountRepo := new(testhelpers.MockAccountRepository)
		missionRepo := new(testhelpers.MockPendingMissionRepository)
		ledgerRepo := new(testhelpers.MockLedgerRepository)
		publisher := new(testhelpers.MockEventPublisher)

		rewarded := &entities.Account{ID: 1, Balance: 75000}

		missionRepo.On("Resolve", ctx, int64(1), "kross_x", now).Return(true, nil)
		accountRepo.On("ApplyDelta", ctx, int64(1), int64(75000), int64(0)).Return(rewarded, nil)
		ledgerRepo.On("Record", ctx, mock.Anything).Return(nil)
		publisher.On("Publish", mock.AnythingOfType("events.BalanceChangeEvent")).Return(nil)
		publisher.On("Publish", events.MissionResolvedEvent{
			AccountID: 1, MissionID: "kross_x", Reward: 75000, Delayed: true,
		}).Return(nil)

		service := NewMissionService(accountRepo, missionRepo, ledgerRepo, publisher, nil, catalog)

		resolved, err := service.ResolveDue(ctx, 1, "kross_x", now)
		require.NoError(t, err)
		assert.True(t, resolved)

		publisher.AssertExpectations(t)
	})

	t.Run("already resolved pair pays nothing", func(t *testing.T) {
		accountRepo := new(testhelpers.MockAccountRepository)
		missionRepo := new(testhelpers.MockPendingMissionRepository)

		missionRepo.On("Resolve", ctx, int64(2), "kross_x", now).Return(false, nil)

		service := NewMissionService(accountRepo, missionRepo, nil, nil, nil, catalog)

		resolved, err := service.ResolveDue(ctx, 2, "kross_x", now)
		require.NoError(t, err)
		assert.False(t, resolved)

		accountRepo.AssertNotCalled(t, "ApplyDelta", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown mission", func(t *testing.T) {
		service := NewMissionService(nil, nil, nil, nil, nil, catalog)

		_, err := service.ResolveDue(ctx, 3, "ghost", now)
		assert.ErrorIs(t, err, entities.ErrUnknownMission)
	})
}
