package services

import (
	"context"
	"testing"

	"tapown/config"
	"tapown/domain/entities"
	"tapown/domain/events"
	"tapown/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestReferralService_ResolveReferrer(t *testing.T) {
	ctx := context.Background()
	engine := NewRewardEngine(config.NewTestConfig())

	t.Run("numeric code resolves by id", func(t *testing.T) {
		accountRepo := new(testhelpers.MockAccountRepository)
		accountRepo.On("GetByID", ctx, int64(12345)).Return(&entities.Account{ID: 12345}, nil)

		service := NewReferralService(accountRepo, nil, nil, nil, engine)

		id, err := service.ResolveReferrer(ctx, "12345")
		require.NoError(t, err)
		assert.Equal(t, int64(12345), id)
	})

	t.Run("numeric code falls back to display name", func(t *testing.T) {
		accountRepo := new(testhelpers.MockAccountRepository)
		accountRepo.On("GetByID", ctx, int64(777)).Return(nil, nil)
		accountRepo.On("ResolveByDisplayName", ctx, "777").Return(&entities.Account{ID: 9}, nil)

		service := NewReferralService(accountRepo, nil, nil, nil, engine)

		id, err := service.ResolveReferrer(ctx, "777")
		require.NoError(t, err)
		assert.Equal(t, int64(9), id)
	})

	t.Run("name code resolves by display name", func(t *testing.T) {
		accountRepo := new(testhelpers.MockAccountRepository)
		accountRepo.On("ResolveByDisplayName", ctx, "friend").Return(&entities.Account{ID: 55}, nil)

		service := NewReferralService(accountRepo, nil, nil, nil, engine)

		id, err := service.ResolveReferrer(ctx, "friend")
		require.NoError(t, err)
		assert.Equal(t, int64(55), id)
	})

	t.Run("unknown code", func(t *testing.T) {
		accountRepo := new(testhelpers.MockAccountRepository)
		accountRepo.On("ResolveByDisplayName", ctx, "nobody").Return(nil, nil)

		service := NewReferralService(accountRepo, nil, nil, nil, engine)

		_, err := service.ResolveReferrer(ctx, "nobody")
		assert.ErrorIs(t, err, entities.ErrReferrerNotFound)
	})
}

func TestReferralService_Attribute(t *testing.T) {
	ctx := context.Background()

	tieredEngine := NewRewardEngine(config.NewTestConfig())

	flatCfg := config.NewTestConfig()
	flatCfg.ReferralScheme = config.ReferralSchemeFlat
	flatCfg.FlatReferralReward = 25000
	flatEngine := NewRewardEngine(flatCfg)

	t.Run("self referral is a quiet no-op", func(t *testing.T) {
		service := NewReferralService(nil, nil, nil, nil, tieredEngine)

		result, err := service.Attribute(ctx, 10, 10)
		require.NoError(t, err)
		assert.False(t, result.Attributed)
	})

	t.Run("second attribution for same account is a no-op", func(t *testing.T) {
		referralRepo := new(testhelpers.MockReferralEdgeRepository)
		referralRepo.On("Create", ctx, int64(1), int64(2)).Return(false, nil)

		service := NewReferralService(new(testhelpers.MockAccountRepository), referralRepo, nil, nil, tieredEngine)

		result, err := service.Attribute(ctx, 1, 2)
		require.NoError(t, err)
		assert.False(t, result.Attributed)
	})

	t.Run("tiered scheme pays the referrer on a tier count", func(t *testing.T) {
		accountRepo := new(testhelpers.MockAccountRepository)
		referralRepo := new(testhelpers.MockReferralEdgeRepository)
		ledgerRepo := new(testhelpers.MockLedgerRepository)
		publisher := new(testhelpers.MockEventPublisher)

		referralRepo.On("Create", ctx, int64(1), int64(2)).Return(true, nil)
		// Fifth referral lands exactly on a tier
		accountRepo.On("IncrementReferralCount", ctx, int64(1)).
			Return(&entities.Account{ID: 1, ReferralCount: 5, Balance: 1000}, nil)
		accountRepo.On("ApplyDelta", ctx, int64(1), int64(35000), int64(0)).
			Return(&entities.Account{ID: 1, ReferralCount: 5, Balance: 36000}, nil)
		ledgerRepo.On("Record", ctx, mock.MatchedBy(func(e *entities.LedgerEntry) bool {
			return e.AccountID == 1 && e.ChangeAmount == 35000 && e.Reason == entities.ReasonReferralTier
		})).Return(nil)
		publisher.On("Publish", mock.AnythingOfType("events.BalanceChangeEvent")).Return(nil)
		publisher.On("Publish", events.ReferralAttributedEvent{
			ReferrerID: 1, ReferredID: 2, ReferralCount: 5, Reward: 35000,
		}).Return(nil)

		service := NewReferralService(accountRepo, referralRepo, ledgerRepo, publisher, tieredEngine)

		result, err := service.Attribute(ctx, 1, 2)
		require.NoError(t, err)
		assert.True(t, result.Attributed)
		assert.Equal(t, int64(35000), result.ReferrerReward)
		assert.Equal(t, int64(0), result.ReferredReward)

		accountRepo.AssertExpectations(t)
		publisher.AssertExpectations(t)
	})

	t.Run("tiered scheme pays nothing between tiers", func(t *testing.T) {
		accountRepo := new(testhelpers.MockAccountRepository)
		referralRepo := new(testhelpers.MockReferralEdgeRepository)
		publisher := new(testhelpers.MockEventPublisher)

		referralRepo.On("Create", ctx, int64(1), int64(3)).Return(true, nil)
		accountRepo.On("IncrementReferralCount", ctx, int64(1)).
			Return(&entities.Account{ID: 1, ReferralCount: 3, Balance: 1000}, nil)
		publisher.On("Publish", events.ReferralAttributedEvent{
			ReferrerID: 1, ReferredID: 3, ReferralCount: 3, Reward: 0,
		}).Return(nil)

		service := NewReferralService(accountRepo, referralRepo, new(testhelpers.MockLedgerRepository), publisher, tieredEngine)

		result, err := service.Attribute(ctx, 1, 3)
		require.NoError(t, err)
		assert.True(t, result.Attributed)
		assert.Equal(t, int64(0), result.ReferrerReward)

		accountRepo.AssertNotCalled(t, "ApplyDelta", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("flat scheme pays both sides", func(t *testing.T) {
		accountRepo := new(testhelpers.MockAccountRepository)
		referralRepo := new(testhelpers.MockReferralEdgeRepository)
		ledgerRepo := new(testhelpers.MockLedgerRepository)
		publisher := new(testhelpers.MockEventPublisher)

		referralRepo.On("Create", ctx, int64(1), int64(4)).Return(true, nil)
		accountRepo.On("IncrementReferralCount", ctx, int64(1)).
			Return(&entities.Account{ID: 1, ReferralCount: 2, Balance: 0}, nil)
		accountRepo.On("ApplyDelta", ctx, int64(1), int64(25000), int64(0)).
			Return(&entities.Account{ID: 1, ReferralCount: 2, Balance: 25000}, nil)
		accountRepo.On("ApplyDelta", ctx, int64(4), int64(25000), int64(0)).
			Return(&entities.Account{ID: 4, Balance: 25000}, nil)
		ledgerRepo.On("Record", ctx, mock.Anything).Return(nil)
		publisher.On("Publish", mock.Anything).Return(nil)

		service := NewReferralService(accountRepo, referralRepo, ledgerRepo, publisher, flatEngine)

		result, err := service.Attribute(ctx, 1, 4)
		require.NoError(t, err)
		assert.True(t, result.Attributed)
		assert.Equal(t, int64(25000), result.ReferrerReward)
		assert.Equal(t, int64(25000), result.ReferredReward)

		accountRepo.AssertExpectations(t)
	})
}
