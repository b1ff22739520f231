package services

import (
	"math/rand"

	"tapown/config"
	"tapown/domain/entities"
)

// referralTiers maps an exact referral count to the tier reward paid when
// that count is reached. The reward fires only on the step transition.
var referralTiers = map[int64]int64{
	1:   5000,
	5:   35000,
	10:  100000,
	50:  500000,
	100: 1500000,
}

// RewardEngine computes rewards from configuration and action inputs. It has
// no side effects and performs no I/O; randomness is injectable for tests.
type RewardEngine struct {
	cfg  *config.Config
	intn func(n int) int
}

// NewRewardEngine creates a reward engine using the package-level random source
func NewRewardEngine(cfg *config.Config) *RewardEngine {
	return &RewardEngine{cfg: cfg, intn: rand.Intn}
}

// NewRewardEngineWithRand creates a reward engine with an injected random draw
func NewRewardEngineWithRand(cfg *config.Config, intn func(n int) int) *RewardEngine {
	return &RewardEngine{cfg: cfg, intn: intn}
}

// TapReward returns the reward for a single tap: a fixed unit or a uniform
// draw from [TapRewardMin, TapRewardMax], depending on configuration.
func (e *RewardEngine) TapReward() int64 {
	if e.cfg.TapRewardMode == config.TapRewardModeFixed {
		return e.cfg.TapRewardFixed
	}
	return int64(e.cfg.TapRewardMin + e.intn(e.cfg.TapRewardMax-e.cfg.TapRewardMin+1))
}

// ReferralReward returns the referrer-side reward for reaching the given
// referral count. Under the tiered scheme it is non-zero only when the count
// lands exactly on a tier; under the flat scheme every referral pays the same.
func (e *RewardEngine) ReferralReward(newReferralCount int64) int64 {
	if e.cfg.ReferralScheme == config.ReferralSchemeFlat {
		return e.cfg.FlatReferralReward
	}
	return referralTiers[newReferralCount]
}

// ReferredWelcomeReward returns the referred-side reward. Only the flat
// scheme pays the referred account.
func (e *RewardEngine) ReferredWelcomeReward() int64 {
	if e.cfg.ReferralScheme == config.ReferralSchemeFlat {
		return e.cfg.FlatReferralReward
	}
	return 0
}

// BoostOutcome draws a fresh secret from [1, BoostRange] and compares it with
// the guess. The secret is drawn at evaluation time, independent of the
// guess, so the win odds are exactly 1/BoostRange whatever the guess is.
func (e *RewardEngine) BoostOutcome(guess int, drawFn func() int) (bool, int64) {
	secret := drawFn()
	if guess != secret {
		return false, 0
	}
	return true, e.cfg.BoostReward
}

// DrawBoostSecret returns a uniform draw from [1, BoostRange] suitable as the
// drawFn of BoostOutcome.
func (e *RewardEngine) DrawBoostSecret() int {
	return 1 + e.intn(e.cfg.BoostRange)
}

// MissionReward returns the static reward for a mission id
func (e *RewardEngine) MissionReward(catalog *entities.MissionCatalog, missionID string) (int64, error) {
	mission, ok := catalog.Lookup(missionID)
	if !ok {
		return 0, entities.ErrUnknownMission
	}
	return mission.Reward, nil
}
