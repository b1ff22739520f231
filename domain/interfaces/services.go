package interfaces

import (
	"context"

	"tapown/domain/entities"
)

// MembershipVerifier checks whether an account belongs to an external
// community. Implementations are treated as slow and unreliable: calls carry
// a caller-imposed timeout, and any error means "not verified yet", never a
// terminal rejection.
type MembershipVerifier interface {
	IsMember(ctx context.Context, platform entities.Platform, channelRef string, accountID int64) (bool, error)
}

// TapResult is the outcome of a tap action
type TapResult struct {
	Account *entities.Account
	Reward  int64
}

// BoostResult is the outcome of a boost play
type BoostResult struct {
	Account *entities.Account
	Won     bool
	Secret  int
	Reward  int64
}

// MissionStatus classifies the outcome of a mission check
type MissionStatus string

const (
	MissionStatusRewarded         MissionStatus = "rewarded"
	MissionStatusPending          MissionStatus = "pending"
	MissionStatusAlreadyCompleted MissionStatus = "already_completed"
	MissionStatusNotMember        MissionStatus = "not_member"
)

// MissionCheckResult is the outcome of a mission check request
type MissionCheckResult struct {
	Status  MissionStatus
	Mission entities.Mission
	Account *entities.Account
	Reward  int64
}

// ReferralResult is the outcome of a referral attribution
type ReferralResult struct {
	Attributed     bool
	Referrer       *entities.Account
	ReferrerReward int64
	ReferredReward int64
}
