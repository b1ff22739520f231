package events

import "tapown/domain/entities"

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange      EventType = "balance_change"
	EventTypeAccountCreated     EventType = "account_created"
	EventTypeBoostPlayed        EventType = "boost_played"
	EventTypeMissionResolved    EventType = "mission_resolved"
	EventTypeReferralAttributed EventType = "referral_attributed"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent represents a balance change that occurred
type BalanceChangeEvent struct {
	AccountID    int64
	OldBalance   int64
	NewBalance   int64
	Reason       entities.RewardReason
	ChangeAmount int64
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// AccountCreatedEvent represents a first-seen account creation
type AccountCreatedEvent struct {
	AccountID   int64
	DisplayName string
}

func (e AccountCreatedEvent) Type() EventType {
	return EventTypeAccountCreated
}

// BoostPlayedEvent represents a daily boost play, won or lost
type BoostPlayedEvent struct {
	AccountID int64
	Guess     int
	Secret    int
	Won       bool
	Reward    int64
}

func (e BoostPlayedEvent) Type() EventType {
	return EventTypeBoostPlayed
}

// MissionResolvedEvent represents a mission verified and paid
type MissionResolvedEvent struct {
	AccountID int64
	MissionID string
	Reward    int64
	Delayed   bool
}

func (e MissionResolvedEvent) Type() EventType {
	return EventTypeMissionResolved
}

// ReferralAttributedEvent represents a referral edge written and rewarded
type ReferralAttributedEvent struct {
	ReferrerID    int64
	ReferredID    int64
	ReferralCount int64
	Reward        int64
}

func (e ReferralAttributedEvent) Type() EventType {
	return EventTypeReferralAttributed
}
