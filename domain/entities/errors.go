package entities

import "errors"

// Typed outcomes surfaced by the reward engine. None of these are fatal;
// callers translate them into user-visible results.
var (
	// ErrAccountNotFound is returned when an operation targets an account
	// that was never created.
	ErrAccountNotFound = errors.New("account not found")

	// ErrBoostAlreadyPlayed is returned when the daily boost gate was already
	// consumed for the current day.
	ErrBoostAlreadyPlayed = errors.New("boost already played today")

	// ErrUnknownMission is returned for a mission id absent from the catalog.
	ErrUnknownMission = errors.New("unknown mission")

	// ErrInvalidDelta rejects non-positive balance changes before any
	// mutation happens.
	ErrInvalidDelta = errors.New("reward delta must be positive")

	// ErrReferrerNotFound is returned when a referral code does not resolve
	// to an existing account.
	ErrReferrerNotFound = errors.New("referrer not found")
)
