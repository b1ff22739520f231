package entities

import "time"

// Account is a player's persistent state. The balance is the single source of
// truth for earned rewards and is only ever changed through positive deltas
// applied atomically in the store.
type Account struct {
	ID            int64
	DisplayName   string
	Balance       int64
	TapCount      int64
	ReferralCount int64
	LastActiveAt  time.Time
	LastBoostAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// DayOf truncates a timestamp to its UTC day. All daily gating compares days
// produced by this function.
func DayOf(t time.Time) time.Time {
	return t.UTC().Truncate(24 * time.Hour)
}

// HasPlayedBoostOn reports whether the boost gate was already consumed on the
// given day
func (a *Account) HasPlayedBoostOn(day time.Time) bool {
	if a.LastBoostAt == nil {
		return false
	}
	return !a.LastBoostAt.Before(day)
}

// ActiveWithin reports whether the account interacted within the window
// ending at now
func (a *Account) ActiveWithin(now time.Time, window time.Duration) bool {
	return a.LastActiveAt.After(now.Add(-window))
}

// CalculateNewBalance returns the balance after applying a reward delta
func (a *Account) CalculateNewBalance(delta int64) int64 {
	return a.Balance + delta
}
