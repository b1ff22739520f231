package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayOf(t *testing.T) {
	morning := time.Date(2026, 8, 30, 3, 15, 0, 0, time.UTC)
	evening := time.Date(2026, 8, 30, 23, 59, 59, 0, time.UTC)
	nextDay := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, DayOf(morning), DayOf(evening))
	assert.NotEqual(t, DayOf(evening), DayOf(nextDay))

	// Non-UTC wall clocks collapse to the same UTC day
	offset := time.FixedZone("plus3", 3*3600)
	assert.Equal(t, DayOf(morning), DayOf(morning.In(offset)))
}

func TestAccount_HasPlayedBoostOn(t *testing.T) {
	today := DayOf(time.Now())
	yesterday := today.Add(-24 * time.Hour)

	fresh := &Account{}
	assert.False(t, fresh.HasPlayedBoostOn(today))

	playedYesterday := &Account{LastBoostAt: &yesterday}
	assert.False(t, playedYesterday.HasPlayedBoostOn(today))
	assert.True(t, playedYesterday.HasPlayedBoostOn(yesterday))

	playedToday := &Account{LastBoostAt: &today}
	assert.True(t, playedToday.HasPlayedBoostOn(today))
}

func TestAccount_ActiveWithin(t *testing.T) {
	now := time.Now()

	active := &Account{LastActiveAt: now.Add(-time.Hour)}
	assert.True(t, active.ActiveWithin(now, 24*time.Hour))

	stale := &Account{LastActiveAt: now.Add(-48 * time.Hour)}
	assert.False(t, stale.ActiveWithin(now, 24*time.Hour))
}

func TestLedgerEntry_Validate(t *testing.T) {
	t.Run("consistent entry", func(t *testing.T) {
		entry := &LedgerEntry{BalanceBefore: 10, BalanceAfter: 30, ChangeAmount: 20, Reason: ReasonTap}
		assert.NoError(t, entry.Validate())
	})

	t.Run("non-positive change", func(t *testing.T) {
		entry := &LedgerEntry{BalanceBefore: 10, BalanceAfter: 10, ChangeAmount: 0}
		assert.ErrorIs(t, entry.Validate(), ErrInvalidDelta)

		entry = &LedgerEntry{BalanceBefore: 10, BalanceAfter: 5, ChangeAmount: -5}
		assert.ErrorIs(t, entry.Validate(), ErrInvalidDelta)
	})

	t.Run("inconsistent arithmetic", func(t *testing.T) {
		entry := &LedgerEntry{BalanceBefore: 10, BalanceAfter: 40, ChangeAmount: 20}
		assert.Error(t, entry.Validate())
	})
}

func TestMissionCatalog(t *testing.T) {
	catalog := DefaultMissionCatalog()

	t.Run("lookup known missions", func(t *testing.T) {
		mission, ok := catalog.Lookup("tapown")
		require.True(t, ok)
		assert.Equal(t, int64(10000), mission.Reward)
		assert.False(t, mission.Delayed)

		mission, ok = catalog.Lookup("kross_x")
		require.True(t, ok)
		assert.Equal(t, int64(75000), mission.Reward)
		assert.True(t, mission.Delayed)
		assert.Equal(t, PlatformX, mission.Platform)
	})

	t.Run("unknown mission", func(t *testing.T) {
		_, ok := catalog.Lookup("ghost")
		assert.False(t, ok)
	})

	t.Run("all preserves order", func(t *testing.T) {
		all := catalog.All()
		require.Len(t, all, 5)
		assert.Equal(t, "tapown", all[0].ID)
		assert.Equal(t, "hashgreed_x", all[4].ID)
	})
}

func TestPendingMission_DueAt(t *testing.T) {
	now := time.Now()
	window := 24 * time.Hour

	due := &PendingMission{RequestedAt: now.Add(-25 * time.Hour)}
	assert.True(t, due.DueAt(now, window))

	early := &PendingMission{RequestedAt: now.Add(-time.Hour)}
	assert.False(t, early.DueAt(now, window))

	resolved := &PendingMission{RequestedAt: now.Add(-48 * time.Hour), Resolved: true}
	assert.False(t, resolved.DueAt(now, window))
}
