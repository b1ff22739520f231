package entities

// GlobalStats are aggregate counters derived from the account store. They are
// computed on read and never stored independently, so they cannot drift from
// the committed account state.
type GlobalStats struct {
	TotalBalance  int64
	TotalTaps     int64
	TotalAccounts int64
	DailyActive   int64
}

// LeaderboardEntry is one ranked row of the top-N listing
type LeaderboardEntry struct {
	Rank        int
	AccountID   int64
	DisplayName string
	Balance     int64
}
