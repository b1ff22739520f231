package entities

import "time"

// Platform identifies where a mission's membership lives
type Platform string

const (
	PlatformTelegram Platform = "telegram"
	PlatformX        Platform = "x"
)

// Mission is one rewardable community task. Instant missions are verified at
// claim time; delayed missions are recorded as pending and resolved by the
// sweep after the waiting window.
type Mission struct {
	ID         string
	Title      string
	Platform   Platform
	ChannelRef string
	Reward     int64
	Delayed    bool
}

// DefaultMissions is the built-in mission catalog
func DefaultMissions() []Mission {
	return []Mission{
		{ID: "tapown", Title: "Join the Tapown channel", Platform: PlatformTelegram, ChannelRef: "@tapown", Reward: 10000},
		{ID: "kross", Title: "Join the Kross channel", Platform: PlatformTelegram, ChannelRef: "@krosscoin_kss", Reward: 15000},
		{ID: "hashgreed", Title: "Join the Hashgreed channel", Platform: PlatformTelegram, ChannelRef: "@hashgreed", Reward: 15000},
		{ID: "kross_x", Title: "Follow Kross on X", Platform: PlatformX, ChannelRef: "krosscoin_team", Reward: 75000, Delayed: true},
		{ID: "hashgreed_x", Title: "Follow Hashgreed on X", Platform: PlatformX, ChannelRef: "hashgreed", Reward: 75000, Delayed: true},
	}
}

// MissionCatalog is an immutable lookup of the known missions
type MissionCatalog struct {
	byID  map[string]Mission
	order []string
}

// NewMissionCatalog builds a catalog from the given missions
func NewMissionCatalog(missions []Mission) *MissionCatalog {
	c := &MissionCatalog{byID: make(map[string]Mission, len(missions))}
	for _, m := range missions {
		if _, exists := c.byID[m.ID]; exists {
			continue
		}
		c.byID[m.ID] = m
		c.order = append(c.order, m.ID)
	}
	return c
}

// DefaultMissionCatalog builds the catalog of built-in missions
func DefaultMissionCatalog() *MissionCatalog {
	return NewMissionCatalog(DefaultMissions())
}

// Lookup returns the mission with the given id
func (c *MissionCatalog) Lookup(id string) (Mission, bool) {
	m, ok := c.byID[id]
	return m, ok
}

// All returns the missions in catalog order
func (c *MissionCatalog) All() []Mission {
	out := make([]Mission, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// PendingMission is a recorded mission claim awaiting or past verification
type PendingMission struct {
	ID          int64
	AccountID   int64
	MissionID   string
	RequestedAt time.Time
	Resolved    bool
	ResolvedAt  *time.Time
	CreatedAt   time.Time
}

// DueAt reports whether the claim has waited out the verification window
func (pm *PendingMission) DueAt(now time.Time, window time.Duration) bool {
	return !pm.Resolved && !pm.RequestedAt.After(now.Add(-window))
}
