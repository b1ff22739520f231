package entities

import "time"

// ReferralEdge links a referred account to the referrer that brought it in.
// An account can be referred at most once; the first recorded edge wins and
// later attribution attempts change nothing.
type ReferralEdge struct {
	ReferredID int64
	ReferrerID int64
	CreatedAt  time.Time
}

// IsSelfReferral reports whether the edge points back at its own account
func (e *ReferralEdge) IsSelfReferral() bool {
	return e.ReferredID == e.ReferrerID
}
