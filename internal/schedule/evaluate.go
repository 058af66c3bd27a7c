// Package schedule derives a link's effective visibility from its
// stored flag and optional activation window. The stored is_active
// column is only a cache of this derivation, reconciled by the cron
// sweep; callers that must not serve a stale flag (password unlock)
// call Evaluate on the live row.
package schedule

import "time"

type Status struct {
	Scheduled bool // scheduled_at is set and still in the future
	Expired   bool // expires_at is set and has passed
	Visible   bool // effective visibility: flag AND window
}

// Evaluate is pure. Absent timestamps mean "no constraint". A link
// whose window has fully passed is both not-scheduled and expired;
// expired wins. scheduled_at == expires_at expires the instant it
// would activate, which is accepted rather than special-cased.
func Evaluate(active bool, scheduledAt, expiresAt *time.Time, now time.Time) Status {
	st := Status{
		Scheduled: scheduledAt != nil && scheduledAt.After(now),
		Expired:   expiresAt != nil && !expiresAt.After(now),
	}
	st.Visible = active && !st.Scheduled && !st.Expired
	return st
}
