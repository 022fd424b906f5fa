package core

import (
	"time"

	"renewtrack.com/renewtrack/utils"
)

// DueSoonWindowDays is the inclusive window before expiry in which a
// subscription counts as due_soon.
const DueSoonWindowDays = 30

// DeriveStatus computes the lifecycle state from the end date alone. Both
// dates are truncated to UTC days before comparing so every caller lands on
// the same boundary.
func DeriveStatus(endDate, today time.Time) Status {
	diff := utils.DiffDays(endDate, today)
	switch {
	case diff < 0:
		return StatusExpired
	case diff <= DueSoonWindowDays:
		return StatusDueSoon
	default:
		return StatusActive
	}
}

// EffectiveStatus is what every reader of a subscription must use. The
// persisted column only wins when it holds the manual review override; it
// stays review until an edit clears it.
func (s *Subscription) EffectiveStatus(today time.Time) Status {
	if s.Status == StatusReview {
		return StatusReview
	}
	return DeriveStatus(s.EndDate, today)
}

// DaysLeft is negative once the subscription has expired.
func (s *Subscription) DaysLeft(today time.Time) int {
	return utils.DiffDays(s.EndDate, today)
}
