package usage

import "time"

const (
	// DefaultWeeklyLimit is the number of AI generations per user per period.
	DefaultWeeklyLimit = 50
	defaultPlan        = "Free"
	period             = 7 * 24 * time.Hour
)

func newUsage(limit int, now time.Time) Usage {
	return Usage{
		Plan:     defaultPlan,
		Limit:    limit,
		Used:     0,
		ResetsAt: now.Add(period),
	}
}

// rollover starts a fresh period when the current one has ended.
func rollover(u Usage, now time.Time) (Usage, bool) {
	if now.Before(u.ResetsAt) {
		return u, false
	}
	u.Used = 0
	u.ResetsAt = now.Add(period)
	return u, true
}
