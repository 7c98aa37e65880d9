package domain

import (
	"time"
)

// StreakMilestones are the consecutive-day counts worth celebrating.
var StreakMilestones = []int{7, 14, 30, 60, 100}

// Streak tracks consecutive daily logins.
type Streak struct {
	Current       int        `json:"current"`
	Longest       int        `json:"longest"`
	LastLoginDate *time.Time `json:"last_login_date,omitempty"`
	Milestones    []int      `json:"milestones"`
}

func (s Streak) HasMilestone(days int) bool {
	for _, m := range s.Milestones {
		if m == days {
			return true
		}
	}
	return false
}

// Advance applies a login at now, comparing calendar days in loc.
// It returns the updated record and any milestones reached for the first time.
func (s Streak) Advance(now time.Time, loc *time.Location) (Streak, []int) {
	if loc == nil {
		loc = time.UTC
	}
	next := s
	next.Milestones = append([]int(nil), s.Milestones...)

	if s.LastLoginDate == nil {
		next.Current = 1
	} else {
		switch days := calendarDaysBetween(*s.LastLoginDate, now, loc); {
		case days <= 0:
			return next, nil
		case days == 1:
			next.Current = s.Current + 1
		default:
			next.Current = 1
		}
	}

	if next.Current > next.Longest {
		next.Longest = next.Current
	}
	login := now
	next.LastLoginDate = &login

	var reached []int
	for _, m := range StreakMilestones {
		if next.Current >= m && !next.HasMilestone(m) {
			reached = append(reached, m)
			next.Milestones = append(next.Milestones, m)
		}
	}
	return next, reached
}

func calendarDaysBetween(from, to time.Time, loc *time.Location) int {
	fy, fm, fd := from.In(loc).Date()
	ty, tm, td := to.In(loc).Date()
	start := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	end := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start).Hours() / 24)
}
