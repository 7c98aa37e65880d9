package domain

import (
	"fmt"
	"time"
)

const (
	displayNotStarted = "not started"
	displayDue        = "due"
)

// TimerState is the derived cooldown state of a task at one instant.
type TimerState struct {
	Due       bool          `json:"due"`
	Expired   bool          `json:"expired"`
	Progress  float64       `json:"progress"`
	Remaining time.Duration `json:"remaining_ns"`
	Hours     int           `json:"hours"`
	Minutes   int           `json:"minutes"`
	Display   string        `json:"display"`
}

// ParseInterval maps a timer type to its duration. Custom intervals take the
// hour count as given; anything unparseable yields zero.
func ParseInterval(timerType TimerType, customHours int) time.Duration {
	switch timerType {
	case Timer8h:
		return 8 * time.Hour
	case Timer12h:
		return 12 * time.Hour
	case Timer24h:
		return 24 * time.Hour
	case TimerCustom:
		if customHours > 0 {
			return time.Duration(customHours) * time.Hour
		}
	}
	return 0
}

// Evaluate computes the timer state without side effects. Expired signals
// that the stored completion marker is stale and should be cleared by the
// caller that owns persistence.
func Evaluate(lastCompletedAt *time.Time, interval time.Duration, now time.Time) TimerState {
	if lastCompletedAt == nil {
		return TimerState{Due: true, Display: displayNotStarted}
	}
	if interval <= 0 {
		return TimerState{Due: true, Expired: true, Display: displayDue}
	}

	expiry := lastCompletedAt.Add(interval)
	if !now.Before(expiry) {
		return TimerState{Due: true, Expired: true, Display: displayDue}
	}

	elapsed := now.Sub(*lastCompletedAt)
	progress := float64(elapsed) / float64(interval)
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}

	remaining := expiry.Sub(now)
	hours := int(remaining / time.Hour)
	minutes := int((remaining % time.Hour) / time.Minute)
	return TimerState{
		Progress:  progress,
		Remaining: remaining,
		Hours:     hours,
		Minutes:   minutes,
		Display:   fmt.Sprintf("%dh %dm", hours, minutes),
	}
}

// RefreshInterval is the suggested re-evaluation cadence for a countdown.
// Due tasks have nothing to count down and use the slowest cadence.
func RefreshInterval(remaining time.Duration) time.Duration {
	switch {
	case remaining <= 0:
		return time.Minute
	case remaining < time.Hour:
		return time.Second
	case remaining < 24*time.Hour:
		return 30 * time.Second
	default:
		return time.Minute
	}
}
