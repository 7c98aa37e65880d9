package domain

import (
	"net/url"
	"strings"
	"time"
)

// Intensity is a cosmetic effort marker chosen by the user.
type Intensity string

const (
	IntensityHigh   Intensity = "high"
	IntensityMedium Intensity = "medium"
	IntensityLow    Intensity = "low"
)

func (i Intensity) Valid() bool {
	switch i {
	case IntensityHigh, IntensityMedium, IntensityLow:
		return true
	}
	return false
}

// TimerType selects the cooldown interval of a task.
type TimerType string

const (
	Timer8h     TimerType = "8h"
	Timer12h    TimerType = "12h"
	Timer24h    TimerType = "24h"
	TimerCustom TimerType = "custom"
)

const (
	MinCustomHours = 1
	MaxCustomHours = 72
)

// Task represents a recurring reminder owned by a single user.
type Task struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	Title           string     `json:"title"`
	URL             string     `json:"url"`
	Intensity       Intensity  `json:"intensity"`
	TimerType       TimerType  `json:"timer_type"`
	CustomHours     int        `json:"custom_hours,omitempty"`
	LastCompletedAt *time.Time `json:"last_completed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Interval resolves the cooldown duration. Unknown timer types resolve to zero,
// which makes the task immediately due.
func (t *Task) Interval() time.Duration {
	if t == nil {
		return 0
	}
	return ParseInterval(t.TimerType, t.CustomHours)
}

// Active reports whether the task is still in cooldown at now.
func (t *Task) Active(now time.Time) bool {
	if t == nil || t.LastCompletedAt == nil {
		return false
	}
	interval := t.Interval()
	if interval <= 0 {
		return false
	}
	return now.Before(t.LastCompletedAt.Add(interval))
}

// Timer evaluates the cooldown state of the task at now.
func (t *Task) Timer(now time.Time) TimerState {
	if t == nil {
		return Evaluate(nil, 0, now)
	}
	return Evaluate(t.LastCompletedAt, t.Interval(), now)
}

// Validate checks user-supplied fields and normalizes the URL in place.
func (t *Task) Validate() error {
	if t == nil {
		return ErrInvalidPayload
	}
	t.Title = strings.TrimSpace(t.Title)
	if t.Title == "" {
		return NewError(ErrCodeInvalid, "title is required")
	}
	normalized, err := NormalizeURL(t.URL)
	if err != nil {
		return err
	}
	t.URL = normalized
	if t.Intensity == "" {
		t.Intensity = IntensityMedium
	}
	if !t.Intensity.Valid() {
		return NewError(ErrCodeInvalid, "intensity must be high, medium or low")
	}
	switch t.TimerType {
	case Timer8h, Timer12h, Timer24h:
		t.CustomHours = 0
	case TimerCustom:
		if t.CustomHours < MinCustomHours || t.CustomHours > MaxCustomHours {
			return NewError(ErrCodeInvalid, "custom hours must be between 1 and 72")
		}
	default:
		return NewError(ErrCodeInvalid, "unknown timer type")
	}
	return nil
}

// NormalizeURL prefixes https:// when the scheme is missing and requires an
// absolute http or https URL with a host.
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", NewError(ErrCodeInvalid, "url is required")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", WrapError(ErrCodeInvalid, "invalid url", err)
	}
	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", NewError(ErrCodeInvalid, "url must use http or https")
	}
	if parsed.Host == "" || strings.ContainsAny(parsed.Host, " \t") {
		return "", NewError(ErrCodeInvalid, "url must include a host")
	}
	parsed.Scheme = scheme
	return parsed.String(), nil
}

// StoredTime is t as it reads back from a timestamptz column: UTC, whole
// microseconds and without a monotonic reading. Timestamps are normalized
// before they are persisted so a saved record equals its reloaded copy.
func StoredTime(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.Round(0).UTC().Truncate(time.Microsecond)
}

// TaskView pairs a stored task with its derived timer state.
type TaskView struct {
	Task
	State          TimerState `json:"state"`
	RefreshSeconds int        `json:"refresh_seconds"`
}

// NewTaskView derives the timer state of task at now.
func NewTaskView(task Task, now time.Time) TaskView {
	state := task.Timer(now)
	return TaskView{
		Task:           task,
		State:          state,
		RefreshSeconds: int(RefreshInterval(state.Remaining) / time.Second),
	}
}

// TaskSnapshot is a full replacement of a user's task list.
type TaskSnapshot struct {
	UserID string     `json:"user_id"`
	Tasks  []TaskView `json:"tasks"`
	At     time.Time  `json:"at"`
}
