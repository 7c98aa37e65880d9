package domain

import (
	"testing"
	"time"
)

func TestNormalizeURL(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"https://example.com/drop", "https://example.com/drop", false},
		{"example.com", "https://example.com", false},
		{"  HTTP://Example.com/a?b=c ", "http://Example.com/a?b=c", false},
		{"ftp://example.com", "", true},
		{"", "", true},
		{"https://", "", true},
		{"javascript:alert(1)", "", true},
	}
	for _, tc := range cases {
		got, err := NormalizeURL(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("NormalizeURL(%q) expected error, got %q", tc.in, got)
			}
			if !IsDomainError(err, ErrCodeInvalid) {
				t.Fatalf("NormalizeURL(%q) expected INVALID, got %v", tc.in, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("NormalizeURL(%q) unexpected error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("NormalizeURL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTaskValidate(t *testing.T) {
	task := &Task{Title: "  Claim  ", URL: "app.example.org", TimerType: Timer8h, CustomHours: 9}
	if err := task.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if task.Title != "Claim" || task.URL != "https://app.example.org" {
		t.Fatalf("unexpected normalization: %+v", task)
	}
	if task.Intensity != IntensityMedium || task.CustomHours != 0 {
		t.Fatalf("expected defaults applied, got %+v", task)
	}

	invalid := []*Task{
		{Title: "", URL: "example.com", TimerType: Timer8h},
		{Title: "x", URL: "example.com", TimerType: "weekly"},
		{Title: "x", URL: "example.com", TimerType: TimerCustom, CustomHours: 0},
		{Title: "x", URL: "example.com", TimerType: TimerCustom, CustomHours: 73},
		{Title: "x", URL: "example.com", TimerType: Timer8h, Intensity: "extreme"},
	}
	for _, tc := range invalid {
		if err := tc.Validate(); !IsDomainError(err, ErrCodeInvalid) {
			t.Fatalf("expected INVALID for %+v, got %v", tc, err)
		}
	}
}

func TestTaskActive(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	last := now.Add(-11 * time.Hour)
	task := &Task{TimerType: Timer12h, LastCompletedAt: &last}
	if !task.Active(now) {
		t.Fatalf("expected task to be active")
	}
	if task.Active(now.Add(time.Hour)) {
		t.Fatalf("expected task to be due once the interval passes")
	}

	custom := &Task{TimerType: TimerCustom, CustomHours: 2, LastCompletedAt: &last}
	if custom.Active(now) {
		t.Fatalf("expected custom task to be due")
	}
}

func TestNewTaskView(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	last := now.Add(-7*time.Hour - 30*time.Minute)
	view := NewTaskView(Task{TimerType: Timer8h, LastCompletedAt: &last}, now)
	if view.State.Due {
		t.Fatalf("expected countdown state")
	}
	if view.RefreshSeconds != 1 {
		t.Fatalf("expected 1s refresh under an hour, got %d", view.RefreshSeconds)
	}
}

func TestStoredTime(t *testing.T) {
	local := time.Date(2026, 3, 1, 12, 30, 15, 123456789, time.FixedZone("UTC+3", 3*3600))

	got := StoredTime(local)
	if got.Location() != time.UTC {
		t.Fatalf("expected UTC, got %v", got.Location())
	}
	if got.Nanosecond() != 123456000 {
		t.Fatalf("expected microsecond precision, got %d ns", got.Nanosecond())
	}
	if !got.Equal(time.Date(2026, 3, 1, 9, 30, 15, 123456000, time.UTC)) {
		t.Fatalf("unexpected instant %v", got)
	}
	if again := StoredTime(got); again != got {
		t.Fatalf("expected StoredTime to be idempotent, got %v then %v", got, again)
	}
	if withMonotonic := StoredTime(time.Now()); withMonotonic != StoredTime(withMonotonic) {
		t.Fatalf("expected monotonic reading to be stripped")
	}
	if !StoredTime(time.Time{}).IsZero() {
		t.Fatalf("expected zero time to stay zero")
	}
}
