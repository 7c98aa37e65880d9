package domain

import (
	"math"
	"testing"
	"time"
)

func TestEvaluateInCooldown(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	last := now.Add(-time.Hour)

	state := Evaluate(&last, 8*time.Hour, now)
	if state.Due {
		t.Fatalf("expected task to be in cooldown")
	}
	if state.Expired {
		t.Fatalf("expected task not to be expired")
	}
	if math.Abs(state.Progress-0.125) > 1e-9 {
		t.Fatalf("expected progress 0.125, got %f", state.Progress)
	}
	if state.Hours != 7 || state.Minutes != 0 {
		t.Fatalf("expected 7h 0m remaining, got %dh %dm", state.Hours, state.Minutes)
	}
	if state.Display != "7h 0m" {
		t.Fatalf("unexpected display %q", state.Display)
	}
}

func TestEvaluateExpired(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	last := now.Add(-9 * time.Hour)

	state := Evaluate(&last, 8*time.Hour, now)
	if !state.Due || !state.Expired {
		t.Fatalf("expected due and expired, got %+v", state)
	}
	if state.Progress != 0 {
		t.Fatalf("expected progress reset to 0, got %f", state.Progress)
	}
}

func TestEvaluateExactExpiryIsDue(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	last := now.Add(-8 * time.Hour)

	if state := Evaluate(&last, 8*time.Hour, now); !state.Due {
		t.Fatalf("expected due at exact expiry")
	}
}

func TestEvaluateNeverCompleted(t *testing.T) {
	now := time.Now()
	for _, interval := range []time.Duration{0, time.Hour, 72 * time.Hour} {
		state := Evaluate(nil, interval, now)
		if !state.Due || state.Expired || state.Progress != 0 {
			t.Fatalf("interval %s: unexpected state %+v", interval, state)
		}
		if state.Display != "not started" {
			t.Fatalf("interval %s: unexpected display %q", interval, state.Display)
		}
	}
}

func TestEvaluateMalformedIntervalFailsClosed(t *testing.T) {
	now := time.Now()
	last := now.Add(-time.Minute)

	state := Evaluate(&last, ParseInterval("weekly", 0), now)
	if !state.Due {
		t.Fatalf("expected malformed interval to make the task due")
	}
}

func TestEvaluateRemainingMinutes(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	last := now.Add(-(10*time.Hour + 15*time.Minute + 30*time.Second))

	state := Evaluate(&last, 12*time.Hour, now)
	if state.Hours != 1 || state.Minutes != 44 {
		t.Fatalf("expected 1h 44m, got %dh %dm", state.Hours, state.Minutes)
	}
}

func TestParseInterval(t *testing.T) {
	cases := []struct {
		timer  TimerType
		custom int
		want   time.Duration
	}{
		{Timer8h, 0, 8 * time.Hour},
		{Timer12h, 5, 12 * time.Hour},
		{Timer24h, 0, 24 * time.Hour},
		{TimerCustom, 36, 36 * time.Hour},
		{TimerCustom, 0, 0},
		{TimerCustom, -3, 0},
		{"", 0, 0},
	}
	for _, tc := range cases {
		if got := ParseInterval(tc.timer, tc.custom); got != tc.want {
			t.Fatalf("ParseInterval(%q, %d) = %s, want %s", tc.timer, tc.custom, got, tc.want)
		}
	}
}

func TestRefreshInterval(t *testing.T) {
	cases := []struct {
		remaining time.Duration
		want      time.Duration
	}{
		{0, time.Minute},
		{30 * time.Minute, time.Second},
		{59 * time.Minute, time.Second},
		{time.Hour, 30 * time.Second},
		{23 * time.Hour, 30 * time.Second},
		{24 * time.Hour, time.Minute},
		{48 * time.Hour, time.Minute},
	}
	for _, tc := range cases {
		if got := RefreshInterval(tc.remaining); got != tc.want {
			t.Fatalf("RefreshInterval(%s) = %s, want %s", tc.remaining, got, tc.want)
		}
	}
}
