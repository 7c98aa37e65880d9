package domain

import (
	"reflect"
	"testing"
	"time"
)

func TestStreakFirstLogin(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	next, reached := Streak{}.Advance(now, time.UTC)
	if next.Current != 1 || next.Longest != 1 {
		t.Fatalf("expected 1/1, got %d/%d", next.Current, next.Longest)
	}
	if next.LastLoginDate == nil || !next.LastLoginDate.Equal(now) {
		t.Fatalf("expected last login to be recorded")
	}
	if len(reached) != 0 {
		t.Fatalf("did not expect milestones, got %v", reached)
	}
}

func TestStreakSameDayIsNoop(t *testing.T) {
	morning := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2024, 3, 10, 22, 0, 0, 0, time.UTC)
	start := Streak{Current: 3, Longest: 5, LastLoginDate: &morning}

	next, reached := start.Advance(evening, time.UTC)
	if next.Current != 3 || next.Longest != 5 {
		t.Fatalf("expected unchanged streak, got %+v", next)
	}
	if !next.LastLoginDate.Equal(morning) {
		t.Fatalf("expected last login to stay at the first login of the day")
	}
	if reached != nil {
		t.Fatalf("did not expect milestones")
	}
}

func TestStreakNextDayIncrements(t *testing.T) {
	last := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	now := time.Date(2024, 3, 11, 23, 30, 0, 0, time.UTC)
	start := Streak{Current: 3, Longest: 3, LastLoginDate: &last}

	next, _ := start.Advance(now, time.UTC)
	if next.Current != 4 || next.Longest != 4 {
		t.Fatalf("expected 4/4, got %d/%d", next.Current, next.Longest)
	}
}

func TestStreakGapResets(t *testing.T) {
	last := time.Date(2024, 3, 10, 23, 0, 0, 0, time.UTC)
	now := time.Date(2024, 3, 12, 0, 30, 0, 0, time.UTC)
	start := Streak{Current: 9, Longest: 12, LastLoginDate: &last}

	next, _ := start.Advance(now, time.UTC)
	if next.Current != 1 {
		t.Fatalf("expected reset to 1, got %d", next.Current)
	}
	if next.Longest != 12 {
		t.Fatalf("expected longest to be kept, got %d", next.Longest)
	}
}

func TestStreakUsesLocationForCalendarDays(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	// 20:00 UTC and 22:00 UTC fall on different local days in UTC+3.
	last := time.Date(2024, 3, 10, 20, 0, 0, 0, time.UTC)
	now := time.Date(2024, 3, 10, 22, 0, 0, 0, time.UTC)
	start := Streak{Current: 1, Longest: 1, LastLoginDate: &last}

	next, _ := start.Advance(now, loc)
	if next.Current != 2 {
		t.Fatalf("expected local next day to increment, got %d", next.Current)
	}
}

func TestStreakMilestonesReachedOnce(t *testing.T) {
	last := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	start := Streak{Current: 6, Longest: 6, LastLoginDate: &last}

	next, reached := start.Advance(last.Add(24*time.Hour), time.UTC)
	if !reflect.DeepEqual(reached, []int{7}) {
		t.Fatalf("expected milestone 7, got %v", reached)
	}
	if !next.HasMilestone(7) {
		t.Fatalf("expected milestone to be recorded")
	}
	if start.HasMilestone(7) {
		t.Fatalf("advance must not mutate the original record")
	}

	reset, _ := next.Advance(last.Add(5*24*time.Hour), time.UTC)
	day := *reset.LastLoginDate
	for i := 1; i < 7; i++ {
		day = day.Add(24 * time.Hour)
		var got []int
		reset, got = reset.Advance(day, time.UTC)
		if len(got) != 0 {
			t.Fatalf("milestone 7 celebrated twice: %v", got)
		}
	}
	if reset.Current != 7 {
		t.Fatalf("expected current 7 after rebuilding, got %d", reset.Current)
	}
}
