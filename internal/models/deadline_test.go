package models

import (
	"testing"
	"time"
)

func TestRemainingDays(t *testing.T) {
	now := time.Date(2026, 10, 19, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name     string
		deadline time.Time
		expected string
	}{
		{"due today", time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), "today"},
		{"due tomorrow", time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC), "1 day remaining"},
		{"due next week", time.Date(2026, 10, 26, 0, 0, 0, 0, time.UTC), "7 days remaining"},
		{"due yesterday", time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC), "overdue by 1 day"},
		{"due last month", time.Date(2026, 9, 19, 0, 0, 0, 0, time.UTC), "overdue by 30 days"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RemainingDays(tt.deadline, now, time.UTC)
			if got != tt.expected {
				t.Errorf("RemainingDays() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestRemainingDays_UsesLocationForToday(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*60*60)
	// 20:00 UTC on the 19th is already the 20th in UTC+7.
	now := time.Date(2026, 10, 19, 20, 0, 0, 0, time.UTC)
	deadline := time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)

	if got := RemainingDays(deadline, now, jakarta); got != "today" {
		t.Errorf("expected today in UTC+7, got %q", got)
	}
	if got := RemainingDays(deadline, now, time.UTC); got != "1 day remaining" {
		t.Errorf("expected 1 day remaining in UTC, got %q", got)
	}
}

func TestCalendarDate(t *testing.T) {
	loc := time.FixedZone("minus5", -5*60*60)
	in := time.Date(2026, 1, 2, 3, 0, 0, 0, time.UTC)

	got := CalendarDate(in, loc)
	want := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("CalendarDate() = %v, want %v", got, want)
	}
	if got.Location() != time.UTC {
		t.Errorf("expected UTC location, got %v", got.Location())
	}
}

func TestWallClock(t *testing.T) {
	loc := time.FixedZone("plus2", 2*60*60)
	now := time.Date(2026, 10, 19, 23, 15, 0, 0, time.UTC)

	got := WallClock(now, loc)
	want := time.Date(2026, 10, 20, 1, 15, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("WallClock() = %v, want %v", got, want)
	}
}

func TestTaskStatusValid(t *testing.T) {
	for _, s := range TaskStatuses {
		if !s.Valid() {
			t.Errorf("expected %q to be valid", s)
		}
	}
	for _, s := range []TaskStatus{"", "done", "in_progress", "Pending"} {
		if s.Valid() {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}

func TestClock(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*60*60)
	fixed := time.Date(2026, 10, 19, 20, 0, 0, 0, time.UTC)
	clock := Clock{Now: func() time.Time { return fixed }, Location: loc}

	if got := clock.Today().Format(DateLayout); got != "2026-10-20" {
		t.Errorf("Today() = %s, want 2026-10-20", got)
	}
	if got := clock.Instant(); !got.Equal(time.Date(2026, 10, 20, 3, 0, 0, 0, time.UTC)) {
		t.Errorf("Instant() = %v", got)
	}
	if got := clock.RemainingDays(time.Date(2026, 10, 21, 0, 0, 0, 0, time.UTC)); got != "1 day remaining" {
		t.Errorf("RemainingDays() = %q", got)
	}
}
