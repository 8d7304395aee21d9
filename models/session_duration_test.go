package models

import (
	"testing"
	"time"
)

func TestSessionDurationMinutes(t *testing.T) {
	opened := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := opened.Add(95 * time.Minute)

	open := &TableSession{OpenedAt: opened}
	if got := SessionDurationMinutes(open, now); got != 95 {
		t.Fatalf("open session duration = %d; want 95", got)
	}

	closedAt := opened.Add(30 * time.Minute)
	closed := &TableSession{OpenedAt: opened, ClosedAt: &closedAt}
	if got := SessionDurationMinutes(closed, now); got != 30 {
		t.Fatalf("closed session duration = %d; want 30", got)
	}

	// Sub-minute seatings round down, never negative.
	short := &TableSession{OpenedAt: opened}
	if got := SessionDurationMinutes(short, opened.Add(45*time.Second)); got != 0 {
		t.Fatalf("sub-minute duration = %d; want 0", got)
	}
	if got := SessionDurationMinutes(open, opened.Add(-time.Minute)); got != 0 {
		t.Fatalf("clock skew duration = %d; want 0", got)
	}
}
