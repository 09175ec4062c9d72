package globaltime

import (
	"testing"
	"time"
)

func TestMockClock(t *testing.T) {
	fixed := time.Date(2026, time.October, 16, 9, 30, 0, 0, time.FixedZone("ART", -3*60*60))
	SetMockTime(fixed)
	defer ResetTime()

	if got := UTC(); !got.Equal(fixed) || got.Location() != time.UTC {
		t.Fatalf("unexpected mocked utc time: %v", got)
	}
	if got := Since(fixed.Add(-90 * time.Minute)); got != 90*time.Minute {
		t.Fatalf("unexpected elapsed time: %v", got)
	}
	if got := ISO(fixed); got != "2026-10-16T12:30:00.000Z" {
		t.Fatalf("unexpected iso format: %q", got)
	}
}
