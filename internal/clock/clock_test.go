package clock_test

import (
	"testing"
	"time"

	"taskboard/internal/clock"
)

func TestReal_Now(t *testing.T) {
	clk := clock.Real{}
	before := time.Now()
	got := clk.Now()
	after := time.Now()

	if got.Before(before) || got.After(after) {
		t.Errorf("Real.Now() = %v, expected between %v and %v", got, before, after)
	}
}

func TestFixed_Now(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	clk := clock.Fixed{T: at}

	if got := clk.Now(); !got.Equal(at) {
		t.Errorf("Fixed.Now() = %v, want %v", got, at)
	}
	// Repeated reads must not drift.
	if got := clk.Now(); !got.Equal(at) {
		t.Errorf("Fixed.Now() second call = %v, want %v", got, at)
	}
}
