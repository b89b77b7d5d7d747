package monitor

import (
	"testing"
	"time"
)

func TestLiveness_FreshMonitorNotStale(t *testing.T) {
	m := NewLivenessMonitor()

	if m.Stale(time.Minute) {
		t.Error("Stale() = true immediately after construction, want false")
	}
}

func TestLiveness_StaleAfterInactivity(t *testing.T) {
	m := NewLivenessMonitor()

	time.Sleep(20 * time.Millisecond)

	if !m.Stale(5 * time.Millisecond) {
		t.Error("Stale(5ms) = false after 20ms of silence, want true")
	}
	if m.Stale(time.Minute) {
		t.Error("Stale(1m) = true after 20ms of silence, want false")
	}
}

func TestLiveness_TouchResetsClock(t *testing.T) {
	m := NewLivenessMonitor()

	time.Sleep(20 * time.Millisecond)
	m.Touch()

	if m.Stale(10 * time.Millisecond) {
		t.Error("Stale() = true right after Touch(), want false")
	}
	if since := m.SinceLastActivity(); since > 10*time.Millisecond {
		t.Errorf("SinceLastActivity() = %v right after Touch(), want near zero", since)
	}
}
