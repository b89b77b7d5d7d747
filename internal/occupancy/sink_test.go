package occupancy

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nerrad567/occupancy-core/internal/infrastructure/logging"
)

// recordingSink captures events for assertions.
type recordingSink struct {
	events []Event
	err    error
}

func (s *recordingSink) Record(_ context.Context, event Event) error {
	s.events = append(s.events, event)
	return s.err
}

func testEvent(occupied bool) Event {
	return Event{
		Timestamp:  time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC),
		Occupied:   occupied,
		RawPayload: []byte(`{"occupancy":true}`),
	}
}

func TestMultiSink_FansOut(t *testing.T) {
	a := &recordingSink{}
	b := &recordingSink{}
	multi := NewMultiSink(a, nil, b)

	if err := multi.Record(context.Background(), testEvent(true)); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	if len(a.events) != 1 || len(b.events) != 1 {
		t.Errorf("sink deliveries = (%d, %d), want (1, 1)", len(a.events), len(b.events))
	}
}

func TestMultiSink_FailureDoesNotStopOthers(t *testing.T) {
	failing := &recordingSink{err: errors.New("disk full")}
	healthy := &recordingSink{}
	multi := NewMultiSink(failing, healthy)

	err := multi.Record(context.Background(), testEvent(false))
	if err == nil {
		t.Error("Record() = nil, want error from failing sink")
	}

	if len(healthy.events) != 1 {
		t.Errorf("healthy sink deliveries = %d, want 1 despite earlier failure", len(healthy.events))
	}
}

func TestLogSink_Record(t *testing.T) {
	sink := NewLogSink(logging.Default())

	if err := sink.Record(context.Background(), testEvent(true)); err != nil {
		t.Errorf("Record(occupied) error = %v", err)
	}
	if err := sink.Record(context.Background(), testEvent(false)); err != nil {
		t.Errorf("Record(vacant) error = %v", err)
	}
}
