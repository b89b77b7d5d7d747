package occupancy

import (
	"context"
	"errors"

	"github.com/nerrad567/occupancy-core/internal/infrastructure/logging"
)

// LogSink reports state transitions through the structured logger.
//
// This is the monitor's human-facing output: one line per transition,
// mirroring what an operator watches during commissioning.
type LogSink struct {
	log *logging.Logger
}

// NewLogSink creates a LogSink writing to the given logger.
func NewLogSink(log *logging.Logger) *LogSink {
	return &LogSink{log: log.With("component", "reporter")}
}

// Record implements Sink.
func (s *LogSink) Record(_ context.Context, event Event) error {
	if event.Occupied {
		s.log.Info("presence detected", "timestamp", event.Timestamp)
	} else {
		s.log.Info("no presence", "timestamp", event.Timestamp)
	}
	return nil
}

// MultiSink fans one event out to several sinks.
//
// Every sink sees every event even if an earlier one fails; the
// combined error is returned so the caller can log it. A failing
// database must not stop the transition report, and vice versa.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink combines the given sinks. Nil entries are skipped.
func NewMultiSink(sinks ...Sink) *MultiSink {
	m := &MultiSink{}
	for _, s := range sinks {
		if s != nil {
			m.sinks = append(m.sinks, s)
		}
	}
	return m
}

// Record implements Sink.
func (m *MultiSink) Record(ctx context.Context, event Event) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Record(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
