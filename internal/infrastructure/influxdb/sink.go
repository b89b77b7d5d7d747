package influxdb

import (
	"context"

	"github.com/nerrad567/occupancy-core/internal/occupancy"
)

// Sink adapts the client to the occupancy event sink interface so
// transitions fan out to InfluxDB alongside the SQLite log.
type Sink struct {
	client *Client
	sensor string
}

// NewSink creates a sink writing to the given client.
//
// Parameters:
//   - client: Connected InfluxDB client
//   - sensor: Tag value identifying the source sensor
//
// Returns:
//   - *Sink: Ready for use in a MultiSink
func NewSink(client *Client, sensor string) *Sink {
	return &Sink{client: client, sensor: sensor}
}

// Record mirrors one occupancy transition into InfluxDB.
//
// The underlying write is asynchronous and batched, so Record never
// blocks and always returns nil; write failures surface through the
// client's error callback instead.
func (s *Sink) Record(_ context.Context, event occupancy.Event) error {
	s.client.WriteOccupancy(s.sensor, event.Occupied, event.Timestamp)
	return nil
}
