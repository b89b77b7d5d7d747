package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteOccupancy writes a single occupancy transition.
//
// The write is non-blocking; points are batched and sent asynchronously.
// Occupancy is stored as an integer field (0 or 1) so dashboards can
// draw it as a step function and aggregate presence time with integrals.
//
// Parameters:
//   - sensor: Tag identifying the source sensor topic
//   - occupied: The binary occupancy state
//   - at: The transition timestamp
func (c *Client) WriteOccupancy(sensor string, occupied bool, at time.Time) {
	if !c.IsConnected() {
		return
	}

	value := 0
	if occupied {
		value = 1
	}

	point := write.NewPoint(
		"occupancy",
		map[string]string{
			"sensor": sensor,
		},
		map[string]interface{}{
			"occupied": value,
		},
		at,
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for measurements that don't fit the occupancy helper, e.g.
// connection statistics.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}
