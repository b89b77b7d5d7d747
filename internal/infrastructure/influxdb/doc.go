// Package influxdb mirrors the occupancy event log into InfluxDB for
// dashboarding and long-range analysis.
//
// It wraps the official influxdb-client-go v2 library with connection
// management, non-blocking batched writes, and health monitoring. The
// integration is optional: when disabled in config.yaml the monitor
// runs on SQLite alone.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    // ErrDisabled or a real connection failure
//	}
//	defer client.Close()
//
//	sink := influxdb.NewSink(client)
//	sink.Record(ctx, event)
//
// # Thread Safety
//
// All methods are safe for concurrent use. Writes are batched and sent
// asynchronously; failures surface through the SetOnError callback, not
// through Record, so a down InfluxDB never blocks event handling.
package influxdb
