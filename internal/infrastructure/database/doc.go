// Package database provides SQLite connectivity for the occupancy event store.
//
// This package manages:
//   - Opening the database file with WAL mode and busy timeout pragmas
//   - Embedded SQL migrations applied at startup
//   - Health checks and lifecycle management
//   - Read-only connections for the occupancyctl query tool
//
// The schema itself lives in the migrations package; consumers of the
// data go through the occupancy package's repository rather than raw SQL.
//
// SQLite is the right fit here: one writer (the recording daemon), rare
// readers (occupancyctl), zero operational overhead, survives for years
// on a Raspberry Pi.
package database
