package occupancy

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const (
	defaultRecentLimit = 10
	maxRecentLimit     = 500

	// timestampLayout is a fixed-width UTC format so lexical ordering in
	// SQLite matches chronological ordering regardless of fractional digits.
	timestampLayout = "2006-01-02T15:04:05.000000000Z"
)

// SQLiteRepository persists occupancy events and answers the query
// surface used by occupancyctl.
//
// Inserts are idempotent on (timestamp, occupied): re-recording the same
// event is a no-op, which absorbs any duplicate emission at the monitor
// boundary.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a repository over an open SQLite connection.
//
// Parameters:
//   - db: Open SQLite connection (schema applied via migrations)
//
// Returns:
//   - *SQLiteRepository: Repository ready for use
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Record implements Sink. It appends one event to the log, ignoring
// exact duplicates.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - event: The occupancy transition to persist
//
// Returns:
//   - error: nil on success (including deduplicated no-ops)
func (r *SQLiteRepository) Record(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		return fmt.Errorf("event timestamp is required")
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO occupancy_events (timestamp, occupied, raw_payload) VALUES (?, ?, ?)",
		event.Timestamp.UTC().Format(timestampLayout),
		boolToInt(event.Occupied),
		event.RawPayload,
	)
	if err != nil {
		return fmt.Errorf("inserting occupancy event: %w", err)
	}

	return nil
}

// Recent returns the most recent events, newest first.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - limit: Maximum entries to return (default 10, max 500)
//
// Returns:
//   - []StoredEvent: Events ordered by timestamp DESC
//   - error: nil on success, otherwise the underlying query error
func (r *SQLiteRepository) Recent(ctx context.Context, limit int) ([]StoredEvent, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, timestamp, occupied, raw_payload
		 FROM occupancy_events
		 ORDER BY timestamp DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying recent events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows, limit)
}

// ByDate returns all events on the given calendar day (UTC), oldest first.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - day: Any instant within the day of interest
//
// Returns:
//   - []StoredEvent: Events ordered by timestamp ASC
//   - error: nil on success, otherwise the underlying query error
func (r *SQLiteRepository) ByDate(ctx context.Context, day time.Time) ([]StoredEvent, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, timestamp, occupied, raw_payload
		 FROM occupancy_events
		 WHERE timestamp >= ? AND timestamp < ?
		 ORDER BY timestamp ASC`,
		start.Format(timestampLayout),
		end.Format(timestampLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("querying events by date: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows, 0)
}

// Stats summarises the full event log.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//
// Returns:
//   - Stats: Totals, presence/absence split, and covered date range
//   - error: nil on success, otherwise the underlying query error
func (r *SQLiteRepository) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	var first, last sql.NullString

	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(occupied), 0),
		        MIN(timestamp),
		        MAX(timestamp)
		 FROM occupancy_events`,
	).Scan(&stats.TotalEvents, &stats.PresenceEvents, &first, &last)
	if err != nil {
		return Stats{}, fmt.Errorf("querying event stats: %w", err)
	}

	stats.AbsenceEvents = stats.TotalEvents - stats.PresenceEvents

	if first.Valid && last.Valid {
		firstTS, err := parseTimestamp(first.String)
		if err != nil {
			return Stats{}, err
		}
		lastTS, err := parseTimestamp(last.String)
		if err != nil {
			return Stats{}, err
		}
		stats.FirstEvent = firstTS
		stats.LastEvent = lastTS
		stats.DaysCovered = int(lastTS.Sub(firstTS).Hours()/24) + 1
	}

	return stats, nil
}

// scanEvents reads stored events from a result set.
func scanEvents(rows *sql.Rows, sizeHint int) ([]StoredEvent, error) {
	events := make([]StoredEvent, 0, sizeHint)
	for rows.Next() {
		var e StoredEvent
		var ts string
		var occupied int

		if err := rows.Scan(&e.ID, &ts, &occupied, &e.RawPayload); err != nil {
			return nil, fmt.Errorf("scanning event row: %w", err)
		}

		timestamp, err := parseTimestamp(ts)
		if err != nil {
			return nil, err
		}
		e.Timestamp = timestamp
		e.Occupied = occupied != 0

		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating event rows: %w", err)
	}

	return events, nil
}

// parseTimestamp parses a timestamp stored in SQLite.
func parseTimestamp(value string) (time.Time, error) {
	timestamp, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", value, err)
	}
	return timestamp, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
