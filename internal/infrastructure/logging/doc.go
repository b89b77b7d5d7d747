// Package logging provides structured logging for the occupancy monitor.
//
// This package wraps the standard library's log/slog with:
//   - Configuration-driven output format (JSON or text)
//   - Level-based filtering (debug, info, warn, error)
//   - Default service attributes on every record
//
// All components receive a *Logger (usually narrowed with With) rather
// than writing to a global logger, so tests can substitute their own
// handlers and log output stays attributable.
package logging
