// occupancyctl - query tool for the occupancy event log
//
// Reads the SQLite database written by occupancyd. The database is
// opened read-only, so it is safe to run while the monitor is live.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/nerrad567/occupancy-core/internal/infrastructure/config"
	"github.com/nerrad567/occupancy-core/internal/infrastructure/database"
	"github.com/nerrad567/occupancy-core/internal/occupancy"
)

// dayLayout is the argument format for the date command.
const dayLayout = "2006-01-02"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "occupancyctl",
		Short:         "Query the occupancy event log",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"config file (default configs/config.yaml, or $OCCUPANCY_CONFIG)")

	cmd.AddCommand(
		newRecentCommand(&configPath),
		newDateCommand(&configPath),
		newStatsCommand(&configPath),
	)

	return cmd
}

func newRecentCommand(configPath *string) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "Show the most recent occupancy transitions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, cleanup, err := openRepository(*configPath)
			if err != nil {
				return err
			}
			defer cleanup()

			events, err := repo.Recent(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("querying recent events: %w", err)
			}
			return renderEvents(cmd.OutOrStdout(), events)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "maximum number of events to show")

	return cmd
}

func newDateCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "date YYYY-MM-DD",
		Short: "Show all transitions for one calendar day (UTC)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDay(args[0])
			if err != nil {
				return err
			}

			repo, cleanup, err := openRepository(*configPath)
			if err != nil {
				return err
			}
			defer cleanup()

			events, err := repo.ByDate(cmd.Context(), day)
			if err != nil {
				return fmt.Errorf("querying events for %s: %w", args[0], err)
			}
			return renderEvents(cmd.OutOrStdout(), events)
		},
	}
}

func newStatsCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show summary statistics for the whole event log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, cleanup, err := openRepository(*configPath)
			if err != nil {
				return err
			}
			defer cleanup()

			stats, err := repo.Stats(cmd.Context())
			if err != nil {
				return fmt.Errorf("querying stats: %w", err)
			}
			return renderStats(cmd.OutOrStdout(), stats)
		},
	}
}

// openRepository opens the configured database read-only.
//
// Returns:
//   - *occupancy.SQLiteRepository: Query interface
//   - func(): Closes the database; always safe to defer
//   - error: Config or open failure
func openRepository(configPath string) (*occupancy.SQLiteRepository, func(), error) {
	if configPath == "" {
		configPath = os.Getenv("OCCUPANCY_CONFIG")
	}
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	if !cfg.Database.Enabled {
		return nil, nil, fmt.Errorf("database is disabled in %s", configPath)
	}

	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		BusyTimeout: cfg.Database.BusyTimeout,
		ReadOnly:    true,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}

	// Verify the schema exists; a fresh path means occupancyd has never run.
	if err := db.HealthCheck(context.Background()); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("database not usable: %w", err)
	}

	return occupancy.NewSQLiteRepository(db.DB), func() { _ = db.Close() }, nil
}

// parseDay parses a YYYY-MM-DD argument as a UTC day.
func parseDay(arg string) (time.Time, error) {
	day, err := time.ParseInLocation(dayLayout, arg, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", arg)
	}
	return day, nil
}

// renderEvents prints events as an aligned table, oldest first order
// preserved from the query.
func renderEvents(w io.Writer, events []occupancy.StoredEvent) error {
	if len(events) == 0 {
		_, err := fmt.Fprintln(w, "no events")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIMESTAMP\tSTATE")
	for _, event := range events {
		fmt.Fprintf(tw, "%s\t%s\n",
			event.Timestamp.UTC().Format("2006-01-02 15:04:05"),
			stateLabel(event.Occupied),
		)
	}
	return tw.Flush()
}

// renderStats prints the summary block.
func renderStats(w io.Writer, stats occupancy.Stats) error {
	if stats.TotalEvents == 0 {
		_, err := fmt.Fprintln(w, "no events")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "total events\t%d\n", stats.TotalEvents)
	fmt.Fprintf(tw, "presence events\t%d\n", stats.PresenceEvents)
	fmt.Fprintf(tw, "absence events\t%d\n", stats.AbsenceEvents)
	fmt.Fprintf(tw, "first event\t%s\n", stats.FirstEvent.UTC().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(tw, "last event\t%s\n", stats.LastEvent.UTC().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(tw, "days covered\t%d\n", stats.DaysCovered)
	return tw.Flush()
}

func stateLabel(occupied bool) string {
	if occupied {
		return "occupied"
	}
	return "vacant"
}
