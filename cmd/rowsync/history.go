package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"

	"github.com/vmunix/rowsync/internal/events"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show journaled events",
	Long: `List the most recent events from the journal database.

Examples:
  rowsync history                # Last 20 events from every run
  rowsync history -n 50 --run 0190c2d6-...
  rowsync history --item 222     # Every event about item 222, oldest first
  rowsync history --prune 168h   # Delete events older than a week`,
	Args: cobra.NoArgs,
	RunE: runHistoryCmd,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	historyCmd.Flags().String("run", "", "Only show events from this run id")
	historyCmd.Flags().Int64("item", 0, "Show the full history of one downloadable item")
	historyCmd.Flags().Duration("prune", 0, "Delete events older than this and exit")
}

func runHistoryCmd(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	runID, _ := cmd.Flags().GetString("run")
	itemID, _ := cmd.Flags().GetInt64("item")
	prune, _ := cmd.Flags().GetDuration("prune")
	if cmd.Flags().Changed("prune") && prune <= 0 {
		return fmt.Errorf("--prune must be positive, got %s", prune)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if _, err := os.Stat(cfg.Journal.Path); errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("no journal at %s (enable [journal] and run the demo first)", cfg.Journal.Path)
	}

	db, err := sql.Open("sqlite", cfg.Journal.Path)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer func() { _ = db.Close() }()

	journal := events.NewJournal(db)
	out := cmd.OutOrStdout()

	if prune > 0 {
		n, err := journal.Prune(prune)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Pruned %d events older than %s\n", n, prune)
		return nil
	}

	var rows []events.RawEvent
	if cmd.Flags().Changed("item") {
		rows, err = journal.ForItem(itemID)
		rows = filterRun(rows, runID)
	} else {
		rows, err = journal.Recent(runID, limit)
	}
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(out, historyJSON(rows))
	}
	writeHistory(out, rows, events.DefaultRegistry())
	return nil
}

func filterRun(rows []events.RawEvent, runID string) []events.RawEvent {
	if runID == "" {
		return rows
	}
	out := rows[:0]
	for _, row := range rows {
		if row.RunID == runID {
			out = append(out, row)
		}
	}
	return out
}

type historyEntry struct {
	ID         int64           `json:"id"`
	RunID      string          `json:"run_id"`
	EventType  string          `json:"event_type"`
	EntityType string          `json:"entity_type"`
	EntityID   int64           `json:"entity_id"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

func historyJSON(rows []events.RawEvent) []historyEntry {
	out := make([]historyEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, historyEntry{
			ID:         row.ID,
			RunID:      row.RunID,
			EventType:  row.EventType,
			EntityType: row.EntityType,
			EntityID:   row.EntityID,
			OccurredAt: row.OccurredAt,
			Payload:    json.RawMessage(row.Payload),
		})
	}
	return out
}

func writeHistory(w io.Writer, rows []events.RawEvent, registry *events.Registry) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No events")
		return
	}

	fmt.Fprintf(w, "  %-12s %-8s %-20s %-10s %s\n", "TIME", "RUN", "TYPE", "ENTITY", "DETAIL")
	fmt.Fprintln(w, "  "+strings.Repeat("-", 70))
	for _, row := range rows {
		run := row.RunID
		if len(run) > 8 {
			run = run[:8]
		}
		entity := fmt.Sprintf("%s/%d", row.EntityType, row.EntityID)
		fmt.Fprintf(w, "  %-12s %-8s %-20s %-10s %s\n",
			row.OccurredAt.Format("15:04:05.000"), run, row.EventType, entity, eventDetail(registry, row))
	}
}

func eventDetail(registry *events.Registry, row events.RawEvent) string {
	e, err := registry.Unmarshal(row)
	if err != nil {
		return "?"
	}
	switch v := e.(type) {
	case *events.SnapshotChanged:
		if !v.Changed {
			return fmt.Sprintf("v%d %s (no change)", v.Version, v.Action)
		}
		return fmt.Sprintf("v%d %s, %d items", v.Version, v.Action, len(v.Items))
	case *events.DownloadRequested:
		return "from " + v.Source
	case *events.DownloadStarted:
		return fmt.Sprintf("reverts in %dms", v.RevertAfterMS)
	case *events.DownloadIgnored:
		return v.Reason
	default:
		return ""
	}
}
