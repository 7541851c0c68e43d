package main

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"

	"github.com/vmunix/rowsync/internal/config"
	"github.com/vmunix/rowsync/internal/migrations"
	"github.com/vmunix/rowsync/internal/render"
	"github.com/vmunix/rowsync/internal/server"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the simulated list headless",
	Long: `Seed the list, tap download buttons at random and print every row
update as the presenter applies it.

Each tap switches a row to downloading; after the download delay the row
switches back. Without --duration the demo ends once every tap has settled.

Examples:
  rowsync demo                       # Default seed, 8 taps, 5s downloads
  rowsync demo --clicks 3 --delay 1s
  rowsync demo --duration 30s --json`,
	Args: cobra.NoArgs,
	RunE: runDemoCmd,
}

func init() {
	rootCmd.AddCommand(demoCmd)
	demoCmd.Flags().Duration("duration", 0, "Stop after this long (overrides demo.duration)")
	demoCmd.Flags().Int("clicks", 0, "Number of taps (overrides demo.clicks)")
	demoCmd.Flags().Duration("delay", 0, "Download duration (overrides demo.download_delay)")
}

func runDemoCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyDemoFlags(cmd, &cfg.Demo)

	logger := newLogger(cfg.Log, os.Stderr)

	var db *sql.DB
	if cfg.Journal.Enabled {
		db, err = openJournal(cfg.Journal.Path)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := server.NewRunner(db, server.Config{
		DownloadDelay: cfg.Demo.DownloadDelay,
		ClickRate:     cfg.Demo.ClickRate,
		Clicks:        cfg.Demo.Clicks,
		Duration:      cfg.Demo.Duration,
		BusBuffer:     cfg.Bus.Buffer,
		Seed:          cfg.Seed.Items(),
	}, presenterOutput(cmd.OutOrStdout()), logger)

	res, err := runner.Run(ctx)
	if err != nil {
		return fmt.Errorf("demo: %w", err)
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, map[string]any{
			"run_id":    res.RunID,
			"clicks":    res.Clicks,
			"started":   res.Started,
			"ignored":   res.Ignored,
			"reverted":  res.Reverted,
			"presenter": res.Presenter,
			"final":     res.Final,
		})
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Final list (v%d):\n", res.Final.Version())
	render.WriteList(out, res.Final.Items())
	fmt.Fprintln(out)
	fmt.Fprintf(out, "clicks %d, started %d, ignored %d, reverted %d\n",
		res.Clicks, res.Started, res.Ignored, res.Reverted)
	s := res.Presenter
	fmt.Fprintf(out, "snapshots %d (skipped %d, stale %d): %d inserted, %d removed, %d moved, %d changed\n",
		s.Snapshots, s.Skipped, s.Stale, s.Inserted, s.Removed, s.Moved, s.Changed)
	if res.RunID != "" {
		fmt.Fprintf(out, "run %s\n", res.RunID)
	}
	return nil
}

func applyDemoFlags(cmd *cobra.Command, demo *config.DemoConfig) {
	flags := cmd.Flags()
	if flags.Changed("duration") {
		demo.Duration, _ = flags.GetDuration("duration")
	}
	if flags.Changed("clicks") {
		demo.Clicks, _ = flags.GetInt("clicks")
	}
	if flags.Changed("delay") {
		demo.DownloadDelay, _ = flags.GetDuration("delay")
	}
}

// presenterOutput keeps stdout clean for --json.
func presenterOutput(w io.Writer) io.Writer {
	if jsonOutput {
		return io.Discard
	}
	return w
}

// openJournal opens the journal database, creating it and its schema if needed.
func openJournal(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(migrations.JournalSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate journal: %w", err)
	}
	return db, nil
}
