// Package server wires the list store, the simulated downloads and the
// presenter together and runs them as one supervised unit.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vmunix/rowsync/internal/download"
	"github.com/vmunix/rowsync/internal/events"
	"github.com/vmunix/rowsync/internal/handlers"
	"github.com/vmunix/rowsync/internal/item"
	"github.com/vmunix/rowsync/internal/render"
	"github.com/vmunix/rowsync/internal/schedule"
	"github.com/vmunix/rowsync/internal/state"
)

const (
	defaultBusBuffer = 100
	settleInterval   = 10 * time.Millisecond
)

// Config for a demo run.
type Config struct {
	DownloadDelay time.Duration
	ClickRate     float64 // clicks per second, 0 for unthrottled
	Clicks        int
	Duration      time.Duration // 0 runs until every click has settled
	BusBuffer     int
	Seed          []item.ListItem // nil uses the default seed
}

// Result summarizes a finished run.
type Result struct {
	RunID     string // empty when no journal was attached
	Clicks    int    // requests published
	Started   int
	Ignored   int
	Reverted  int
	Final     state.Snapshot
	Presenter render.Stats
}

// Runner manages the event-driven components.
type Runner struct {
	db     *sql.DB
	config Config
	out    io.Writer
	rng    *rand.Rand
	logger *slog.Logger
}

// NewRunner creates a new runner. db may be nil, in which case nothing is
// journaled; otherwise it must already carry the journal schema.
func NewRunner(db *sql.DB, cfg Config, out io.Writer, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if out == nil {
		out = io.Discard
	}
	if cfg.BusBuffer <= 0 {
		cfg.BusBuffer = defaultBusBuffer
	}
	if cfg.Seed == nil {
		cfg.Seed = item.DefaultSeed()
	}
	return &Runner{
		db:     db,
		config: cfg,
		out:    out,
		logger: logger,
	}
}

// WithRand makes the click source pick rows from rng.
func (r *Runner) WithRand(rng *rand.Rand) *Runner {
	r.rng = rng
	return r
}

// tally counts simulator outcomes seen on the bus.
type tally struct {
	started, ignored, reverted int
}

// Run seeds the store, starts every component and blocks until the run is
// over: the configured duration elapsed, every click settled, or ctx ended.
// Pending reverts are cancelled on the way out.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	var (
		recorder events.Recorder
		runID    string
	)
	if r.db != nil {
		journal := events.NewJournal(r.db)
		recorder, runID = journal, journal.RunID()
	}

	bus := events.NewBus(recorder, r.logger.With("component", "bus"))
	store := state.NewStore(bus, r.logger.With("component", "store"))
	sched := schedule.New(r.logger.With("component", "scheduler"))
	sim := download.NewSimulator(store, bus, sched, r.config.DownloadDelay, r.logger.With("component", "simulator"))

	handler := handlers.NewDownloadHandler(bus, sim, r.config.BusBuffer, r.logger.With("handler", "download"))
	presenter := render.NewPresenter(bus, r.out, r.config.BusBuffer, r.logger.With("component", "presenter"))
	clicks := NewClickSource(bus, store, r.config.ClickRate, r.rng, r.logger.With("component", "clicks"))

	started := bus.Subscribe(events.EventDownloadStarted, r.config.BusBuffer)
	ignored := bus.Subscribe(events.EventDownloadIgnored, r.config.BusBuffer)
	reverted := bus.Subscribe(events.EventDownloadReverted, r.config.BusBuffer)

	if err := store.Seed(ctx, r.config.Seed); err != nil {
		_ = bus.Close()
		return nil, fmt.Errorf("seed: %w", err)
	}

	r.logger.Info("run started",
		"run_id", runID,
		"items", len(r.config.Seed),
		"clicks", r.config.Clicks,
		"download_delay", sim.Delay())

	g, gctx := errgroup.WithContext(ctx)

	for _, c := range []handlers.Handler{handler, presenter} {
		g.Go(func() error {
			r.logger.Debug("component starting", "name", c.Name())
			return ignoreCanceled(c.Start(gctx))
		})
	}

	clickCtx, stopClicks := context.WithCancel(gctx)
	defer stopClicks()

	published := make(chan int, 1)
	g.Go(func() error {
		n, err := clicks.Run(clickCtx, r.config.Clicks)
		published <- n
		return ignoreCanceled(err)
	})

	var (
		count  tally
		nClick int
	)
	g.Go(func() error {
		defer r.shutdown(sched, bus)
		defer stopClicks()

		var stop <-chan time.Time
		if r.config.Duration > 0 {
			timer := time.NewTimer(r.config.Duration)
			defer timer.Stop()
			stop = timer.C
		}
		ticker := time.NewTicker(settleInterval)
		defer ticker.Stop()

		clicksDone := false
		pending := published
		for {
			select {
			case n := <-pending:
				nClick, clicksDone = n, true
				pending = nil
			case <-started:
				count.started++
			case <-ignored:
				count.ignored++
			case <-reverted:
				count.reverted++
			case <-ticker.C:
			case <-stop:
				r.logger.Info("run duration elapsed")
				return nil
			case <-gctx.Done():
				return nil
			}

			if r.config.Duration == 0 && clicksDone && settled(count, nClick, store, sched, presenter) {
				return nil
			}
		}
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	// the supervisor may stop before the click source reports
	select {
	case n := <-published:
		nClick = n
	default:
	}

	result := &Result{
		RunID:     runID,
		Clicks:    nClick,
		Started:   count.started,
		Ignored:   count.ignored,
		Reverted:  count.reverted,
		Final:     store.Current(),
		Presenter: presenter.Stats(),
	}
	r.logger.Info("run finished",
		"version", result.Final.Version(),
		"clicks", result.Clicks,
		"started", result.Started,
		"reverted", result.Reverted)
	return result, nil
}

// settled reports whether every published click has been answered, every
// started download has reverted and the presenter shows the latest snapshot.
func settled(c tally, clicks int, store *state.Store, sched *schedule.Scheduler, p *render.Presenter) bool {
	if c.started+c.ignored < clicks || c.reverted < c.started {
		return false
	}
	if sched.Pending() > 0 {
		return false
	}
	return p.Version() == store.Current().Version()
}

func (r *Runner) shutdown(sched *schedule.Scheduler, bus *events.Bus) {
	if err := sched.Close(); err != nil {
		r.logger.Error("scheduler close failed", "error", err)
	}
	if err := bus.Close(); err != nil {
		r.logger.Error("bus close failed", "error", err)
	}
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
