package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/autovolt/lakehouse/internal/metrics"
	"github.com/autovolt/lakehouse/internal/persist"
	"github.com/autovolt/lakehouse/internal/services/lock"
	"github.com/autovolt/lakehouse/internal/services/notification"
	"github.com/autovolt/lakehouse/internal/simulation"
	"github.com/autovolt/lakehouse/internal/state"
)

// LockKey is the lease taken for the duration of a run
const LockKey = "autovolt:run-lock"

// CountKeys lists the per-family counts of a run summary, in report order
var CountKeys = []string{"cli", "cli_upd", "comp", "map", "prod", "lote", "qual", "vend", "gar", "man", "alt"}

// TableEnsurer creates the warehouse tables
type TableEnsurer interface {
	EnsureAll(ctx context.Context) error
}

// Notifier receives finished runs
type Notifier interface {
	Notify(ctx context.Context, ev notification.RunEvent) error
}

// Settings are the knobs of the runner
type Settings struct {
	FleetSize         int
	CalendarStartYear int
	CalendarEndYear   int
	Location          *time.Location
}

// Summary describes a completed run
type Summary struct {
	RunID  string
	Mode   Mode
	Steps  int
	Counts map[string]int
	Seed   int64
}

// String renders the summary as returned to HTTP callers
func (s Summary) String() string {
	parts := make([]string, len(CountKeys))
	for i, k := range CountKeys {
		parts[i] = k + "=" + strconv.Itoa(s.Counts[k])
	}
	return fmt.Sprintf("OK %s run_id=%s | %s", s.Mode, s.RunID, strings.Join(parts, " "))
}

// Runner executes generator runs end to end: it loads the state, seeds the
// static tables once, drives the simulated clock, persists every batch and
// saves the state.
type Runner struct {
	settings Settings
	states   *state.Store
	router   *persist.Router
	tables   TableEnsurer
	locker   lock.Locker
	notifier Notifier
	metrics  *metrics.Metrics
	now      func() time.Time
}

// Option configures a Runner
type Option func(*Runner)

// WithTables ensures warehouse tables at the start of every run
func WithTables(t TableEnsurer) Option {
	return func(r *Runner) { r.tables = t }
}

// WithLocker guards runs with an exclusive lease
func WithLocker(l lock.Locker) Option {
	return func(r *Runner) { r.locker = l }
}

// WithNotifier reports finished runs
func WithNotifier(n Notifier) Option {
	return func(r *Runner) { r.notifier = n }
}

// WithMetrics records run metrics
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Runner) { r.metrics = m }
}

// WithClock replaces the wall clock that starts incremental runs
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// NewRunner creates a runner
func NewRunner(settings Settings, states *state.Store, router *persist.Router, opts ...Option) *Runner {
	r := &Runner{
		settings: settings,
		states:   states,
		router:   router,
		locker:   lock.NoopLocker{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes req. The request must come from ParseRequest.
func (r *Runner) Run(ctx context.Context, req Request) (Summary, error) {
	started := r.now()
	runID := uuid.NewString()
	logger := slog.With("run_id", runID, "mode", string(req.Mode))
	logger.Info("Run started", "steps", req.Steps, "start", req.Start, "end", req.End)

	summary, err := r.run(ctx, runID, req, logger)

	status := "ok"
	if err != nil {
		status = "error"
		logger.Error("Run failed", "error", err)
	} else {
		logger.Info("Run completed", "counts", summary.Counts, "seed", summary.Seed)
	}
	if r.metrics != nil {
		r.metrics.Runs.WithLabelValues(string(req.Mode), status).Inc()
		r.metrics.RunDuration.WithLabelValues(string(req.Mode)).Observe(r.now().Sub(started).Seconds())
	}
	r.notify(ctx, req, summary, runID, status, err, started)

	return summary, err
}

func (r *Runner) run(ctx context.Context, runID string, req Request, logger *slog.Logger) (Summary, error) {
	release, err := r.locker.Acquire(ctx, LockKey)
	if err != nil {
		return Summary{}, err
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("Failed to release run lease", "error", err)
		}
	}()

	st, err := r.states.Load(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to load state: %w", err)
	}

	if r.tables != nil {
		if err := r.tables.EnsureAll(ctx); err != nil {
			return Summary{}, fmt.Errorf("failed to ensure warehouse tables: %w", err)
		}
	}

	engine := simulation.NewEngine(st.Seed, r.epoch())
	engine.EnsureFleet(st, r.settings.FleetSize)

	if !st.StaticLoaded {
		if err := r.seedStatic(ctx, runID, st, logger); err != nil {
			return Summary{}, err
		}
	}

	summary := Summary{RunID: runID, Mode: req.Mode, Counts: make(map[string]int, len(CountKeys))}

	var times []time.Time
	policy := persist.HotLayer
	switch req.Mode {
	case Backfill:
		policy = persist.LakeOnly
		for cur := req.Start; !cur.After(req.End); cur = cur.AddDate(0, 0, 1) {
			times = append(times, cur)
		}
	default:
		cur := r.now().In(r.settings.Location)
		for range req.Steps {
			times = append(times, cur)
			cur = cur.Add(time.Hour)
		}
	}

	for _, t := range times {
		out := engine.Step(t, st)
		for _, tr := range out.Tables() {
			if _, err := r.router.Persist(ctx, tr.Table, tr.Rows, runID, t, policy); err != nil {
				return Summary{}, err
			}
		}
		for k, v := range out.Counts() {
			summary.Counts[k] += v
		}
		summary.Steps++
	}

	st.AdvanceSeed()
	if err := r.states.Save(ctx, st); err != nil {
		return Summary{}, fmt.Errorf("failed to save state: %w", err)
	}
	summary.Seed = st.Seed
	if r.metrics != nil {
		r.metrics.ObserveCounters(st.ByFamily())
	}
	return summary, nil
}

// seedStatic writes the reference tables once per deployment and
// checkpoints the state so a later failure does not seed them again.
func (r *Runner) seedStatic(ctx context.Context, runID string, st *state.SimulationState, logger *slog.Logger) error {
	now := r.now().In(r.settings.Location)
	tables := simulation.StaticTables(st.Fleet, r.settings.CalendarStartYear, r.settings.CalendarEndYear)
	for _, tr := range tables {
		if _, err := r.router.Persist(ctx, tr.Table, tr.Rows, runID, now, persist.HotLayer); err != nil {
			return fmt.Errorf("failed to seed static tables: %w", err)
		}
	}

	st.StaticLoaded = true
	if err := r.states.Save(ctx, st); err != nil {
		return fmt.Errorf("failed to checkpoint state: %w", err)
	}
	logger.Info("Static tables seeded", "tables", len(tables))
	return nil
}

func (r *Runner) epoch() time.Time {
	return time.Date(r.settings.CalendarStartYear, time.January, 1, 0, 0, 0, 0, r.settings.Location)
}

func (r *Runner) notify(ctx context.Context, req Request, s Summary, runID, status string, runErr error, started time.Time) {
	if r.notifier == nil {
		return
	}

	ev := notification.RunEvent{
		RunID:      runID,
		Mode:       string(req.Mode),
		Status:     status,
		Counts:     s.Counts,
		Seed:       s.Seed,
		StartedAt:  started,
		FinishedAt: r.now(),
	}
	if req.Mode == Backfill {
		ev.Start = req.Start.Format(time.DateOnly)
		ev.End = req.End.Format(time.DateOnly)
	}
	if runErr != nil {
		ev.Error = runErr.Error()
	}

	if err := r.notifier.Notify(context.WithoutCancel(ctx), ev); err != nil {
		slog.Warn("Run notification failed", "run_id", runID, "error", err)
	}
}
