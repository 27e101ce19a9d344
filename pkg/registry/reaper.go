package registry

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/asaidimu/sqlhandle/pkg/clock"
)

// SweepInterval is the period between idle sweeps while the reaper is
// enabled.
const SweepInterval = 10 * time.Second

// maxConcurrentCloses bounds the goroutines one sweep uses to close
// expired entries.
const maxConcurrentCloses = 4

// ReaperConfig configures a Reaper.
type ReaperConfig struct {
	// Registry is the set of entries to sweep. Required.
	Registry *Registry

	// Clock drives the sweep timer and entry ages. Default: clock.Real().
	Clock clock.Clock

	// Logger receives the per-sweep summary. If nil, a no-op logger is
	// used.
	Logger *slog.Logger
}

// Reaper periodically force-closes registry entries that have been open
// longer than a threshold. At most one timer chain is active at a time.
type Reaper struct {
	registry *Registry
	clock    clock.Clock
	logger   *slog.Logger

	mu         sync.Mutex
	enabled    bool
	threshold  time.Duration
	timer      *clock.Timer
	generation uint64
}

// ClosedEntry describes one entry closed by a sweep.
type ClosedEntry struct {
	ID        string
	OpenFor   time.Duration
	OpenStack string
	Err       error
}

// SweepReport summarizes one sweep.
type SweepReport struct {
	// Open is the number of entries registered when the sweep started.
	Open   int
	Closed []ClosedEntry
}

// NewReaper returns a disabled Reaper.
func NewReaper(cfg ReaperConfig) *Reaper {
	if cfg.Registry == nil {
		panic("registry: ReaperConfig.Registry is required")
	}
	c := cfg.Clock
	if c == nil {
		c = clock.Real()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Reaper{registry: cfg.Registry, clock: c, logger: logger}
}

// Configure enables or disables the reaper and sets the idle threshold in
// minutes. Any pending timer is cancelled and, when enabled, a fresh one
// is started.
func (r *Reaper) Configure(enabled bool, minutes int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stopLocked()
	r.enabled = enabled && minutes > 0
	r.threshold = time.Duration(minutes) * time.Minute
	if r.enabled {
		r.scheduleLocked()
		r.logger.Info("idle reaper enabled", "threshold", r.threshold, "interval", SweepInterval)
	} else {
		r.logger.Info("idle reaper disabled")
	}
}

// Enabled reports whether the reaper is running.
func (r *Reaper) Enabled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.enabled
}

// Threshold returns the configured idle threshold.
func (r *Reaper) Threshold() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.threshold
}

// Stop disables the reaper.
func (r *Reaper) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopLocked()
	r.enabled = false
}

func (r *Reaper) stopLocked() {
	r.generation++
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

func (r *Reaper) scheduleLocked() {
	gen := r.generation
	r.timer = r.clock.AfterFunc(SweepInterval, func() { r.tick(gen) })
}

// tick runs one sweep and reschedules, unless the reaper was reconfigured
// since the timer was armed.
func (r *Reaper) tick(gen uint64) {
	r.mu.Lock()
	if gen != r.generation || !r.enabled {
		r.mu.Unlock()
		return
	}
	threshold := r.threshold
	r.mu.Unlock()

	r.sweep(threshold)

	r.mu.Lock()
	defer r.mu.Unlock()
	if gen == r.generation && r.enabled {
		r.scheduleLocked()
	}
}

// Sweep closes every entry open longer than the configured threshold and
// logs a summary. It can be called directly regardless of whether the
// timer is enabled; a zero threshold closes nothing.
func (r *Reaper) Sweep() SweepReport {
	r.mu.Lock()
	threshold := r.threshold
	r.mu.Unlock()
	return r.sweep(threshold)
}

func (r *Reaper) sweep(threshold time.Duration) SweepReport {
	entries := r.registry.Snapshot()
	report := SweepReport{Open: len(entries)}
	if len(entries) == 0 {
		r.logger.Info("all connections closed")
		return report
	}

	now := r.clock.Now()
	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(maxConcurrentCloses)
	for _, e := range entries {
		openFor := now.Sub(e.OpenedAt())
		if threshold <= 0 || openFor <= threshold {
			continue
		}
		closed := ClosedEntry{ID: e.ID(), OpenFor: openFor, OpenStack: e.OpenStack()}
		g.Go(func() error {
			closed.Err = e.Close()
			mu.Lock()
			report.Closed = append(report.Closed, closed)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if len(report.Closed) == 0 {
		r.logger.Info("open connections", "open", report.Open)
		return report
	}

	var sb strings.Builder
	for _, c := range report.Closed {
		fmt.Fprintf(&sb, "\n%s open %.1f minutes, opened at:\n%s", c.ID, c.OpenFor.Minutes(), c.OpenStack)
		if c.Err != nil {
			fmt.Fprintf(&sb, "\nclose error: %v", c.Err)
		}
	}
	r.logger.Warn("force-closed idle connections",
		"open", report.Open,
		"closed", len(report.Closed),
		"details", sb.String(),
	)
	return report
}
