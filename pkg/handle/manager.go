package handle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/asaidimu/sqlhandle/pkg/cache"
	"github.com/asaidimu/sqlhandle/pkg/clock"
	"github.com/asaidimu/sqlhandle/pkg/config"
	"github.com/asaidimu/sqlhandle/pkg/registry"
)

// Options holds the collaborators of a Manager. Every field is optional.
type Options struct {
	// Connector opens underlying connections. Default: a SQLConnector.
	Connector Connector

	// Clock drives handle timestamps, the reaper and cache expiry.
	// Default: clock.Real().
	Clock clock.Clock

	// Logger receives operational messages. If nil, a no-op logger is used.
	Logger *slog.Logger

	// CacheSize bounds the result cache. Zero uses cache.DefaultMaxEntries;
	// a negative value disables caching.
	CacheSize int
}

// Manager owns the configuration, connector, registry, idle reaper and
// result cache shared by its handles.
type Manager struct {
	cfg       config.Config
	connector Connector
	registry  *registry.Registry
	reaper    *registry.Reaper
	cache     *cache.Cache
	clock     clock.Clock
	logger    *slog.Logger
}

// NewManager validates cfg and starts the idle reaper if
// cfg.AutoCloserEnabled is set.
func NewManager(cfg config.Config, opts Options) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	c := opts.Clock
	if c == nil {
		c = clock.Real()
	}
	connector := opts.Connector
	if connector == nil {
		connector = NewSQLConnector(logger)
	}

	var results *cache.Cache
	if opts.CacheSize >= 0 {
		results = cache.New(c, opts.CacheSize)
	}

	reg := registry.New()
	m := &Manager{
		cfg:       cfg,
		connector: connector,
		registry:  reg,
		reaper:    registry.NewReaper(registry.ReaperConfig{Registry: reg, Clock: c, Logger: logger}),
		cache:     results,
		clock:     c,
		logger:    logger,
	}
	if cfg.AutoCloserEnabled {
		m.reaper.Configure(true, cfg.AutoCloserMinutes)
	}
	return m, nil
}

// NewHandle returns a closed handle bound to the manager.
func (m *Manager) NewHandle() *Handle {
	return &Handle{
		cfg:       m.cfg,
		connector: m.connector,
		registry:  m.registry,
		cache:     m.cache,
		clock:     m.clock,
		logger:    m.logger,
	}
}

// Open returns a new, opened handle.
func (m *Manager) Open(ctx context.Context) (*Handle, error) {
	h := m.NewHandle()
	if err := h.Open(ctx); err != nil {
		return nil, err
	}
	return h, nil
}

// ConfigureReaper enables or disables the idle reaper and sets its
// threshold in minutes, restarting its timer.
func (m *Manager) ConfigureReaper(enabled bool, minutes int) {
	m.reaper.Configure(enabled, minutes)
}

// Sweep runs one idle sweep immediately.
func (m *Manager) Sweep() registry.SweepReport {
	return m.reaper.Sweep()
}

// Registry returns the registry of open handles.
func (m *Manager) Registry() *registry.Registry { return m.registry }

// Cache returns the result cache, or nil when caching is disabled.
func (m *Manager) Cache() *cache.Cache { return m.cache }

// Config returns the manager's configuration.
func (m *Manager) Config() config.Config { return m.cfg }

// Close stops the reaper, closes every open handle and, if the connector
// holds resources, closes it.
func (m *Manager) Close() error {
	m.reaper.Stop()

	var errs []error
	for _, e := range m.registry.Snapshot() {
		if err := e.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if closer, ok := m.connector.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		m.logger.Error("manager close error", "error", err)
		return err
	}
	return nil
}
