package handle

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/asaidimu/sqlhandle/pkg/builder"
	"github.com/asaidimu/sqlhandle/pkg/cache"
	"github.com/asaidimu/sqlhandle/pkg/clock"
	"github.com/asaidimu/sqlhandle/pkg/config"
	"github.com/asaidimu/sqlhandle/pkg/core"
	"github.com/asaidimu/sqlhandle/pkg/registry"
)

type state int

const (
	stateClosed state = iota
	stateOpening
	stateOpen
)

func (s state) String() string {
	switch s {
	case stateOpening:
		return "opening"
	case stateOpen:
		return "open"
	default:
		return "closed"
	}
}

// Handle owns at most one underlying connection. The zero value is not
// usable; create handles with Manager.NewHandle.
type Handle struct {
	cfg       config.Config
	connector Connector
	registry  *registry.Registry
	cache     *cache.Cache
	clock     clock.Clock
	logger    *slog.Logger

	// mu guards the fields below. It is never held across driver calls.
	mu        sync.Mutex
	state     state
	id        string
	openedAt  time.Time
	openStack string
	conn      Conn
	rows      []core.Row
	rowCount  int64
	lastErr   error
	inTx      bool
}

var _ core.QueryExecutor = (*Handle)(nil)
var _ registry.Entry = (*Handle)(nil)

// Open connects and registers the handle. It fails with
// core.ErrConnectionAlreadyOpen unless the handle is closed; on a driver
// failure the handle stays closed and the error wraps
// core.ErrConnectionFailure.
func (h *Handle) Open(ctx context.Context) error {
	h.mu.Lock()
	if h.state != stateClosed {
		current := h.state
		h.mu.Unlock()
		h.logger.Error("open on a handle that is not closed", "state", current.String())
		return core.ErrConnectionAlreadyOpen
	}
	h.state = stateOpening
	h.mu.Unlock()

	conn, err := h.connect(ctx)
	if err != nil {
		h.mu.Lock()
		h.state = stateClosed
		h.mu.Unlock()
		h.logger.Error("connection failed", "driver", h.cfg.Driver, "host", h.cfg.Host, "database", h.cfg.Database, "error", err)
		return &core.ConnectionError{Driver: h.cfg.Driver, Err: err}
	}

	stack := captureStack()
	h.mu.Lock()
	h.openedAt = h.clock.Now()
	h.openStack = stack
	h.conn = conn
	h.inTx = false
	h.rows, h.rowCount, h.lastErr = nil, 0, nil
	h.mu.Unlock()

	id := h.register()

	h.mu.Lock()
	h.state = stateOpen
	h.mu.Unlock()

	h.logger.Info("connection opened", "id", id, "driver", h.cfg.Driver, "database", h.cfg.Database)
	return nil
}

func (h *Handle) connect(ctx context.Context) (Conn, error) {
	dsn, err := h.cfg.ConnectionString()
	if err != nil {
		return nil, err
	}
	conn, err := h.connector.Connect(ctx, h.cfg.Driver, dsn)
	if err != nil {
		return nil, err
	}
	if conn == nil {
		return nil, fmt.Errorf("connector returned no connection")
	}
	return conn, nil
}

// register assigns a fresh identifier that is not in use and adds the
// handle to the registry.
func (h *Handle) register() string {
	for {
		id := uuid.NewString()
		if h.registry.Has(id) {
			continue
		}
		h.mu.Lock()
		h.id = id
		h.mu.Unlock()
		if h.registry.Register(h) {
			return id
		}
	}
}

// Close releases the underlying connection, removes the handle from the
// registry and clears cached state. A transaction left open is rolled
// back first; if that fails the connection is discarded instead of being
// returned to the pool. Closing a handle that is not open is a no-op, so
// Close may race with the idle reaper.
func (h *Handle) Close() error {
	h.mu.Lock()
	if h.state != stateOpen {
		h.mu.Unlock()
		return nil
	}
	conn, id, openedAt, inTx := h.conn, h.id, h.openedAt, h.inTx
	h.state = stateClosed
	h.inTx = false
	h.conn = nil
	h.id = ""
	h.openedAt = time.Time{}
	h.openStack = ""
	h.rows, h.rowCount, h.lastErr = nil, 0, nil
	h.mu.Unlock()

	h.registry.Remove(id)
	outcome, err := release(conn, inTx)
	elapsed := h.clock.Now().Sub(openedAt)
	switch outcome {
	case releaseRolledBack:
		h.logger.Warn("rolled back open transaction on close", "id", id)
	case releaseDiscarded:
		h.logger.Warn("discarded connection with an open transaction", "id", id)
	}
	if err != nil {
		h.logger.Error("connection close error", "id", id, "open_for", elapsed, "error", err)
		return fmt.Errorf("closing connection %s: %w", id, err)
	}
	h.logger.Info("connection closed", "id", id, "open_for", elapsed)
	return nil
}

// Query rewrites placeholders and runs sql. Statements that produce rows
// return them; other statements return an empty slice and set RowCount to
// the affected row count. Failures are *core.QueryError values.
func (h *Handle) Query(ctx context.Context, sql string, params ...any) ([]core.Row, error) {
	rows, _, err := h.run(ctx, callSite(1), sql, params)
	return rows, err
}

// CachedQuery is Query served from the manager's result cache when a
// fresh entry exists. Results are cached for ttl. Statements that do not
// produce rows always run and are never cached. Without a cache it is
// plain Query.
func (h *Handle) CachedQuery(ctx context.Context, ttl time.Duration, sql string, params ...any) ([]core.Row, error) {
	caller := callSite(1)
	if h.cache == nil || !returnsRows(sql) {
		rows, _, err := h.run(ctx, caller, sql, params)
		return rows, err
	}
	if !h.IsOpen() {
		h.logger.Error("query on a closed handle", "sql", sql, "caller", caller)
		return nil, core.ErrConnectionNotOpen
	}

	key, err := cache.Key(sql, params)
	if err != nil {
		h.logger.Warn("result cache bypassed", "sql", sql, "error", err)
		rows, _, err := h.run(ctx, caller, sql, params)
		return rows, err
	}
	if rows, count, ok := h.cache.Get(key); ok {
		h.store(rows, count, nil)
		h.logger.Debug("result cache hit", "sql", sql, "rows", count)
		return rows, nil
	}

	rows, count, err := h.run(ctx, caller, sql, params)
	if err != nil {
		return nil, err
	}
	h.cache.Set(key, rows, count, ttl)
	return rows, nil
}

// run is the single execution path behind every public operation.
func (h *Handle) run(ctx context.Context, caller, sql string, params []any) ([]core.Row, int64, error) {
	h.mu.Lock()
	conn, id, open := h.conn, h.id, h.state == stateOpen
	h.mu.Unlock()
	if !open {
		h.logger.Error("query on a closed handle", "sql", sql, "caller", caller)
		return nil, 0, core.ErrConnectionNotOpen
	}

	finalSQL := builder.ReplacePlaceholders(sql)
	start := h.clock.Now()
	rows, count, err := execute(ctx, conn, finalSQL, params)
	elapsed := h.clock.Now().Sub(start)

	if err != nil {
		qerr := newQueryError(caller, finalSQL, params, err)
		h.storeFor(id, nil, 0, qerr)
		h.logger.Error("query failed",
			"id", id,
			"sql", finalSQL,
			"params", params,
			"caller", caller,
			"elapsed", elapsed,
			"error", qerr.Message,
		)
		return nil, 0, qerr
	}

	h.storeFor(id, rows, count, nil)
	h.trackTransaction(id, finalSQL)
	h.logger.Debug("query executed",
		"id", id,
		"sql", finalSQL,
		"params", params,
		"rows", count,
		"elapsed", elapsed,
	)
	return rows, count, nil
}

// trackTransaction records whether the connection is inside a transaction
// after sql succeeded on it.
func (h *Handle) trackTransaction(id, sql string) {
	open, changed := transactionEffect(sql)
	if !changed {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.id == id && h.state == stateOpen {
		h.inTx = open
	}
}

func (h *Handle) store(rows []core.Row, count int64, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.rows, h.rowCount, h.lastErr = rows, count, err
}

// storeFor records a result only if the handle still holds the connection
// the query ran on.
func (h *Handle) storeFor(id string, rows []core.Row, count int64, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.id != id || h.state != stateOpen {
		return
	}
	h.rows, h.rowCount, h.lastErr = rows, count, err
}

// ID returns the connection identifier, or "" when closed.
func (h *Handle) ID() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.id
}

// OpenedAt returns when the current connection was opened.
func (h *Handle) OpenedAt() time.Time {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.openedAt
}

// OpenStack returns the call stack captured by Open.
func (h *Handle) OpenStack() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.openStack
}

// IsOpen reports whether the handle holds a connection.
func (h *Handle) IsOpen() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state == stateOpen
}

// Info describes the open connection.
func (h *Handle) Info() core.HandleInfo {
	h.mu.Lock()
	defer h.mu.Unlock()
	return core.HandleInfo{ID: h.id, OpenedAt: h.openedAt, OpenStack: h.openStack}
}

// LastError returns the error of the most recent query, or nil.
func (h *Handle) LastError() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastErr
}

// Rows returns a copy of the most recent result set.
func (h *Handle) Rows() []core.Row {
	h.mu.Lock()
	defer h.mu.Unlock()
	return core.CloneRows(h.rows)
}

// RowCount returns the row count of the most recent query.
func (h *Handle) RowCount() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.rowCount
}
