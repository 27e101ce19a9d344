package handle

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Conn is one exclusive underlying connection. *sql.Conn satisfies it;
// Close releases the connection back to the driver's pool.
type Conn interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	Close() error
}

// rawConn is implemented by *sql.Conn.
type rawConn interface {
	Raw(f func(driverConn any) error) error
}

type releaseOutcome int

const (
	releaseClosed releaseOutcome = iota
	releaseRolledBack
	releaseDiscarded
)

// release hands conn back to its pool. A connection inside a transaction
// is rolled back first, and when the rollback fails it is discarded so the
// transaction cannot reach another handle.
func release(conn Conn, inTx bool) (releaseOutcome, error) {
	if !inTx {
		return releaseClosed, conn.Close()
	}

	_, err := conn.ExecContext(context.Background(), "ROLLBACK;")
	if err == nil {
		return releaseRolledBack, conn.Close()
	}

	if raw, ok := conn.(rawConn); ok {
		// Returning ErrBadConn from Raw makes database/sql close the driver
		// connection instead of pooling it.
		rawErr := raw.Raw(func(any) error { return driver.ErrBadConn })
		if rawErr == nil || errors.Is(rawErr, driver.ErrBadConn) {
			return releaseDiscarded, nil
		}
		return releaseDiscarded, rawErr
	}
	return releaseClosed, errors.Join(fmt.Errorf("rolling back open transaction: %w", err), conn.Close())
}

// Connector opens underlying connections.
type Connector interface {
	Connect(ctx context.Context, driver, dsn string) (Conn, error)
}

// ConnectorFunc adapts a function to the Connector interface.
type ConnectorFunc func(ctx context.Context, driver, dsn string) (Conn, error)

// Connect calls f.
func (f ConnectorFunc) Connect(ctx context.Context, driver, dsn string) (Conn, error) {
	return f(ctx, driver, dsn)
}

// SQLConnector hands out *sql.Conn values from one *sql.DB per
// driver/DSN pair. Pooling is left to database/sql.
type SQLConnector struct {
	logger *slog.Logger

	mu    sync.Mutex
	pools map[string]*sql.DB
}

// NewSQLConnector returns a connector with no open pools. If logger is
// nil, a no-op logger is used.
func NewSQLConnector(logger *slog.Logger) *SQLConnector {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SQLConnector{logger: logger, pools: make(map[string]*sql.DB)}
}

// Connect returns a dedicated connection, opening the pool on first use.
func (c *SQLConnector) Connect(ctx context.Context, driver, dsn string) (Conn, error) {
	db, err := c.pool(driver, dsn)
	if err != nil {
		return nil, err
	}
	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquiring %s connection: %w", driver, err)
	}
	return conn, nil
}

func (c *SQLConnector) pool(driver, dsn string) (*sql.DB, error) {
	key := driver + "\x00" + dsn

	c.mu.Lock()
	defer c.mu.Unlock()
	if db, ok := c.pools[key]; ok {
		return db, nil
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s pool: %w", driver, err)
	}
	c.pools[key] = db
	c.logger.Info("database pool opened", "driver", driver)
	return db, nil
}

// Close closes every pool. Connections still held by handles are closed
// by database/sql once released.
func (c *SQLConnector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	for key, db := range c.pools {
		if err := db.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(c.pools, key)
	}
	if err := errors.Join(errs...); err != nil {
		c.logger.Error("database pool close error", "error", err)
		return fmt.Errorf("closing pools: %w", err)
	}
	return nil
}
