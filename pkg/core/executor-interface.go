package core

import (
	"context"
	"time"
)

// QueryExecutor defines the operations a connection handle exposes. Calls on
// one executor must be serialized by the caller.
type QueryExecutor interface {
	// Open acquires the underlying connection.
	Open(ctx context.Context) error

	// Close releases the underlying connection. Closing a closed executor
	// is a no-op.
	Close() error

	// Query rewrites '?' placeholders, runs the statement and returns its
	// rows. For statements that produce no rows the result is empty and
	// RowCount reports the affected row count.
	Query(ctx context.Context, sql string, params ...any) ([]Row, error)

	// CachedQuery is Query backed by the shared result cache.
	CachedQuery(ctx context.Context, ttl time.Duration, sql string, params ...any) ([]Row, error)

	// Merge runs the update-then-insert cycle for a prepared pair.
	Merge(ctx context.Context, pair MergePair) (MergeOutcome, error)

	BeginTransaction(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	SelectHelper(ctx context.Context, opts SelectOptions) ([]Row, error)
	InsertHelper(ctx context.Context, opts InsertOptions) (int64, error)
	UpdateHelper(ctx context.Context, opts UpdateOptions) (int64, error)
	DeleteHelper(ctx context.Context, opts DeleteOptions) (int64, error)
	MergeHelper(ctx context.Context, opts MergeOptions) (MergeOutcome, error)

	// LastError returns the error of the most recent query, or nil.
	LastError() error

	// Rows returns a copy of the most recent result set.
	Rows() []Row

	// RowCount returns the row count of the most recent query.
	RowCount() int64
}
