package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConnectionAlreadyOpen is returned by Open on a handle that is
	// already open or opening.
	ErrConnectionAlreadyOpen = errors.New("connection already open")

	// ErrConnectionNotOpen is returned by every operation other than Open
	// when the handle holds no connection.
	ErrConnectionNotOpen = errors.New("connection not open")

	// ErrConnectionFailure wraps driver errors raised while connecting.
	ErrConnectionFailure = errors.New("connection failure")

	// ErrQuery marks every QueryError.
	ErrQuery = errors.New("query failed")

	// ErrColumnValueCountMismatch is returned by the insert, update and merge
	// builders when columns and values differ in length.
	ErrColumnValueCountMismatch = errors.New("column/value count mismatch")

	// ErrMergeIterationLimit is returned when merge gives up retrying.
	ErrMergeIterationLimit = errors.New("merge iteration limit exceeded")

	// ErrTableRequired is returned by builders given an empty table name.
	ErrTableRequired = errors.New("table name cannot be empty")

	// ErrNoColumns is returned by builders given no columns to write.
	ErrNoColumns = errors.New("no columns supplied")

	// ErrEmptyColumn is returned when a column name is empty.
	ErrEmptyColumn = errors.New("column name cannot be empty")

	// ErrOffsetWithoutLimit is returned by the select builder when an
	// offset is given without a limit, which not every driver accepts.
	ErrOffsetWithoutLimit = errors.New("offset requires a limit")

	// ErrEmptyValueList is returned when a WHERE value is an empty sequence.
	ErrEmptyValueList = errors.New("empty value list")

	// ErrInvalidSortDirection is returned for an unrecognized ORDER BY
	// direction.
	ErrInvalidSortDirection = errors.New("invalid sort direction")
)

// ConnectionError wraps a driver error raised while opening a connection.
type ConnectionError struct {
	Driver string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrConnectionFailure, e.Driver, e.Err)
}

// Unwrap exposes both the sentinel and the driver error.
func (e *ConnectionError) Unwrap() []error {
	return []error{ErrConnectionFailure, e.Err}
}

// QueryError describes a failed or malformed query. Caller is the file:line
// of the code that issued it.
type QueryError struct {
	Caller  string
	SQL     string
	Params  []any
	Message string
	Code    string
	Err     error
}

func (e *QueryError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Message)
	if e.Code != "" {
		sb.WriteString(" (")
		sb.WriteString(e.Code)
		sb.WriteString(")")
	}
	sb.WriteString(" [sql: ")
	sb.WriteString(e.SQL)
	sb.WriteString("]")
	if e.Caller != "" {
		sb.WriteString(" at ")
		sb.WriteString(e.Caller)
	}
	return sb.String()
}

// Unwrap exposes ErrQuery and the driver error, if any.
func (e *QueryError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrQuery}
	}
	return []error{ErrQuery, e.Err}
}

// MergeError is returned when a merge exhausts its retry budget. LastErr is
// the error from the final INSERT attempt, if it failed.
type MergeError struct {
	Attempts int
	Pair     MergePair
	LastErr  error
}

func (e *MergeError) Error() string {
	msg := fmt.Sprintf("%s after %d attempts [update: %s %v] [insert: %s %v]",
		ErrMergeIterationLimit, e.Attempts,
		e.Pair.UpdateSQL, e.Pair.UpdateParams,
		e.Pair.InsertSQL, e.Pair.InsertParams)
	if e.LastErr != nil {
		msg += ": " + e.LastErr.Error()
	}
	return msg
}

// Unwrap exposes ErrMergeIterationLimit and the last INSERT error.
func (e *MergeError) Unwrap() []error {
	if e.LastErr == nil {
		return []error{ErrMergeIterationLimit}
	}
	return []error{ErrMergeIterationLimit, e.LastErr}
}
