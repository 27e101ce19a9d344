package core

import "time"

// Row represents a single record/row of data retrieved from the database.
// Keys are column names as reported by the driver.
type Row map[string]any

// Clone returns a shallow copy of the row.
func (r Row) Clone() Row {
	if r == nil {
		return nil
	}
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// CloneRows copies a result set so callers cannot mutate cached state.
func CloneRows(rows []Row) []Row {
	if rows == nil {
		return nil
	}
	out := make([]Row, len(rows))
	for i, row := range rows {
		out[i] = row.Clone()
	}
	return out
}

// Condition is one entry of a WHERE mapping. Key is a column name optionally
// followed by an operator suffix ("name -like", "id -not").
type Condition struct {
	Key   string
	Value any
}

// Cond is shorthand for building a Condition.
func Cond(key string, value any) Condition {
	return Condition{Key: key, Value: value}
}

// Conditions is an ordered column-to-value mapping. Order is preserved in the
// generated SQL and parameter list.
type Conditions []Condition

// WhereClause is a parameterized WHERE fragment without the WHERE keyword.
// An empty SQL means "no filter".
type WhereClause struct {
	SQL    string
	Params []any
}

// IsEmpty reports whether the clause carries no SQL.
func (w WhereClause) IsEmpty() bool { return w.SQL == "" }

// SortDirection for sorting order.
type SortDirection string

const (
	SortDirectionAsc  SortDirection = "ASC"
	SortDirectionDesc SortDirection = "DESC"
)

// OrderColumn defines sorting for a column. Direction may be a SortDirection,
// a string ("asc"/"desc", any case), a bool (true = ASC, false = DESC) or nil
// (ASC).
type OrderColumn struct {
	Column    string
	Direction any
}

// WhereOptions is shared by every builder that accepts a filter. Where takes
// precedence over the raw WhereSQL/WhereParams pair.
type WhereOptions struct {
	Where       *WhereClause
	WhereSQL    string
	WhereParams []any
}

// Resolve returns the effective filter.
func (o WhereOptions) Resolve() WhereClause {
	if o.Where != nil {
		return *o.Where
	}
	return WhereClause{SQL: o.WhereSQL, Params: o.WhereParams}
}

// ColumnValues supplies column/value pairs either as a mapping or as parallel
// Columns/Params slices. Values takes precedence when non-empty.
type ColumnValues struct {
	Values  map[string]any
	Columns []string
	Params  []any
}

// SelectOptions configures a SELECT statement. Columns default to "*";
// Limit and Offset are ignored when zero. Offset needs a Limit.
type SelectOptions struct {
	Table   string
	Columns []string
	WhereOptions
	OrderBy string
	Limit   int
	Offset  int
}

// InsertOptions configures an INSERT statement.
type InsertOptions struct {
	Table string
	ColumnValues
}

// UpdateOptions configures an UPDATE statement.
type UpdateOptions struct {
	Table string
	ColumnValues
	WhereOptions
}

// DeleteOptions configures a DELETE statement. Limit is ignored when zero.
type DeleteOptions struct {
	Table string
	WhereOptions
	Limit int
}

// MergeOptions configures the INSERT/UPDATE pair used by merge.
type MergeOptions struct {
	Table string
	ColumnValues
	WhereOptions
}

// MergeOutcome reports which statement of a merge affected rows.
type MergeOutcome string

const (
	MergeOutcomeUpdate MergeOutcome = "update"
	MergeOutcomeInsert MergeOutcome = "insert"
)

// HandleInfo is a point-in-time description of an open connection handle.
type HandleInfo struct {
	ID        string
	OpenedAt  time.Time
	OpenStack string
}
