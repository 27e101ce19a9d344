package builder

import (
	"fmt"
	"slices"
	"strings"

	"github.com/asaidimu/sqlhandle/pkg/core"
)

// Select builds a SELECT statement. WHERE, ORDER BY, LIMIT and OFFSET are
// appended only when provided. An offset without a limit fails with
// core.ErrOffsetWithoutLimit.
func Select(opts core.SelectOptions) (core.Statement, error) {
	if opts.Table == "" {
		return core.Statement{}, core.ErrTableRequired
	}

	columns := "*"
	if len(opts.Columns) > 0 {
		columns = strings.Join(opts.Columns, ", ")
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("SELECT %s FROM %s", columns, opts.Table))

	where := opts.Resolve()
	var params []any
	if !where.IsEmpty() {
		sb.WriteString(" WHERE " + where.SQL)
		params = append(params, where.Params...)
	}

	if opts.OrderBy != "" {
		sb.WriteString(" ORDER BY " + opts.OrderBy)
	}

	if opts.Offset > 0 && opts.Limit <= 0 {
		return core.Statement{}, core.ErrOffsetWithoutLimit
	}
	if opts.Limit > 0 {
		sb.WriteString(fmt.Sprintf(" LIMIT %d", opts.Limit))
	}
	if opts.Offset > 0 {
		sb.WriteString(fmt.Sprintf(" OFFSET %d", opts.Offset))
	}

	return core.Statement{SQL: sb.String(), Params: params}, nil
}

// Insert builds an INSERT statement.
func Insert(opts core.InsertOptions) (core.Statement, error) {
	if opts.Table == "" {
		return core.Statement{}, core.ErrTableRequired
	}

	columns, values, err := extractColumnValues(opts.ColumnValues)
	if err != nil {
		return core.Statement{}, err
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", opts.Table, strings.Join(columns, ", "), placeholders)
	return core.Statement{SQL: sql, Params: values}, nil
}

// Update builds an UPDATE statement. Parameters are the SET values followed
// by the WHERE values.
func Update(opts core.UpdateOptions) (core.Statement, error) {
	if opts.Table == "" {
		return core.Statement{}, core.ErrTableRequired
	}

	columns, values, err := extractColumnValues(opts.ColumnValues)
	if err != nil {
		return core.Statement{}, err
	}

	return buildUpdate(opts.Table, columns, values, opts.Resolve()), nil
}

// Delete builds a DELETE statement.
func Delete(opts core.DeleteOptions) (core.Statement, error) {
	if opts.Table == "" {
		return core.Statement{}, core.ErrTableRequired
	}

	var sb strings.Builder
	sb.WriteString("DELETE FROM " + opts.Table)

	where := opts.Resolve()
	var params []any
	if !where.IsEmpty() {
		sb.WriteString(" WHERE " + where.SQL)
		params = append(params, where.Params...)
	}
	if opts.Limit > 0 {
		sb.WriteString(fmt.Sprintf(" LIMIT %d", opts.Limit))
	}

	return core.Statement{SQL: sb.String(), Params: params}, nil
}

// MergePair builds the INSERT and UPDATE statements a merge alternates
// between, from one column/value extraction.
func MergePair(opts core.MergeOptions) (core.MergePair, error) {
	if opts.Table == "" {
		return core.MergePair{}, core.ErrTableRequired
	}

	columns, values, err := extractColumnValues(opts.ColumnValues)
	if err != nil {
		return core.MergePair{}, err
	}

	insert, err := Insert(core.InsertOptions{
		Table:        opts.Table,
		ColumnValues: core.ColumnValues{Columns: columns, Params: values},
	})
	if err != nil {
		return core.MergePair{}, err
	}
	update := buildUpdate(opts.Table, columns, values, opts.Resolve())

	return core.MergePair{
		InsertSQL:    insert.SQL,
		InsertParams: insert.Params,
		UpdateSQL:    update.SQL,
		UpdateParams: update.Params,
	}, nil
}

func buildUpdate(table string, columns []string, values []any, where core.WhereClause) core.Statement {
	sets := make([]string, len(columns))
	for i, col := range columns {
		sets[i] = col + "=?"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("UPDATE %s SET %s", table, strings.Join(sets, ", ")))

	params := make([]any, 0, len(values)+len(where.Params))
	params = append(params, values...)
	if !where.IsEmpty() {
		sb.WriteString(" WHERE " + where.SQL)
		params = append(params, where.Params...)
	}
	return core.Statement{SQL: sb.String(), Params: params}
}

// extractColumnValues flattens ColumnValues into parallel slices. Mapping
// keys are sorted so the generated SQL is stable.
func extractColumnValues(cv core.ColumnValues) ([]string, []any, error) {
	if len(cv.Values) > 0 {
		columns := make([]string, 0, len(cv.Values))
		for col := range cv.Values {
			columns = append(columns, col)
		}
		slices.Sort(columns)
		values := make([]any, len(columns))
		for i, col := range columns {
			values[i] = cv.Values[col]
		}
		return columns, values, nil
	}

	if len(cv.Columns) != len(cv.Params) {
		return nil, nil, fmt.Errorf("%w: %d columns, %d values", core.ErrColumnValueCountMismatch, len(cv.Columns), len(cv.Params))
	}
	if len(cv.Columns) == 0 {
		return nil, nil, core.ErrNoColumns
	}
	for _, col := range cv.Columns {
		if col == "" {
			return nil, nil, core.ErrEmptyColumn
		}
	}
	return slices.Clone(cv.Columns), slices.Clone(cv.Params), nil
}
