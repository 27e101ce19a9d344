package builder

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/asaidimu/sqlhandle/pkg/core"
)

// Where translates an ordered column-to-value mapping into a parameterized
// fragment. Conditions are joined with AND. A sequence value expands into
// one comparison per element, OR-joined for = and LIKE and AND-joined for
// != and NOT LIKE. A nil value becomes IS NULL / IS NOT NULL.
func Where(conds core.Conditions) (core.WhereClause, error) {
	if len(conds) == 0 {
		return core.WhereClause{}, nil
	}

	var clauses []string
	var params []any
	for _, cond := range conds {
		column, op := core.ParseConditionKey(cond.Key)
		if column == "" {
			return core.WhereClause{}, fmt.Errorf("%w: where key %q", core.ErrEmptyColumn, cond.Key)
		}

		clause, err := buildComparison(column, op, cond.Value, &params)
		if err != nil {
			return core.WhereClause{}, fmt.Errorf("error building condition for %q: %w", cond.Key, err)
		}
		clauses = append(clauses, clause)
	}

	return core.WhereClause{SQL: strings.Join(clauses, " AND "), Params: params}, nil
}

// buildComparison renders a single key/value pair, appending its parameters.
func buildComparison(column string, op core.ComparisonOperator, value any, params *[]any) (string, error) {
	if value == nil {
		if op.IsNegated() {
			return column + " IS NOT NULL", nil
		}
		return column + " IS NULL", nil
	}

	values, isSeq := sequenceValues(value)
	if !isSeq {
		*params = append(*params, value)
		return comparison(column, op), nil
	}
	if len(values) == 0 {
		return "", core.ErrEmptyValueList
	}

	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = comparison(column, op)
		*params = append(*params, v)
	}

	joiner := " OR "
	if op.IsNegated() {
		joiner = " AND "
	}
	return "(" + strings.Join(parts, joiner) + ")", nil
}

func comparison(column string, op core.ComparisonOperator) string {
	if op.IsWord() {
		return column + " " + string(op) + " ?"
	}
	return column + string(op) + "?"
}

// sequenceValues reports whether v is a slice or array (other than []byte,
// which drivers bind as a single blob) and returns its elements.
func sequenceValues(v any) ([]any, bool) {
	switch vals := v.(type) {
	case []any:
		return vals, true
	case []byte:
		return nil, false
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
