package handle

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/asaidimu/sqlhandle/pkg/core"
)

// errMalformedResult marks a driver response without the expected rows or
// row count.
var errMalformedResult = errors.New("malformed result")

// rowKeywords are the leading keywords of statements that produce rows.
var rowKeywords = map[string]struct{}{
	"SELECT":   {},
	"WITH":     {},
	"VALUES":   {},
	"SHOW":     {},
	"EXPLAIN":  {},
	"PRAGMA":   {},
	"TABLE":    {},
	"DESCRIBE": {},
}

var returningClause = regexp.MustCompile(`(?i)\bRETURNING\b`)

// returnsRows reports whether sql should go through QueryContext.
func returnsRows(sql string) bool {
	word := leadingKeyword(sql)
	if _, ok := rowKeywords[word]; ok {
		return true
	}
	return returningClause.MatchString(sql)
}

// leadingKeyword returns the first word of sql in upper case, skipping
// whitespace, comments and opening parentheses.
func leadingKeyword(sql string) string {
	s := sql
	for {
		s = strings.TrimLeft(s, " \t\r\n(")
		switch {
		case strings.HasPrefix(s, "--"):
			idx := strings.IndexByte(s, '\n')
			if idx < 0 {
				return ""
			}
			s = s[idx+1:]
		case strings.HasPrefix(s, "/*"):
			idx := strings.Index(s, "*/")
			if idx < 0 {
				return ""
			}
			s = s[idx+2:]
		default:
			end := strings.IndexFunc(s, func(r rune) bool {
				return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z')
			})
			if end < 0 {
				end = len(s)
			}
			return strings.ToUpper(s[:end])
		}
	}
}

// execute runs sql on conn and returns the rows and the row count: the
// number of rows read for row-producing statements, RowsAffected otherwise.
func execute(ctx context.Context, conn Conn, sql string, params []any) ([]core.Row, int64, error) {
	if returnsRows(sql) {
		rows, err := conn.QueryContext(ctx, sql, params...)
		if err != nil {
			return nil, 0, err
		}
		if rows == nil {
			return nil, 0, fmt.Errorf("%w: no row set", errMalformedResult)
		}
		defer rows.Close()

		result, err := readRows(rows)
		if err != nil {
			return nil, 0, err
		}
		return result, int64(len(result)), nil
	}

	res, err := conn.ExecContext(ctx, sql, params...)
	if err != nil {
		return nil, 0, err
	}
	if res == nil {
		return nil, 0, fmt.Errorf("%w: no result", errMalformedResult)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: no row count: %w", errMalformedResult, err)
	}
	return []core.Row{}, affected, nil
}

// readRows reads all rows from a sql.Rows result and converts them into a
// slice of Row maps.
func readRows(rows *sql.Rows) ([]core.Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	columnTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("failed to get column types: %w", err)
	}

	results := []core.Row{}
	for rows.Next() {
		row := make(core.Row, len(columns))
		values := make([]any, len(columns))
		scanArgs := make([]any, len(columns))
		for i := range values {
			scanArgs[i] = &values[i]
		}

		if err := rows.Scan(scanArgs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		for i, col := range columns {
			row[col] = normalizeValue(columnTypes[i].DatabaseTypeName(), values[i])
		}
		results = append(results, row)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after scanning rows: %w", err)
	}
	return results, nil
}

// normalizeValue smooths over driver differences: SQLite reports booleans
// as integers and several drivers return text as []byte.
func normalizeValue(typeName string, val any) any {
	if val == nil {
		return nil
	}
	switch strings.ToUpper(typeName) {
	case "BOOLEAN", "BOOL":
		if intVal, ok := val.(int64); ok {
			return intVal != 0
		}
	case "BYTEA", "BLOB":
		return val
	}
	if byteVal, ok := val.([]byte); ok {
		return string(byteVal)
	}
	return val
}
