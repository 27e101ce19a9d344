package builder

import (
	"strconv"
	"strings"
)

// ReplacePlaceholders rewrites every '?' outside single-quoted literals into
// the driver's positional form ($1, $2, ...) in left-to-right order. Quote
// state is tracked per character, so an escaped quote ('') toggles twice and
// leaves the literal open. Unbalanced quotes are not detected: everything
// after the stray quote is treated as literal text.
func ReplacePlaceholders(sql string) string {
	if strings.IndexByte(sql, '?') < 0 {
		return sql
	}

	var sb strings.Builder
	sb.Grow(len(sql) + 8)

	inLiteral := false
	n := 0
	for i := 0; i < len(sql); i++ {
		c := sql[i]
		switch {
		case c == '\'':
			inLiteral = !inLiteral
			sb.WriteByte(c)
		case c == '?' && !inLiteral:
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// CountPlaceholders returns the number of '?' markers outside literals.
func CountPlaceholders(sql string) int {
	inLiteral := false
	n := 0
	for i := 0; i < len(sql); i++ {
		switch sql[i] {
		case '\'':
			inLiteral = !inLiteral
		case '?':
			if !inLiteral {
				n++
			}
		}
	}
	return n
}
