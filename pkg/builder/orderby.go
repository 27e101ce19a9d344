package builder

import (
	"fmt"
	"strings"

	"github.com/asaidimu/sqlhandle/pkg/core"
)

// OrderBy renders "col DIR, col DIR" without the ORDER BY keyword. An empty
// list yields an empty string.
func OrderBy(cols []core.OrderColumn) (string, error) {
	if len(cols) == 0 {
		return "", nil
	}

	parts := make([]string, 0, len(cols))
	for _, col := range cols {
		if col.Column == "" {
			return "", fmt.Errorf("order by: %w", core.ErrEmptyColumn)
		}
		dir, err := sortDirection(col.Direction)
		if err != nil {
			return "", fmt.Errorf("column %q: %w", col.Column, err)
		}
		parts = append(parts, col.Column+" "+string(dir))
	}
	return strings.Join(parts, ", "), nil
}

func sortDirection(d any) (core.SortDirection, error) {
	switch v := d.(type) {
	case nil:
		return core.SortDirectionAsc, nil
	case bool:
		if v {
			return core.SortDirectionAsc, nil
		}
		return core.SortDirectionDesc, nil
	case core.SortDirection:
		return sortDirection(string(v))
	case string:
		switch strings.ToUpper(strings.TrimSpace(v)) {
		case "", "ASC":
			return core.SortDirectionAsc, nil
		case "DESC":
			return core.SortDirectionDesc, nil
		}
	}
	return "", fmt.Errorf("%w: %v", core.ErrInvalidSortDirection, d)
}
