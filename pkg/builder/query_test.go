package builder

import (
	"errors"
	"reflect"
	"testing"

	"github.com/asaidimu/sqlhandle/pkg/core"
)

func TestSelect(t *testing.T) {
	where := core.WhereClause{SQL: "age>?", Params: []any{20}}

	tests := []struct {
		name       string
		opts       core.SelectOptions
		wantSQL    string
		wantParams []any
	}{
		{
			name:    "defaults",
			opts:    core.SelectOptions{Table: "users"},
			wantSQL: "SELECT * FROM users",
		},
		{
			name: "all clauses",
			opts: core.SelectOptions{
				Table:        "users",
				Columns:      []string{"id", "name"},
				WhereOptions: core.WhereOptions{Where: &where},
				OrderBy:      "name ASC",
				Limit:        10,
				Offset:       20,
			},
			wantSQL:    "SELECT id, name FROM users WHERE age>? ORDER BY name ASC LIMIT 10 OFFSET 20",
			wantParams: []any{20},
		},
		{
			name: "raw where fragment",
			opts: core.SelectOptions{
				Table:        "users",
				WhereOptions: core.WhereOptions{WhereSQL: "id=?", WhereParams: []any{7}},
			},
			wantSQL:    "SELECT * FROM users WHERE id=?",
			wantParams: []any{7},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Select(tt.opts)
			if err != nil {
				t.Fatalf("Select returned error: %v", err)
			}
			if got.SQL != tt.wantSQL {
				t.Errorf("SQL = %q, want %q", got.SQL, tt.wantSQL)
			}
			if !reflect.DeepEqual(got.Params, tt.wantParams) {
				t.Errorf("Params = %#v, want %#v", got.Params, tt.wantParams)
			}
		})
	}
}

func TestSelectRequiresTable(t *testing.T) {
	if _, err := Select(core.SelectOptions{}); !errors.Is(err, core.ErrTableRequired) {
		t.Fatalf("expected ErrTableRequired, got %v", err)
	}
}

func TestInsert(t *testing.T) {
	got, err := Insert(core.InsertOptions{
		Table:        "users",
		ColumnValues: core.ColumnValues{Values: map[string]any{"name": "bob", "age": 30}},
	})
	if err != nil {
		t.Fatalf("Insert returned error: %v", err)
	}
	if want := "INSERT INTO users (age, name) VALUES (?, ?)"; got.SQL != want {
		t.Errorf("SQL = %q, want %q", got.SQL, want)
	}
	if want := []any{30, "bob"}; !reflect.DeepEqual(got.Params, want) {
		t.Errorf("Params = %#v, want %#v", got.Params, want)
	}

	got, err = Insert(core.InsertOptions{
		Table:        "users",
		ColumnValues: core.ColumnValues{Columns: []string{"name", "age"}, Params: []any{"amy", 4}},
	})
	if err != nil {
		t.Fatalf("Insert returned error: %v", err)
	}
	if want := "INSERT INTO users (name, age) VALUES (?, ?)"; got.SQL != want {
		t.Errorf("SQL = %q, want %q", got.SQL, want)
	}
}

func TestColumnValueCountMismatch(t *testing.T) {
	cv := core.ColumnValues{Columns: []string{"a", "b"}, Params: []any{1}}
	where := core.WhereOptions{WhereSQL: "id=?", WhereParams: []any{1}}

	if _, err := Insert(core.InsertOptions{Table: "t", ColumnValues: cv}); !errors.Is(err, core.ErrColumnValueCountMismatch) {
		t.Errorf("Insert: expected ErrColumnValueCountMismatch, got %v", err)
	}
	if _, err := Update(core.UpdateOptions{Table: "t", ColumnValues: cv, WhereOptions: where}); !errors.Is(err, core.ErrColumnValueCountMismatch) {
		t.Errorf("Update: expected ErrColumnValueCountMismatch, got %v", err)
	}
	if _, err := MergePair(core.MergeOptions{Table: "t", ColumnValues: cv, WhereOptions: where}); !errors.Is(err, core.ErrColumnValueCountMismatch) {
		t.Errorf("MergePair: expected ErrColumnValueCountMismatch, got %v", err)
	}
}

func TestInsertNoColumns(t *testing.T) {
	if _, err := Insert(core.InsertOptions{Table: "t"}); !errors.Is(err, core.ErrNoColumns) {
		t.Fatalf("expected ErrNoColumns, got %v", err)
	}
}

func TestUpdate(t *testing.T) {
	got, err := Update(core.UpdateOptions{
		Table:        "users",
		ColumnValues: core.ColumnValues{Columns: []string{"name", "age"}, Params: []any{"bob", 31}},
		WhereOptions: core.WhereOptions{WhereSQL: "id=? AND active=?", WhereParams: []any{5, true}},
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if want := "UPDATE users SET name=?, age=? WHERE id=? AND active=?"; got.SQL != want {
		t.Errorf("SQL = %q, want %q", got.SQL, want)
	}
	if want := []any{"bob", 31, 5, true}; !reflect.DeepEqual(got.Params, want) {
		t.Errorf("Params = %#v, want %#v", got.Params, want)
	}
}

func TestDelete(t *testing.T) {
	where, err := Where(core.Conditions{core.Cond("id", []int{1, 2})})
	if err != nil {
		t.Fatalf("Where returned error: %v", err)
	}
	got, err := Delete(core.DeleteOptions{Table: "users", WhereOptions: core.WhereOptions{Where: &where}, Limit: 5})
	if err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if want := "DELETE FROM users WHERE (id=? OR id=?) LIMIT 5"; got.SQL != want {
		t.Errorf("SQL = %q, want %q", got.SQL, want)
	}
	if want := []any{1, 2}; !reflect.DeepEqual(got.Params, want) {
		t.Errorf("Params = %#v, want %#v", got.Params, want)
	}
}

func TestMergePair(t *testing.T) {
	got, err := MergePair(core.MergeOptions{
		Table:        "counters",
		ColumnValues: core.ColumnValues{Columns: []string{"name", "hits"}, Params: []any{"home", 3}},
		WhereOptions: core.WhereOptions{WhereSQL: "name=?", WhereParams: []any{"home"}},
	})
	if err != nil {
		t.Fatalf("MergePair returned error: %v", err)
	}

	want := core.MergePair{
		InsertSQL:    "INSERT INTO counters (name, hits) VALUES (?, ?)",
		InsertParams: []any{"home", 3},
		UpdateSQL:    "UPDATE counters SET name=?, hits=? WHERE name=?",
		UpdateParams: []any{"home", 3, "home"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MergePair mismatch:\n  Got: %+v\n  Want: %+v", got, want)
	}
}

func TestSelectOffsetWithoutLimit(t *testing.T) {
	_, err := Select(core.SelectOptions{Table: "users", Offset: 1})
	if !errors.Is(err, core.ErrOffsetWithoutLimit) {
		t.Fatalf("expected ErrOffsetWithoutLimit, got %v", err)
	}

	got, err := Select(core.SelectOptions{Table: "users", Limit: 5, Offset: 1})
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if want := "SELECT * FROM users LIMIT 5 OFFSET 1"; got.SQL != want {
		t.Errorf("SQL = %q, want %q", got.SQL, want)
	}
}
