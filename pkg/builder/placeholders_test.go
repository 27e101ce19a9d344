package builder

import "testing"

func TestReplacePlaceholders(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no placeholders", "select 1", "select 1"},
		{"literal question mark", "select * from t where a=? and b='lit?eral'", "select * from t where a=$1 and b='lit?eral'"},
		{"sequential", "insert into t (a, b, c) values (?, ?, ?)", "insert into t (a, b, c) values ($1, $2, $3)"},
		{"escaped quote inside literal", "select * from t where a='it''s?' and b=?", "select * from t where a='it''s?' and b=$1"},
		{"after literal", "select '?' , ?", "select '?' , $1"},
		{"unbalanced quote", "select 'abc ?", "select 'abc ?"},
		{"ten or more", "?,?,?,?,?,?,?,?,?,?,?", "$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ReplacePlaceholders(tt.in); got != tt.want {
				t.Errorf("ReplacePlaceholders(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCountPlaceholders(t *testing.T) {
	if got := CountPlaceholders("a=? and b='?' and c=?"); got != 2 {
		t.Errorf("CountPlaceholders = %d, want 2", got)
	}
	if got := CountPlaceholders("select 1"); got != 0 {
		t.Errorf("CountPlaceholders = %d, want 0", got)
	}
}
