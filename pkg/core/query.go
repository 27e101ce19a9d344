package core

// Statement is SQL text with '?' placeholders and its parameters in
// placeholder order.
type Statement struct {
	SQL    string
	Params []any
}

// MergePair holds the two statements a merge alternates between. UpdateParams
// are the SET values followed by the WHERE values; InsertParams are the full
// value list.
type MergePair struct {
	InsertSQL    string
	InsertParams []any
	UpdateSQL    string
	UpdateParams []any
}
