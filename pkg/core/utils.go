package core

import "strings"

// ComparisonOperator is the SQL operator a WHERE key suffix selects.
type ComparisonOperator string

const (
	ComparisonOperatorEq      ComparisonOperator = "="
	ComparisonOperatorNeq     ComparisonOperator = "!="
	ComparisonOperatorLike    ComparisonOperator = "LIKE"
	ComparisonOperatorNotLike ComparisonOperator = "NOT LIKE"
)

// operatorSuffixes maps the recognized key suffix tokens (lowercase) to
// their operator.
var operatorSuffixes = map[string]ComparisonOperator{
	"-like":    ComparisonOperatorLike,
	"-notlike": ComparisonOperatorNotLike,
	"-not":     ComparisonOperatorNeq,
}

// IsNegated reports whether a sequence value should be joined with AND
// rather than OR.
func (c ComparisonOperator) IsNegated() bool {
	return c == ComparisonOperatorNeq || c == ComparisonOperatorNotLike
}

// IsWord reports whether the operator is written with surrounding spaces.
func (c ComparisonOperator) IsWord() bool {
	return c == ComparisonOperatorLike || c == ComparisonOperatorNotLike
}

// ParseConditionKey splits a WHERE key into its column and operator. The
// suffix is the last whitespace-separated token and is matched
// case-insensitively; unknown or absent suffixes mean equality.
func ParseConditionKey(key string) (string, ComparisonOperator) {
	key = strings.TrimSpace(key)
	idx := strings.LastIndexAny(key, " \t\n")
	if idx < 0 {
		return key, ComparisonOperatorEq
	}
	if op, ok := operatorSuffixes[strings.ToLower(key[idx+1:])]; ok {
		return strings.TrimSpace(key[:idx]), op
	}
	return key, ComparisonOperatorEq
}
