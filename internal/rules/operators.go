// Package rules provides pure rule evaluation: condition operators, the
// trigger matcher, and template rendering. No I/O, no side effects.
package rules

import (
	"strconv"
	"strings"

	"github.com/solatis/caseminder/internal/types"
)

/*
 * Operator comparison logic.
 *
 * Implements the nine condition operators with type-aware comparison.
 * Everything fails closed: an incomparable pair, a malformed set, or an
 * unsupported operator evaluates to false rather than raising. A single bad
 * condition must never take down a batch.
 *
 * Numeric comparison handles float64/int/int64 mixing because case field
 * snapshots round-trip through JSON. Ordered comparison falls back to
 * lexicographic ordering when both sides are strings.
 *
 * Why function-based: nine operators via switch statement is cleaner than
 * nine interface implementations with minimal behavior variation.
 */

// Compare applies the operator to a case field value and the rule's
// comparison value. Fails closed: returns false for incomparable types,
// malformed sets, and unsupported operators.
func Compare(op types.Operator, value, target any) bool {
	switch op {
	case types.OpEq:
		return compareEqual(value, target)
	case types.OpNeq:
		return !compareEqual(value, target)
	case types.OpGt:
		cmp, ok := compareOrdered(value, target)
		return ok && cmp > 0
	case types.OpGte:
		cmp, ok := compareOrdered(value, target)
		return ok && cmp >= 0
	case types.OpLt:
		cmp, ok := compareOrdered(value, target)
		return ok && cmp < 0
	case types.OpLte:
		cmp, ok := compareOrdered(value, target)
		return ok && cmp <= 0
	case types.OpIn:
		return compareIn(value, target)
	case types.OpNotIn:
		set, ok := asSet(target)
		if !ok {
			return false
		}
		return !setContains(set, value)
	case types.OpContains:
		return compareContains(value, target)
	default:
		return false
	}
}

// compareEqual performs equality with numeric tolerance, then falls back to
// text coercion for the remaining scalar types. Never panics: non-scalar
// values (maps, slices) are simply unequal to everything.
func compareEqual(a, b any) bool {
	if na, nb, ok := asNumbers(a, b); ok {
		return na == nb
	}
	sa, oka := toText(a)
	sb, okb := toText(b)
	if oka && okb {
		return sa == sb
	}
	return false
}

// compareOrdered performs three-way comparison (-1/0/1) for numbers and, as
// a fallback, lexicographic ordering when both sides are strings.
// The second return is false for incomparable pairs.
func compareOrdered(a, b any) (int, bool) {
	if na, nb, ok := asNumbers(a, b); ok {
		switch {
		case na < nb:
			return -1, true
		case na > nb:
			return 1, true
		default:
			return 0, true
		}
	}
	sa, oka := a.(string)
	sb, okb := b.(string)
	if oka && okb {
		return strings.Compare(sa, sb), true
	}
	return 0, false
}

// compareIn checks membership of value in the target set using equality
// semantics. A target that is not a set fails closed.
func compareIn(value, target any) bool {
	set, ok := asSet(target)
	if !ok {
		return false
	}
	return setContains(set, value)
}

// compareContains performs a substring test after coercing both sides to
// text.
func compareContains(value, target any) bool {
	vs, ok1 := toText(value)
	ts, ok2 := toText(target)
	if !ok1 || !ok2 {
		return false
	}
	return strings.Contains(vs, ts)
}

// asNumbers attempts to convert both values to float64 for numeric
// comparison. Returns converted values and success flag.
func asNumbers(a, b any) (float64, float64, bool) {
	na, oka := toFloat64(a)
	nb, okb := toFloat64(b)
	return na, nb, oka && okb
}

// toFloat64 converts value to float64 if it's a numeric type.
// Handles float64, int, int64 from JSON unmarshaling.
func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// toText coerces a scalar value to its text form. Non-scalar values report
// false.
func toText(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case bool:
		return strconv.FormatBool(s), true
	case types.CaseID:
		return string(s), true
	case types.UserID:
		return string(s), true
	}
	if n, ok := toFloat64(v); ok {
		return strconv.FormatFloat(n, 'f', -1, 64), true
	}
	return "", false
}

// asSet normalizes a target value into a slice for membership tests.
// JSON-decoded rule values arrive as []any; YAML-imported rules may carry
// []string.
func asSet(target any) ([]any, bool) {
	switch t := target.(type) {
	case []any:
		return t, true
	case []string:
		set := make([]any, len(t))
		for i, s := range t {
			set[i] = s
		}
		return set, true
	default:
		return nil, false
	}
}

func setContains(set []any, value any) bool {
	for _, elem := range set {
		if compareEqual(value, elem) {
			return true
		}
	}
	return false
}
