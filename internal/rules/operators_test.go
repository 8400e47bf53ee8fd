package rules

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/solatis/caseminder/internal/types"
)

func TestCompare_Equality(t *testing.T) {
	tests := []struct {
		name   string
		op     types.Operator
		value  any
		target any
		want   bool
	}{
		{"eq strings equal", types.OpEq, "OPEN", "OPEN", true},
		{"eq strings different", types.OpEq, "OPEN", "CLOSED", false},
		{"eq int vs float64", types.OpEq, 5, float64(5), true},
		{"eq int64 vs int", types.OpEq, int64(7), 7, true},
		{"eq number vs numeric string", types.OpEq, float64(5), "5", true},
		{"eq bool vs bool string", types.OpEq, true, "true", true},
		{"eq map incomparable", types.OpEq, map[string]any{"a": 1}, "a", false},
		{"neq strings different", types.OpNeq, "OPEN", "CLOSED", true},
		{"neq strings equal", types.OpNeq, "OPEN", "OPEN", false},
		{"neq incomparable is true", types.OpNeq, map[string]any{}, "x", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compare(tt.op, tt.value, tt.target); got != tt.want {
				t.Errorf("Compare(%s, %v, %v) = %v, want %v", tt.op, tt.value, tt.target, got, tt.want)
			}
		})
	}
}

func TestCompare_Ordering(t *testing.T) {
	tests := []struct {
		name   string
		op     types.Operator
		value  any
		target any
		want   bool
	}{
		{"gt greater", types.OpGt, float64(10), float64(5), true},
		{"gt equal", types.OpGt, float64(5), float64(5), false},
		{"gt smaller", types.OpGt, float64(3), float64(5), false},
		{"gt mixed int float", types.OpGt, 10, float64(5), true},
		{"gte equal", types.OpGte, float64(5), float64(5), true},
		{"gte smaller", types.OpGte, float64(4), float64(5), false},
		{"lt smaller", types.OpLt, float64(3), float64(5), true},
		{"lt equal", types.OpLt, float64(5), float64(5), false},
		{"lte equal", types.OpLte, float64(5), float64(5), true},
		{"lte greater", types.OpLte, float64(6), float64(5), false},
		{"gt lexicographic strings", types.OpGt, "b", "a", true},
		{"lt lexicographic strings", types.OpLt, "a", "b", true},
		{"gt string vs number fails closed", types.OpGt, "10", float64(5), false},
		{"gt bool fails closed", types.OpGt, true, false, false},
		{"lt nil fails closed", types.OpLt, nil, float64(5), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compare(tt.op, tt.value, tt.target); got != tt.want {
				t.Errorf("Compare(%s, %v, %v) = %v, want %v", tt.op, tt.value, tt.target, got, tt.want)
			}
		})
	}
}

func TestCompare_Membership(t *testing.T) {
	tests := []struct {
		name   string
		op     types.Operator
		value  any
		target any
		want   bool
	}{
		{"in member", types.OpIn, "HIGH", []any{"HIGH", "CRITICAL"}, true},
		{"in non-member", types.OpIn, "LOW", []any{"HIGH", "CRITICAL"}, false},
		{"in string slice", types.OpIn, "HIGH", []string{"HIGH", "CRITICAL"}, true},
		{"in numeric tolerance", types.OpIn, 5, []any{float64(5), float64(6)}, true},
		{"in non-set target fails closed", types.OpIn, "HIGH", "HIGH", false},
		{"in empty set", types.OpIn, "HIGH", []any{}, false},
		{"not_in non-member", types.OpNotIn, "LOW", []any{"HIGH", "CRITICAL"}, true},
		{"not_in member", types.OpNotIn, "HIGH", []any{"HIGH", "CRITICAL"}, false},
		{"not_in non-set target fails closed", types.OpNotIn, "LOW", "HIGH", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compare(tt.op, tt.value, tt.target); got != tt.want {
				t.Errorf("Compare(%s, %v, %v) = %v, want %v", tt.op, tt.value, tt.target, got, tt.want)
			}
		})
	}
}

func TestCompare_Contains(t *testing.T) {
	tests := []struct {
		name   string
		value  any
		target any
		want   bool
	}{
		{"substring present", "urgent escalation", "urgent", true},
		{"substring absent", "routine check", "urgent", false},
		{"equal strings", "urgent", "urgent", true},
		{"empty substring", "anything", "", true},
		{"number coerced to text", float64(12345), "234", true},
		{"non-scalar fails closed", map[string]any{}, "a", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compare(types.OpContains, tt.value, tt.target); got != tt.want {
				t.Errorf("Compare(contains, %v, %v) = %v, want %v", tt.value, tt.target, got, tt.want)
			}
		})
	}
}

func TestCompare_UnsupportedOperatorFailsClosed(t *testing.T) {
	if Compare(types.Operator("regex"), "a", "a") {
		t.Errorf("Compare(regex, ...) = true, want false for unsupported operator")
	}
	if Compare(types.Operator(""), "a", "a") {
		t.Errorf("Compare(\"\", ...) = true, want false for empty operator")
	}
}

// Property-based test: comparison never panics regardless of operand types.
func TestCompare_PropertyNeverPanics(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	operators := []types.Operator{
		types.OpEq, types.OpNeq, types.OpGt, types.OpGte, types.OpLt,
		types.OpLte, types.OpIn, types.OpNotIn, types.OpContains,
		types.Operator("bogus"),
	}
	values := func(pick int, s string, n float64, b bool) any {
		switch pick % 6 {
		case 0:
			return s
		case 1:
			return n
		case 2:
			return b
		case 3:
			return []any{s, n, b}
		case 4:
			return map[string]any{s: n}
		default:
			return nil
		}
	}

	properties.Property("compare never panics regardless of input", prop.ForAll(
		func(opIdx, vPick, tPick int, s string, n float64, b bool) bool {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("Compare() panicked: %v", r)
				}
			}()
			op := operators[opIdx%len(operators)]
			_ = Compare(op, values(vPick, s, n, b), values(tPick, s, n, b))
			return true
		},
		gen.IntRange(0, 100),
		gen.IntRange(0, 100),
		gen.IntRange(0, 100),
		gen.AnyString(),
		gen.Float64(),
		gen.Bool(),
	))

	properties.TestingRun(t)
}

// Property-based test: neq is the complement of eq for scalar operands.
func TestCompare_PropertyNeqComplementsEq(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("neq == !eq for string pairs", prop.ForAll(
		func(a, b string) bool {
			return Compare(types.OpNeq, a, b) == !Compare(types.OpEq, a, b)
		},
		gen.AnyString(),
		gen.AnyString(),
	))

	properties.Property("neq == !eq for numeric pairs", prop.ForAll(
		func(a, b float64) bool {
			return Compare(types.OpNeq, a, b) == !Compare(types.OpEq, a, b)
		},
		gen.Float64(),
		gen.Float64(),
	))

	properties.TestingRun(t)
}
