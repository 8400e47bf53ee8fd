package rules

import (
	"testing"

	"github.com/solatis/caseminder/internal/types"
)

func testCase() *types.Case {
	return &types.Case{
		ID:        "case-001",
		Number:    "FIN-USB-0001",
		Title:     "Unusual settlement",
		Status:    "OPEN",
		ScopeCode: "FIN",
		CaseType:  "USB",
		OwnerID:   "user-owner",
		Fields: map[string]any{
			"priority": float64(8),
			"region":   "EMEA",
		},
	}
}

func TestEvaluateCondition(t *testing.T) {
	c := testCase()

	tests := []struct {
		name string
		cond types.Condition
		want bool
	}{
		{"status column eq", types.Condition{Field: "status", Operator: types.OpEq, Value: "OPEN"}, true},
		{"status column eq mismatch", types.Condition{Field: "status", Operator: types.OpEq, Value: "CLOSED"}, false},
		{"free-form field gt", types.Condition{Field: "priority", Operator: types.OpGt, Value: float64(5)}, true},
		{"free-form field in", types.Condition{Field: "region", Operator: types.OpIn, Value: []any{"EMEA", "APAC"}}, true},
		{"title contains", types.Condition{Field: "title", Operator: types.OpContains, Value: "settlement"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EvaluateCondition(tt.cond, c); got != tt.want {
				t.Errorf("EvaluateCondition(%+v) = %v, want %v", tt.cond, got, tt.want)
			}
		})
	}
}

// An absent field fails closed for every operator, including the negated
// ones. A predicate over a field the case does not carry is unanswerable.
func TestEvaluateCondition_AbsentFieldFailsClosed(t *testing.T) {
	c := testCase()

	operators := []struct {
		op    types.Operator
		value any
	}{
		{types.OpEq, "x"},
		{types.OpNeq, "x"},
		{types.OpGt, float64(1)},
		{types.OpGte, float64(1)},
		{types.OpLt, float64(1)},
		{types.OpLte, float64(1)},
		{types.OpIn, []any{"x"}},
		{types.OpNotIn, []any{"x"}},
		{types.OpContains, "x"},
	}

	for _, tt := range operators {
		t.Run(string(tt.op), func(t *testing.T) {
			cond := types.Condition{Field: "no_such_field", Operator: tt.op, Value: tt.value}
			if EvaluateCondition(cond, c) {
				t.Errorf("EvaluateCondition(%s, absent field) = true, want false", tt.op)
			}
		})
	}
}

func TestEvaluateCondition_NilCase(t *testing.T) {
	cond := types.Condition{Field: "status", Operator: types.OpEq, Value: "OPEN"}
	if EvaluateCondition(cond, nil) {
		t.Errorf("EvaluateCondition(nil case) = true, want false")
	}
}

func TestEvaluateAll(t *testing.T) {
	c := testCase()

	t.Run("all hold", func(t *testing.T) {
		conds := []types.Condition{
			{Field: "status", Operator: types.OpEq, Value: "OPEN"},
			{Field: "priority", Operator: types.OpGte, Value: float64(8)},
		}
		if !EvaluateAll(conds, c) {
			t.Errorf("EvaluateAll() = false, want true")
		}
	})

	t.Run("one fails", func(t *testing.T) {
		conds := []types.Condition{
			{Field: "status", Operator: types.OpEq, Value: "OPEN"},
			{Field: "priority", Operator: types.OpGt, Value: float64(8)},
		}
		if EvaluateAll(conds, c) {
			t.Errorf("EvaluateAll() = true, want false")
		}
	})

	t.Run("empty list holds vacuously", func(t *testing.T) {
		if !EvaluateAll(nil, c) {
			t.Errorf("EvaluateAll(nil) = false, want true")
		}
	})
}
