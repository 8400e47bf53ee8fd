package rules

import "github.com/solatis/caseminder/internal/types"

// EvaluateCondition evaluates a single field/operator/value predicate
// against a case snapshot. An absent field fails closed for every operator,
// including not_in: a predicate over a field the case does not carry is
// unanswerable, and unanswerable must not mean "matched".
func EvaluateCondition(cond types.Condition, c *types.Case) bool {
	if c == nil {
		return false
	}
	value, ok := c.Field(cond.Field)
	if !ok {
		return false
	}
	return Compare(cond.Operator, value, cond.Value)
}

// EvaluateAll reports whether every condition holds against the case
// snapshot (implicit AND). An empty condition list holds vacuously.
func EvaluateAll(conds []types.Condition, c *types.Case) bool {
	for _, cond := range conds {
		if !EvaluateCondition(cond, c) {
			return false
		}
	}
	return true
}
