package types

import "time"

/*
 * Domain types for rule matching and execution.
 *
 * A Rule pairs a trigger (when to fire) with an ordered action list (what to
 * do). Rules are read-only from the engine's perspective: the engine never
 * mutates a rule beyond what the rule store exposes for enable/disable.
 *
 * Ordering: when multiple rules match the same event they execute by
 * ascending Priority, ties broken by CreatedAt. Actions within a rule
 * execute by ascending Seq, ties broken by insertion order (the store
 * preserves it).
 */

// Operator enumerates the supported condition operators.
type Operator string

const (
	OpEq       Operator = "eq"
	OpNeq      Operator = "neq"
	OpGt       Operator = "gt"
	OpGte      Operator = "gte"
	OpLt       Operator = "lt"
	OpLte      Operator = "lte"
	OpIn       Operator = "in"
	OpNotIn    Operator = "not_in"
	OpContains Operator = "contains"
)

// Condition is a single field/operator/value predicate used by
// CONDITION-kind rules. Value holds a scalar for comparison operators and a
// list for in/not_in.
type Condition struct {
	Field    string   `json:"field" yaml:"field"`
	Operator Operator `json:"operator" yaml:"operator"`
	Value    any      `json:"value" yaml:"value"`
}

// Rule is a named, prioritized automation definition.
//
// ScopeCodes and CaseTypes are allow-lists restricting applicability; an
// empty list means no restriction. A rule with no actions is valid but
// executing it is a no-op.
type Rule struct {
	ID          RuleID
	Name        string
	TriggerKind TriggerKind
	Trigger     TriggerConfig
	Enabled     bool
	Priority    int // lower runs first
	ScopeCodes  []string
	CaseTypes   []string
	Actions     []Action // ascending Seq
	CreatedAt   time.Time
}

// Action is one atomic side effect belonging to a rule. Actions are
// immutable during a single execution - they are read, not written, by the
// executor.
type Action struct {
	RuleID RuleID
	Kind   ActionKind
	Seq    int // execution order within the rule
	Config ActionConfig
}
