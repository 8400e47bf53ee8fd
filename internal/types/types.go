// Package types provides domain models shared across caseminder components.
//
// Zero-dependency design: types.go, rules.go, triggers.go, actions.go and
// errors.go use only the standard library. ID utilities in ids.go import uuid
// but are isolated for selective inclusion.
//
// All types are wire-format agnostic - row-to-type conversion happens at the
// store boundary, not here.
package types

import "time"

// TriggerKind enumerates the supported rule trigger kinds.
type TriggerKind string

const (
	TriggerKindStatusChange TriggerKind = "STATUS_CHANGE"
	TriggerKindEvent        TriggerKind = "EVENT"
	TriggerKindCondition    TriggerKind = "CONDITION"
	TriggerKindTimeBased    TriggerKind = "TIME_BASED"
)

// ActionKind enumerates the supported action kinds. Stored data may carry
// kinds outside this set (written by newer tooling); the executor reports
// those as failed action results rather than rejecting the whole rule.
type ActionKind string

const (
	ActionChangeStatus     ActionKind = "CHANGE_STATUS"
	ActionAssignUser       ActionKind = "ASSIGN_USER"
	ActionAddTag           ActionKind = "ADD_TAG"
	ActionSendNotification ActionKind = "SEND_NOTIFICATION"
	ActionCreateTimeline   ActionKind = "CREATE_TIMELINE"
)

// Trigger payload keys. Payloads are flat string maps so they can be merged
// directly into template contexts.
const (
	PayloadFromStatus    = "from_status"
	PayloadToStatus      = "to_status"
	PayloadEventType     = "event_type"
	PayloadDaysUnchanged = "days_unchanged"
	PayloadDaysOpen      = "days_open"
)

// TerminalStatuses are excluded from status-unchanged scheduling. A closed
// or archived case no longer ages.
var TerminalStatuses = []string{"CLOSED", "ARCHIVED"}

// Case is a point-in-time snapshot of a case record. The engine reads
// snapshots and mutates cases only through the record store; a snapshot is
// updated in place after a successful mutation so later actions in the same
// rule observe the effect.
type Case struct {
	ID         CaseID
	Number     string // human-readable identifier, e.g. FIN-USB-0001
	Title      string
	Status     string
	ScopeCode  string
	CaseType   string
	OwnerID    UserID
	AssigneeID UserID
	Tags       []string
	Fields     map[string]any // free-form attributes for condition evaluation
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Field returns a named case attribute for condition evaluation.
// Well-known columns resolve first; anything else falls back to the
// free-form Fields snapshot. The second return reports presence.
func (c *Case) Field(name string) (any, bool) {
	switch name {
	case "case_id":
		return string(c.ID), true
	case "case_number", "number":
		return c.Number, true
	case "title":
		return c.Title, true
	case "status":
		return c.Status, true
	case "scope_code":
		return c.ScopeCode, true
	case "case_type":
		return c.CaseType, true
	case "owner_id":
		return string(c.OwnerID), true
	case "assignee_id":
		return string(c.AssigneeID), true
	}
	v, ok := c.Fields[name]
	return v, ok
}

// IsTerminal reports whether the case status is in the closed/archived set.
func (c *Case) IsTerminal() bool {
	for _, s := range TerminalStatuses {
		if c.Status == s {
			return true
		}
	}
	return false
}

// TriggerEvent describes "something happened" that may cause rules to fire.
// Transient: never persisted as such, though its kind and payload are copied
// into execution history entries.
type TriggerEvent struct {
	Kind       TriggerKind
	Payload    map[string]string
	Case       *Case
	Provenance string // what produced the event, e.g. "scheduler:case_open_30d"
}

// ActionResult is the outcome of one action attempt within a rule execution.
type ActionResult struct {
	Kind    ActionKind        `json:"action_type"`
	Seq     int               `json:"seq"`
	Success bool              `json:"success"`
	Error   string            `json:"error,omitempty"`
	Detail  map[string]string `json:"detail,omitempty"`
}

// ExecutionEntry is the durable record of one rule firing against one case.
// Created once per (rule, case, trigger) invocation, immutable thereafter.
// RuleName and CaseNumber are denormalized so history remains readable after
// rule edits or deletion.
type ExecutionEntry struct {
	ID              ExecutionID
	RuleID          RuleID
	RuleName        string
	TriggerKind     TriggerKind
	TriggerPayload  map[string]string
	CaseID          CaseID
	CaseNumber      string
	ActionsExecuted []ActionResult
	Success         bool   // AND of all per-action successes
	ErrorMessage    string // first failure encountered
	StartedAt       time.Time
	CompletedAt     time.Time
	Provenance      string
}
