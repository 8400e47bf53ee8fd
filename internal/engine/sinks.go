// Package engine executes rule actions against cases and records execution
// history. It consumes and produces exclusively through the narrow
// interfaces below; the production implementations live in internal/store
// and test doubles live alongside the tests.
package engine

import (
	"context"
	"time"

	"github.com/solatis/caseminder/internal/types"
)

// RecordStore reads and mutates case records. Each mutation call is
// independently committed: a crash mid-rule leaves earlier actions applied
// and later ones not, which is the intended at-most-once-per-action
// guarantee.
type RecordStore interface {
	GetByID(ctx context.Context, id types.CaseID) (*types.Case, error)

	// FindStatusUnchangedSince returns non-terminal cases whose last
	// modification is at or before cutoff, optionally restricted to
	// fromStatus ("" = any) and to the given scope/type allow-lists
	// (empty = unrestricted).
	FindStatusUnchangedSince(ctx context.Context, cutoff time.Time, fromStatus string, scopeCodes, caseTypes []string) ([]*types.Case, error)

	// FindOpenSince returns cases created at or before cutoff, restricted to
	// the given scope/type allow-lists (empty = unrestricted).
	FindOpenSince(ctx context.Context, cutoff time.Time, scopeCodes, caseTypes []string) ([]*types.Case, error)

	UpdateStatus(ctx context.Context, id types.CaseID, newStatus string) error
	UpdateAssignment(ctx context.Context, id types.CaseID, userID types.UserID) error

	// AppendTagIfAbsent adds the tag unless already present. The bool
	// reports whether a row was actually written.
	AppendTagIfAbsent(ctx context.Context, id types.CaseID, tag string) (added bool, err error)

	// UsersWithRole resolves role-addressed notification recipients.
	UsersWithRole(ctx context.Context, role string) ([]types.UserID, error)
}

// RuleStore loads rule definitions. Rule CRUD is not the engine's concern;
// it only ever reads.
type RuleStore interface {
	// ListEnabled returns all enabled rules ordered by ascending priority,
	// then creation time.
	ListEnabled(ctx context.Context) ([]*types.Rule, error)

	// ListEnabledByKind restricts ListEnabled to one trigger kind.
	ListEnabledByKind(ctx context.Context, kind types.TriggerKind) ([]*types.Rule, error)
}

// Notification is the payload handed to the notification sink, once per
// resolved recipient.
type Notification struct {
	Title    string
	Message  string
	Priority string
	CaseID   types.CaseID
	RuleID   types.RuleID
}

// NotificationSink delivers notifications to users. Implementations own
// persistence and fan-out; the engine only hands over rendered content.
type NotificationSink interface {
	Create(ctx context.Context, userID types.UserID, n Notification) error
}

// TimelineSink appends entries to a case's timeline.
type TimelineSink interface {
	Append(ctx context.Context, caseID types.CaseID, eventType, description, source string, actorID types.UserID) error
}

// HistoryFilter narrows history reads. Zero values mean "any"; Success nil
// means both outcomes.
type HistoryFilter struct {
	RuleID  types.RuleID
	CaseID  types.CaseID
	Success *bool
}

// HistoryStore persists execution history. Append-only and write-once;
// Append failures must not roll back already-applied action side effects.
type HistoryStore interface {
	Append(ctx context.Context, entry *types.ExecutionEntry) error
	List(ctx context.Context, filter HistoryFilter, limit, offset int) ([]*types.ExecutionEntry, error)

	// HasSuccess reports whether a successful execution exists for the
	// (rule, case) pair. Used by the scheduler's fire-once policy.
	HasSuccess(ctx context.Context, ruleID types.RuleID, caseID types.CaseID) (bool, error)
}

// Clock supplies "now" for cutoff computation and history timestamps.
// Injectable for deterministic testing.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall-clock implementation.
func SystemClock() Clock { return systemClock{} }
