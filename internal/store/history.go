package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/solatis/caseminder/internal/core/db"
	"github.com/solatis/caseminder/internal/engine"
	"github.com/solatis/caseminder/internal/types"
)

// HistoryStore persists execution history. Implements engine.HistoryStore.
// Entries are write-once; there is no update path.
type HistoryStore struct {
	q *db.Queries
}

// NewHistoryStore creates a HistoryStore backed by the given query layer.
func NewHistoryStore(q *db.Queries) *HistoryStore {
	return &HistoryStore{q: q}
}

type executionRow struct {
	ID              string `db:"id"`
	RuleID          string `db:"rule_id"`
	RuleName        string `db:"rule_name"`
	TriggerKind     string `db:"trigger_kind"`
	TriggerPayload  string `db:"trigger_payload"`
	CaseID          string `db:"case_id"`
	CaseNumber      string `db:"case_number"`
	ActionsExecuted string `db:"actions_executed"`
	Success         int    `db:"success"`
	ErrorMessage    string `db:"error_message"`
	StartedAt       string `db:"started_at"`
	CompletedAt     string `db:"completed_at"`
	Provenance      string `db:"provenance"`
}

// Append inserts one execution entry.
func (s *HistoryStore) Append(ctx context.Context, entry *types.ExecutionEntry) error {
	payload, err := json.Marshal(entry.TriggerPayload)
	if err != nil {
		return fmt.Errorf("failed to encode trigger payload: %w", err)
	}
	actions, err := json.Marshal(entry.ActionsExecuted)
	if err != nil {
		return fmt.Errorf("failed to encode action results: %w", err)
	}

	success := 0
	if entry.Success {
		success = 1
	}

	_, err = s.q.Exec(ctx, "insert-execution",
		string(entry.ID), string(entry.RuleID), entry.RuleName,
		string(entry.TriggerKind), string(payload),
		string(entry.CaseID), entry.CaseNumber,
		string(actions), success, entry.ErrorMessage,
		formatTime(entry.StartedAt), formatTime(entry.CompletedAt),
		entry.Provenance,
	)
	if err != nil {
		return fmt.Errorf("failed to insert execution entry: %w", err)
	}
	return nil
}

// List returns entries matching the filter, newest first.
func (s *HistoryStore) List(ctx context.Context, filter engine.HistoryFilter, limit, offset int) ([]*types.ExecutionEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	// The query takes sentinel-disabled optional filters: "" disables an id
	// filter, -1 disables the success filter.
	success := -1
	if filter.Success != nil {
		if *filter.Success {
			success = 1
		} else {
			success = 0
		}
	}

	var rows []executionRow
	err := s.q.Select(ctx, "list-executions", &rows,
		string(filter.RuleID), string(filter.RuleID),
		string(filter.CaseID), string(filter.CaseID),
		success, success,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query executions: %w", err)
	}

	entries := make([]*types.ExecutionEntry, 0, len(rows))
	for i := range rows {
		entry, err := hydrateExecution(&rows[i])
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// HasSuccess reports whether a successful execution exists for the
// (rule, case) pair.
func (s *HistoryStore) HasSuccess(ctx context.Context, ruleID types.RuleID, caseID types.CaseID) (bool, error) {
	var count int
	err := s.q.Get(ctx, "has-success", &count, string(ruleID), string(caseID))
	if err != nil {
		return false, fmt.Errorf("failed to query execution history: %w", err)
	}
	return count > 0, nil
}

func hydrateExecution(row *executionRow) (*types.ExecutionEntry, error) {
	var payload map[string]string
	if row.TriggerPayload != "" && row.TriggerPayload != "{}" {
		if err := json.Unmarshal([]byte(row.TriggerPayload), &payload); err != nil {
			return nil, fmt.Errorf("execution %s has invalid trigger payload: %w", row.ID, err)
		}
	}

	var actions []types.ActionResult
	if row.ActionsExecuted != "" && row.ActionsExecuted != "[]" {
		if err := json.Unmarshal([]byte(row.ActionsExecuted), &actions); err != nil {
			return nil, fmt.Errorf("execution %s has invalid action results: %w", row.ID, err)
		}
	}

	startedAt, err := parseTime(row.StartedAt)
	if err != nil {
		return nil, fmt.Errorf("execution %s has invalid started_at: %w", row.ID, err)
	}
	completedAt, err := parseTime(row.CompletedAt)
	if err != nil {
		return nil, fmt.Errorf("execution %s has invalid completed_at: %w", row.ID, err)
	}

	return &types.ExecutionEntry{
		ID:              types.ExecutionID(row.ID),
		RuleID:          types.RuleID(row.RuleID),
		RuleName:        row.RuleName,
		TriggerKind:     types.TriggerKind(row.TriggerKind),
		TriggerPayload:  payload,
		CaseID:          types.CaseID(row.CaseID),
		CaseNumber:      row.CaseNumber,
		ActionsExecuted: actions,
		Success:         row.Success != 0,
		ErrorMessage:    row.ErrorMessage,
		StartedAt:       startedAt,
		CompletedAt:     completedAt,
		Provenance:      row.Provenance,
	}, nil
}
