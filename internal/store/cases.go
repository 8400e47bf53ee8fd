package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/solatis/caseminder/internal/core/db"
	"github.com/solatis/caseminder/internal/types"
)

// CaseStore reads and mutates case records. It implements
// engine.RecordStore. Every mutation is its own committed statement; there
// is deliberately no multi-action transaction.
type CaseStore struct {
	q *db.Queries
}

// NewCaseStore creates a CaseStore backed by the given query layer.
func NewCaseStore(q *db.Queries) *CaseStore {
	return &CaseStore{q: q}
}

type caseRow struct {
	ID         string `db:"id"`
	Number     string `db:"number"`
	Title      string `db:"title"`
	Status     string `db:"status"`
	ScopeCode  string `db:"scope_code"`
	CaseType   string `db:"case_type"`
	OwnerID    string `db:"owner_id"`
	AssigneeID string `db:"assignee_id"`
	Fields     string `db:"fields"`
	CreatedAt  string `db:"created_at"`
	UpdatedAt  string `db:"updated_at"`
}

// GetByID returns one case snapshot including its tags.
func (s *CaseStore) GetByID(ctx context.Context, id types.CaseID) (*types.Case, error) {
	var row caseRow
	if err := s.q.Get(ctx, "get-case", &row, string(id)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrCaseNotFound
		}
		return nil, fmt.Errorf("failed to load case %s: %w", id, err)
	}
	return s.hydrate(ctx, &row)
}

// FindStatusUnchangedSince returns non-terminal cases last modified at or
// before cutoff. fromStatus "" matches any status; allow-lists are applied
// in Go.
func (s *CaseStore) FindStatusUnchangedSince(ctx context.Context, cutoff time.Time, fromStatus string, scopeCodes, caseTypes []string) ([]*types.Case, error) {
	var rows []caseRow
	err := s.q.Select(ctx, "find-status-unchanged", &rows, formatTime(cutoff), fromStatus, fromStatus)
	if err != nil {
		return nil, fmt.Errorf("failed to query status-unchanged cases: %w", err)
	}
	return s.hydrateFiltered(ctx, rows, scopeCodes, caseTypes)
}

// FindOpenSince returns cases created at or before cutoff regardless of
// status; allow-lists are applied in Go.
func (s *CaseStore) FindOpenSince(ctx context.Context, cutoff time.Time, scopeCodes, caseTypes []string) ([]*types.Case, error) {
	var rows []caseRow
	err := s.q.Select(ctx, "find-open-since", &rows, formatTime(cutoff))
	if err != nil {
		return nil, fmt.Errorf("failed to query open cases: %w", err)
	}
	return s.hydrateFiltered(ctx, rows, scopeCodes, caseTypes)
}

// UpdateStatus sets the case status and bumps updated_at.
func (s *CaseStore) UpdateStatus(ctx context.Context, id types.CaseID, newStatus string) error {
	res, err := s.q.Exec(ctx, "update-case-status", newStatus, formatTime(time.Now()), string(id))
	if err != nil {
		return fmt.Errorf("failed to update case status: %w", err)
	}
	return requireRow(res, types.ErrCaseNotFound)
}

// UpdateAssignment sets the case assignee and bumps updated_at.
func (s *CaseStore) UpdateAssignment(ctx context.Context, id types.CaseID, userID types.UserID) error {
	res, err := s.q.Exec(ctx, "update-case-assignment", string(userID), formatTime(time.Now()), string(id))
	if err != nil {
		return fmt.Errorf("failed to update case assignment: %w", err)
	}
	return requireRow(res, types.ErrCaseNotFound)
}

// AppendTagIfAbsent inserts the tag row unless it already exists. The
// insert is ON CONFLICT DO NOTHING, so RowsAffected doubles as the "added"
// signal.
func (s *CaseStore) AppendTagIfAbsent(ctx context.Context, id types.CaseID, tag string) (bool, error) {
	res, err := s.q.Exec(ctx, "insert-case-tag", string(id), tag)
	if err != nil {
		return false, fmt.Errorf("failed to add case tag: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// UsersWithRole returns the users holding a role, ordered by user id.
func (s *CaseStore) UsersWithRole(ctx context.Context, role string) ([]types.UserID, error) {
	var ids []string
	if err := s.q.Select(ctx, "users-with-role", &ids, role); err != nil {
		return nil, fmt.Errorf("failed to query users with role %q: %w", role, err)
	}
	users := make([]types.UserID, len(ids))
	for i, id := range ids {
		users[i] = types.UserID(id)
	}
	return users, nil
}

func (s *CaseStore) hydrateFiltered(ctx context.Context, rows []caseRow, scopeCodes, caseTypes []string) ([]*types.Case, error) {
	var cases []*types.Case
	for i := range rows {
		if !allowed(scopeCodes, rows[i].ScopeCode) || !allowed(caseTypes, rows[i].CaseType) {
			continue
		}
		c, err := s.hydrate(ctx, &rows[i])
		if err != nil {
			return nil, err
		}
		cases = append(cases, c)
	}
	return cases, nil
}

func (s *CaseStore) hydrate(ctx context.Context, row *caseRow) (*types.Case, error) {
	createdAt, err := parseTime(row.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("case %s has invalid created_at: %w", row.ID, err)
	}
	updatedAt, err := parseTime(row.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("case %s has invalid updated_at: %w", row.ID, err)
	}

	fields := make(map[string]any)
	if row.Fields != "" && row.Fields != "{}" {
		if err := json.Unmarshal([]byte(row.Fields), &fields); err != nil {
			return nil, fmt.Errorf("case %s has invalid fields: %w", row.ID, err)
		}
	}

	var tags []string
	if err := s.q.Select(ctx, "get-case-tags", &tags, row.ID); err != nil {
		return nil, fmt.Errorf("failed to load tags for case %s: %w", row.ID, err)
	}

	return &types.Case{
		ID:         types.CaseID(row.ID),
		Number:     row.Number,
		Title:      row.Title,
		Status:     row.Status,
		ScopeCode:  row.ScopeCode,
		CaseType:   row.CaseType,
		OwnerID:    types.UserID(row.OwnerID),
		AssigneeID: types.UserID(row.AssigneeID),
		Tags:       tags,
		Fields:     fields,
		CreatedAt:  createdAt,
		UpdatedAt:  updatedAt,
	}, nil
}

// requireRow converts a zero-row update into notFound.
func requireRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
