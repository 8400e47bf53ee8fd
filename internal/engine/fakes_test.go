package engine

import (
	"context"
	"time"

	"github.com/solatis/caseminder/internal/types"
)

// Test doubles for the engine's sink interfaces. Kept deliberately dumb:
// they record calls and return scripted failures.

type fakeClock struct{ now time.Time }

func (f *fakeClock) Now() time.Time { return f.now }

type fakeRecords struct {
	cases       map[types.CaseID]*types.Case
	usersByRole map[string][]types.UserID

	existingTags map[string]bool // "caseID/tag" already present

	statusErr error
	assignErr error
	tagErr    error

	statusUpdates []string // "caseID:newStatus"
	assignments   []string // "caseID:userID"
	tagsAdded     []string // "caseID:tag"
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{
		cases:        make(map[types.CaseID]*types.Case),
		usersByRole:  make(map[string][]types.UserID),
		existingTags: make(map[string]bool),
	}
}

func (f *fakeRecords) GetByID(ctx context.Context, id types.CaseID) (*types.Case, error) {
	c, ok := f.cases[id]
	if !ok {
		return nil, types.ErrCaseNotFound
	}
	return c, nil
}

func (f *fakeRecords) FindStatusUnchangedSince(ctx context.Context, cutoff time.Time, fromStatus string, scopeCodes, caseTypes []string) ([]*types.Case, error) {
	return nil, nil
}

func (f *fakeRecords) FindOpenSince(ctx context.Context, cutoff time.Time, scopeCodes, caseTypes []string) ([]*types.Case, error) {
	return nil, nil
}

func (f *fakeRecords) UpdateStatus(ctx context.Context, id types.CaseID, newStatus string) error {
	if f.statusErr != nil {
		return f.statusErr
	}
	f.statusUpdates = append(f.statusUpdates, string(id)+":"+newStatus)
	return nil
}

func (f *fakeRecords) UpdateAssignment(ctx context.Context, id types.CaseID, userID types.UserID) error {
	if f.assignErr != nil {
		return f.assignErr
	}
	f.assignments = append(f.assignments, string(id)+":"+string(userID))
	return nil
}

func (f *fakeRecords) AppendTagIfAbsent(ctx context.Context, id types.CaseID, tag string) (bool, error) {
	if f.tagErr != nil {
		return false, f.tagErr
	}
	key := string(id) + "/" + tag
	if f.existingTags[key] {
		return false, nil
	}
	f.existingTags[key] = true
	f.tagsAdded = append(f.tagsAdded, string(id)+":"+tag)
	return true, nil
}

func (f *fakeRecords) UsersWithRole(ctx context.Context, role string) ([]types.UserID, error) {
	return f.usersByRole[role], nil
}

type fakeRules struct {
	rules   []*types.Rule
	listErr error
}

func (f *fakeRules) ListEnabled(ctx context.Context) ([]*types.Rule, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var enabled []*types.Rule
	for _, r := range f.rules {
		if r.Enabled {
			enabled = append(enabled, r)
		}
	}
	return enabled, nil
}

func (f *fakeRules) ListEnabledByKind(ctx context.Context, kind types.TriggerKind) ([]*types.Rule, error) {
	all, err := f.ListEnabled(ctx)
	if err != nil {
		return nil, err
	}
	var matched []*types.Rule
	for _, r := range all {
		if r.TriggerKind == kind {
			matched = append(matched, r)
		}
	}
	return matched, nil
}

type deliveredNotification struct {
	UserID types.UserID
	N      Notification
}

type fakeNotifications struct {
	delivered []deliveredNotification
	failFor   map[types.UserID]error
	panicMode bool
}

func (f *fakeNotifications) Create(ctx context.Context, userID types.UserID, n Notification) error {
	if f.panicMode {
		panic("notification sink exploded")
	}
	if err := f.failFor[userID]; err != nil {
		return err
	}
	f.delivered = append(f.delivered, deliveredNotification{UserID: userID, N: n})
	return nil
}

type timelineEntry struct {
	CaseID      types.CaseID
	EventType   string
	Description string
	Source      string
}

type fakeTimeline struct {
	entries []timelineEntry
	err     error
}

func (f *fakeTimeline) Append(ctx context.Context, caseID types.CaseID, eventType, description, source string, actorID types.UserID) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, timelineEntry{
		CaseID:      caseID,
		EventType:   eventType,
		Description: description,
		Source:      source,
	})
	return nil
}

type fakeHistory struct {
	entries   []*types.ExecutionEntry
	appendErr error
	lookupErr error
}

func (f *fakeHistory) Append(ctx context.Context, entry *types.ExecutionEntry) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeHistory) List(ctx context.Context, filter HistoryFilter, limit, offset int) ([]*types.ExecutionEntry, error) {
	return f.entries, nil
}

func (f *fakeHistory) HasSuccess(ctx context.Context, ruleID types.RuleID, caseID types.CaseID) (bool, error) {
	if f.lookupErr != nil {
		return false, f.lookupErr
	}
	for _, e := range f.entries {
		if e.RuleID == ruleID && e.CaseID == caseID && e.Success {
			return true, nil
		}
	}
	return false, nil
}
