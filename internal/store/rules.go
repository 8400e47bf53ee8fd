package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/solatis/caseminder/internal/core/db"
	"github.com/solatis/caseminder/internal/types"
)

// RuleStore loads and persists rule definitions. It implements
// engine.RuleStore; Insert additionally serves the rules import command.
//
// A rule row whose trigger config fails to decode (unknown kind, malformed
// JSON) is skipped with a warning so one bad rule cannot take the engine
// down. Action configs never fail decoding: unknown action kinds round-trip
// as raw JSON and surface as failed action results at execution time.
type RuleStore struct {
	q   *db.Queries
	log zerolog.Logger
}

// NewRuleStore creates a RuleStore backed by the given query layer.
func NewRuleStore(q *db.Queries, log zerolog.Logger) *RuleStore {
	return &RuleStore{q: q, log: log}
}

type ruleRow struct {
	ID            string `db:"id"`
	Name          string `db:"name"`
	TriggerKind   string `db:"trigger_kind"`
	TriggerConfig string `db:"trigger_config"`
	Enabled       int    `db:"enabled"`
	Priority      int    `db:"priority"`
	ScopeCodes    string `db:"scope_codes"`
	CaseTypes     string `db:"case_types"`
	CreatedAt     string `db:"created_at"`
}

type actionRow struct {
	RuleID string `db:"rule_id"`
	Kind   string `db:"kind"`
	Seq    int    `db:"seq"`
	Config string `db:"config"`
}

// ListEnabled returns all enabled rules with their actions, ordered by
// ascending priority then creation time.
func (s *RuleStore) ListEnabled(ctx context.Context) ([]*types.Rule, error) {
	var rows []ruleRow
	if err := s.q.Select(ctx, "list-enabled-rules", &rows); err != nil {
		return nil, fmt.Errorf("failed to query enabled rules: %w", err)
	}
	return s.hydrate(ctx, rows)
}

// ListEnabledByKind restricts ListEnabled to one trigger kind.
func (s *RuleStore) ListEnabledByKind(ctx context.Context, kind types.TriggerKind) ([]*types.Rule, error) {
	var rows []ruleRow
	if err := s.q.Select(ctx, "list-enabled-rules-by-kind", &rows, string(kind)); err != nil {
		return nil, fmt.Errorf("failed to query enabled rules by kind: %w", err)
	}
	return s.hydrate(ctx, rows)
}

// Insert persists a rule and its actions. Caller assigns the ID.
func (s *RuleStore) Insert(ctx context.Context, rule *types.Rule) error {
	triggerRaw, err := types.EncodeTriggerConfig(rule.Trigger)
	if err != nil {
		return fmt.Errorf("failed to encode trigger config for rule %s: %w", rule.ID, err)
	}

	enabled := 0
	if rule.Enabled {
		enabled = 1
	}

	_, err = s.q.Exec(ctx, "insert-rule",
		string(rule.ID), rule.Name, string(rule.TriggerKind), string(triggerRaw),
		enabled, rule.Priority,
		marshalStrings(rule.ScopeCodes), marshalStrings(rule.CaseTypes),
		formatTime(rule.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert rule %s: %w", rule.ID, err)
	}

	for _, action := range rule.Actions {
		configRaw, err := types.EncodeActionConfig(action.Config)
		if err != nil {
			return fmt.Errorf("failed to encode action config for rule %s: %w", rule.ID, err)
		}
		_, err = s.q.Exec(ctx, "insert-rule-action",
			string(rule.ID), string(action.Kind), action.Seq, string(configRaw))
		if err != nil {
			return fmt.Errorf("failed to insert action for rule %s: %w", rule.ID, err)
		}
	}

	return nil
}

func (s *RuleStore) hydrate(ctx context.Context, rows []ruleRow) ([]*types.Rule, error) {
	var rules []*types.Rule
	for i := range rows {
		rule, err := s.hydrateRule(ctx, &rows[i])
		if err != nil {
			s.log.Warn().Err(err).Str("rule_id", rows[i].ID).Msg("skipping undecodable rule")
			continue
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func (s *RuleStore) hydrateRule(ctx context.Context, row *ruleRow) (*types.Rule, error) {
	kind := types.TriggerKind(row.TriggerKind)
	trigger, err := types.DecodeTriggerConfig(kind, json.RawMessage(row.TriggerConfig))
	if err != nil {
		return nil, err
	}

	scopeCodes, err := unmarshalStrings(row.ScopeCodes)
	if err != nil {
		return nil, fmt.Errorf("invalid scope_codes: %w", err)
	}
	caseTypes, err := unmarshalStrings(row.CaseTypes)
	if err != nil {
		return nil, fmt.Errorf("invalid case_types: %w", err)
	}

	createdAt, err := parseTime(row.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid created_at: %w", err)
	}

	var actionRows []actionRow
	if err := s.q.Select(ctx, "list-rule-actions", &actionRows, row.ID); err != nil {
		return nil, fmt.Errorf("failed to load actions: %w", err)
	}

	actions := make([]types.Action, 0, len(actionRows))
	for _, a := range actionRows {
		cfg, err := types.DecodeActionConfig(types.ActionKind(a.Kind), json.RawMessage(a.Config))
		if err != nil {
			return nil, fmt.Errorf("invalid action config (seq %d): %w", a.Seq, err)
		}
		actions = append(actions, types.Action{
			RuleID: types.RuleID(a.RuleID),
			Kind:   types.ActionKind(a.Kind),
			Seq:    a.Seq,
			Config: cfg,
		})
	}

	return &types.Rule{
		ID:          types.RuleID(row.ID),
		Name:        row.Name,
		TriggerKind: kind,
		Trigger:     trigger,
		Enabled:     row.Enabled != 0,
		Priority:    row.Priority,
		ScopeCodes:  scopeCodes,
		CaseTypes:   caseTypes,
		Actions:     actions,
		CreatedAt:   createdAt,
	}, nil
}
