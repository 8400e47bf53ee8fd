package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/solatis/caseminder/internal/types"
	"gopkg.in/yaml.v3"
)

/*
 * YAML rule import.
 *
 * Rule definitions are authored as a YAML document and loaded into the rule
 * store by the CLI. Import is strict where the runtime is lenient: an
 * unknown trigger or action kind rejects the file, since at authoring time
 * a typo is far more likely than schema drift.
 */

type ruleSetDoc struct {
	Rules []ruleDoc `yaml:"rules"`
}

type ruleDoc struct {
	Name        string         `yaml:"name"`
	TriggerKind string         `yaml:"trigger_kind"`
	Trigger     map[string]any `yaml:"trigger"`
	Enabled     *bool          `yaml:"enabled"`
	Priority    int            `yaml:"priority"`
	ScopeCodes  []string       `yaml:"scope_codes"`
	CaseTypes   []string       `yaml:"case_types"`
	Actions     []actionDoc    `yaml:"actions"`
}

type actionDoc struct {
	Kind   string         `yaml:"kind"`
	Seq    int            `yaml:"seq"`
	Config map[string]any `yaml:"config"`
}

// ParseRuleSet decodes a YAML rule set document into fully validated rules,
// assigning fresh IDs. Enabled defaults to true when omitted.
func ParseRuleSet(raw []byte, now time.Time) ([]*types.Rule, error) {
	var doc ruleSetDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("invalid rule set document: %w", err)
	}
	if len(doc.Rules) == 0 {
		return nil, fmt.Errorf("rule set document contains no rules")
	}

	rules := make([]*types.Rule, 0, len(doc.Rules))
	for i, rd := range doc.Rules {
		rule, err := parseRule(&rd, now)
		if err != nil {
			name := rd.Name
			if name == "" {
				name = fmt.Sprintf("#%d", i+1)
			}
			return nil, fmt.Errorf("rule %s: %w", name, err)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func parseRule(rd *ruleDoc, now time.Time) (*types.Rule, error) {
	if rd.Name == "" {
		return nil, fmt.Errorf("name is required")
	}

	kind := types.TriggerKind(rd.TriggerKind)
	triggerRaw, err := yamlToJSON(rd.Trigger)
	if err != nil {
		return nil, fmt.Errorf("invalid trigger config: %w", err)
	}
	trigger, err := types.DecodeTriggerConfig(kind, triggerRaw)
	if err != nil {
		return nil, err
	}
	if tt, ok := trigger.(*types.TimeTrigger); ok {
		if err := tt.Validate(); err != nil {
			return nil, err
		}
	}

	enabled := true
	if rd.Enabled != nil {
		enabled = *rd.Enabled
	}

	ruleID := types.NewRuleID()
	actions := make([]types.Action, 0, len(rd.Actions))
	for _, ad := range rd.Actions {
		configRaw, err := yamlToJSON(ad.Config)
		if err != nil {
			return nil, fmt.Errorf("action %s (seq %d): invalid config: %w", ad.Kind, ad.Seq, err)
		}
		cfg, err := types.DecodeActionConfig(types.ActionKind(ad.Kind), configRaw)
		if err != nil {
			return nil, fmt.Errorf("action %s (seq %d): %w", ad.Kind, ad.Seq, err)
		}
		if _, unknown := cfg.(*types.UnknownActionConfig); unknown {
			return nil, fmt.Errorf("action %s (seq %d): %w", ad.Kind, ad.Seq, types.ErrUnknownActionKind)
		}
		actions = append(actions, types.Action{
			RuleID: ruleID,
			Kind:   types.ActionKind(ad.Kind),
			Seq:    ad.Seq,
			Config: cfg,
		})
	}

	return &types.Rule{
		ID:          ruleID,
		Name:        rd.Name,
		TriggerKind: kind,
		Trigger:     trigger,
		Enabled:     enabled,
		Priority:    rd.Priority,
		ScopeCodes:  rd.ScopeCodes,
		CaseTypes:   rd.CaseTypes,
		Actions:     actions,
		CreatedAt:   now.UTC(),
	}, nil
}

// yamlToJSON re-encodes a decoded YAML mapping as JSON so the typed config
// decoders can consume it.
func yamlToJSON(m map[string]any) (json.RawMessage, error) {
	if m == nil {
		return json.RawMessage("{}"), nil
	}
	return json.Marshal(m)
}
