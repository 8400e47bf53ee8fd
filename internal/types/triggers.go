package types

import (
	"encoding/json"
	"fmt"
)

/*
 * Trigger configuration variants.
 *
 * Each trigger kind carries a kind-specific configuration. Stored rules keep
 * the configuration as JSON; DecodeTriggerConfig converts it into the typed
 * variant at the store boundary so the rest of the pipeline never handles an
 * untyped map.
 *
 * Unlike action configs, an unknown trigger kind is a hard decode error: a
 * rule whose trigger cannot be interpreted can never fire correctly, so it
 * must not be loaded at all.
 */

// TriggerConfig is implemented by the per-kind trigger configurations.
type TriggerConfig interface {
	triggerKind() TriggerKind
}

// StatusChangeTrigger fires on status transitions. An empty FromStatus or
// ToStatus means "any".
type StatusChangeTrigger struct {
	FromStatus string `json:"from_status,omitempty" yaml:"from_status"`
	ToStatus   string `json:"to_status,omitempty" yaml:"to_status"`
}

func (*StatusChangeTrigger) triggerKind() TriggerKind { return TriggerKindStatusChange }

// EventTrigger fires on named domain events. An empty EventType matches any
// event.
type EventTrigger struct {
	EventType string `json:"event_type,omitempty" yaml:"event_type"`
}

func (*EventTrigger) triggerKind() TriggerKind { return TriggerKindEvent }

// ConditionTrigger fires when every listed condition holds against the case
// snapshot (implicit AND).
type ConditionTrigger struct {
	Conditions []Condition `json:"conditions" yaml:"conditions"`
}

func (*ConditionTrigger) triggerKind() TriggerKind { return TriggerKindCondition }

// TimeTrigger fires from the scheduler. Exactly one of StatusUnchangedDays
// and CaseOpenDays must be positive. FromStatus optionally restricts
// status-unchanged rules to cases currently in that status.
type TimeTrigger struct {
	StatusUnchangedDays int    `json:"status_unchanged_days,omitempty" yaml:"status_unchanged_days"`
	FromStatus          string `json:"from_status,omitempty" yaml:"from_status"`
	CaseOpenDays        int    `json:"case_open_days,omitempty" yaml:"case_open_days"`
}

func (*TimeTrigger) triggerKind() TriggerKind { return TriggerKindTimeBased }

// Validate checks that the trigger names exactly one day threshold.
func (t *TimeTrigger) Validate() error {
	switch {
	case t.StatusUnchangedDays > 0 && t.CaseOpenDays > 0:
		return fmt.Errorf("%w: status_unchanged_days and case_open_days are mutually exclusive", ErrInvalidTriggerConfig)
	case t.StatusUnchangedDays <= 0 && t.CaseOpenDays <= 0:
		return fmt.Errorf("%w: one of status_unchanged_days or case_open_days is required", ErrInvalidTriggerConfig)
	}
	return nil
}

// DecodeTriggerConfig converts stored JSON configuration into the typed
// variant for the given kind.
func DecodeTriggerConfig(kind TriggerKind, raw json.RawMessage) (TriggerConfig, error) {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}

	switch kind {
	case TriggerKindStatusChange:
		var cfg StatusChangeTrigger
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("decode STATUS_CHANGE trigger: %w", err)
		}
		return &cfg, nil
	case TriggerKindEvent:
		var cfg EventTrigger
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("decode EVENT trigger: %w", err)
		}
		return &cfg, nil
	case TriggerKindCondition:
		var cfg ConditionTrigger
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("decode CONDITION trigger: %w", err)
		}
		return &cfg, nil
	case TriggerKindTimeBased:
		var cfg TimeTrigger
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("decode TIME_BASED trigger: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return &cfg, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownTriggerKind, kind)
	}
}

// EncodeTriggerConfig marshals a typed trigger configuration for storage.
func EncodeTriggerConfig(cfg TriggerConfig) (json.RawMessage, error) {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encode %s trigger: %w", cfg.triggerKind(), err)
	}
	return raw, nil
}
