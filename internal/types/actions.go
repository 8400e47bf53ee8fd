package types

import (
	"encoding/json"
	"fmt"
)

/*
 * Action configuration variants.
 *
 * Dispatch on action kind uses a closed set of config types matched
 * exhaustively in the executor. Stored data may carry kinds this binary does
 * not know (schema drift from newer tooling): those decode into
 * UnknownActionConfig instead of failing the rule load, and the executor
 * turns them into failed action results at execution time.
 */

// ActionConfig is implemented by the per-kind action configurations.
type ActionConfig interface {
	actionKind() ActionKind
}

// ChangeStatusConfig moves the case to NewStatus. NewStatus is required.
type ChangeStatusConfig struct {
	NewStatus string `json:"new_status" yaml:"new_status"`
}

func (*ChangeStatusConfig) actionKind() ActionKind { return ActionChangeStatus }

// AssignUserConfig assigns the case to an explicit user, or to the case's
// current owner when AssignToOwner is set. One of the two must resolve.
type AssignUserConfig struct {
	UserID        UserID `json:"user_id,omitempty" yaml:"user_id"`
	AssignToOwner bool   `json:"assign_to_owner,omitempty" yaml:"assign_to_owner"`
}

func (*AssignUserConfig) actionKind() ActionKind { return ActionAssignUser }

// AddTagConfig appends Tag to the case if not already present. A duplicate
// tag is a no-op, not a failure.
type AddTagConfig struct {
	Tag string `json:"tag" yaml:"tag"`
}

func (*AddTagConfig) actionKind() ActionKind { return ActionAddTag }

// RecipientType selects how SEND_NOTIFICATION resolves its recipients.
type RecipientType string

const (
	RecipientOwner    RecipientType = "owner"
	RecipientAssignee RecipientType = "assignee"
	RecipientRole     RecipientType = "role"
	RecipientUser     RecipientType = "user"
)

// SendNotificationConfig renders both templates against the case and trigger
// payload and delivers one notification per resolved recipient.
// RecipientValue is required for role and user recipient types.
type SendNotificationConfig struct {
	TitleTemplate   string        `json:"title_template" yaml:"title_template"`
	MessageTemplate string        `json:"message_template" yaml:"message_template"`
	RecipientType   RecipientType `json:"recipient_type" yaml:"recipient_type"`
	RecipientValue  string        `json:"recipient_value,omitempty" yaml:"recipient_value"`
	Priority        string        `json:"priority,omitempty" yaml:"priority"`
}

func (*SendNotificationConfig) actionKind() ActionKind { return ActionSendNotification }

// CreateTimelineConfig appends a rendered entry to the case timeline.
type CreateTimelineConfig struct {
	EventType           string `json:"event_type" yaml:"event_type"`
	DescriptionTemplate string `json:"description_template" yaml:"description_template"`
}

func (*CreateTimelineConfig) actionKind() ActionKind { return ActionCreateTimeline }

// UnknownActionConfig carries an action kind this binary does not support.
// Raw preserves the stored configuration for diagnostics.
type UnknownActionConfig struct {
	Kind ActionKind
	Raw  json.RawMessage
}

func (u *UnknownActionConfig) actionKind() ActionKind { return u.Kind }

// DecodeActionConfig converts stored JSON configuration into the typed
// variant for the given kind. Unknown kinds decode into UnknownActionConfig
// rather than erroring; a running engine must tolerate actions written by
// newer tooling.
func DecodeActionConfig(kind ActionKind, raw json.RawMessage) (ActionConfig, error) {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}

	switch kind {
	case ActionChangeStatus:
		var cfg ChangeStatusConfig
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("decode CHANGE_STATUS action: %w", err)
		}
		return &cfg, nil
	case ActionAssignUser:
		var cfg AssignUserConfig
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("decode ASSIGN_USER action: %w", err)
		}
		return &cfg, nil
	case ActionAddTag:
		var cfg AddTagConfig
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("decode ADD_TAG action: %w", err)
		}
		return &cfg, nil
	case ActionSendNotification:
		var cfg SendNotificationConfig
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("decode SEND_NOTIFICATION action: %w", err)
		}
		return &cfg, nil
	case ActionCreateTimeline:
		var cfg CreateTimelineConfig
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("decode CREATE_TIMELINE action: %w", err)
		}
		return &cfg, nil
	default:
		return &UnknownActionConfig{Kind: kind, Raw: raw}, nil
	}
}

// EncodeActionConfig marshals a typed action configuration for storage.
func EncodeActionConfig(cfg ActionConfig) (json.RawMessage, error) {
	if u, ok := cfg.(*UnknownActionConfig); ok {
		return u.Raw, nil
	}
	raw, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encode %s action: %w", cfg.actionKind(), err)
	}
	return raw, nil
}
