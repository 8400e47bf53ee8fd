package types

import "errors"

// Sentinel errors for caseminder operations.
var (
	// ErrRuleNotFound indicates a rule ID that does not exist in the store.
	ErrRuleNotFound = errors.New("rule not found")

	// ErrCaseNotFound indicates a case ID that does not exist in the store.
	ErrCaseNotFound = errors.New("case not found")

	// ErrUnknownTriggerKind indicates a stored trigger kind outside the
	// supported set. Hard error: such a rule can never fire correctly.
	ErrUnknownTriggerKind = errors.New("unknown trigger kind")

	// ErrUnknownActionKind indicates an action kind this binary does not
	// support. Surfaced as a failed action result, never as a panic.
	ErrUnknownActionKind = errors.New("unknown action kind")

	// ErrInvalidTriggerConfig indicates a trigger configuration that fails
	// validation (e.g. a TIME_BASED rule without a day threshold).
	ErrInvalidTriggerConfig = errors.New("invalid trigger configuration")

	// ErrMissingConfigField indicates a required action configuration field
	// is absent.
	ErrMissingConfigField = errors.New("required configuration field missing")

	// ErrNoRecipients indicates a notification action resolved zero
	// recipients.
	ErrNoRecipients = errors.New("no notification recipients resolved")

	// ErrUnassignable indicates an ASSIGN_USER action with neither an
	// explicit user nor a resolvable owner.
	ErrUnassignable = errors.New("no assignable user resolved")
)
