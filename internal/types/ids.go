package types

import "github.com/google/uuid"

// RuleID represents a UUIDv7 rule identifier.
// String alias enables type safety while maintaining JSON string serialization.
// UUIDv7 time-ordering ensures sequential IDs cluster in B-tree indexes.
type RuleID string

// CaseID represents a UUIDv7 case identifier.
type CaseID string

// ExecutionID represents a UUIDv7 execution history identifier.
type ExecutionID string

// UserID identifies a user in the surrounding system. Users are created
// elsewhere; the engine only references them, so arbitrary non-empty strings
// are accepted.
type UserID string

// NewRuleID generates a UUIDv7 rule identifier.
// Panics on clock regression (uuid.Must); acceptable for ID generation.
func NewRuleID() RuleID {
	return RuleID(uuid.Must(uuid.NewV7()).String())
}

// NewCaseID generates a UUIDv7 case identifier.
func NewCaseID() CaseID {
	return CaseID(uuid.Must(uuid.NewV7()).String())
}

// NewExecutionID generates a UUIDv7 execution history identifier.
func NewExecutionID() ExecutionID {
	return ExecutionID(uuid.Must(uuid.NewV7()).String())
}

// ParseRuleID validates and converts a string to RuleID.
// Rejects malformed UUIDs to prevent invalid IDs from entering the system.
func ParseRuleID(s string) (RuleID, error) {
	if _, err := uuid.Parse(s); err != nil {
		return "", err
	}
	return RuleID(s), nil
}

// ParseCaseID validates and converts a string to CaseID.
func ParseCaseID(s string) (CaseID, error) {
	if _, err := uuid.Parse(s); err != nil {
		return "", err
	}
	return CaseID(s), nil
}
