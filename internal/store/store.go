// Package store implements the engine's persistence interfaces on top of
// the named-query layer in internal/core/db.
//
// Conventions shared by every store: timestamps are RFC3339 UTC text,
// structured columns (trigger configs, action configs, field snapshots,
// allow-lists) are JSON text, and rows that fail to decode are skipped with
// a warning rather than failing the whole read. Scope and type allow-list
// filtering happens in Go so the SQL stays identical across drivers.
package store

import (
	"encoding/json"
	"time"
)

// timeLayout is the storage format for all timestamp columns.
const timeLayout = time.RFC3339

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

// unmarshalStrings decodes a JSON array column, treating empty text as an
// empty list.
func unmarshalStrings(raw string) ([]string, error) {
	if raw == "" || raw == "[]" {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func marshalStrings(values []string) string {
	if len(values) == 0 {
		return "[]"
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return "[]"
	}
	return string(raw)
}

// allowed reports list membership with the empty list meaning "anything".
func allowed(list []string, value string) bool {
	if len(list) == 0 {
		return true
	}
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
