package rules

import (
	"testing"

	"github.com/solatis/caseminder/internal/types"
)

func TestRender(t *testing.T) {
	ctx := map[string]string{
		"case_id": "case-001",
		"status":  "OPEN",
		"days":    "7",
	}

	tests := []struct {
		name     string
		template string
		want     string
	}{
		{"single token", "case {case_id}", "case case-001"},
		{"multiple tokens", "{case_id} is {status}", "case-001 is OPEN"},
		{"unknown token renders empty", "owner: {owner_name}", "owner: "},
		{"no tokens", "static text", "static text"},
		{"adjacent tokens", "{case_id}{status}", "case-001OPEN"},
		{"repeated token", "{days} of {days} days", "7 of 7 days"},
		{"unclosed brace untouched", "{case_id", "{case_id"},
		{"empty template", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Render(tt.template, ctx); got != tt.want {
				t.Errorf("Render(%q) = %q, want %q", tt.template, got, tt.want)
			}
		})
	}
}

func TestTemplateContext(t *testing.T) {
	c := &types.Case{
		ID:         "case-001",
		Number:     "FIN-USB-0001",
		Title:      "Unusual settlement",
		Status:     "OPEN",
		ScopeCode:  "FIN",
		CaseType:   "USB",
		OwnerID:    "user-owner",
		AssigneeID: "user-assignee",
		Fields: map[string]any{
			"priority": float64(8),
			"flagged":  true,
			"nested":   map[string]any{"skip": "me"},
		},
	}
	payload := map[string]string{
		types.PayloadDaysUnchanged: "7",
		"status":                   "payload-wins",
	}

	ctx := TemplateContext(c, payload)

	checks := map[string]string{
		"case_id":     "case-001",
		"case_number": "FIN-USB-0001",
		"title":       "Unusual settlement",
		"scope_code":  "FIN",
		"case_type":   "USB",
		"owner_id":    "user-owner",
		"assignee_id": "user-assignee",
		"priority":    "8",
		"flagged":     "true",
		// Payload entries override case columns on collision.
		"status":         "payload-wins",
		"days_unchanged": "7",
	}
	for key, want := range checks {
		if got := ctx[key]; got != want {
			t.Errorf("ctx[%q] = %q, want %q", key, got, want)
		}
	}

	if _, ok := ctx["nested"]; ok {
		t.Errorf("ctx contains non-scalar field %q, want skipped", "nested")
	}
}

func TestTemplateContext_NilCase(t *testing.T) {
	ctx := TemplateContext(nil, map[string]string{"event_type": "x"})
	if ctx["event_type"] != "x" {
		t.Errorf("ctx[event_type] = %q, want x", ctx["event_type"])
	}
	if len(ctx) != 1 {
		t.Errorf("len(ctx) = %d, want 1", len(ctx))
	}
}
