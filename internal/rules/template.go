package rules

import (
	"regexp"
	"strconv"

	"github.com/solatis/caseminder/internal/types"
)

/*
 * Template rendering.
 *
 * Pure substitution of {variable} tokens against a flat string context.
 * Missing variables render as empty string, not an error. No control flow,
 * loops, or conditionals: notification text is operator-authored data, and
 * a full template language would turn rule configuration into code.
 */

var tokenPattern = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)

// Render substitutes {variable} tokens from ctx into the template.
// Unknown tokens render as the empty string.
func Render(template string, ctx map[string]string) string {
	return tokenPattern.ReplaceAllStringFunc(template, func(token string) string {
		name := token[1 : len(token)-1]
		return ctx[name]
	})
}

// TemplateContext builds the substitution context from a case snapshot and a
// trigger payload: well-known case columns, then free-form case fields, then
// payload entries. Payload keys override case fields on collision so trigger
// facts (day counts, transition statuses) always win.
func TemplateContext(c *types.Case, payload map[string]string) map[string]string {
	ctx := make(map[string]string, 8+len(payload))

	if c != nil {
		ctx["case_id"] = string(c.ID)
		ctx["case_number"] = c.Number
		ctx["title"] = c.Title
		ctx["status"] = c.Status
		ctx["scope_code"] = c.ScopeCode
		ctx["case_type"] = c.CaseType
		ctx["owner_id"] = string(c.OwnerID)
		ctx["assignee_id"] = string(c.AssigneeID)
		for name, value := range c.Fields {
			if s, ok := fieldText(value); ok {
				ctx[name] = s
			}
		}
	}

	for k, v := range payload {
		ctx[k] = v
	}

	return ctx
}

// fieldText coerces a free-form field value to text for templating.
// Non-scalar values are skipped rather than rendered as Go syntax.
func fieldText(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case bool:
		return strconv.FormatBool(s), true
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), true
	case int:
		return strconv.Itoa(s), true
	case int64:
		return strconv.FormatInt(s, 10), true
	default:
		return "", false
	}
}
