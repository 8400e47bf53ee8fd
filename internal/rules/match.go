package rules

import "github.com/solatis/caseminder/internal/types"

/*
 * Trigger matching.
 *
 * Matches decides whether a rule applies to an incoming trigger event.
 * Checks run cheapest-first with short-circuit: enabled flag, scope/type
 * allow-lists, then the kind-specific check.
 *
 * TIME_BASED rules never match here. The scheduler determines applicability
 * by querying qualifying cases and invokes the executor directly, so the
 * event-driven path must not fire them a second way.
 */

// Matches reports whether the rule applies to the trigger event.
// A non-matching rule produces no side effects and no history entry.
func Matches(rule *types.Rule, ev *types.TriggerEvent) bool {
	if rule == nil || ev == nil || ev.Case == nil {
		return false
	}
	if !rule.Enabled {
		return false
	}
	if len(rule.ScopeCodes) > 0 && !memberOf(rule.ScopeCodes, ev.Case.ScopeCode) {
		return false
	}
	if len(rule.CaseTypes) > 0 && !memberOf(rule.CaseTypes, ev.Case.CaseType) {
		return false
	}
	if rule.TriggerKind != ev.Kind {
		return false
	}

	switch cfg := rule.Trigger.(type) {
	case *types.StatusChangeTrigger:
		if cfg.FromStatus != "" && cfg.FromStatus != ev.Payload[types.PayloadFromStatus] {
			return false
		}
		if cfg.ToStatus != "" && cfg.ToStatus != ev.Payload[types.PayloadToStatus] {
			return false
		}
		return true
	case *types.EventTrigger:
		return cfg.EventType == "" || cfg.EventType == ev.Payload[types.PayloadEventType]
	case *types.ConditionTrigger:
		return EvaluateAll(cfg.Conditions, ev.Case)
	case *types.TimeTrigger:
		// Scheduler-only; see package comment.
		return false
	default:
		return false
	}
}

func memberOf(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
