package engine

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/solatis/caseminder/internal/rules"
	"github.com/solatis/caseminder/internal/types"
)

/*
 * Action execution.
 *
 * ExecuteRule runs a rule's actions in ascending sequence order against one
 * case. Execution does not halt on the first failure: every action is
 * attempted exactly once and its outcome appended regardless of prior
 * outcomes. Actions are not transactional as a unit, so suppressing later
 * actions because an earlier one failed would hide intended side effects
 * (a tag add failing must not swallow a notification).
 *
 * Error taxonomy: configuration errors (required fields missing), resolution
 * errors (referenced user not resolvable), and sink errors all surface as
 * failed per-action results. Nothing raises past the executor; the worst
 * outcome is an action not firing, visible in the execution entry.
 */

// ExecuteRule executes every action of the rule against the case, appends an
// execution history entry (best-effort), and returns the entry. The rule's
// overall success is the AND of all per-action successes; ErrorMessage holds
// the first failure's text.
func (e *Engine) ExecuteRule(ctx context.Context, rule *types.Rule, c *types.Case, ev *types.TriggerEvent) *types.ExecutionEntry {
	entry := &types.ExecutionEntry{
		ID:             types.NewExecutionID(),
		RuleID:         rule.ID,
		RuleName:       rule.Name,
		TriggerKind:    ev.Kind,
		TriggerPayload: ev.Payload,
		CaseID:         c.ID,
		CaseNumber:     c.Number,
		Success:        true,
		StartedAt:      e.clock.Now(),
		Provenance:     ev.Provenance,
	}

	actions := make([]types.Action, len(rule.Actions))
	copy(actions, rule.Actions)
	sort.SliceStable(actions, func(i, j int) bool { return actions[i].Seq < actions[j].Seq })

	for _, action := range actions {
		result := e.executeAction(ctx, rule, action, c, ev)
		entry.ActionsExecuted = append(entry.ActionsExecuted, result)
		if !result.Success {
			entry.Success = false
			if entry.ErrorMessage == "" {
				entry.ErrorMessage = result.Error
			}
			e.log.Warn().
				Str("rule_id", string(rule.ID)).
				Str("case_id", string(c.ID)).
				Str("action", string(action.Kind)).
				Int("seq", action.Seq).
				Str("error", result.Error).
				Msg("action failed, continuing with remaining actions")
		}
	}

	entry.CompletedAt = e.clock.Now()
	e.record(ctx, entry)
	return entry
}

// executeAction runs one action and converts every failure mode, including
// panics from a malformed configuration, into a failed result.
func (e *Engine) executeAction(ctx context.Context, rule *types.Rule, action types.Action, c *types.Case, ev *types.TriggerEvent) (result types.ActionResult) {
	result = types.ActionResult{Kind: action.Kind, Seq: action.Seq}

	defer func() {
		if r := recover(); r != nil {
			result.Success = false
			result.Error = fmt.Sprintf("action panicked: %v", r)
		}
	}()

	// Bound each action's external-call time so one slow sink cannot stall
	// the whole batch.
	actx, cancel := context.WithTimeout(ctx, e.actionTimeout)
	defer cancel()

	var (
		detail map[string]string
		err    error
	)
	switch cfg := action.Config.(type) {
	case *types.ChangeStatusConfig:
		detail, err = e.changeStatus(actx, c, cfg)
	case *types.AssignUserConfig:
		detail, err = e.assignUser(actx, c, cfg)
	case *types.AddTagConfig:
		detail, err = e.addTag(actx, c, cfg)
	case *types.SendNotificationConfig:
		detail, err = e.sendNotification(actx, rule, c, ev, cfg)
	case *types.CreateTimelineConfig:
		detail, err = e.createTimeline(actx, c, ev, cfg)
	default:
		// Schema drift tolerance: a newer action kind added by tooling not
		// yet supported by this engine instance fails, it does not crash.
		err = fmt.Errorf("%w: %s", types.ErrUnknownActionKind, action.Kind)
	}

	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.Success = true
	result.Detail = detail
	return result
}

// changeStatus atomically updates the case status and commits immediately.
func (e *Engine) changeStatus(ctx context.Context, c *types.Case, cfg *types.ChangeStatusConfig) (map[string]string, error) {
	if cfg.NewStatus == "" {
		return nil, fmt.Errorf("%w: new_status", types.ErrMissingConfigField)
	}
	oldStatus := c.Status
	if err := e.records.UpdateStatus(ctx, c.ID, cfg.NewStatus); err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	c.Status = cfg.NewStatus
	return map[string]string{
		"old_status": oldStatus,
		"new_status": cfg.NewStatus,
	}, nil
}

// assignUser resolves the target user (explicit ID, or the case owner when
// assign_to_owner is set) and commits the assignment.
func (e *Engine) assignUser(ctx context.Context, c *types.Case, cfg *types.AssignUserConfig) (map[string]string, error) {
	target := cfg.UserID
	if target == "" && cfg.AssignToOwner {
		target = c.OwnerID
	}
	if target == "" {
		return nil, types.ErrUnassignable
	}
	if err := e.records.UpdateAssignment(ctx, c.ID, target); err != nil {
		return nil, fmt.Errorf("update assignment: %w", err)
	}
	c.AssigneeID = target
	return map[string]string{"assigned_to": string(target)}, nil
}

// addTag idempotently appends a tag. A duplicate is a no-op, not a failure.
func (e *Engine) addTag(ctx context.Context, c *types.Case, cfg *types.AddTagConfig) (map[string]string, error) {
	if cfg.Tag == "" {
		return nil, fmt.Errorf("%w: tag", types.ErrMissingConfigField)
	}
	added, err := e.records.AppendTagIfAbsent(ctx, c.ID, cfg.Tag)
	if err != nil {
		return nil, fmt.Errorf("append tag: %w", err)
	}
	if added {
		c.Tags = append(c.Tags, cfg.Tag)
	}
	return map[string]string{
		"tag":   cfg.Tag,
		"added": strconv.FormatBool(added),
	}, nil
}

// sendNotification renders both templates, resolves recipients, and hands
// one notification per recipient to the sink. Fails only if zero recipients
// resolve; partial delivery failures are logged per recipient, and the
// action fails outright only when every delivery errored.
func (e *Engine) sendNotification(ctx context.Context, rule *types.Rule, c *types.Case, ev *types.TriggerEvent, cfg *types.SendNotificationConfig) (map[string]string, error) {
	recipients, err := e.resolveRecipients(ctx, c, cfg)
	if err != nil {
		return nil, err
	}
	if len(recipients) == 0 {
		return nil, types.ErrNoRecipients
	}

	tctx := rules.TemplateContext(c, ev.Payload)
	n := Notification{
		Title:    rules.Render(cfg.TitleTemplate, tctx),
		Message:  rules.Render(cfg.MessageTemplate, tctx),
		Priority: cfg.Priority,
		CaseID:   c.ID,
		RuleID:   rule.ID,
	}

	delivered := 0
	var firstErr error
	for _, userID := range recipients {
		if err := e.notifications.Create(ctx, userID, n); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			e.log.Warn().
				Str("case_id", string(c.ID)).
				Str("user_id", string(userID)).
				Err(err).
				Msg("notification delivery failed")
			continue
		}
		delivered++
	}
	if delivered == 0 {
		return nil, fmt.Errorf("deliver notification: %w", firstErr)
	}
	return map[string]string{
		"recipients": strconv.Itoa(len(recipients)),
		"delivered":  strconv.Itoa(delivered),
	}, nil
}

// resolveRecipients maps the recipient type to concrete user IDs. Role and
// user recipient types require recipient_value.
func (e *Engine) resolveRecipients(ctx context.Context, c *types.Case, cfg *types.SendNotificationConfig) ([]types.UserID, error) {
	switch cfg.RecipientType {
	case types.RecipientOwner:
		if c.OwnerID == "" {
			return nil, nil
		}
		return []types.UserID{c.OwnerID}, nil
	case types.RecipientAssignee:
		if c.AssigneeID == "" {
			return nil, nil
		}
		return []types.UserID{c.AssigneeID}, nil
	case types.RecipientRole:
		if cfg.RecipientValue == "" {
			return nil, fmt.Errorf("%w: recipient_value", types.ErrMissingConfigField)
		}
		return e.records.UsersWithRole(ctx, cfg.RecipientValue)
	case types.RecipientUser:
		if cfg.RecipientValue == "" {
			return nil, fmt.Errorf("%w: recipient_value", types.ErrMissingConfigField)
		}
		return []types.UserID{types.UserID(cfg.RecipientValue)}, nil
	default:
		return nil, fmt.Errorf("%w: recipient_type %q", types.ErrMissingConfigField, cfg.RecipientType)
	}
}

// createTimeline renders the description and appends a timeline entry.
// Fails only on sink error.
func (e *Engine) createTimeline(ctx context.Context, c *types.Case, ev *types.TriggerEvent, cfg *types.CreateTimelineConfig) (map[string]string, error) {
	eventType := cfg.EventType
	if eventType == "" {
		eventType = "automation"
	}
	description := rules.Render(cfg.DescriptionTemplate, rules.TemplateContext(c, ev.Payload))
	if err := e.timeline.Append(ctx, c.ID, eventType, description, ev.Provenance, ""); err != nil {
		return nil, fmt.Errorf("append timeline entry: %w", err)
	}
	return map[string]string{"event_type": eventType}, nil
}
