package engine

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/solatis/caseminder/internal/rules"
	"github.com/solatis/caseminder/internal/types"
)

// DefaultActionTimeout bounds each action's external-call time so one slow
// sink cannot stall a whole scheduler batch.
const DefaultActionTimeout = 10 * time.Second

// Engine wires the trigger matcher and action executor to their sinks.
// Constructed once at process start and shared by the event-driven entry
// points and the scheduler; all dependencies are explicit so tests can
// substitute doubles.
type Engine struct {
	ruleStore     RuleStore
	records       RecordStore
	notifications NotificationSink
	timeline      TimelineSink
	history       HistoryStore
	clock         Clock
	log           zerolog.Logger
	actionTimeout time.Duration
}

// Option configures optional engine parameters.
type Option func(*Engine)

// WithClock substitutes the time source. Tests use a fixed clock for
// deterministic history timestamps.
func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithActionTimeout bounds each individual action's execution time.
func WithActionTimeout(d time.Duration) Option {
	return func(e *Engine) { e.actionTimeout = d }
}

// New creates an Engine with the given dependencies.
func New(
	ruleStore RuleStore,
	records RecordStore,
	notifications NotificationSink,
	timeline TimelineSink,
	history HistoryStore,
	log zerolog.Logger,
	opts ...Option,
) *Engine {
	e := &Engine{
		ruleStore:     ruleStore,
		records:       records,
		notifications: notifications,
		timeline:      timeline,
		history:       history,
		clock:         SystemClock(),
		log:           log,
		actionTimeout: DefaultActionTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Clock returns the engine's time source. The scheduler shares it so cutoffs
// and history timestamps agree.
func (e *Engine) Clock() Clock { return e.clock }

// NewStatusChangeEvent builds the trigger event for a status transition.
func NewStatusChangeEvent(c *types.Case, fromStatus, toStatus, provenance string) *types.TriggerEvent {
	return &types.TriggerEvent{
		Kind: types.TriggerKindStatusChange,
		Payload: map[string]string{
			types.PayloadFromStatus: fromStatus,
			types.PayloadToStatus:   toStatus,
		},
		Case:       c,
		Provenance: provenance,
	}
}

// NewDomainEvent builds the trigger event for a named domain event.
func NewDomainEvent(c *types.Case, eventType, provenance string) *types.TriggerEvent {
	return &types.TriggerEvent{
		Kind:       types.TriggerKindEvent,
		Payload:    map[string]string{types.PayloadEventType: eventType},
		Case:       c,
		Provenance: provenance,
	}
}

// NewConditionEvent builds the trigger event CONDITION rules are matched
// against. Callers emit one after any case mutation so field-condition rules
// get a chance to fire.
func NewConditionEvent(c *types.Case, provenance string) *types.TriggerEvent {
	return &types.TriggerEvent{
		Kind:       types.TriggerKindCondition,
		Payload:    map[string]string{},
		Case:       c,
		Provenance: provenance,
	}
}

// HandleEvent runs the event-driven path: select matching enabled rules,
// execute them in ascending priority order (ties by creation time), and
// return one execution entry per fired rule. Matching and execution happen
// inline relative to whatever mutated the case; nothing is queued.
func (e *Engine) HandleEvent(ctx context.Context, ev *types.TriggerEvent) ([]*types.ExecutionEntry, error) {
	loaded, err := e.ruleStore.ListEnabled(ctx)
	if err != nil {
		return nil, err
	}

	var matched []*types.Rule
	for _, rule := range loaded {
		if rules.Matches(rule, ev) {
			matched = append(matched, rule)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].Priority != matched[j].Priority {
			return matched[i].Priority < matched[j].Priority
		}
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})

	entries := make([]*types.ExecutionEntry, 0, len(matched))
	for _, rule := range matched {
		entries = append(entries, e.ExecuteRule(ctx, rule, ev.Case, ev))
	}
	return entries, nil
}
