// Package scheduler drives TIME_BASED rules on a fixed interval and runs
// the daily retention pass for expired notification rows.
package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/solatis/caseminder/internal/engine"
	"github.com/solatis/caseminder/internal/types"
)

/*
 * Scheduling model.
 *
 * The per-minute tick loads enabled TIME_BASED rules, computes the cutoff
 * for each, queries qualifying cases, and invokes the executor directly -
 * bypassing the trigger matcher, since qualification was already established
 * by the query. One execution history entry is recorded per (rule, case)
 * pair regardless of outcome.
 *
 * Overlap policy: at most one tick in flight. A tick that is due while the
 * previous one still runs is skipped (coalesced). A late tick is tolerated
 * within a grace window; beyond it the tick is skipped and logged.
 *
 * Isolation: per-case failures (including panics) are caught and logged at
 * the per-case boundary. One bad case must not abort the remaining cases in
 * the tick, nor the tick itself.
 *
 * Cutoff boundary is inclusive: with status_unchanged_days=7, a case last
 * modified exactly 7 days ago qualifies.
 */

// RefirePolicy decides whether a case that keeps qualifying is re-processed
// on every tick.
type RefirePolicy string

const (
	// RefireAlways re-fires a qualifying case on every tick. This gives
	// reminder semantics: a notification rule keeps nagging while the case
	// stays past threshold.
	RefireAlways RefirePolicy = "always"

	// RefireOnce skips (rule, case) pairs that already have a successful
	// execution in history.
	RefireOnce RefirePolicy = "once"
)

// ValidRefirePolicy reports whether s names a known policy.
func ValidRefirePolicy(s string) bool {
	switch RefirePolicy(s) {
	case RefireAlways, RefireOnce:
		return true
	}
	return false
}

// NotificationPruner deletes expired notification rows. Implemented by the
// notification store.
type NotificationPruner interface {
	PruneNotifications(ctx context.Context, olderThan time.Time) (int64, error)
}

// Scheduler evaluates TIME_BASED rules on a fixed interval.
type Scheduler struct {
	engine    *engine.Engine
	ruleStore engine.RuleStore
	records   engine.RecordStore
	history   engine.HistoryStore
	pruner    NotificationPruner
	clock     engine.Clock
	log       zerolog.Logger

	interval        time.Duration
	grace           time.Duration
	retentionEvery  time.Duration
	retentionWindow time.Duration
	refire          RefirePolicy

	// ticking enforces max one in-flight tick; pruning keeps the daily pass
	// from piling up without ever blocking the minute tick.
	ticking atomic.Bool
	pruning atomic.Bool
}

// Config holds scheduler timing parameters.
type Config struct {
	Interval        time.Duration // per-minute tick period
	Grace           time.Duration // tolerated tick lateness
	RetentionEvery  time.Duration // retention pass period
	RetentionWindow time.Duration // notification age before deletion
	Refire          RefirePolicy
}

// New creates a Scheduler. Zero config fields fall back to production
// defaults (1m interval, 30s grace, daily retention of rows older than 90
// days, refire always).
func New(
	eng *engine.Engine,
	ruleStore engine.RuleStore,
	records engine.RecordStore,
	history engine.HistoryStore,
	pruner NotificationPruner,
	log zerolog.Logger,
	cfg Config,
) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.Grace <= 0 {
		cfg.Grace = 30 * time.Second
	}
	if cfg.RetentionEvery <= 0 {
		cfg.RetentionEvery = 24 * time.Hour
	}
	if cfg.RetentionWindow <= 0 {
		cfg.RetentionWindow = 90 * 24 * time.Hour
	}
	if cfg.Refire == "" {
		cfg.Refire = RefireAlways
	}

	return &Scheduler{
		engine:          eng,
		ruleStore:       ruleStore,
		records:         records,
		history:         history,
		pruner:          pruner,
		clock:           eng.Clock(),
		log:             log,
		interval:        cfg.Interval,
		grace:           cfg.Grace,
		retentionEvery:  cfg.RetentionEvery,
		retentionWindow: cfg.RetentionWindow,
		refire:          cfg.Refire,
	}
}

// Run blocks until the context is cancelled, firing the rule tick on every
// interval and the retention pass on its own slower cadence. The retention
// pass runs in its own goroutine so it never blocks the rule tick.
func (s *Scheduler) Run(ctx context.Context) error {
	s.log.Info().
		Dur("interval", s.interval).
		Str("refire", string(s.refire)).
		Msg("scheduler starting")

	tick := time.NewTicker(s.interval)
	defer tick.Stop()
	retention := time.NewTicker(s.retentionEvery)
	defer retention.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("scheduler stopping: context cancelled")
			return ctx.Err()
		case due := <-tick.C:
			s.Tick(ctx, due)
		case <-retention.C:
			go s.prune(ctx)
		}
	}
}

// Tick runs one scheduling pass for the tick that was due at the given time.
// Safe to call concurrently: overlapping calls are coalesced into the
// in-flight one.
func (s *Scheduler) Tick(ctx context.Context, due time.Time) {
	if !s.ticking.CompareAndSwap(false, true) {
		s.log.Debug().Time("due", due).Msg("previous tick still running, skipping")
		return
	}
	defer s.ticking.Store(false)

	if lag := s.clock.Now().Sub(due); lag > s.grace {
		s.log.Warn().
			Time("due", due).
			Dur("lag", lag).
			Msg("tick late beyond grace window, skipping")
		return
	}

	loaded, err := s.ruleStore.ListEnabledByKind(ctx, types.TriggerKindTimeBased)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to load time-based rules")
		return
	}

	for _, rule := range loaded {
		s.runRule(ctx, rule)
	}
}

// runRule queries qualifying cases for one TIME_BASED rule and executes it
// against each.
func (s *Scheduler) runRule(ctx context.Context, rule *types.Rule) {
	cfg, ok := rule.Trigger.(*types.TimeTrigger)
	if !ok {
		s.log.Warn().Str("rule_id", string(rule.ID)).Msg("time-based rule without time trigger config, skipping")
		return
	}

	now := s.clock.Now()

	var (
		cases      []*types.Case
		provenance string
		payloadKey string
		err        error
	)
	switch {
	case cfg.StatusUnchangedDays > 0:
		cutoff := now.AddDate(0, 0, -cfg.StatusUnchangedDays)
		cases, err = s.records.FindStatusUnchangedSince(ctx, cutoff, cfg.FromStatus, rule.ScopeCodes, rule.CaseTypes)
		provenance = fmt.Sprintf("scheduler:status_unchanged_%dd", cfg.StatusUnchangedDays)
		payloadKey = types.PayloadDaysUnchanged
	case cfg.CaseOpenDays > 0:
		cutoff := now.AddDate(0, 0, -cfg.CaseOpenDays)
		cases, err = s.records.FindOpenSince(ctx, cutoff, rule.ScopeCodes, rule.CaseTypes)
		provenance = fmt.Sprintf("scheduler:case_open_%dd", cfg.CaseOpenDays)
		payloadKey = types.PayloadDaysOpen
	default:
		s.log.Warn().Str("rule_id", string(rule.ID)).Msg("time trigger without day threshold, skipping")
		return
	}
	if err != nil {
		s.log.Error().Err(err).Str("rule_id", string(rule.ID)).Msg("failed to query qualifying cases")
		return
	}

	for _, c := range cases {
		s.runCase(ctx, rule, c, payloadKey, provenance, now)
	}
}

// runCase executes one (rule, case) pair. This is the per-record isolation
// boundary: errors and panics are logged here and never abort the batch.
func (s *Scheduler) runCase(ctx context.Context, rule *types.Rule, c *types.Case, payloadKey, provenance string, now time.Time) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().
				Str("rule_id", string(rule.ID)).
				Str("case_id", string(c.ID)).
				Interface("panic", r).
				Msg("case processing panicked, continuing tick")
		}
	}()

	if s.refire == RefireOnce {
		fired, err := s.history.HasSuccess(ctx, rule.ID, c.ID)
		if err != nil {
			// Fire rather than silently drop: a missed dedupe re-sends a
			// reminder, a missed fire loses the side effect entirely.
			s.log.Warn().Err(err).
				Str("rule_id", string(rule.ID)).
				Str("case_id", string(c.ID)).
				Msg("refire-once history lookup failed, firing anyway")
		} else if fired {
			return
		}
	}

	var days int
	if payloadKey == types.PayloadDaysUnchanged {
		days = int(now.Sub(c.UpdatedAt).Hours() / 24)
	} else {
		days = int(now.Sub(c.CreatedAt).Hours() / 24)
	}

	ev := &types.TriggerEvent{
		Kind:       types.TriggerKindTimeBased,
		Payload:    map[string]string{payloadKey: fmt.Sprintf("%d", days)},
		Case:       c,
		Provenance: provenance,
	}

	entry := s.engine.ExecuteRule(ctx, rule, c, ev)
	if !entry.Success {
		s.log.Warn().
			Str("rule_id", string(rule.ID)).
			Str("case_id", string(c.ID)).
			Str("error", entry.ErrorMessage).
			Msg("scheduled rule execution failed")
	}
}

// prune deletes notification rows older than the retention window. Runs on
// its own cadence and must not block the rule tick.
func (s *Scheduler) prune(ctx context.Context) {
	if !s.pruning.CompareAndSwap(false, true) {
		return
	}
	defer s.pruning.Store(false)

	olderThan := s.clock.Now().Add(-s.retentionWindow)
	deleted, err := s.pruner.PruneNotifications(ctx, olderThan)
	if err != nil {
		s.log.Error().Err(err).Msg("notification retention pass failed")
		return
	}
	if deleted > 0 {
		s.log.Info().Int64("deleted", deleted).Msg("pruned expired notifications")
	}
}
