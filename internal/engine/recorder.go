package engine

import (
	"context"

	"github.com/solatis/caseminder/internal/types"
)

// record persists an execution history entry. History is best-effort
// observability, not a commit gate: a write failure is logged and swallowed
// so the already-applied action side effects are unaffected. No synchronous
// retry.
func (e *Engine) record(ctx context.Context, entry *types.ExecutionEntry) {
	if err := e.history.Append(ctx, entry); err != nil {
		e.log.Warn().
			Str("rule_id", string(entry.RuleID)).
			Str("case_id", string(entry.CaseID)).
			Str("provenance", entry.Provenance).
			Err(err).
			Msg("failed to write execution history entry")
	}
}
