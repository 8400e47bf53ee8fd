package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/solatis/caseminder/internal/core/db"
	"github.com/solatis/caseminder/internal/types"
)

// TimelineStore appends case timeline events. Implements engine.TimelineSink.
type TimelineStore struct {
	q *db.Queries
}

// NewTimelineStore creates a TimelineStore backed by the given query layer.
func NewTimelineStore(q *db.Queries) *TimelineStore {
	return &TimelineStore{q: q}
}

// Append inserts one timeline event.
func (s *TimelineStore) Append(ctx context.Context, caseID types.CaseID, eventType, description, source string, actorID types.UserID) error {
	_, err := s.q.Exec(ctx, "insert-timeline-event",
		uuid.Must(uuid.NewV7()).String(),
		string(caseID), eventType, description, source, string(actorID),
		formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("failed to insert timeline event for case %s: %w", caseID, err)
	}
	return nil
}
