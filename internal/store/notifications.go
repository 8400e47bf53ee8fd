package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/solatis/caseminder/internal/core/db"
	"github.com/solatis/caseminder/internal/engine"
	"github.com/solatis/caseminder/internal/types"
)

// NotificationStore persists notifications. Implements
// engine.NotificationSink and scheduler.NotificationPruner.
type NotificationStore struct {
	q *db.Queries
}

// NewNotificationStore creates a NotificationStore backed by the given
// query layer.
func NewNotificationStore(q *db.Queries) *NotificationStore {
	return &NotificationStore{q: q}
}

// Create inserts one notification row for one recipient.
func (s *NotificationStore) Create(ctx context.Context, userID types.UserID, n engine.Notification) error {
	_, err := s.q.Exec(ctx, "insert-notification",
		uuid.Must(uuid.NewV7()).String(),
		string(userID), n.Title, n.Message, n.Priority,
		string(n.CaseID), string(n.RuleID),
		formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("failed to insert notification for user %s: %w", userID, err)
	}
	return nil
}

// PruneNotifications deletes rows created before olderThan and returns the
// number deleted.
func (s *NotificationStore) PruneNotifications(ctx context.Context, olderThan time.Time) (int64, error) {
	res, err := s.q.Exec(ctx, "prune-notifications", formatTime(olderThan))
	if err != nil {
		return 0, fmt.Errorf("failed to prune notifications: %w", err)
	}
	return res.RowsAffected()
}
