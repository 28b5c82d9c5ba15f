// ABOUTME: Notification database operations
// ABOUTME: Stores follow-up reminders and answers the recent-reminder dedup check
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/outreach/models"
)

const notificationColumns = `id, kind, title, message, email_id, action_url, is_read, created_at`

func (s *Store) CreateNotification(ctx context.Context, n *models.Notification) error {
	n.ID = uuid.New()
	n.CreatedAt = s.now()
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO notifications (`+notificationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`), n.ID, n.Kind, n.Title, n.Message, n.EmailID, n.ActionURL, n.Read, n.CreatedAt)
	return err
}

// RecentNotificationExists reports whether a notification of kind for emailID
// was created at or after since.
func (s *Store) RecentNotificationExists(ctx context.Context, kind string, emailID uuid.UUID, since time.Time) (bool, error) {
	var count int
	err := s.db.GetContext(ctx, &count, s.q(`
		SELECT COUNT(*) FROM notifications WHERE kind = ? AND email_id = ? AND created_at >= ?
	`), kind, emailID, since.UTC())
	if err != nil {
		return false, fmt.Errorf("failed to check notifications: %w", err)
	}
	return count > 0, nil
}

func (s *Store) ListNotifications(ctx context.Context, unreadOnly bool, limit int) ([]models.Notification, error) {
	var conds conditions
	if unreadOnly {
		conds.add(`is_read = ?`, false)
	}
	if limit <= 0 {
		limit = 50
	}

	notifications := []models.Notification{}
	query := fmt.Sprintf(`SELECT %s FROM notifications%s ORDER BY created_at DESC LIMIT %d`, notificationColumns, conds.where(), limit)
	if err := s.db.SelectContext(ctx, &notifications, s.q(query), conds.args...); err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

func (s *Store) MarkNotificationRead(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, s.q(`UPDATE notifications SET is_read = ? WHERE id = ?`), true, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
