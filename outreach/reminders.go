// ABOUTME: Follow-up reminder sweep over due emails
// ABOUTME: Creates at most one reminder per email per day
package outreach

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/outreach/metrics"
	"github.com/harperreed/outreach/models"
)

const reminderDedupWindow = 24 * time.Hour

// SweepResult reports one reminder sweep.
type SweepResult struct {
	Processed            int `json:"processed"`
	NotificationsCreated int `json:"notificationsCreated"`
}

// SweepReminders creates a follow-up notification for every due email that
// has not been reminded about within the last day.
func (s *Service) SweepReminders(ctx context.Context) (*SweepResult, error) {
	now := s.now()
	due, err := s.ListDue(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list due emails: %w", err)
	}

	result := &SweepResult{Processed: len(due)}
	for _, email := range due {
		exists, err := s.store.RecentNotificationExists(ctx, models.NotificationKindFollowUpDue, email.ID, now.Add(-reminderDedupWindow))
		if err != nil {
			return nil, err
		}
		if exists {
			continue
		}

		n := &models.Notification{
			Kind:      models.NotificationKindFollowUpDue,
			Title:     "Follow-up Reminder",
			Message:   "Time to follow up on your outreach.",
			EmailID:   email.ID,
			ActionURL: "/dashboard/outreach/follow-ups",
		}
		if err := s.store.CreateNotification(ctx, n); err != nil {
			return nil, fmt.Errorf("failed to create notification: %w", err)
		}
		result.NotificationsCreated++
		metrics.RemindersCreated.Inc()
	}

	s.logger.Info("reminder sweep finished", "processed", result.Processed, "created", result.NotificationsCreated)
	return result, nil
}

// RunReminders sweeps every interval until ctx is cancelled.
func (s *Service) RunReminders(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.SweepReminders(ctx); err != nil {
				s.logger.Error("reminder sweep failed", "error", err)
			}
		}
	}
}

func (s *Service) ListNotifications(ctx context.Context, unreadOnly bool) ([]models.Notification, error) {
	return s.store.ListNotifications(ctx, unreadOnly, 0)
}

func (s *Service) MarkNotificationRead(ctx context.Context, id uuid.UUID) error {
	return storeError(s.store.MarkNotificationRead(ctx, id), "Notification not found")
}
