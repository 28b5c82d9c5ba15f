// ABOUTME: Tests for the follow-up reminder sweep and portfolio loading
// ABOUTME: Checks per-day dedup and idempotent YAML upserts
package outreach

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/harperreed/outreach/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepRemindersDedupsPerDay(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	_, err := f.svc.RecordEmail(ctx, EmailInput{ContactID: f.contact.ID.String(), Subject: "s", Body: "b", FollowUpDate: "2025-06-01"})
	require.NoError(t, err)
	_, err = f.svc.RecordEmail(ctx, EmailInput{ContactID: f.contact.ID.String(), Subject: "s", Body: "b", FollowUpDate: "2025-07-01"})
	require.NoError(t, err)

	result, err := f.svc.SweepReminders(ctx)
	require.NoError(t, err)
	assert.Equal(t, &SweepResult{Processed: 1, NotificationsCreated: 1}, result)

	result, err = f.svc.SweepReminders(ctx)
	require.NoError(t, err)
	assert.Equal(t, &SweepResult{Processed: 1, NotificationsCreated: 0}, result)

	notifications, err := f.svc.ListNotifications(ctx, true)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, "Follow-up Reminder", notifications[0].Title)
	assert.Equal(t, models.NotificationKindFollowUpDue, notifications[0].Kind)

	require.NoError(t, f.svc.MarkNotificationRead(ctx, notifications[0].ID))
	unread, err := f.svc.ListNotifications(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, unread)
}

func TestSweepRemindersAgainAfterADay(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	_, err := f.svc.RecordEmail(ctx, EmailInput{ContactID: f.contact.ID.String(), Subject: "s", Body: "b", FollowUpDate: "2025-06-01"})
	require.NoError(t, err)

	// Notifications are stamped by the store clock.
	first := time.Now().UTC().Add(-25 * time.Hour)
	f.store.SetClock(func() time.Time { return first })
	_, err = f.svc.SweepReminders(ctx)
	require.NoError(t, err)

	f.store.SetClock(func() time.Time { return time.Now().UTC() })
	f.svc.SetClock(func() time.Time { return time.Now().UTC() })
	result, err := f.svc.SweepReminders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.NotificationsCreated)
}

const portfolioYAML = `
profile:
  full_name: Sam Rivera
  bio: Backend engineer
  default_tone: friendly
  max_follow_ups: 1
projects:
  - title: Ledger
    short_description: Double-entry API
    technologies: [Go, Postgres, Go]
    featured: true
    order: 1
  - title: Notes
    status: draft
skills:
  - name: Go
    featured: true
`

func TestLoadPortfolioIsIdempotent(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	summary, err := f.svc.LoadPortfolio(ctx, strings.NewReader(portfolioYAML))
	require.NoError(t, err)
	assert.Equal(t, &PortfolioSummary{Profile: true, Projects: 2, Skills: 1}, summary)

	_, err = f.svc.LoadPortfolio(ctx, strings.NewReader(portfolioYAML))
	require.NoError(t, err)

	projects, err := f.store.FeaturedProjects(ctx, 10)
	require.NoError(t, err)
	require.Len(t, projects, 1, "reloading does not duplicate")
	assert.Equal(t, models.StringList{"Go", "Postgres"}, projects[0].Technologies)

	profile, err := f.store.GetProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.ToneFriendly, profile.DefaultTone)
	assert.Equal(t, 1, profile.MaxFollowUps)
}

func TestLoadPortfolioRejectsBadProfile(t *testing.T) {
	f := setupService(t)
	_, err := f.svc.LoadPortfolio(context.Background(), strings.NewReader("profile:\n  full_name: X\n  max_follow_ups: 3\n"))
	assert.Equal(t, "max_follow_ups must be between 0 and 2", err.Error())
}
