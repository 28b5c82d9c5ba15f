// ABOUTME: Tests for email, draft, portfolio and notification store operations
// ABOUTME: Exercises the follow-up due predicate and draft ordering
package db

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/outreach/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type emailFixture struct {
	company *models.Company
	contact *models.Contact
}

func seedContact(t *testing.T, store *Store) emailFixture {
	t.Helper()
	ctx := context.Background()
	company := newCompany("Acme", "US")
	require.NoError(t, store.CreateCompany(ctx, company))
	contact := newContact(company.ID, "Ann", "ann@acme.com")
	require.NoError(t, store.CreateContact(ctx, contact))
	return emailFixture{company: company, contact: contact}
}

func seedEmail(t *testing.T, store *Store, fx emailFixture, followUp *time.Time, count int) *models.Email {
	t.Helper()
	email := &models.Email{
		ContactID:     fx.contact.ID,
		CompanyID:     fx.company.ID,
		Subject:       "Hello",
		Body:          "Body",
		FollowUpDate:  followUp,
		FollowUpCount: count,
	}
	require.NoError(t, store.CreateEmail(context.Background(), email))
	return email
}

func TestCreateEmailDefaults(t *testing.T) {
	store := setupTestStore(t)
	fx := seedContact(t, store)

	email := seedEmail(t, store, fx, nil, 0)
	assert.Equal(t, models.EmailStatusSent, email.Status)
	assert.False(t, email.SentAt.IsZero())

	loaded, err := store.GetEmailWithRefs(context.Background(), email.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann", loaded.ContactName.String)
	assert.Equal(t, "Acme", loaded.CompanyName.String)
	assert.False(t, loaded.TemplateName.Valid)
	assert.False(t, loaded.TemplateID.Valid)
}

func TestDueEmailsPredicate(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	fx := seedContact(t, store)
	now := time.Now().UTC()

	past := now.Add(-time.Second)
	older := now.Add(-48 * time.Hour)
	future := now.Add(24 * time.Hour)

	due := seedEmail(t, store, fx, &past, 0)
	dueEarlier := seedEmail(t, store, fx, &older, 1)
	seedEmail(t, store, fx, &future, 0)
	seedEmail(t, store, fx, &past, 2)
	seedEmail(t, store, fx, nil, 0)

	replied := seedEmail(t, store, fx, &past, 0)
	replied.Status = models.EmailStatusReplied
	require.NoError(t, store.UpdateEmail(ctx, replied))

	list, err := store.ListDueEmails(ctx, now, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, dueEarlier.ID, list[0].ID, "soonest due first")
	assert.Equal(t, due.ID, list[1].ID)

	count, err := store.CountDueEmails(ctx, now, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// A higher cap admits the email that already has two follow-ups.
	count, err = store.CountDueEmails(ctx, now, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestListEmailsFilters(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	fx := seedContact(t, store)

	first := seedEmail(t, store, fx, nil, 0)
	closed := seedEmail(t, store, fx, nil, 0)
	closed.Status = models.EmailStatusClosed
	require.NoError(t, store.UpdateEmail(ctx, closed))

	byStatus, err := store.ListEmails(ctx, EmailFilter{Status: models.EmailStatusClosed})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, closed.ID, byStatus[0].ID)

	byContact, err := store.ListEmails(ctx, EmailFilter{ContactID: &fx.contact.ID})
	require.NoError(t, err)
	assert.Len(t, byContact, 2)
	assert.Equal(t, closed.ID, byContact[0].ID, "most recently updated first")
	assert.Equal(t, first.ID, byContact[1].ID)
}

func TestDeleteContactGuardedByEmails(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	fx := seedContact(t, store)
	email := seedEmail(t, store, fx, nil, 0)

	assert.ErrorIs(t, store.DeleteContact(ctx, fx.contact.ID), ErrContactHasEmails)
	require.NoError(t, store.DeleteEmail(ctx, email.ID))
	require.NoError(t, store.DeleteContact(ctx, fx.contact.ID))
}

func TestDeleteTemplateDetachesEmails(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	fx := seedContact(t, store)

	tmpl := &models.Template{Name: "Cold", Type: models.IntentCold, Tone: models.ToneProfessional, BodyTemplate: "Hi {{name}}"}
	require.NoError(t, store.CreateTemplate(ctx, tmpl))

	email := &models.Email{
		ContactID:  fx.contact.ID,
		CompanyID:  fx.company.ID,
		TemplateID: uuid.NullUUID{UUID: tmpl.ID, Valid: true},
		Subject:    "Hi",
		Body:       "Body",
	}
	require.NoError(t, store.CreateEmail(ctx, email))

	withRefs, err := store.GetEmailWithRefs(ctx, email.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cold", withRefs.TemplateName.String)

	require.NoError(t, store.DeleteTemplate(ctx, tmpl.ID))
	loaded, err := store.GetEmail(ctx, email.ID)
	require.NoError(t, err)
	assert.False(t, loaded.TemplateID.Valid)
}

func TestListTemplatesFilters(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateTemplate(ctx, &models.Template{Name: "Cold intro", Type: models.IntentCold, Tone: models.ToneFriendly, BodyTemplate: "x"}))
	require.NoError(t, store.CreateTemplate(ctx, &models.Template{Name: "Nudge", Type: models.IntentFollowUp, Tone: models.ToneProfessional, BodyTemplate: "y"}))

	byType, err := store.ListTemplates(ctx, TemplateFilter{Type: models.IntentFollowUp})
	require.NoError(t, err)
	require.Len(t, byType, 1)
	assert.Equal(t, "Nudge", byType[0].Name)

	bySearch, err := store.ListTemplates(ctx, TemplateFilter{Search: "INTRO", Tone: models.ToneFriendly})
	require.NoError(t, err)
	require.Len(t, bySearch, 1)
}

func TestDraftsNewestFirstAndCapped(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	fx := seedContact(t, store)

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	var last *models.Draft
	for i := 0; i < DraftListLimit+5; i++ {
		at := base.Add(time.Duration(i) * time.Minute)
		store.SetClock(func() time.Time { return at })
		last = &models.Draft{ContactID: fx.contact.ID, CompanyID: fx.company.ID, Intent: models.IntentCold, Tone: models.ToneProfessional, Body: "b"}
		require.NoError(t, store.CreateDraft(ctx, last))
	}

	drafts, err := store.ListDrafts(ctx, DraftFilter{ContactID: &fx.contact.ID})
	require.NoError(t, err)
	assert.Len(t, drafts, DraftListLimit)
	assert.Equal(t, last.ID, drafts[0].ID)

	none, err := store.ListDrafts(ctx, DraftFilter{CompanyID: ptrUUID(uuid.New())})
	require.NoError(t, err)
	assert.Empty(t, none)

	require.NoError(t, store.DeleteDraft(ctx, last.ID))
	_, err = store.GetDraft(ctx, last.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPortfolioSelection(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, err := store.GetProfile(ctx)
	assert.ErrorIs(t, err, ErrProfileNotConfigured)

	require.NoError(t, store.SaveProfile(ctx, &models.Profile{FullName: "Sam", Bio: "Builder", MaxFollowUps: 3}))
	profile, err := store.GetProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Sam", profile.FullName)
	assert.Equal(t, models.ToneProfessional, profile.DefaultTone)
	assert.Equal(t, models.DefaultFollowUpGapDays, profile.DefaultFollowUpGapDays)
	assert.Equal(t, 3, profile.MaxFollowUps)

	var published []uuid.UUID
	for i := 0; i < 5; i++ {
		p := &models.Project{Title: "P", Status: models.ProjectStatusPublished, Featured: true, SortOrder: 5 - i}
		require.NoError(t, store.UpsertProject(ctx, p))
		published = append(published, p.ID)
	}
	hidden := &models.Project{Title: "Draft", Status: models.ProjectStatusDraft, Featured: true}
	require.NoError(t, store.UpsertProject(ctx, hidden))

	featured, err := store.FeaturedProjects(ctx, 3)
	require.NoError(t, err)
	require.Len(t, featured, 3)
	assert.Equal(t, 1, featured[0].SortOrder)

	selected, err := store.PublishedProjectsByIDs(ctx, []uuid.UUID{published[0], hidden.ID})
	require.NoError(t, err)
	require.Len(t, selected, 1)
	assert.Equal(t, published[0], selected[0].ID)

	for i := 0; i < 12; i++ {
		require.NoError(t, store.UpsertSkill(ctx, &models.Skill{Name: "S", Featured: i%2 == 0, SortOrder: i}))
	}
	skills, err := store.FeaturedSkills(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, skills, 6)
}

func TestRecentNotificationExists(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	emailID := uuid.New()

	exists, err := store.RecentNotificationExists(ctx, models.NotificationKindFollowUpDue, emailID, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.False(t, exists)

	n := &models.Notification{Kind: models.NotificationKindFollowUpDue, Title: "t", Message: "m", EmailID: emailID}
	require.NoError(t, store.CreateNotification(ctx, n))

	exists, err = store.RecentNotificationExists(ctx, models.NotificationKindFollowUpDue, emailID, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, store.MarkNotificationRead(ctx, n.ID))
	unread, err := store.ListNotifications(ctx, true, 0)
	require.NoError(t, err)
	assert.Empty(t, unread)
}

func TestCountAll(t *testing.T) {
	store := setupTestStore(t)
	fx := seedContact(t, store)
	seedEmail(t, store, fx, nil, 0)

	counts, err := store.CountAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, counts.Companies)
	assert.Equal(t, 1, counts.Contacts)
	assert.Equal(t, 1, counts.Emails)
	assert.Equal(t, 0, counts.Templates)
}

func ptrUUID(id uuid.UUID) *uuid.UUID { return &id }
