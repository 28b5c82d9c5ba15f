// ABOUTME: Tests for email recording, lifecycle patches and the due predicate
// ABOUTME: Drives the service clock so due checks are deterministic
package outreach

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/outreach/db"
	"github.com/harperreed/outreach/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordEmail(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	email, err := f.svc.RecordEmail(ctx, EmailInput{
		ContactID:    f.contact.ID.String(),
		TemplateID:   uuid.NewString(),
		Subject:      " Hello ",
		Body:         "Body",
		FollowUpDate: "2025-06-09",
	})
	require.NoError(t, err)
	assert.Equal(t, f.company.ID, email.CompanyID, "company comes from the contact")
	assert.Equal(t, models.EmailStatusSent, email.Status)
	assert.True(t, email.SentAt.Equal(f.now))
	assert.Equal(t, "Hello", email.Subject)
	assert.False(t, email.TemplateID.Valid, "unknown template is dropped")
	require.NotNil(t, email.FollowUpDate)

	contact, err := f.svc.GetContact(ctx, f.contact.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ContactStatusContacted, contact.Status)
	require.NotNil(t, contact.LastContactedAt)
}

func TestRecordEmailValidation(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()
	id := f.contact.ID.String()

	tests := []struct {
		name    string
		input   EmailInput
		status  int
		message string
	}{
		{"bad contact id", EmailInput{ContactID: "x", Subject: "s", Body: "b"}, http.StatusBadRequest, "Invalid contactId"},
		{"missing subject", EmailInput{ContactID: id, Body: "b"}, http.StatusBadRequest, "Subject is required"},
		{"missing body", EmailInput{ContactID: id, Subject: "s"}, http.StatusBadRequest, "Body is required"},
		{"unknown contact", EmailInput{ContactID: uuid.NewString(), Subject: "s", Body: "b"}, http.StatusNotFound, "Contact not found"},
		{"bad sentAt", EmailInput{ContactID: id, Subject: "s", Body: "b", SentAt: "yesterday"}, http.StatusBadRequest, "Invalid sentAt"},
		{"bad followUpDate", EmailInput{ContactID: id, Subject: "s", Body: "b", FollowUpDate: "soon"}, http.StatusBadRequest, "Invalid followUpDate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.RecordEmail(ctx, tt.input)
			assert.Equal(t, tt.status, statusOf(t, err))
			assert.Equal(t, tt.message, err.Error())
		})
	}
}

func TestApplyEmailPatchTransitions(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	followUp := now.Add(48 * time.Hour)

	email := &models.Email{Status: models.EmailStatusSent, FollowUpDate: &followUp}
	replied := models.EmailStatusReplied
	require.NoError(t, ApplyEmailPatch(email, EmailPatch{Status: &replied}, now, nil))
	assert.Nil(t, email.FollowUpDate, "a reply clears the follow-up date")
	require.NotNil(t, email.ReplyReceivedAt)
	assert.True(t, email.ReplyReceivedAt.Equal(now))

	later := now.Add(time.Hour)
	require.NoError(t, ApplyEmailPatch(email, EmailPatch{Status: &replied}, later, nil))
	assert.True(t, email.ReplyReceivedAt.Equal(now), "existing reply time is kept")

	closed := models.EmailStatusClosed
	require.NoError(t, ApplyEmailPatch(email, EmailPatch{Status: &closed, Outcome: Some("positive")}, now, nil))
	require.NotNil(t, email.ClosedAt)
	assert.Equal(t, models.OutcomePositive, email.Outcome)
}

func TestApplyEmailPatchReplyWinsOverFollowUpDate(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	email := &models.Email{Status: models.EmailStatusSent}

	replied := models.EmailStatusReplied
	require.NoError(t, ApplyEmailPatch(email, EmailPatch{Status: &replied, FollowUpDate: Some("2025-06-09")}, now, nil))
	assert.Equal(t, models.EmailStatusReplied, email.Status)
	assert.Nil(t, email.FollowUpDate)
	require.NotNil(t, email.ReplyReceivedAt)

	require.NoError(t, ApplyEmailPatch(email, EmailPatch{FollowUpDate: Some("2025-06-10")}, now, nil))
	assert.Nil(t, email.FollowUpDate, "a replied email never carries a follow-up date")
}

func TestApplyEmailPatchReplyNoteCountsRunes(t *testing.T) {
	now := time.Now().UTC()
	email := &models.Email{Status: models.EmailStatusSent}

	note := strings.Repeat("é", replyNoteMaxLength)
	require.NoError(t, ApplyEmailPatch(email, EmailPatch{ReplyNote: &note}, now, nil))
	assert.Equal(t, note, email.ReplyNote)

	tooLong := note + "é"
	err := ApplyEmailPatch(email, EmailPatch{ReplyNote: &tooLong}, now, nil)
	assert.Equal(t, http.StatusBadRequest, StatusOf(err))
}

func TestRecordEmailWithStartingStatusRunsTransition(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	email, err := f.svc.RecordEmail(ctx, EmailInput{
		ContactID:    f.contact.ID.String(),
		Subject:      "Re: hello",
		Body:         "Thanks",
		Status:       models.EmailStatusReplied,
		FollowUpDate: "2025-06-09",
	})
	require.NoError(t, err)
	assert.Equal(t, models.EmailStatusReplied, email.Status)
	assert.Nil(t, email.FollowUpDate)
	require.NotNil(t, email.ReplyReceivedAt)
	assert.True(t, email.ReplyReceivedAt.Equal(f.now))

	closed, err := f.svc.RecordEmail(ctx, EmailInput{ContactID: f.contact.ID.String(), Subject: "s", Body: "b", Status: models.EmailStatusClosed})
	require.NoError(t, err)
	require.NotNil(t, closed.ClosedAt)

	_, err = f.svc.RecordEmail(ctx, EmailInput{ContactID: f.contact.ID.String(), Subject: "s", Body: "b", Status: "bounced"})
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
}

func TestApplyEmailPatchRejectsAndLeavesEmailUntouched(t *testing.T) {
	now := time.Now().UTC()
	email := &models.Email{Status: models.EmailStatusSent, ReplyNote: "keep"}

	bogus := "bounced"
	err := ApplyEmailPatch(email, EmailPatch{Status: &bogus}, now, nil)
	assert.Equal(t, "Invalid status. Must be one of: sent, replied, no_response, closed", err.Error())

	note := ""
	err = ApplyEmailPatch(email, EmailPatch{ReplyNote: &note, FollowUpDate: Some("not a date")}, now, nil)
	assert.Equal(t, "Invalid followUpDate", err.Error())
	assert.Equal(t, "keep", email.ReplyNote)

	err = ApplyEmailPatch(email, EmailPatch{Outcome: Some("great")}, now, nil)
	assert.Equal(t, http.StatusBadRequest, StatusOf(err))
}

func TestApplyEmailPatchClampsAndClears(t *testing.T) {
	now := time.Now().UTC()
	at := now
	email := &models.Email{Status: models.EmailStatusSent, FollowUpDate: &at, ReplyNote: "note"}

	high := 9
	require.NoError(t, ApplyEmailPatch(email, EmailPatch{FollowUpCount: &high}, now, nil))
	assert.Equal(t, 2, email.FollowUpCount)

	low := -3
	require.NoError(t, ApplyEmailPatch(email, EmailPatch{FollowUpCount: &low}, now, nil))
	assert.Equal(t, 0, email.FollowUpCount)

	empty := ""
	require.NoError(t, ApplyEmailPatch(email, EmailPatch{FollowUpDate: Null[string](), ReplyNote: &empty}, now, nil))
	assert.Nil(t, email.FollowUpDate)
	assert.Empty(t, email.ReplyNote)
}

func TestIsDue(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	tests := []struct {
		name  string
		email models.Email
		want  bool
	}{
		{"due", models.Email{Status: models.EmailStatusSent, FollowUpDate: &past}, true},
		{"exactly now", models.Email{Status: models.EmailStatusSent, FollowUpDate: &now}, true},
		{"future", models.Email{Status: models.EmailStatusSent, FollowUpDate: &future}, false},
		{"no date", models.Email{Status: models.EmailStatusSent}, false},
		{"replied", models.Email{Status: models.EmailStatusReplied, FollowUpDate: &past}, false},
		{"at cap", models.Email{Status: models.EmailStatusSent, FollowUpDate: &past, FollowUpCount: 2}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDue(&tt.email, now, 2))
		})
	}
}

func TestDueSetGrowsWithTime(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	for _, days := range []string{"2025-06-03", "2025-06-05"} {
		_, err := f.svc.RecordEmail(ctx, EmailInput{ContactID: f.contact.ID.String(), Subject: "s", Body: "b", FollowUpDate: days})
		require.NoError(t, err)
	}

	var sizes []int
	for _, at := range []time.Time{f.now, f.now.AddDate(0, 0, 2), f.now.AddDate(0, 0, 4)} {
		at := at
		f.svc.SetClock(func() time.Time { return at })
		due, err := f.svc.ListDue(ctx)
		require.NoError(t, err)
		sizes = append(sizes, len(due))
	}
	assert.Equal(t, []int{0, 1, 2}, sizes)

	filtered, err := f.svc.ListEmails(ctx, db.EmailFilter{FollowUpDue: true})
	require.NoError(t, err)
	assert.Len(t, filtered, 2)
}

func TestUpdateAndDeleteEmail(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	email, err := f.svc.RecordEmail(ctx, EmailInput{ContactID: f.contact.ID.String(), Subject: "s", Body: "b"})
	require.NoError(t, err)

	noResponse := models.EmailStatusNoResponse
	updated, err := f.svc.UpdateEmail(ctx, email.ID, EmailPatch{Status: &noResponse})
	require.NoError(t, err)
	assert.Equal(t, models.EmailStatusNoResponse, updated.Status)

	withRefs, err := f.svc.GetEmail(ctx, email.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann Lee", withRefs.ContactName.String)

	require.NoError(t, f.svc.DeleteEmail(ctx, email.ID))
	err = f.svc.DeleteEmail(ctx, email.ID)
	assert.Equal(t, "Outreach email not found", err.Error())
}
