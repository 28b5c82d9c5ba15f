// ABOUTME: Email lifecycle transitions and the follow-up due predicate
// ABOUTME: Patches are applied in memory and persisted by the caller
package outreach

import (
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/harperreed/outreach/models"
)

// EmailPatch is a partial update to a recorded email. Optional fields
// distinguish "absent" from an explicit null.
type EmailPatch struct {
	Status          *string          `json:"status"`
	FollowUpDate    Optional[string] `json:"followUpDate"`
	FollowUpCount   *int             `json:"followUpCount"`
	ReplyReceivedAt Optional[string] `json:"replyReceivedAt"`
	Outcome         Optional[string] `json:"outcome"`
	ReplyNote       *string          `json:"replyNote"`
}

const replyNoteMaxLength = 2000

// ApplyEmailPatch validates patch and applies it to email. On error email is
// left untouched.
func ApplyEmailPatch(email *models.Email, patch EmailPatch, now time.Time, logger *slog.Logger) error {
	next := *email

	if patch.Status != nil {
		status := strings.TrimSpace(*patch.Status)
		if !models.IsValidEmailStatus(status) {
			return BadRequest("Invalid status. Must be one of: %s", strings.Join(models.EmailStatuses, ", "))
		}
		next.Status = status
	}

	if patch.FollowUpDate.Set {
		at, err := optionalTime(patch.FollowUpDate, "followUpDate")
		if err != nil {
			return err
		}
		next.FollowUpDate = at
	}

	if patch.FollowUpCount != nil {
		count := clampFollowUpCount(*patch.FollowUpCount)
		if count != *patch.FollowUpCount && logger != nil {
			logger.Debug("follow-up count clamped", "email_id", email.ID, "requested", *patch.FollowUpCount, "stored", count)
		}
		next.FollowUpCount = count
	}

	if patch.ReplyReceivedAt.Set {
		at, err := optionalTime(patch.ReplyReceivedAt, "replyReceivedAt")
		if err != nil {
			return err
		}
		next.ReplyReceivedAt = at
	}

	if patch.Outcome.Set {
		outcome := strings.TrimSpace(patch.Outcome.Value)
		switch {
		case patch.Outcome.Null || outcome == "":
			next.Outcome = ""
		case models.IsValidOutcome(outcome):
			next.Outcome = outcome
		default:
			return BadRequest("Invalid outcome. Must be one of: %s", strings.Join(models.Outcomes, ", "))
		}
	}

	if patch.ReplyNote != nil {
		note := strings.TrimSpace(*patch.ReplyNote)
		if utf8.RuneCountInString(note) > replyNoteMaxLength {
			return BadRequest("replyNote exceeds maximum length of %d", replyNoteMaxLength)
		}
		next.ReplyNote = note
	}

	// Status side effects run last so a field in the same patch cannot
	// undo them.
	if patch.Status != nil {
		applyStatusEffects(&next, now)
	}
	if next.Status == models.EmailStatusReplied {
		next.FollowUpDate = nil
	}

	*email = next
	return nil
}

func applyStatusEffects(email *models.Email, now time.Time) {
	switch email.Status {
	case models.EmailStatusReplied:
		if email.ReplyReceivedAt == nil {
			at := now
			email.ReplyReceivedAt = &at
		}
	case models.EmailStatusClosed:
		if email.ClosedAt == nil {
			at := now
			email.ClosedAt = &at
		}
	}
}

func optionalTime(v Optional[string], field string) (*time.Time, error) {
	if v.Null || strings.TrimSpace(v.Value) == "" {
		return nil, nil
	}
	at, ok := parseTime(v.Value)
	if !ok {
		return nil, BadRequest("Invalid %s", field)
	}
	return &at, nil
}

func clampFollowUpCount(n int) int {
	if n < 0 {
		return 0
	}
	if n > models.FollowUpCountCeiling {
		return models.FollowUpCountCeiling
	}
	return n
}

// IsDue reports whether email needs a follow-up at now.
func IsDue(email *models.Email, now time.Time, maxFollowUps int) bool {
	return email.Status == models.EmailStatusSent &&
		email.FollowUpDate != nil &&
		!email.FollowUpDate.After(now) &&
		email.FollowUpCount < maxFollowUps
}
