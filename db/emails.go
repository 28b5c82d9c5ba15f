// ABOUTME: Outreach email database operations
// ABOUTME: Handles sent-email records, joined reference lookups and the follow-up due query
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/outreach/models"
)

var emailColumnNames = []string{
	"id", "contact_id", "company_id", "template_id", "subject", "body", "status", "sent_at",
	"follow_up_date", "follow_up_count", "reply_received_at", "outcome", "reply_note", "closed_at",
	"created_at", "updated_at",
}

var (
	emailColumns       = strings.Join(emailColumnNames, ", ")
	emailJoinedColumns = "e." + strings.Join(emailColumnNames, ", e.") + `,
		c.name AS contact_name, c.email AS contact_email, co.name AS company_name, t.name AS template_name`
)

const emailJoins = `
	FROM emails e
	LEFT JOIN contacts c ON c.id = e.contact_id
	LEFT JOIN companies co ON co.id = e.company_id
	LEFT JOIN templates t ON t.id = e.template_id`

// EmailFilter narrows ListEmails. When FollowUpDue is set, Now and
// MaxFollowUps define the due predicate and results are ordered soonest due first.
type EmailFilter struct {
	Status       string
	ContactID    *uuid.UUID
	CompanyID    *uuid.UUID
	FollowUpDue  bool
	Now          time.Time
	MaxFollowUps int
	Limit        int
}

func (s *Store) CreateEmail(ctx context.Context, email *models.Email) error {
	email.ID = uuid.New()
	now := s.now()
	email.CreatedAt = now
	email.UpdatedAt = now
	if email.Status == "" {
		email.Status = models.EmailStatusSent
	}
	if email.SentAt.IsZero() {
		email.SentAt = now
	}

	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO emails (`+emailColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), email.ID, email.ContactID, email.CompanyID, email.TemplateID, email.Subject, email.Body, email.Status,
		email.SentAt.UTC(), utcPtr(email.FollowUpDate), email.FollowUpCount, utcPtr(email.ReplyReceivedAt),
		email.Outcome, email.ReplyNote, utcPtr(email.ClosedAt), email.CreatedAt, email.UpdatedAt)
	return err
}

func (s *Store) GetEmail(ctx context.Context, id uuid.UUID) (*models.Email, error) {
	var email models.Email
	err := s.db.GetContext(ctx, &email, s.q(`SELECT `+emailColumns+` FROM emails WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &email, nil
}

// GetEmailWithRefs loads an email with the names of its contact, company and template.
func (s *Store) GetEmailWithRefs(ctx context.Context, id uuid.UUID) (*models.EmailWithRefs, error) {
	var email models.EmailWithRefs
	err := s.db.GetContext(ctx, &email, s.q(`SELECT `+emailJoinedColumns+emailJoins+` WHERE e.id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &email, nil
}

func (s *Store) ListEmails(ctx context.Context, filter EmailFilter) ([]models.EmailWithRefs, error) {
	var conds conditions
	if filter.Status != "" {
		conds.add(`e.status = ?`, filter.Status)
	}
	if filter.ContactID != nil {
		conds.add(`e.contact_id = ?`, *filter.ContactID)
	}
	if filter.CompanyID != nil {
		conds.add(`e.company_id = ?`, *filter.CompanyID)
	}

	order := ` ORDER BY e.updated_at DESC`
	if filter.FollowUpDue {
		addDueConditions(&conds, filter.Now, filter.MaxFollowUps)
		order = ` ORDER BY e.follow_up_date ASC`
	}

	query := `SELECT ` + emailJoinedColumns + emailJoins + conds.where() + order
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	emails := []models.EmailWithRefs{}
	if err := s.db.SelectContext(ctx, &emails, s.q(query), conds.args...); err != nil {
		return nil, fmt.Errorf("failed to list emails: %w", err)
	}
	return emails, nil
}

// ListDueEmails returns emails awaiting a follow-up at now, soonest due first.
func (s *Store) ListDueEmails(ctx context.Context, now time.Time, maxFollowUps int) ([]models.EmailWithRefs, error) {
	return s.ListEmails(ctx, EmailFilter{FollowUpDue: true, Now: now, MaxFollowUps: maxFollowUps})
}

// CountDueEmails counts emails matching the same predicate as ListDueEmails.
func (s *Store) CountDueEmails(ctx context.Context, now time.Time, maxFollowUps int) (int, error) {
	var conds conditions
	addDueConditions(&conds, now, maxFollowUps)
	var count int
	if err := s.db.GetContext(ctx, &count, s.q(`SELECT COUNT(*) FROM emails e`+conds.where()), conds.args...); err != nil {
		return 0, fmt.Errorf("failed to count due emails: %w", err)
	}
	return count, nil
}

func addDueConditions(conds *conditions, now time.Time, maxFollowUps int) {
	if maxFollowUps <= 0 {
		maxFollowUps = models.DefaultMaxFollowUps
	}
	conds.add(`e.status = ?`, models.EmailStatusSent)
	conds.add(`e.follow_up_date IS NOT NULL`)
	conds.add(`e.follow_up_date <= ?`, now.UTC())
	conds.add(`e.follow_up_count < ?`, maxFollowUps)
}

// UpdateEmail persists every mutable field of email.
func (s *Store) UpdateEmail(ctx context.Context, email *models.Email) error {
	email.UpdatedAt = s.now()
	res, err := s.db.ExecContext(ctx, s.q(`
		UPDATE emails
		SET template_id = ?, subject = ?, body = ?, status = ?, sent_at = ?, follow_up_date = ?, follow_up_count = ?,
			reply_received_at = ?, outcome = ?, reply_note = ?, closed_at = ?, updated_at = ?
		WHERE id = ?
	`), email.TemplateID, email.Subject, email.Body, email.Status, email.SentAt.UTC(), utcPtr(email.FollowUpDate),
		email.FollowUpCount, utcPtr(email.ReplyReceivedAt), email.Outcome, email.ReplyNote, utcPtr(email.ClosedAt),
		email.UpdatedAt, email.ID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (s *Store) DeleteEmail(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM emails WHERE id = ?`), id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func utcPtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC()
}
