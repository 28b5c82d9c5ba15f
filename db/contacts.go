// ABOUTME: Contact database operations
// ABOUTME: Handles CRUD, email identity lookups, star toggles and the atomic import insert
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/outreach/models"
)

const contactColumns = `id, company_id, name, email, role_title, linkedin_url, notes, status, last_contacted_at, starred, created_at, updated_at`

// ContactFilter narrows ListContacts.
type ContactFilter struct {
	Search    string
	Status    string
	CompanyID *uuid.UUID
	Starred   *bool
	Limit     int
}

func (s *Store) CreateContact(ctx context.Context, contact *models.Contact) error {
	s.prepareNewContact(contact)
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO contacts (id, company_id, name, email, email_key, role_title, linkedin_url, notes, status, last_contacted_at, starred, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), contact.ID, contact.CompanyID, contact.Name, contact.Email, contact.IdentityKey(), contact.RoleTitle,
		contact.LinkedInURL, contact.Notes, contact.Status, contact.LastContactedAt, contact.Starred,
		contact.CreatedAt, contact.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrContactExists
	}
	return err
}

// InsertContactIfAbsent inserts the contact unless its email is already taken.
// It reports whether a row was created.
func (s *Store) InsertContactIfAbsent(ctx context.Context, contact *models.Contact) (bool, error) {
	s.prepareNewContact(contact)
	res, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO contacts (id, company_id, name, email, email_key, role_title, linkedin_url, notes, status, last_contacted_at, starred, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (email_key) DO NOTHING
	`), contact.ID, contact.CompanyID, contact.Name, contact.Email, contact.IdentityKey(), contact.RoleTitle,
		contact.LinkedInURL, contact.Notes, contact.Status, contact.LastContactedAt, contact.Starred,
		contact.CreatedAt, contact.UpdatedAt)
	if err != nil {
		return false, fmt.Errorf("failed to insert contact: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *Store) prepareNewContact(contact *models.Contact) {
	contact.ID = uuid.New()
	now := s.now()
	contact.CreatedAt = now
	contact.UpdatedAt = now
	if contact.Status == "" {
		contact.Status = models.ContactStatusNew
	}
}

func (s *Store) GetContact(ctx context.Context, id uuid.UUID) (*models.Contact, error) {
	var contact models.Contact
	err := s.db.GetContext(ctx, &contact, s.q(`SELECT `+contactColumns+` FROM contacts WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

// FindContactByEmail matches case-insensitively across all companies.
func (s *Store) FindContactByEmail(ctx context.Context, email string) (*models.Contact, error) {
	var contact models.Contact
	err := s.db.GetContext(ctx, &contact, s.q(`SELECT `+contactColumns+` FROM contacts WHERE email_key = ?`), models.NormalizeKey(email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

func (s *Store) ListContacts(ctx context.Context, filter ContactFilter) ([]models.Contact, error) {
	var conds conditions
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		conds.add(`(LOWER(name) LIKE ? OR email_key LIKE ? OR LOWER(role_title) LIKE ? OR LOWER(notes) LIKE ?)`,
			pattern, pattern, pattern, pattern)
	}
	if filter.Status != "" {
		conds.add(`status = ?`, filter.Status)
	}
	if filter.CompanyID != nil {
		conds.add(`company_id = ?`, *filter.CompanyID)
	}
	if filter.Starred != nil {
		conds.add(`starred = ?`, *filter.Starred)
	}

	query := `SELECT ` + contactColumns + ` FROM contacts` + conds.where() + ` ORDER BY updated_at DESC`
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	contacts := []models.Contact{}
	if err := s.db.SelectContext(ctx, &contacts, s.q(query), conds.args...); err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	return contacts, nil
}

// UpdateContact persists every mutable field of contact.
func (s *Store) UpdateContact(ctx context.Context, contact *models.Contact) error {
	contact.UpdatedAt = s.now()
	res, err := s.db.ExecContext(ctx, s.q(`
		UPDATE contacts
		SET company_id = ?, name = ?, email = ?, email_key = ?, role_title = ?, linkedin_url = ?, notes = ?,
			status = ?, last_contacted_at = ?, starred = ?, updated_at = ?
		WHERE id = ?
	`), contact.CompanyID, contact.Name, contact.Email, contact.IdentityKey(), contact.RoleTitle, contact.LinkedInURL,
		contact.Notes, contact.Status, contact.LastContactedAt, contact.Starred, contact.UpdatedAt, contact.ID)
	if isUniqueViolation(err) {
		return ErrContactExists
	}
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// MarkContacted stamps last_contacted_at and promotes a new contact to contacted.
func (s *Store) MarkContacted(ctx context.Context, id uuid.UUID, at time.Time) error {
	res, err := s.db.ExecContext(ctx, s.q(`
		UPDATE contacts
		SET last_contacted_at = ?,
			status = CASE WHEN status = ? THEN ? ELSE status END,
			updated_at = ?
		WHERE id = ?
	`), at.UTC(), models.ContactStatusNew, models.ContactStatusContacted, s.now(), id)
	if err != nil {
		return fmt.Errorf("failed to mark contact contacted: %w", err)
	}
	return requireAffected(res)
}

func (s *Store) ToggleContactStar(ctx context.Context, id uuid.UUID) (*models.Contact, error) {
	res, err := s.db.ExecContext(ctx, s.q(`UPDATE contacts SET starred = NOT starred, updated_at = ? WHERE id = ?`), s.now(), id)
	if err != nil {
		return nil, fmt.Errorf("failed to toggle starred: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return nil, err
	}
	return s.GetContact(ctx, id)
}

// DeleteContact removes a contact that no email references.
func (s *Store) DeleteContact(ctx context.Context, id uuid.UUID) error {
	var emailCount int
	if err := s.db.GetContext(ctx, &emailCount, s.q(`SELECT COUNT(*) FROM emails WHERE contact_id = ?`), id); err != nil {
		return fmt.Errorf("failed to check emails: %w", err)
	}
	if emailCount > 0 {
		return ErrContactHasEmails
	}

	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM contacts WHERE id = ?`), id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
