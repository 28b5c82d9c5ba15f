// ABOUTME: Recording sent outreach emails and tracking their lifecycle
// ABOUTME: Recording stamps the contact as contacted
package outreach

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/harperreed/outreach/db"
	"github.com/harperreed/outreach/models"
)

const emailNotFound = "Outreach email not found"

// EmailInput records an email the operator sent outside the system.
type EmailInput struct {
	ContactID    string `json:"contactId"`
	TemplateID   string `json:"templateId"`
	Subject      string `json:"subject" validate:"max=300"`
	Body         string `json:"body" validate:"max=12000"`
	Status       string `json:"status"`
	SentAt       string `json:"sentAt"`
	FollowUpDate string `json:"followUpDate"`
}

func (s *Service) RecordEmail(ctx context.Context, in EmailInput) (*models.Email, error) {
	trimAll(&in.ContactID, &in.TemplateID, &in.Subject, &in.Body, &in.Status, &in.SentAt, &in.FollowUpDate)

	contactID, err := uuid.Parse(in.ContactID)
	if err != nil {
		return nil, BadRequest("Invalid contactId")
	}
	if in.Subject == "" {
		return nil, BadRequest("Subject is required")
	}
	if in.Body == "" {
		return nil, BadRequest("Body is required")
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	contact, err := s.GetContact(ctx, contactID)
	if err != nil {
		return nil, err
	}

	email := &models.Email{
		ContactID: contact.ID,
		CompanyID: contact.CompanyID,
		Subject:   in.Subject,
		Body:      in.Body,
		Status:    models.EmailStatusSent,
		SentAt:    s.now(),
	}
	if in.SentAt != "" {
		at, ok := parseTime(in.SentAt)
		if !ok {
			return nil, BadRequest("Invalid sentAt")
		}
		email.SentAt = at
	}
	if in.FollowUpDate != "" {
		at, ok := parseTime(in.FollowUpDate)
		if !ok {
			return nil, BadRequest("Invalid followUpDate")
		}
		email.FollowUpDate = &at
	}
	// Every email starts as sent; another starting status goes through the
	// same transition as a later update.
	if in.Status != "" && in.Status != models.EmailStatusSent {
		if err := ApplyEmailPatch(email, EmailPatch{Status: &in.Status}, s.now(), s.logger); err != nil {
			return nil, err
		}
	}
	if templateID, err := uuid.Parse(in.TemplateID); err == nil {
		if _, err := s.store.GetTemplate(ctx, templateID); err == nil {
			email.TemplateID = uuid.NullUUID{UUID: templateID, Valid: true}
		} else if !errors.Is(err, db.ErrNotFound) {
			return nil, err
		}
	}

	if err := s.store.CreateEmail(ctx, email); err != nil {
		return nil, err
	}
	if err := s.store.MarkContacted(ctx, contact.ID, email.SentAt); err != nil {
		return nil, storeError(err, "Contact not found")
	}
	s.logger.Info("email recorded", "id", email.ID, "contact_id", contact.ID, "status", email.Status)
	return email, nil
}

func (s *Service) GetEmail(ctx context.Context, id uuid.UUID) (*models.EmailWithRefs, error) {
	email, err := s.store.GetEmailWithRefs(ctx, id)
	if err != nil {
		return nil, storeError(err, emailNotFound)
	}
	return email, nil
}

// ListEmails lists recorded emails. A FollowUpDue filter uses the
// configured follow-up cap.
func (s *Service) ListEmails(ctx context.Context, filter db.EmailFilter) ([]models.EmailWithRefs, error) {
	if filter.Status != "" && !models.IsValidEmailStatus(filter.Status) {
		filter.Status = ""
	}
	if filter.FollowUpDue {
		maxFollowUps, _, err := s.followUpSettings(ctx)
		if err != nil {
			return nil, err
		}
		filter.Now = s.now()
		filter.MaxFollowUps = maxFollowUps
	}
	return s.store.ListEmails(ctx, filter)
}

// ListDue returns emails needing a follow-up, soonest due first.
func (s *Service) ListDue(ctx context.Context) ([]models.EmailWithRefs, error) {
	maxFollowUps, _, err := s.followUpSettings(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.ListDueEmails(ctx, s.now(), maxFollowUps)
}

func (s *Service) UpdateEmail(ctx context.Context, id uuid.UUID, patch EmailPatch) (*models.Email, error) {
	email, err := s.store.GetEmail(ctx, id)
	if err != nil {
		return nil, storeError(err, emailNotFound)
	}
	if err := ApplyEmailPatch(email, patch, s.now(), s.logger); err != nil {
		return nil, err
	}
	if err := s.store.UpdateEmail(ctx, email); err != nil {
		return nil, storeError(err, emailNotFound)
	}
	s.logger.Info("email updated", "id", email.ID, "status", email.Status)
	return email, nil
}

func (s *Service) DeleteEmail(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeleteEmail(ctx, id); err != nil {
		return storeError(err, emailNotFound)
	}
	s.logger.Info("email deleted", "id", id)
	return nil
}
