// ABOUTME: Contact operations: create, update, star toggle, delete and import
// ABOUTME: A contact always belongs to an existing company
package outreach

import (
	"context"

	"github.com/google/uuid"
	"github.com/harperreed/outreach/db"
	"github.com/harperreed/outreach/importer"
	"github.com/harperreed/outreach/models"
)

type ContactInput struct {
	CompanyID   string `json:"companyId"`
	Name        string `json:"name" validate:"required,max=200"`
	Email       string `json:"email" validate:"required,max=320,looseemail"`
	RoleTitle   string `json:"roleTitle" validate:"max=200"`
	LinkedInURL string `json:"linkedinUrl" validate:"omitempty,looseurl"`
	Notes       string `json:"notes" validate:"max=4000"`
	Status      string `json:"status" validate:"omitempty,oneof=new contacted replied closed"`
}

type ContactPatch struct {
	CompanyID       *string          `json:"companyId"`
	Name            *string          `json:"name"`
	Email           *string          `json:"email"`
	RoleTitle       *string          `json:"roleTitle"`
	LinkedInURL     *string          `json:"linkedinUrl"`
	Notes           *string          `json:"notes"`
	Status          *string          `json:"status"`
	LastContactedAt Optional[string] `json:"lastContactedAt"`
	Starred         *bool            `json:"starred"`
}

func (s *Service) ListContacts(ctx context.Context, filter db.ContactFilter) ([]models.Contact, error) {
	return s.store.ListContacts(ctx, filter)
}

func (s *Service) CreateContact(ctx context.Context, in ContactInput) (*models.Contact, error) {
	companyID, err := s.requireCompany(ctx, in.CompanyID)
	if err != nil {
		return nil, err
	}
	trimAll(&in.Name, &in.Email, &in.RoleTitle, &in.LinkedInURL, &in.Notes, &in.Status)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	contact := &models.Contact{
		CompanyID:   companyID,
		Name:        in.Name,
		Email:       in.Email,
		RoleTitle:   in.RoleTitle,
		LinkedInURL: in.LinkedInURL,
		Notes:       in.Notes,
		Status:      in.Status,
	}
	if err := s.store.CreateContact(ctx, contact); err != nil {
		return nil, storeError(err, "Contact not found")
	}
	s.logger.Info("contact created", "id", contact.ID, "company_id", companyID)
	return contact, nil
}

// requireCompany parses a company id and checks that the company exists.
func (s *Service) requireCompany(ctx context.Context, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, BadRequest("Invalid companyId")
	}
	if _, err := s.GetCompany(ctx, id); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (s *Service) GetContact(ctx context.Context, id uuid.UUID) (*models.Contact, error) {
	contact, err := s.store.GetContact(ctx, id)
	if err != nil {
		return nil, storeError(err, "Contact not found")
	}
	return contact, nil
}

func (s *Service) UpdateContact(ctx context.Context, id uuid.UUID, patch ContactPatch) (*models.Contact, error) {
	contact, err := s.GetContact(ctx, id)
	if err != nil {
		return nil, err
	}

	in := ContactInput{
		Name:        contact.Name,
		Email:       contact.Email,
		RoleTitle:   contact.RoleTitle,
		LinkedInURL: contact.LinkedInURL,
		Notes:       contact.Notes,
		Status:      contact.Status,
	}
	setString(&in.Name, patch.Name)
	setString(&in.Email, patch.Email)
	setString(&in.RoleTitle, patch.RoleTitle)
	setString(&in.LinkedInURL, patch.LinkedInURL)
	setString(&in.Notes, patch.Notes)
	setString(&in.Status, patch.Status)
	trimAll(&in.Name, &in.Email, &in.RoleTitle, &in.LinkedInURL, &in.Notes, &in.Status)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	if patch.CompanyID != nil {
		companyID, err := s.requireCompany(ctx, *patch.CompanyID)
		if err != nil {
			return nil, err
		}
		contact.CompanyID = companyID
	}
	if patch.LastContactedAt.Set {
		if patch.LastContactedAt.Null {
			contact.LastContactedAt = nil
		} else {
			at, ok := parseTime(patch.LastContactedAt.Value)
			if !ok {
				return nil, BadRequest("Invalid lastContactedAt")
			}
			contact.LastContactedAt = &at
		}
	}
	if patch.Starred != nil {
		contact.Starred = *patch.Starred
	}

	contact.Name = in.Name
	contact.Email = in.Email
	contact.RoleTitle = in.RoleTitle
	contact.LinkedInURL = in.LinkedInURL
	contact.Notes = in.Notes
	contact.Status = in.Status

	if err := s.store.UpdateContact(ctx, contact); err != nil {
		return nil, storeError(err, "Contact not found")
	}
	return contact, nil
}

// StarContact sets the starred flag, or flips it when starred is nil.
func (s *Service) StarContact(ctx context.Context, id uuid.UUID, starred *bool) (*models.Contact, error) {
	contact, err := s.GetContact(ctx, id)
	if err != nil {
		return nil, err
	}
	if starred != nil && contact.Starred == *starred {
		return contact, nil
	}
	contact, err = s.store.ToggleContactStar(ctx, id)
	return contact, storeError(err, "Contact not found")
}

func (s *Service) DeleteContact(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeleteContact(ctx, id); err != nil {
		return storeError(err, "Contact not found")
	}
	s.logger.Info("contact deleted", "id", id)
	return nil
}

// ImportContacts runs the dedup-merge importer over an upload.
func (s *Service) ImportContacts(ctx context.Context, data []byte, mapping map[string]string) (*importer.Result, error) {
	result, err := s.importer.ImportContacts(ctx, data, mapping)
	if err != nil {
		return nil, importError(err)
	}
	return result, nil
}
