// ABOUTME: Response DTOs and the mapping functions that build them from models
// ABOUTME: The wire format is camelCase; models keep their storage shape
package web

import (
	"time"

	"github.com/harperreed/outreach/models"
	"github.com/harperreed/outreach/outreach"
)

type companyDTO struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Country       string    `json:"country"`
	Website       string    `json:"website,omitempty"`
	CareerPageURL string    `json:"careerPageUrl,omitempty"`
	Tags          []string  `json:"tags"`
	Notes         string    `json:"notes,omitempty"`
	Starred       bool      `json:"starred"`
	Archived      bool      `json:"archived"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func toCompanyDTO(c *models.Company) companyDTO {
	return companyDTO{
		ID:            c.ID.String(),
		Name:          c.Name,
		Country:       c.Country,
		Website:       c.Website,
		CareerPageURL: c.CareerPageURL,
		Tags:          nonNil(c.Tags),
		Notes:         c.Notes,
		Starred:       c.Starred,
		Archived:      c.Archived,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

type contactDTO struct {
	ID              string     `json:"id"`
	CompanyID       string     `json:"companyId"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	RoleTitle       string     `json:"roleTitle,omitempty"`
	LinkedInURL     string     `json:"linkedinUrl,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	Status          string     `json:"status"`
	LastContactedAt *time.Time `json:"lastContactedAt,omitempty"`
	Starred         bool       `json:"starred"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func toContactDTO(c *models.Contact) contactDTO {
	return contactDTO{
		ID:              c.ID.String(),
		CompanyID:       c.CompanyID.String(),
		Name:            c.Name,
		Email:           c.Email,
		RoleTitle:       c.RoleTitle,
		LinkedInURL:     c.LinkedInURL,
		Notes:           c.Notes,
		Status:          c.Status,
		LastContactedAt: c.LastContactedAt,
		Starred:         c.Starred,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

type templateDTO struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Type            string    `json:"type"`
	Tone            string    `json:"tone"`
	SubjectTemplate string    `json:"subjectTemplate"`
	BodyTemplate    string    `json:"bodyTemplate"`
	Variables       []string  `json:"variables"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func toTemplateDTO(t *models.Template) templateDTO {
	return templateDTO{
		ID:              t.ID.String(),
		Name:            t.Name,
		Type:            t.Type,
		Tone:            t.Tone,
		SubjectTemplate: t.SubjectTemplate,
		BodyTemplate:    t.BodyTemplate,
		Variables:       nonNil(t.Variables),
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

type refDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

type emailDTO struct {
	ID              string     `json:"id"`
	ContactID       string     `json:"contactId"`
	CompanyID       string     `json:"companyId"`
	TemplateID      string     `json:"templateId,omitempty"`
	Subject         string     `json:"subject"`
	Body            string     `json:"body"`
	Status          string     `json:"status"`
	SentAt          time.Time  `json:"sentAt"`
	FollowUpDate    *time.Time `json:"followUpDate,omitempty"`
	FollowUpCount   int        `json:"followUpCount"`
	ReplyReceivedAt *time.Time `json:"replyReceivedAt,omitempty"`
	Outcome         string     `json:"outcome,omitempty"`
	ReplyNote       string     `json:"replyNote,omitempty"`
	ClosedAt        *time.Time `json:"closedAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
	Contact         *refDTO    `json:"contact,omitempty"`
	Company         *refDTO    `json:"company,omitempty"`
	Template        *refDTO    `json:"template,omitempty"`
}

func toEmailDTO(e *models.Email) emailDTO {
	dto := emailDTO{
		ID:              e.ID.String(),
		ContactID:       e.ContactID.String(),
		CompanyID:       e.CompanyID.String(),
		Subject:         e.Subject,
		Body:            e.Body,
		Status:          e.Status,
		SentAt:          e.SentAt,
		FollowUpDate:    e.FollowUpDate,
		FollowUpCount:   e.FollowUpCount,
		ReplyReceivedAt: e.ReplyReceivedAt,
		Outcome:         e.Outcome,
		ReplyNote:       e.ReplyNote,
		ClosedAt:        e.ClosedAt,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
	if e.TemplateID.Valid {
		dto.TemplateID = e.TemplateID.UUID.String()
	}
	return dto
}

func toEmailWithRefsDTO(e *models.EmailWithRefs) emailDTO {
	dto := toEmailDTO(&e.Email)
	if e.ContactName.Valid {
		dto.Contact = &refDTO{ID: dto.ContactID, Name: e.ContactName.String, Email: e.ContactEmail.String}
	}
	if e.CompanyName.Valid {
		dto.Company = &refDTO{ID: dto.CompanyID, Name: e.CompanyName.String}
	}
	if e.TemplateName.Valid {
		dto.Template = &refDTO{ID: dto.TemplateID, Name: e.TemplateName.String}
	}
	return dto
}

type draftDTO struct {
	ID                    string     `json:"id"`
	ContactID             string     `json:"contactId"`
	CompanyID             string     `json:"companyId"`
	Intent                string     `json:"intent"`
	Tone                  string     `json:"tone"`
	JobTitle              string     `json:"jobTitle"`
	Subject               string     `json:"subject"`
	Body                  string     `json:"body"`
	ModelUsed             string     `json:"modelUsed"`
	CreatedAt             time.Time  `json:"createdAt"`
	FollowUpNumber        int        `json:"followUpNumber,omitempty"`
	SuggestedFollowUpDate *time.Time `json:"suggestedFollowUpDate,omitempty"`
	UnfilledVariables     []string   `json:"unfilledVariables,omitempty"`
}

func toDraftDTO(d *models.Draft) draftDTO {
	return draftDTO{
		ID:        d.ID.String(),
		ContactID: d.ContactID.String(),
		CompanyID: d.CompanyID.String(),
		Intent:    d.Intent,
		Tone:      d.Tone,
		JobTitle:  d.JobTitle,
		Subject:   d.Subject,
		Body:      d.Body,
		ModelUsed: d.ModelUsed,
		CreatedAt: d.CreatedAt,
	}
}

func toFollowUpDTO(f *outreach.FollowUpDraft) draftDTO {
	dto := toDraftDTO(f.Draft)
	dto.FollowUpNumber = f.FollowUpNumber
	suggested := f.SuggestedFollowUpDate
	dto.SuggestedFollowUpDate = &suggested
	return dto
}

type notificationDTO struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	EmailID   string    `json:"emailId"`
	ActionURL string    `json:"actionUrl,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

func toNotificationDTO(n *models.Notification) notificationDTO {
	return notificationDTO{
		ID:        n.ID.String(),
		Kind:      n.Kind,
		Title:     n.Title,
		Message:   n.Message,
		EmailID:   n.EmailID.String(),
		ActionURL: n.ActionURL,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}

// mapAll applies fn to every element of items.
func mapAll[T, D any](items []T, fn func(*T) D) []D {
	out := make([]D, 0, len(items))
	for i := range items {
		out = append(out, fn(&items[i]))
	}
	return out
}

func nonNil(l models.StringList) []string {
	if l == nil {
		return []string{}
	}
	return l
}
