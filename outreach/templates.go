// ABOUTME: Template operations and template-rendered drafts
// ABOUTME: Variables are derived from {{placeholders}} when the caller omits them
package outreach

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/harperreed/outreach/db"
	"github.com/harperreed/outreach/models"
)

type TemplateInput struct {
	Name            string   `json:"name" validate:"required,max=200"`
	Type            string   `json:"type" validate:"required,oneof=cold follow_up referral post_application"`
	Tone            string   `json:"tone" validate:"required,oneof=professional friendly"`
	SubjectTemplate string   `json:"subjectTemplate" validate:"max=300"`
	BodyTemplate    string   `json:"bodyTemplate" validate:"required,max=8000"`
	Variables       *TagList `json:"variables"`
}

type TemplatePatch struct {
	Name            *string  `json:"name"`
	Type            *string  `json:"type"`
	Tone            *string  `json:"tone"`
	SubjectTemplate *string  `json:"subjectTemplate"`
	BodyTemplate    *string  `json:"bodyTemplate"`
	Variables       *TagList `json:"variables"`
}

func (s *Service) ListTemplates(ctx context.Context, filter db.TemplateFilter) ([]models.Template, error) {
	if !models.IsValidIntent(filter.Type) {
		filter.Type = ""
	}
	if !models.IsValidTone(filter.Tone) {
		filter.Tone = ""
	}
	return s.store.ListTemplates(ctx, filter)
}

func (s *Service) CreateTemplate(ctx context.Context, in TemplateInput) (*models.Template, error) {
	trimAll(&in.Name, &in.Type, &in.Tone, &in.SubjectTemplate, &in.BodyTemplate)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	tmpl := &models.Template{
		Name:            in.Name,
		Type:            in.Type,
		Tone:            in.Tone,
		SubjectTemplate: in.SubjectTemplate,
		BodyTemplate:    in.BodyTemplate,
	}
	if in.Variables != nil {
		tmpl.Variables = models.NewTagList(*in.Variables)
	} else {
		tmpl.Variables = templateVariables(tmpl)
	}
	if err := s.store.CreateTemplate(ctx, tmpl); err != nil {
		return nil, storeError(err, "Template not found")
	}
	s.logger.Info("template created", "id", tmpl.ID, "name", tmpl.Name)
	return tmpl, nil
}

func (s *Service) GetTemplate(ctx context.Context, id uuid.UUID) (*models.Template, error) {
	tmpl, err := s.store.GetTemplate(ctx, id)
	if err != nil {
		return nil, storeError(err, "Template not found")
	}
	return tmpl, nil
}

func (s *Service) UpdateTemplate(ctx context.Context, id uuid.UUID, patch TemplatePatch) (*models.Template, error) {
	tmpl, err := s.GetTemplate(ctx, id)
	if err != nil {
		return nil, err
	}

	in := TemplateInput{
		Name:            tmpl.Name,
		Type:            tmpl.Type,
		Tone:            tmpl.Tone,
		SubjectTemplate: tmpl.SubjectTemplate,
		BodyTemplate:    tmpl.BodyTemplate,
	}
	setString(&in.Name, patch.Name)
	setString(&in.Type, patch.Type)
	setString(&in.Tone, patch.Tone)
	setString(&in.SubjectTemplate, patch.SubjectTemplate)
	setString(&in.BodyTemplate, patch.BodyTemplate)
	trimAll(&in.Name, &in.Type, &in.Tone, &in.SubjectTemplate, &in.BodyTemplate)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	tmpl.Name = in.Name
	tmpl.Type = in.Type
	tmpl.Tone = in.Tone
	tmpl.SubjectTemplate = in.SubjectTemplate
	tmpl.BodyTemplate = in.BodyTemplate
	if patch.Variables != nil {
		tmpl.Variables = models.NewTagList(*patch.Variables)
	}

	if err := s.store.UpdateTemplate(ctx, tmpl); err != nil {
		return nil, storeError(err, "Template not found")
	}
	return tmpl, nil
}

func (s *Service) DeleteTemplate(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeleteTemplate(ctx, id); err != nil {
		return storeError(err, "Template not found")
	}
	s.logger.Info("template deleted", "id", id)
	return nil
}

func templateVariables(tmpl *models.Template) models.StringList {
	return models.NewTagList(ExtractVariables(tmpl.SubjectTemplate + "\n" + tmpl.BodyTemplate))
}

// RenderRequest asks for a draft rendered from a template without generation.
type RenderRequest struct {
	ContactID string            `json:"contactId"`
	JobTitle  string            `json:"jobTitle" validate:"max=200"`
	Values    map[string]string `json:"values"`
}

// RenderedDraft is a saved template draft plus any placeholders left unfilled.
type RenderedDraft struct {
	Draft    *models.Draft
	Unfilled []string
}

// RenderTemplateDraft fills a template from the contact, its company and the
// profile, then saves the result as a draft. Caller values override the
// built-in ones.
func (s *Service) RenderTemplateDraft(ctx context.Context, templateID uuid.UUID, req RenderRequest) (*RenderedDraft, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	tmpl, err := s.GetTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}
	contactID, err := uuid.Parse(strings.TrimSpace(req.ContactID))
	if err != nil {
		return nil, BadRequest("Invalid contactId")
	}
	contact, err := s.GetContact(ctx, contactID)
	if err != nil {
		return nil, err
	}
	company, err := s.GetCompany(ctx, contact.CompanyID)
	if err != nil {
		return nil, err
	}

	values := templateValues(contact, company, strings.TrimSpace(req.JobTitle), s.now().Format("January 2, 2006"))
	if profile, err := s.store.GetProfile(ctx); err == nil {
		values["my_name"] = profile.FullName
		values["my_bio"] = profile.Bio
	}
	for k, v := range req.Values {
		values[strings.TrimSpace(k)] = v
	}

	draft := &models.Draft{
		ContactID: contact.ID,
		CompanyID: company.ID,
		Intent:    tmpl.Type,
		Tone:      tmpl.Tone,
		JobTitle:  strings.TrimSpace(req.JobTitle),
		Subject:   Render(tmpl.SubjectTemplate, values),
		Body:      Render(tmpl.BodyTemplate, values),
		ModelUsed: models.ModelUsedTemplate,
	}
	if err := s.store.CreateDraft(ctx, draft); err != nil {
		return nil, err
	}

	unfilled := UnfilledVariables(tmpl.SubjectTemplate+"\n"+tmpl.BodyTemplate, values)
	return &RenderedDraft{Draft: draft, Unfilled: unfilled}, nil
}

func templateValues(contact *models.Contact, company *models.Company, jobTitle, date string) map[string]string {
	first, last := splitName(contact.Name)
	return map[string]string{
		"name":            contact.Name,
		"first_name":      first,
		"last_name":       last,
		"email":           contact.Email,
		"role_title":      contact.RoleTitle,
		"linkedin_url":    contact.LinkedInURL,
		"company":         company.Name,
		"company_country": company.Country,
		"company_website": company.Website,
		"company_careers": company.CareerPageURL,
		"job_title":       jobTitle,
		"date":            date,
	}
}

func splitName(full string) (string, string) {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
