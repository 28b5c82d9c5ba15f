// ABOUTME: Tests for company, contact and template operations
// ABOUTME: Checks validation messages, status mapping and star/archive semantics
package outreach

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/harperreed/outreach/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCompanyValidation(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		input   CompanyInput
		message string
	}{
		{"missing name", CompanyInput{Country: "US"}, "name is required"},
		{"blank name", CompanyInput{Name: "   ", Country: "US"}, "name is required"},
		{"missing country", CompanyInput{Name: "X"}, "country is required"},
		{"bad website", CompanyInput{Name: "X", Country: "US", Website: "not a url"}, "Invalid website URL"},
		{"bad career page", CompanyInput{Name: "X", Country: "US", CareerPageURL: "http://"}, "Invalid career page URL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateCompany(ctx, tt.input)
			assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
			assert.Equal(t, tt.message, err.Error())
		})
	}
}

func TestCreateCompanyDuplicateConflicts(t *testing.T) {
	f := setupService(t)
	_, err := f.svc.CreateCompany(context.Background(), CompanyInput{Name: " acme ", Country: "us"})
	assert.Equal(t, http.StatusConflict, statusOf(t, err))
	assert.Equal(t, "Company already exists", err.Error())
}

func TestStarAndArchiveCompany(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()
	id := f.company.ID

	c, err := f.svc.StarCompany(ctx, id, nil)
	require.NoError(t, err)
	assert.True(t, c.Starred, "nil toggles")

	yes := true
	c, err = f.svc.StarCompany(ctx, id, &yes)
	require.NoError(t, err)
	assert.True(t, c.Starred, "explicit value is idempotent")

	c, err = f.svc.ArchiveCompany(ctx, id, &yes)
	require.NoError(t, err)
	assert.True(t, c.Archived)

	_, err = f.svc.StarCompany(ctx, uuid.New(), nil)
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
}

func TestUpdateCompanyPatch(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	notes := "  remote friendly "
	tags := TagList{"b2b", "b2b", " saas"}
	c, err := f.svc.UpdateCompany(ctx, f.company.ID, CompanyPatch{Notes: &notes, Tags: &tags})
	require.NoError(t, err)
	assert.Equal(t, "remote friendly", c.Notes)
	assert.Equal(t, models.StringList{"b2b", "saas"}, c.Tags)
	assert.Equal(t, "acme.com", c.Website, "absent fields are kept")

	empty := ""
	_, err = f.svc.UpdateCompany(ctx, f.company.ID, CompanyPatch{Name: &empty})
	assert.Equal(t, "name is required", err.Error())
}

func TestDeleteCompanyWithContactsConflicts(t *testing.T) {
	f := setupService(t)
	err := f.svc.DeleteCompany(context.Background(), f.company.ID)
	assert.Equal(t, http.StatusConflict, statusOf(t, err))
	assert.Equal(t, "Delete contacts linked to this company first", err.Error())
}

func TestCreateContactChecks(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	_, err := f.svc.CreateContact(ctx, ContactInput{CompanyID: "nope", Name: "X", Email: "x@y.z"})
	assert.Equal(t, "Invalid companyId", err.Error())

	_, err = f.svc.CreateContact(ctx, ContactInput{CompanyID: uuid.NewString(), Name: "X", Email: "x@y.z"})
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
	assert.Equal(t, "Company not found", err.Error())

	_, err = f.svc.CreateContact(ctx, ContactInput{CompanyID: f.company.ID.String(), Name: "X", Email: "no-at-sign"})
	assert.Equal(t, "Invalid email format", err.Error())

	_, err = f.svc.CreateContact(ctx, ContactInput{CompanyID: f.company.ID.String(), Name: "X", Email: "x@y.z", Status: "lost"})
	assert.Equal(t, "Invalid status. Must be one of: new, contacted, replied, closed", err.Error())

	_, err = f.svc.CreateContact(ctx, ContactInput{CompanyID: f.company.ID.String(), Name: "Dup", Email: " ANN@acme.com"})
	assert.Equal(t, http.StatusConflict, statusOf(t, err))
	assert.Equal(t, "Contact already exists", err.Error())
}

func TestUpdateContactMovesCompany(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	other, err := f.svc.CreateCompany(ctx, CompanyInput{Name: "Globex", Country: "DE"})
	require.NoError(t, err)

	target := other.ID.String()
	c, err := f.svc.UpdateContact(ctx, f.contact.ID, ContactPatch{CompanyID: &target, LastContactedAt: Some("2025-05-01")})
	require.NoError(t, err)
	assert.Equal(t, other.ID, c.CompanyID)
	require.NotNil(t, c.LastContactedAt)

	c, err = f.svc.UpdateContact(ctx, f.contact.ID, ContactPatch{LastContactedAt: Null[string]()})
	require.NoError(t, err)
	assert.Nil(t, c.LastContactedAt)

	missing := uuid.NewString()
	_, err = f.svc.UpdateContact(ctx, f.contact.ID, ContactPatch{CompanyID: &missing})
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
}

func TestTemplateVariablesDerivedWhenOmitted(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	tmpl, err := f.svc.CreateTemplate(ctx, TemplateInput{
		Name:            "Intro",
		Type:            models.IntentCold,
		Tone:            models.ToneFriendly,
		SubjectTemplate: "Hello {{ first_name }}",
		BodyTemplate:    "I saw {{company}} is hiring a {{job_title}}. {{company}} looks great.",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StringList{"first_name", "company", "job_title"}, tmpl.Variables)

	explicit := TagList{"custom"}
	tmpl2, err := f.svc.CreateTemplate(ctx, TemplateInput{Name: "X", Type: models.IntentReferral, Tone: models.ToneProfessional, BodyTemplate: "{{a}}", Variables: &explicit})
	require.NoError(t, err)
	assert.Equal(t, models.StringList{"custom"}, tmpl2.Variables)

	_, err = f.svc.CreateTemplate(ctx, TemplateInput{Name: "X", Type: "spam", Tone: models.ToneProfessional, BodyTemplate: "b"})
	assert.Equal(t, "Invalid type. Must be one of: cold, follow_up, referral, post_application", err.Error())
}

func TestRenderTemplateDraft(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()
	f.saveProfile(t, 2)

	tmpl, err := f.svc.CreateTemplate(ctx, TemplateInput{
		Name:            "Intro",
		Type:            models.IntentReferral,
		Tone:            models.ToneFriendly,
		SubjectTemplate: "{{job_title}} at {{company}}",
		BodyTemplate:    "Hi {{first_name}}, {{referrer_name}} suggested I reach out. {{my_name}}",
	})
	require.NoError(t, err)

	rendered, err := f.svc.RenderTemplateDraft(ctx, tmpl.ID, RenderRequest{ContactID: f.contact.ID.String(), JobTitle: "Engineer"})
	require.NoError(t, err)
	assert.Equal(t, "Engineer at Acme", rendered.Draft.Subject)
	assert.Equal(t, "Hi Ann, {{referrer_name}} suggested I reach out. Sam Rivera", rendered.Draft.Body)
	assert.Equal(t, []string{"referrer_name"}, rendered.Unfilled)
	assert.Equal(t, models.IntentReferral, rendered.Draft.Intent)
	assert.Equal(t, models.ModelUsedTemplate, rendered.Draft.ModelUsed)
	assert.Zero(t, f.gen.calls(), "rendering never calls the generator")
}
