// ABOUTME: Draft generation MCP tool handlers
// ABOUTME: Implements generate_draft, generate_followup and improve_email
package handlers

import (
	"context"

	"github.com/harperreed/outreach/models"
	"github.com/harperreed/outreach/outreach"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type DraftHandlers struct {
	svc *outreach.Service
}

func NewDraftHandlers(svc *outreach.Service) *DraftHandlers {
	return &DraftHandlers{svc: svc}
}

type DraftOutput struct {
	ID                    string `json:"id"`
	Intent                string `json:"intent"`
	Tone                  string `json:"tone"`
	Subject               string `json:"subject"`
	Body                  string `json:"body"`
	ModelUsed             string `json:"model_used"`
	FollowUpNumber        int    `json:"follow_up_number,omitempty"`
	SuggestedFollowUpDate string `json:"suggested_follow_up_date,omitempty"`
}

type GenerateDraftInput struct {
	ContactID          string   `json:"contact_id" jsonschema:"Recipient contact ID (required)"`
	CompanyID          string   `json:"company_id" jsonschema:"Company ID (required)"`
	JobTitle           string   `json:"job_title" jsonschema:"Position being pursued (required)"`
	JobDescription     string   `json:"job_description,omitempty" jsonschema:"Posting text; its presence makes this a post-application note"`
	Tone               string   `json:"tone,omitempty" jsonschema:"professional or friendly (default from profile)"`
	SelectedProjectIDs []string `json:"selected_project_ids,omitempty"`
	SelectedSkillIDs   []string `json:"selected_skill_ids,omitempty"`
}

func (h *DraftHandlers) GenerateDraft(ctx context.Context, _ *mcp.CallToolRequest, input GenerateDraftInput) (*mcp.CallToolResult, DraftOutput, error) {
	draft, err := h.svc.GenerateDraft(ctx, outreach.DraftRequest{
		ContactID:          input.ContactID,
		CompanyID:          input.CompanyID,
		JobTitle:           input.JobTitle,
		JobDescription:     input.JobDescription,
		Tone:               input.Tone,
		SelectedProjectIDs: input.SelectedProjectIDs,
		SelectedSkillIDs:   input.SelectedSkillIDs,
	})
	if err != nil {
		return nil, DraftOutput{}, err
	}
	return nil, draftToOutput(draft), nil
}

type GenerateFollowUpInput struct {
	EmailID string `json:"email_id" jsonschema:"The original outreach email (required)"`
	Tone    string `json:"tone,omitempty"`
}

func (h *DraftHandlers) GenerateFollowUp(ctx context.Context, _ *mcp.CallToolRequest, input GenerateFollowUpInput) (*mcp.CallToolResult, DraftOutput, error) {
	result, err := h.svc.GenerateFollowUp(ctx, outreach.FollowUpRequest{EmailID: input.EmailID, Tone: input.Tone})
	if err != nil {
		return nil, DraftOutput{}, err
	}
	out := draftToOutput(result.Draft)
	out.FollowUpNumber = result.FollowUpNumber
	out.SuggestedFollowUpDate = result.SuggestedFollowUpDate.Format("2006-01-02")
	return nil, out, nil
}

type ImproveEmailInput struct {
	Subject         string `json:"subject" jsonschema:"Current subject (required)"`
	Body            string `json:"body" jsonschema:"Current body (required)"`
	ImprovementType string `json:"improvement_type" jsonschema:"shorten, clarify or confident"`
}

func (h *DraftHandlers) ImproveEmail(ctx context.Context, _ *mcp.CallToolRequest, input ImproveEmailInput) (*mcp.CallToolResult, outreach.Improved, error) {
	improved, err := h.svc.Improve(ctx, outreach.ImproveRequest{
		CurrentSubject:  input.Subject,
		CurrentBody:     input.Body,
		ImprovementType: input.ImprovementType,
	})
	if err != nil {
		return nil, outreach.Improved{}, err
	}
	return nil, *improved, nil
}

func draftToOutput(d *models.Draft) DraftOutput {
	return DraftOutput{
		ID:        d.ID.String(),
		Intent:    d.Intent,
		Tone:      d.Tone,
		Subject:   d.Subject,
		Body:      d.Body,
		ModelUsed: d.ModelUsed,
	}
}
