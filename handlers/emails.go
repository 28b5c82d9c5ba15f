// ABOUTME: Email tracking MCP tool handlers
// ABOUTME: Implements record_email, update_email_status, list_followups_due and outreach_stats
package handlers

import (
	"context"
	"time"

	"github.com/harperreed/outreach/models"
	"github.com/harperreed/outreach/outreach"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type EmailHandlers struct {
	svc *outreach.Service
}

func NewEmailHandlers(svc *outreach.Service) *EmailHandlers {
	return &EmailHandlers{svc: svc}
}

type EmailOutput struct {
	ID            string `json:"id"`
	ContactID     string `json:"contact_id"`
	ContactName   string `json:"contact_name,omitempty"`
	CompanyID     string `json:"company_id"`
	CompanyName   string `json:"company_name,omitempty"`
	Subject       string `json:"subject"`
	Status        string `json:"status"`
	SentAt        string `json:"sent_at"`
	FollowUpDate  string `json:"follow_up_date,omitempty"`
	FollowUpCount int    `json:"follow_up_count"`
	Outcome       string `json:"outcome,omitempty"`
	ReplyNote     string `json:"reply_note,omitempty"`
}

type RecordEmailInput struct {
	ContactID    string `json:"contact_id" jsonschema:"Recipient contact ID (required)"`
	TemplateID   string `json:"template_id,omitempty" jsonschema:"Template the email was written from"`
	Subject      string `json:"subject" jsonschema:"Subject line (required)"`
	Body         string `json:"body" jsonschema:"Email body (required)"`
	SentAt       string `json:"sent_at,omitempty" jsonschema:"When it was sent, RFC3339 or YYYY-MM-DD (default now)"`
	FollowUpDate string `json:"follow_up_date,omitempty" jsonschema:"When to follow up, RFC3339 or YYYY-MM-DD"`
}

func (h *EmailHandlers) RecordEmail(ctx context.Context, _ *mcp.CallToolRequest, input RecordEmailInput) (*mcp.CallToolResult, EmailOutput, error) {
	email, err := h.svc.RecordEmail(ctx, outreach.EmailInput{
		ContactID:    input.ContactID,
		TemplateID:   input.TemplateID,
		Subject:      input.Subject,
		Body:         input.Body,
		SentAt:       input.SentAt,
		FollowUpDate: input.FollowUpDate,
	})
	if err != nil {
		return nil, EmailOutput{}, err
	}
	return nil, emailToOutput(email), nil
}

type UpdateEmailStatusInput struct {
	EmailID       string `json:"email_id" jsonschema:"Email ID (required)"`
	Status        string `json:"status,omitempty" jsonschema:"sent, replied, no_response or closed"`
	Outcome       string `json:"outcome,omitempty" jsonschema:"positive, neutral or rejection"`
	ReplyNote     string `json:"reply_note,omitempty" jsonschema:"What the reply said"`
	FollowUpDate  string `json:"follow_up_date,omitempty" jsonschema:"Reschedule the next follow-up"`
	FollowUpCount *int   `json:"follow_up_count,omitempty" jsonschema:"Follow-ups already sent (0-2)"`
}

func (h *EmailHandlers) UpdateEmailStatus(ctx context.Context, _ *mcp.CallToolRequest, input UpdateEmailStatusInput) (*mcp.CallToolResult, EmailOutput, error) {
	id, err := outreach.ParseID(input.EmailID, "outreach email")
	if err != nil {
		return nil, EmailOutput{}, err
	}

	var patch outreach.EmailPatch
	if input.Status != "" {
		patch.Status = &input.Status
	}
	if input.Outcome != "" {
		patch.Outcome = outreach.Some(input.Outcome)
	}
	if input.ReplyNote != "" {
		patch.ReplyNote = &input.ReplyNote
	}
	if input.FollowUpDate != "" {
		patch.FollowUpDate = outreach.Some(input.FollowUpDate)
	}
	patch.FollowUpCount = input.FollowUpCount

	email, err := h.svc.UpdateEmail(ctx, id, patch)
	if err != nil {
		return nil, EmailOutput{}, err
	}
	return nil, emailToOutput(email), nil
}

type ListFollowUpsDueInput struct{}

type ListFollowUpsDueOutput struct {
	Due []EmailOutput `json:"due"`
}

func (h *EmailHandlers) ListFollowUpsDue(ctx context.Context, _ *mcp.CallToolRequest, _ ListFollowUpsDueInput) (*mcp.CallToolResult, ListFollowUpsDueOutput, error) {
	due, err := h.svc.ListDue(ctx)
	if err != nil {
		return nil, ListFollowUpsDueOutput{}, err
	}
	out := make([]EmailOutput, len(due))
	for i := range due {
		out[i] = emailWithRefsToOutput(&due[i])
	}
	return nil, ListFollowUpsDueOutput{Due: out}, nil
}

type StatsInput struct{}

type StatsOutput struct {
	Companies    int            `json:"companies"`
	Contacts     int            `json:"contacts"`
	Emails       int            `json:"emails"`
	Templates    int            `json:"templates"`
	FollowUpsDue int            `json:"follow_ups_due"`
	ByStatus     map[string]int `json:"by_status"`
	ReplyRate    float64        `json:"reply_rate"`
}

func (h *EmailHandlers) OutreachStats(ctx context.Context, _ *mcp.CallToolRequest, _ StatsInput) (*mcp.CallToolResult, StatsOutput, error) {
	s, err := h.svc.Stats(ctx)
	if err != nil {
		return nil, StatsOutput{}, err
	}
	return nil, StatsOutput{
		Companies:    s.Companies,
		Contacts:     s.Contacts,
		Emails:       s.Emails,
		Templates:    s.TemplatesCount,
		FollowUpsDue: s.FollowUpsDue,
		ByStatus:     s.StatusBreakdown(),
		ReplyRate:    s.ReplyRate(),
	}, nil
}

func emailToOutput(e *models.Email) EmailOutput {
	out := EmailOutput{
		ID:            e.ID.String(),
		ContactID:     e.ContactID.String(),
		CompanyID:     e.CompanyID.String(),
		Subject:       e.Subject,
		Status:        e.Status,
		SentAt:        e.SentAt.Format(time.RFC3339),
		FollowUpCount: e.FollowUpCount,
		Outcome:       e.Outcome,
		ReplyNote:     e.ReplyNote,
	}
	if e.FollowUpDate != nil {
		out.FollowUpDate = e.FollowUpDate.Format(time.RFC3339)
	}
	return out
}

func emailWithRefsToOutput(e *models.EmailWithRefs) EmailOutput {
	out := emailToOutput(&e.Email)
	out.ContactName = e.ContactName.String
	out.CompanyName = e.CompanyName.String
	return out
}
