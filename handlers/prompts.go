// ABOUTME: MCP prompt handlers for outreach workflows
// ABOUTME: follow-up-plan assembles an email's context and asks for the next step
package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/harperreed/outreach/outreach"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const FollowUpPlanPrompt = "follow-up-plan"

type PromptHandlers struct {
	svc *outreach.Service
}

func NewPromptHandlers(svc *outreach.Service) *PromptHandlers {
	return &PromptHandlers{svc: svc}
}

func (h *PromptHandlers) GetPrompt(ctx context.Context, request *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	switch request.Params.Name {
	case FollowUpPlanPrompt:
		return h.followUpPlan(ctx, request.Params.Arguments)
	default:
		return nil, fmt.Errorf("unknown prompt: %s", request.Params.Name)
	}
}

func (h *PromptHandlers) followUpPlan(ctx context.Context, args map[string]string) (*mcp.GetPromptResult, error) {
	raw, ok := args["email_id"]
	if !ok {
		return nil, fmt.Errorf("email_id is required")
	}
	id, err := outreach.ParseID(raw, "outreach email")
	if err != nil {
		return nil, err
	}
	email, err := h.svc.GetEmail(ctx, id)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString("Help me plan the next touch for this outreach email:\n\n")
	fmt.Fprintf(&b, "To: %s <%s>\n", email.ContactName.String, email.ContactEmail.String)
	fmt.Fprintf(&b, "Company: %s\n", email.CompanyName.String)
	fmt.Fprintf(&b, "Sent: %s\n", email.SentAt.Format("2006-01-02"))
	fmt.Fprintf(&b, "Status: %s\n", email.Status)
	fmt.Fprintf(&b, "Follow-ups sent: %d\n", email.FollowUpCount)
	if email.FollowUpDate != nil {
		fmt.Fprintf(&b, "Follow-up due: %s\n", email.FollowUpDate.Format("2006-01-02"))
	}
	if email.ReplyNote != "" {
		fmt.Fprintf(&b, "Reply note: %s\n", email.ReplyNote)
	}
	fmt.Fprintf(&b, "\nSubject: %s\n\n%s\n", email.Subject, email.Body)

	b.WriteString("\nPlease suggest:")
	b.WriteString("\n1. Whether to follow up now, wait, or close the thread")
	b.WriteString("\n2. The angle for the next message")
	b.WriteString("\n3. A one-line subject for it")

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Follow-up plan for %s", email.ContactName.String),
		Messages: []*mcp.PromptMessage{
			{
				Role:    "user",
				Content: &mcp.TextContent{Text: b.String()},
			},
		},
	}, nil
}
