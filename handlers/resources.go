// ABOUTME: MCP resource handlers exposing outreach data read-only
// ABOUTME: Serves companies, the due follow-up queue and stats as JSON under outreach://
package handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/harperreed/outreach/db"
	"github.com/harperreed/outreach/outreach"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	CompaniesURI = "outreach://companies"
	FollowUpsURI = "outreach://followups"
	StatsURI     = "outreach://stats"
)

type ResourceHandlers struct {
	svc *outreach.Service
}

func NewResourceHandlers(svc *outreach.Service) *ResourceHandlers {
	return &ResourceHandlers{svc: svc}
}

// ReadResource handles resource read requests
func (h *ResourceHandlers) ReadResource(ctx context.Context, request *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := request.Params.URI

	var (
		payload interface{}
		err     error
	)
	switch uri {
	case CompaniesURI:
		payload, err = h.companies(ctx)
	case FollowUpsURI:
		payload, err = h.followUps(ctx)
	case StatsURI:
		payload, err = h.svc.Stats(ctx)
	default:
		return nil, fmt.Errorf("unknown resource: %s", uri)
	}
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}}, nil
}

func (h *ResourceHandlers) companies(ctx context.Context) ([]CompanyOutput, error) {
	companies, err := h.svc.ListCompanies(ctx, db.CompanyFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch companies: %w", err)
	}
	out := make([]CompanyOutput, len(companies))
	for i := range companies {
		out[i] = companyToOutput(&companies[i])
	}
	return out, nil
}

func (h *ResourceHandlers) followUps(ctx context.Context) ([]EmailOutput, error) {
	due, err := h.svc.ListDue(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch follow-ups: %w", err)
	}
	out := make([]EmailOutput, len(due))
	for i := range due {
		out[i] = emailWithRefsToOutput(&due[i])
	}
	return out, nil
}
