// ABOUTME: Company and contact MCP tool handlers
// ABOUTME: Implements list/add/find tools and the two bulk import tools
package handlers

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/outreach/db"
	"github.com/harperreed/outreach/importer"
	"github.com/harperreed/outreach/models"
	"github.com/harperreed/outreach/outreach"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type RecordHandlers struct {
	svc *outreach.Service
}

func NewRecordHandlers(svc *outreach.Service) *RecordHandlers {
	return &RecordHandlers{svc: svc}
}

type CompanyOutput struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Country       string   `json:"country"`
	Website       string   `json:"website,omitempty"`
	CareerPageURL string   `json:"career_page_url,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	Notes         string   `json:"notes,omitempty"`
	Starred       bool     `json:"starred"`
	Archived      bool     `json:"archived"`
	UpdatedAt     string   `json:"updated_at"`
}

type ListCompaniesInput struct {
	Query        string `json:"query,omitempty" jsonschema:"Search name, country or tags"`
	Starred      bool   `json:"starred,omitempty" jsonschema:"Only starred companies"`
	ShowArchived bool   `json:"show_archived,omitempty" jsonschema:"Include archived companies"`
	Limit        int    `json:"limit,omitempty" jsonschema:"Maximum number of results (default 20)"`
}

type ListCompaniesOutput struct {
	Companies []CompanyOutput `json:"companies"`
}

func (h *RecordHandlers) ListCompanies(ctx context.Context, _ *mcp.CallToolRequest, input ListCompaniesInput) (*mcp.CallToolResult, ListCompaniesOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 20
	}
	filter := db.CompanyFilter{Search: input.Query, ShowArchived: input.ShowArchived, Limit: limit}
	if input.Starred {
		filter.Starred = &input.Starred
	}

	companies, err := h.svc.ListCompanies(ctx, filter)
	if err != nil {
		return nil, ListCompaniesOutput{}, fmt.Errorf("failed to list companies: %w", err)
	}
	out := make([]CompanyOutput, len(companies))
	for i := range companies {
		out[i] = companyToOutput(&companies[i])
	}
	return nil, ListCompaniesOutput{Companies: out}, nil
}

type AddCompanyInput struct {
	Name          string   `json:"name" jsonschema:"Company name (required)"`
	Country       string   `json:"country" jsonschema:"Country (required)"`
	Website       string   `json:"website,omitempty" jsonschema:"Website, with or without scheme"`
	CareerPageURL string   `json:"career_page_url,omitempty" jsonschema:"Careers page URL"`
	Tags          []string `json:"tags,omitempty" jsonschema:"Free-form tags"`
	Notes         string   `json:"notes,omitempty"`
}

func (h *RecordHandlers) AddCompany(ctx context.Context, _ *mcp.CallToolRequest, input AddCompanyInput) (*mcp.CallToolResult, CompanyOutput, error) {
	company, err := h.svc.CreateCompany(ctx, outreach.CompanyInput{
		Name:          input.Name,
		Country:       input.Country,
		Website:       input.Website,
		CareerPageURL: input.CareerPageURL,
		Tags:          outreach.TagList(input.Tags),
		Notes:         input.Notes,
	})
	if err != nil {
		return nil, CompanyOutput{}, err
	}
	return nil, companyToOutput(company), nil
}

type ContactOutput struct {
	ID              string `json:"id"`
	CompanyID       string `json:"company_id"`
	CompanyName     string `json:"company_name,omitempty"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	RoleTitle       string `json:"role_title,omitempty"`
	LinkedInURL     string `json:"linkedin_url,omitempty"`
	Status          string `json:"status"`
	LastContactedAt string `json:"last_contacted_at,omitempty"`
	Starred         bool   `json:"starred"`
}

type AddContactInput struct {
	CompanyID   string `json:"company_id,omitempty" jsonschema:"Company ID; either this or company_name is required"`
	CompanyName string `json:"company_name,omitempty" jsonschema:"Existing company name, matched case-insensitively"`
	Name        string `json:"name" jsonschema:"Contact name (required)"`
	Email       string `json:"email" jsonschema:"Email address (required, unique)"`
	RoleTitle   string `json:"role_title,omitempty"`
	LinkedInURL string `json:"linkedin_url,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

func (h *RecordHandlers) AddContact(ctx context.Context, _ *mcp.CallToolRequest, input AddContactInput) (*mcp.CallToolResult, ContactOutput, error) {
	companyID := strings.TrimSpace(input.CompanyID)
	if companyID == "" && strings.TrimSpace(input.CompanyName) != "" {
		company, err := h.svc.Store().FindCompanyByName(ctx, input.CompanyName, true)
		if errors.Is(err, db.ErrNotFound) {
			return nil, ContactOutput{}, fmt.Errorf("company %q not found; add it first", input.CompanyName)
		}
		if err != nil {
			return nil, ContactOutput{}, fmt.Errorf("failed to look up company: %w", err)
		}
		companyID = company.ID.String()
	}

	contact, err := h.svc.CreateContact(ctx, outreach.ContactInput{
		CompanyID:   companyID,
		Name:        input.Name,
		Email:       input.Email,
		RoleTitle:   input.RoleTitle,
		LinkedInURL: input.LinkedInURL,
		Notes:       input.Notes,
	})
	if err != nil {
		return nil, ContactOutput{}, err
	}
	return nil, h.contactToOutput(ctx, contact), nil
}

type FindContactsInput struct {
	Query     string `json:"query,omitempty" jsonschema:"Search name, email or role"`
	CompanyID string `json:"company_id,omitempty" jsonschema:"Only contacts at this company"`
	Status    string `json:"status,omitempty" jsonschema:"new, contacted, replied or closed"`
	Limit     int    `json:"limit,omitempty" jsonschema:"Maximum number of results (default 20)"`
}

type FindContactsOutput struct {
	Contacts []ContactOutput `json:"contacts"`
}

func (h *RecordHandlers) FindContacts(ctx context.Context, _ *mcp.CallToolRequest, input FindContactsInput) (*mcp.CallToolResult, FindContactsOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 20
	}
	filter := db.ContactFilter{Search: input.Query, Status: input.Status, Limit: limit}
	if input.CompanyID != "" {
		id, err := uuid.Parse(input.CompanyID)
		if err != nil {
			return nil, FindContactsOutput{}, fmt.Errorf("invalid company_id: %w", err)
		}
		filter.CompanyID = &id
	}

	contacts, err := h.svc.ListContacts(ctx, filter)
	if err != nil {
		return nil, FindContactsOutput{}, fmt.Errorf("failed to find contacts: %w", err)
	}
	out := make([]ContactOutput, len(contacts))
	for i := range contacts {
		out[i] = h.contactToOutput(ctx, &contacts[i])
	}
	return nil, FindContactsOutput{Contacts: out}, nil
}

type ImportInput struct {
	FilePath      string            `json:"file_path,omitempty" jsonschema:"Path to a CSV or XLSX file"`
	CSVData       string            `json:"csv_data,omitempty" jsonschema:"Inline CSV text, used when file_path is empty"`
	ColumnMapping map[string]string `json:"column_mapping,omitempty" jsonschema:"Source header to field overrides"`
}

func (h *RecordHandlers) ImportCompanies(ctx context.Context, _ *mcp.CallToolRequest, input ImportInput) (*mcp.CallToolResult, importer.Result, error) {
	data, err := input.data()
	if err != nil {
		return nil, importer.Result{}, err
	}
	result, err := h.svc.ImportCompanies(ctx, data, input.ColumnMapping)
	if err != nil {
		return nil, importer.Result{}, describeImportError(err)
	}
	return nil, *result, nil
}

func (h *RecordHandlers) ImportContacts(ctx context.Context, _ *mcp.CallToolRequest, input ImportInput) (*mcp.CallToolResult, importer.Result, error) {
	data, err := input.data()
	if err != nil {
		return nil, importer.Result{}, err
	}
	result, err := h.svc.ImportContacts(ctx, data, input.ColumnMapping)
	if err != nil {
		return nil, importer.Result{}, describeImportError(err)
	}
	return nil, *result, nil
}

func (in ImportInput) data() ([]byte, error) {
	if in.FilePath != "" {
		data, err := os.ReadFile(in.FilePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", in.FilePath, err)
		}
		return data, nil
	}
	return []byte(in.CSVData), nil
}

// describeImportError folds row errors into the message so the client sees them.
func describeImportError(err error) error {
	var svcErr *outreach.Error
	if !errors.As(err, &svcErr) || (len(svcErr.RowErrors) == 0 && len(svcErr.Details) == 0) {
		return err
	}
	var b strings.Builder
	b.WriteString(svcErr.Message)
	for _, d := range svcErr.Details {
		fmt.Fprintf(&b, "\n- %s", d)
	}
	for _, re := range svcErr.RowErrors {
		fmt.Fprintf(&b, "\n- row %d: %s", re.Row, re.Message)
	}
	return errors.New(b.String())
}

func companyToOutput(c *models.Company) CompanyOutput {
	return CompanyOutput{
		ID:            c.ID.String(),
		Name:          c.Name,
		Country:       c.Country,
		Website:       c.Website,
		CareerPageURL: c.CareerPageURL,
		Tags:          c.Tags,
		Notes:         c.Notes,
		Starred:       c.Starred,
		Archived:      c.Archived,
		UpdatedAt:     c.UpdatedAt.Format(time.RFC3339),
	}
}

func (h *RecordHandlers) contactToOutput(ctx context.Context, c *models.Contact) ContactOutput {
	out := ContactOutput{
		ID:          c.ID.String(),
		CompanyID:   c.CompanyID.String(),
		Name:        c.Name,
		Email:       c.Email,
		RoleTitle:   c.RoleTitle,
		LinkedInURL: c.LinkedInURL,
		Status:      c.Status,
		Starred:     c.Starred,
	}
	if c.LastContactedAt != nil {
		out.LastContactedAt = c.LastContactedAt.Format(time.RFC3339)
	}
	if company, err := h.svc.Store().GetCompany(ctx, c.CompanyID); err == nil {
		out.CompanyName = company.Name
	}
	return out
}
