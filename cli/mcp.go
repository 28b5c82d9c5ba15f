// ABOUTME: MCP server subcommand
// ABOUTME: Serves outreach tools, resources and prompts over stdio
package cli

import (
	"os"

	"github.com/harperreed/outreach/handlers"
	"github.com/harperreed/outreach/outreach"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
)

func newMCPCommand(opts *rootOptions, version string) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run the MCP server on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context(), opts, os.Stderr)
			if err != nil {
				return err
			}
			defer a.Close()

			a.logger.Info("starting outreach MCP server")
			return NewMCPServer(a.svc, version).Run(cmd.Context(), &mcp.StdioTransport{})
		},
	}
}

// NewMCPServer registers every outreach tool, resource and prompt.
func NewMCPServer(svc *outreach.Service, version string) *mcp.Server {
	recordHandlers := handlers.NewRecordHandlers(svc)
	emailHandlers := handlers.NewEmailHandlers(svc)
	draftHandlers := handlers.NewDraftHandlers(svc)
	resourceHandlers := handlers.NewResourceHandlers(svc)
	promptHandlers := handlers.NewPromptHandlers(svc)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "outreach",
		Version: version,
	}, nil)

	// Records
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_companies",
		Description: "List target companies, optionally filtered by search text or starred flag",
	}, recordHandlers.ListCompanies)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_company",
		Description: "Add a target company; name and country identify it",
	}, recordHandlers.AddCompany)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_contact",
		Description: "Add a contact at an existing company",
	}, recordHandlers.AddContact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_contacts",
		Description: "Search contacts by name, email or role",
	}, recordHandlers.FindContacts)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "import_companies",
		Description: "Import companies from a CSV/XLSX file or inline CSV, merging into existing records",
	}, recordHandlers.ImportCompanies)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "import_contacts",
		Description: "Import contacts from a CSV/XLSX file or inline CSV; rows name their company",
	}, recordHandlers.ImportContacts)

	// Emails
	mcp.AddTool(server, &mcp.Tool{
		Name:        "record_email",
		Description: "Record an outreach email that was sent to a contact",
	}, emailHandlers.RecordEmail)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_email_status",
		Description: "Update a sent email's status, outcome, reply note or follow-up schedule",
	}, emailHandlers.UpdateEmailStatus)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_followups_due",
		Description: "List sent emails whose follow-up date has passed, soonest first",
	}, emailHandlers.ListFollowUpsDue)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "outreach_stats",
		Description: "Counts of records, emails by status, reply rate and follow-ups due",
	}, emailHandlers.OutreachStats)

	// Generation
	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_draft",
		Description: "Generate and save a first-contact email draft for a contact and position",
	}, draftHandlers.GenerateDraft)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_followup",
		Description: "Generate a follow-up draft for a sent email",
	}, draftHandlers.GenerateFollowUp)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "improve_email",
		Description: "Rewrite a subject and body: shorten, clarify or confident",
	}, draftHandlers.ImproveEmail)

	for _, r := range []*mcp.Resource{
		{URI: handlers.CompaniesURI, Name: "companies", Description: "Active target companies", MIMEType: "application/json"},
		{URI: handlers.FollowUpsURI, Name: "followups", Description: "Emails due for a follow-up", MIMEType: "application/json"},
		{URI: handlers.StatsURI, Name: "stats", Description: "Outreach dashboard statistics", MIMEType: "application/json"},
	} {
		server.AddResource(r, resourceHandlers.ReadResource)
	}

	server.AddPrompt(&mcp.Prompt{
		Name:        handlers.FollowUpPlanPrompt,
		Description: "Plan the next touch for a sent email",
		Arguments: []*mcp.PromptArgument{
			{Name: "email_id", Description: "The outreach email", Required: true},
		},
	}, promptHandlers.GetPrompt)

	return server
}
