// ABOUTME: Graphviz rendering of the outreach network
// ABOUTME: Companies and contacts become nodes; edges carry the latest email status
package stats

import (
	"context"
	"fmt"
	"io"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
	"github.com/google/uuid"
	"github.com/harperreed/outreach/db"
	"github.com/harperreed/outreach/models"
)

// GraphFormats maps the accepted --format values to renderer formats.
var GraphFormats = map[string]graphviz.Format{
	"dot": graphviz.XDOT,
	"svg": graphviz.SVG,
	"png": graphviz.PNG,
}

const notContacted = "not contacted"

var statusColors = map[string]string{
	models.EmailStatusSent:       "lightyellow",
	models.EmailStatusReplied:    "lightgreen",
	models.EmailStatusNoResponse: "lightpink",
	models.EmailStatusClosed:     "lightgray",
	notContacted:                 "white",
}

// RenderGraph writes the company/contact graph to w in the given format.
func RenderGraph(ctx context.Context, store *db.Store, format string, w io.Writer) error {
	gvFormat, ok := GraphFormats[format]
	if !ok {
		return fmt.Errorf("unknown graph format %q (want dot, svg or png)", format)
	}

	companies, err := store.ListCompanies(ctx, db.CompanyFilter{})
	if err != nil {
		return err
	}
	contacts, err := store.ListContacts(ctx, db.ContactFilter{})
	if err != nil {
		return err
	}
	emails, err := store.ListEmails(ctx, db.EmailFilter{})
	if err != nil {
		return err
	}

	// Emails come back most recently updated first.
	latest := make(map[uuid.UUID]string)
	for _, e := range emails {
		if _, seen := latest[e.ContactID]; !seen {
			latest[e.ContactID] = e.Status
		}
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return fmt.Errorf("failed to create graphviz: %w", err)
	}
	defer gv.Close()

	graph, err := gv.Graph()
	if err != nil {
		return fmt.Errorf("failed to create graph: %w", err)
	}
	defer graph.Close()

	graph.SetLabel("Outreach network")
	graph.SetRankDir(cgraph.LRRank)

	companyNodes := make(map[uuid.UUID]*cgraph.Node, len(companies))
	for _, company := range companies {
		node, err := graph.CreateNodeByName("company_" + company.ID.String())
		if err != nil {
			return fmt.Errorf("failed to create company node: %w", err)
		}
		label := company.Name
		if company.Country != "" {
			label = fmt.Sprintf("%s\n(%s)", company.Name, company.Country)
		}
		node.SetLabel(label)
		node.SetShape("box")
		node.SetStyle("filled")
		node.SetFillColor("lightblue")
		companyNodes[company.ID] = node
	}

	for _, contact := range contacts {
		companyNode, ok := companyNodes[contact.CompanyID]
		if !ok {
			// Company is archived.
			continue
		}
		status, ok := latest[contact.ID]
		if !ok {
			status = notContacted
		}

		node, err := graph.CreateNodeByName("contact_" + contact.ID.String())
		if err != nil {
			return fmt.Errorf("failed to create contact node: %w", err)
		}
		node.SetLabel(fmt.Sprintf("%s\n%s", contact.Name, contact.Email))
		node.SetShape("ellipse")
		node.SetStyle("filled")
		node.SetFillColor(statusColors[status])

		edge, err := graph.CreateEdgeByName(status, node, companyNode)
		if err != nil {
			return fmt.Errorf("failed to create edge: %w", err)
		}
		edge.SetLabel(status)
		if status == notContacted {
			edge.SetStyle("dashed")
		}
	}

	if err := gv.Render(ctx, graph, gvFormat, w); err != nil {
		return fmt.Errorf("failed to render graph: %w", err)
	}
	return nil
}
