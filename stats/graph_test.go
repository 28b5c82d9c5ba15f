// ABOUTME: Tests for the graphviz network rendering
// ABOUTME: Renders dot output and checks nodes and status edges
package stats

import (
	"bytes"
	"context"
	"testing"

	"github.com/harperreed/outreach/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderGraphDot(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	acme := &models.Company{Name: "Acme", Country: "US"}
	require.NoError(t, store.CreateCompany(ctx, acme))
	ann := &models.Contact{CompanyID: acme.ID, Name: "Ann", Email: "ann@acme.com"}
	require.NoError(t, store.CreateContact(ctx, ann))
	bob := &models.Contact{CompanyID: acme.ID, Name: "Bob", Email: "bob@acme.com"}
	require.NoError(t, store.CreateContact(ctx, bob))

	email := &models.Email{ContactID: ann.ID, CompanyID: acme.ID, Subject: "Hi", Body: "b", Status: models.EmailStatusReplied}
	require.NoError(t, store.CreateEmail(ctx, email))

	var buf bytes.Buffer
	require.NoError(t, RenderGraph(ctx, store, "dot", &buf))

	out := buf.String()
	assert.Contains(t, out, "Acme")
	assert.Contains(t, out, "ann@acme.com")
	assert.Contains(t, out, models.EmailStatusReplied)
	assert.Contains(t, out, "not contacted")
}

func TestRenderGraphUnknownFormat(t *testing.T) {
	store := setupTestStore(t)
	err := RenderGraph(context.Background(), store, "gif", &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown graph format")
}
