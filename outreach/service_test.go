// ABOUTME: Shared fixtures for outreach service tests
// ABOUTME: Provides a temp sqlite store and a scripted generator
package outreach

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/harperreed/outreach/db"
	"github.com/harperreed/outreach/models"
	"github.com/stretchr/testify/require"
)

// scriptedGenerator replays canned replies and records every prompt.
type scriptedGenerator struct {
	mu      sync.Mutex
	replies []string
	err     error
	prompts []string
}

func (g *scriptedGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return "", g.err
	}
	if len(g.replies) == 0 {
		return "SUBJECT: Default\nBODY: Default body", nil
	}
	reply := g.replies[0]
	g.replies = g.replies[1:]
	return reply, nil
}

func (g *scriptedGenerator) Model() string { return "scripted" }

func (g *scriptedGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.prompts)
}

type fixture struct {
	svc     *Service
	store   *db.Store
	gen     *scriptedGenerator
	now     time.Time
	company *models.Company
	contact *models.Contact
}

func setupService(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store, err := db.Open(ctx, db.Options{Driver: db.DriverSQLite, Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	gen := &scriptedGenerator{}
	svc := New(store, gen, nil, nil)
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	svc.SetClock(func() time.Time { return now })

	company, err := svc.CreateCompany(ctx, CompanyInput{Name: "Acme", Country: "US", Website: "acme.com"})
	require.NoError(t, err)
	contact, err := svc.CreateContact(ctx, ContactInput{CompanyID: company.ID.String(), Name: "Ann Lee", Email: "ann@acme.com", RoleTitle: "CTO"})
	require.NoError(t, err)

	return &fixture{svc: svc, store: store, gen: gen, now: now, company: company, contact: contact}
}

func (f *fixture) saveProfile(t *testing.T, maxFollowUps int) {
	t.Helper()
	require.NoError(t, f.store.SaveProfile(context.Background(), &models.Profile{
		FullName:     "Sam Rivera",
		Bio:          "Backend engineer",
		MaxFollowUps: maxFollowUps,
	}))
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	require.Error(t, err)
	return StatusOf(err)
}
