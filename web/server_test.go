// ABOUTME: Tests for the JSON API: auth gates, envelopes, status codes and rate limits
// ABOUTME: Each test drives a real Server over a temp sqlite store with httptest
package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/outreach/db"
	"github.com/harperreed/outreach/models"
	"github.com/harperreed/outreach/outreach"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	mu    sync.Mutex
	reply string
	calls int
}

func (g *stubGenerator) Generate(context.Context, string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	return g.reply, nil
}

func (g *stubGenerator) Model() string { return "stub" }

type testEnv struct {
	server *Server
	store  *db.Store
	svc    *outreach.Service
	gen    *stubGenerator
}

func setupServer(t *testing.T, opts Options) *testEnv {
	t.Helper()
	store, err := db.Open(context.Background(), db.Options{Driver: db.DriverSQLite, Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	gen := &stubGenerator{reply: "SUBJECT: Hello Acme\nBODY: Hi Ann,\n\nLet's talk."}
	svc := outreach.New(store, gen, nil, nil)
	server, err := NewServer(svc, opts, nil)
	require.NoError(t, err)
	return &testEnv{server: server, store: store, svc: svc, gen: gen}
}

type response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
	Errors  []struct {
		Row     int    `json:"row"`
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"errors"`
	Details []string `json:"details"`
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, headers ...string) (*httptest.ResponseRecorder, response) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)

	var resp response
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	}
	return rec, resp
}

func decodeData(t *testing.T, resp response, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(resp.Data, dst))
}

func (e *testEnv) createCompany(t *testing.T, name string) string {
	t.Helper()
	rec, resp := e.do(t, http.MethodPost, "/api/outreach/companies", map[string]interface{}{"name": name, "country": "US"})
	require.Equal(t, http.StatusCreated, rec.Code, resp.Error)
	var company companyDTO
	decodeData(t, resp, &company)
	return company.ID
}

func (e *testEnv) createContact(t *testing.T, companyID, email string) string {
	t.Helper()
	rec, resp := e.do(t, http.MethodPost, "/api/outreach/contacts", map[string]interface{}{
		"companyId": companyID, "name": "Ann Lee", "email": email,
	})
	require.Equal(t, http.StatusCreated, rec.Code, resp.Error)
	var contact contactDTO
	decodeData(t, resp, &contact)
	return contact.ID
}

func TestHealthz(t *testing.T) {
	env := setupServer(t, Options{InsecureNoAuth: true})
	rec, resp := env.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", resp.Message)
}

func TestAuthGate(t *testing.T) {
	env := setupServer(t, Options{AuthSecret: "s3cret"})

	rec, resp := env.do(t, http.MethodGet, "/api/outreach/companies", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unauthorized", resp.Error)
	assert.False(t, resp.Success)

	token, err := IssueToken("s3cret", time.Hour)
	require.NoError(t, err)
	rec, _ = env.do(t, http.MethodGet, "/api/outreach/companies", nil, "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/outreach/companies", nil)
	req.AddCookie(&http.Cookie{Name: authCookie, Value: token})
	cookieRec := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(cookieRec, req)
	assert.Equal(t, http.StatusOK, cookieRec.Code)

	forged, err := IssueToken("other", time.Hour)
	require.NoError(t, err)
	rec, _ = env.do(t, http.MethodGet, "/api/outreach/companies", nil, "Authorization", "Bearer "+forged)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	expired, err := IssueToken("s3cret", -time.Minute)
	require.NoError(t, err)
	rec, _ = env.do(t, http.MethodGet, "/api/outreach/companies", nil, "Authorization", "Bearer "+expired)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestEmptySecretFailsClosed(t *testing.T) {
	env := setupServer(t, Options{})

	rec, resp := env.do(t, http.MethodGet, "/api/outreach/companies", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unauthorized", resp.Error)

	forged, err := IssueToken("anything", time.Hour)
	require.NoError(t, err)
	rec, _ = env.do(t, http.MethodGet, "/api/outreach/companies", nil, "Authorization", "Bearer "+forged)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = env.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestParseToken(t *testing.T) {
	_, err := IssueToken("", time.Hour)
	assert.Error(t, err)

	token, err := IssueToken("key", time.Hour)
	require.NoError(t, err)
	subject, err := ParseToken(token, "key")
	require.NoError(t, err)
	assert.Equal(t, TokenSubject, subject)
}

func TestCronSecret(t *testing.T) {
	env := setupServer(t, Options{AuthSecret: "s3cret", CronSecret: "tick"})

	rec, _ := env.do(t, http.MethodGet, "/api/outreach/cron/followups", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, resp := env.do(t, http.MethodPost, "/api/outreach/cron/followups?secret=tick", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var result outreach.SweepResult
	decodeData(t, resp, &result)
	assert.Equal(t, 0, result.Processed)
}

func TestCompanyLifecycle(t *testing.T) {
	env := setupServer(t, Options{InsecureNoAuth: true})
	id := env.createCompany(t, "Acme")

	rec, resp := env.do(t, http.MethodPost, "/api/outreach/companies", map[string]interface{}{"name": "ACME", "country": "us"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Company already exists", resp.Error)

	rec, resp = env.do(t, http.MethodPost, "/api/outreach/companies", map[string]interface{}{"country": "US"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEmpty(t, resp.Error)

	rec, resp = env.do(t, http.MethodGet, "/api/outreach/companies", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []companyDTO
	decodeData(t, resp, &list)
	require.Len(t, list, 1)
	assert.Equal(t, "Acme", list[0].Name)
	assert.Equal(t, []string{}, list[0].Tags)

	rec, resp = env.do(t, http.MethodPost, "/api/outreach/companies/"+id+"/star", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var starred companyDTO
	decodeData(t, resp, &starred)
	assert.True(t, starred.Starred)

	rec, resp = env.do(t, http.MethodPatch, "/api/outreach/companies/"+id, map[string]interface{}{"website": "acme.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	var patched companyDTO
	decodeData(t, resp, &patched)
	assert.Equal(t, "acme.com", patched.Website)

	rec, resp = env.do(t, http.MethodGet, "/api/outreach/companies/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid company id", resp.Error)

	rec, resp = env.do(t, http.MethodGet, "/api/outreach/companies/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Company not found", resp.Error)

	env.createContact(t, id, "ann@acme.com")
	rec, resp = env.do(t, http.MethodDelete, "/api/outreach/companies/"+id, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Delete contacts linked to this company first", resp.Error)
}

func TestInvalidJSONBody(t *testing.T) {
	env := setupServer(t, Options{InsecureNoAuth: true})
	req := httptest.NewRequest(http.MethodPost, "/api/outreach/companies", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid JSON body")
}

func TestImportValidationEnvelope(t *testing.T) {
	env := setupServer(t, Options{InsecureNoAuth: true})

	rec, resp := env.do(t, http.MethodPost, "/api/outreach/companies/bulk", map[string]interface{}{
		"csvData": "Company Name,Country\n,US\nGlobex,\n",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "All rows have validation errors", resp.Error)
	require.Len(t, resp.Errors, 2)
	assert.Equal(t, "companyname", resp.Errors[0].Field)

	rec, resp = env.do(t, http.MethodPost, "/api/outreach/companies/bulk", map[string]interface{}{
		"csvData": "Company Name,Country\nGlobex,DE\nInitech,US\n",
	})
	require.Equal(t, http.StatusOK, rec.Code, resp.Error)
	var result struct {
		Imported int `json:"imported"`
		Total    int `json:"total"`
	}
	decodeData(t, resp, &result)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 2, result.Total)
}

func TestEmailRoutes(t *testing.T) {
	env := setupServer(t, Options{InsecureNoAuth: true})
	companyID := env.createCompany(t, "Acme")
	contactID := env.createContact(t, companyID, "ann@acme.com")

	rec, resp := env.do(t, http.MethodPost, "/api/outreach/emails", map[string]interface{}{
		"contactId":    contactID,
		"subject":      "Hello",
		"body":         "Hi Ann",
		"followUpDate": "2000-01-01T00:00:00Z",
	})
	require.Equal(t, http.StatusCreated, rec.Code, resp.Error)
	var email emailDTO
	decodeData(t, resp, &email)
	assert.Equal(t, models.EmailStatusSent, email.Status)

	rec, resp = env.do(t, http.MethodGet, "/api/outreach/followups", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var due []emailDTO
	decodeData(t, resp, &due)
	require.Len(t, due, 1)

	rec, resp = env.do(t, http.MethodPatch, "/api/outreach/emails/"+email.ID, map[string]interface{}{"status": "bogus"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid status. Must be one of: sent, replied, no_response, closed", resp.Error)

	rec, resp = env.do(t, http.MethodPatch, "/api/outreach/emails/"+email.ID, map[string]interface{}{"status": "replied"})
	require.Equal(t, http.StatusOK, rec.Code, resp.Error)
	var replied emailDTO
	decodeData(t, resp, &replied)
	assert.Equal(t, models.EmailStatusReplied, replied.Status)

	rec, resp = env.do(t, http.MethodGet, "/api/outreach/followups", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, resp, &due)
	assert.Empty(t, due)

	rec, resp = env.do(t, http.MethodGet, "/api/outreach/emails/bad", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid outreach email id", resp.Error)

	rec, resp = env.do(t, http.MethodDelete, "/api/outreach/emails/"+email.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Outreach email deleted", resp.Message)

	rec, resp = env.do(t, http.MethodGet, "/api/outreach/emails/"+email.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Outreach email not found", resp.Error)
}

func TestRemindersAndNotifications(t *testing.T) {
	env := setupServer(t, Options{InsecureNoAuth: true})
	companyID := env.createCompany(t, "Acme")
	contactID := env.createContact(t, companyID, "ann@acme.com")
	rec, _ := env.do(t, http.MethodPost, "/api/outreach/emails", map[string]interface{}{
		"contactId": contactID, "subject": "Hello", "body": "Hi", "followUpDate": "2000-01-01T00:00:00Z",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, resp := env.do(t, http.MethodGet, "/api/outreach/cron/followups", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var result outreach.SweepResult
	decodeData(t, resp, &result)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 1, result.NotificationsCreated)

	rec, resp = env.do(t, http.MethodGet, "/api/outreach/notifications?unread=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var notifications []notificationDTO
	decodeData(t, resp, &notifications)
	require.Len(t, notifications, 1)
	assert.Equal(t, "Follow-up Reminder", notifications[0].Title)

	rec, _ = env.do(t, http.MethodPost, "/api/outreach/notifications/"+notifications[0].ID+"/read", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, resp = env.do(t, http.MethodGet, "/api/outreach/notifications?unread=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, resp, &notifications)
	assert.Empty(t, notifications)

	rec, resp = env.do(t, http.MethodGet, "/api/outreach/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats struct {
		Emails       int `json:"emails"`
		FollowUpsDue int `json:"followUpsDue"`
	}
	decodeData(t, resp, &stats)
	assert.Equal(t, 1, stats.Emails)
	assert.Equal(t, 1, stats.FollowUpsDue)
}

func TestGenerateDraftRoute(t *testing.T) {
	env := setupServer(t, Options{InsecureNoAuth: true})
	companyID := env.createCompany(t, "Acme")
	contactID := env.createContact(t, companyID, "ann@acme.com")

	rec, resp := env.do(t, http.MethodPost, "/api/outreach/ai/draft", map[string]interface{}{"contactId": contactID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing required fields: contactId, companyId, jobTitle", resp.Error)

	require.NoError(t, env.store.SaveProfile(context.Background(), &models.Profile{FullName: "Sam Rivera", Bio: "Backend engineer"}))

	rec, resp = env.do(t, http.MethodPost, "/api/outreach/ai/draft", map[string]interface{}{
		"contactId": contactID, "companyId": companyID, "jobTitle": "Staff Engineer",
	})
	require.Equal(t, http.StatusOK, rec.Code, resp.Error)
	var draft draftDTO
	decodeData(t, resp, &draft)
	assert.Equal(t, "Hello Acme", draft.Subject)
	assert.Equal(t, "stub", draft.ModelUsed)

	rec, resp = env.do(t, http.MethodGet, "/api/outreach/ai/draft?contactId="+contactID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var drafts []draftDTO
	decodeData(t, resp, &drafts)
	require.Len(t, drafts, 1)

	rec, _ = env.do(t, http.MethodDelete, "/api/outreach/drafts/"+draft.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, resp = env.do(t, http.MethodPost, "/api/outreach/ai/improve", map[string]interface{}{
		"currentSubject": "Hi", "currentBody": "Body", "improvementType": "louder",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEmpty(t, resp.Error)
}

func TestAIRateLimit(t *testing.T) {
	env := setupServer(t, Options{AIRateLimit: "2-M", InsecureNoAuth: true})

	for i := 0; i < 2; i++ {
		rec, _ := env.do(t, http.MethodPost, "/api/outreach/ai/improve", map[string]interface{}{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	}
	rec, resp := env.do(t, http.MethodPost, "/api/outreach/ai/improve", map[string]interface{}{})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "Too many requests", resp.Error)

	// Record routes are not limited.
	rec, _ = env.do(t, http.MethodGet, "/api/outreach/companies", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestInvalidRateLimit(t *testing.T) {
	store, err := db.Open(context.Background(), db.Options{Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	defer store.Close()

	_, err = NewServer(outreach.New(store, nil, nil, nil), Options{AIRateLimit: "lots"}, nil)
	assert.Error(t, err)
}
