// ABOUTME: Outreach dashboard statistics and terminal rendering
// ABOUTME: Recomputes counts and summaries from the store on every call
package stats

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/outreach/db"
	"github.com/harperreed/outreach/models"
	"golang.org/x/sync/errgroup"
)

type Stats struct {
	Companies      int            `json:"companies"`
	Contacts       int            `json:"contacts"`
	Emails         int            `json:"emails"`
	TemplatesCount int            `json:"templatesCount"`
	FollowUpsDue   int            `json:"followUpsDue"`
	EmailsList     []EmailSummary `json:"emailsList"`
	CompaniesList  []CompanyRef   `json:"companiesList"`
	Templates      []TemplateRef  `json:"templates"`
}

type EmailSummary struct {
	ID              string       `json:"id"`
	ContactID       string       `json:"contactId"`
	CompanyID       string       `json:"companyId"`
	TemplateID      string       `json:"templateId,omitempty"`
	Subject         string       `json:"subject"`
	Body            string       `json:"body"`
	Status          string       `json:"status"`
	SentAt          time.Time    `json:"sentAt"`
	FollowUpDate    *time.Time   `json:"followUpDate,omitempty"`
	FollowUpCount   int          `json:"followUpCount"`
	ReplyReceivedAt *time.Time   `json:"replyReceivedAt,omitempty"`
	Outcome         string       `json:"outcome,omitempty"`
	Contact         *ContactRef  `json:"contact,omitempty"`
	Company         *CompanyRef  `json:"company,omitempty"`
	Template        *TemplateRef `json:"template,omitempty"`
}

type ContactRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type CompanyRef struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country,omitempty"`
}

type TemplateRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Compute gathers dashboard statistics. The due count uses the same
// predicate as the follow-up list with the given cap.
func Compute(ctx context.Context, store *db.Store, now time.Time, maxFollowUps int) (*Stats, error) {
	var (
		counts    *db.Counts
		emails    []models.EmailWithRefs
		companies []models.Company
		templates []models.Template
		due       int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		counts, err = store.CountAll(gctx)
		return err
	})
	g.Go(func() (err error) {
		emails, err = store.ListEmails(gctx, db.EmailFilter{})
		return err
	})
	g.Go(func() (err error) {
		companies, err = store.ListCompanies(gctx, db.CompanyFilter{ShowArchived: true})
		return err
	})
	g.Go(func() (err error) {
		templates, err = store.ListTemplates(gctx, db.TemplateFilter{})
		return err
	})
	g.Go(func() (err error) {
		due, err = store.CountDueEmails(gctx, now, maxFollowUps)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to compute stats: %w", err)
	}

	stats := &Stats{
		Companies:      counts.Companies,
		Contacts:       counts.Contacts,
		Emails:         counts.Emails,
		TemplatesCount: counts.Templates,
		FollowUpsDue:   due,
		EmailsList:     make([]EmailSummary, 0, len(emails)),
		CompaniesList:  make([]CompanyRef, 0, len(companies)),
		Templates:      make([]TemplateRef, 0, len(templates)),
	}
	for _, e := range emails {
		stats.EmailsList = append(stats.EmailsList, summarize(e))
	}
	for _, c := range companies {
		stats.CompaniesList = append(stats.CompaniesList, CompanyRef{ID: c.ID.String(), Name: c.Name, Country: c.Country})
	}
	for _, t := range templates {
		stats.Templates = append(stats.Templates, TemplateRef{ID: t.ID.String(), Name: t.Name})
	}
	return stats, nil
}

func summarize(e models.EmailWithRefs) EmailSummary {
	s := EmailSummary{
		ID:              e.ID.String(),
		ContactID:       e.ContactID.String(),
		CompanyID:       e.CompanyID.String(),
		Subject:         e.Subject,
		Body:            e.Body,
		Status:          e.Status,
		SentAt:          e.SentAt,
		FollowUpDate:    e.FollowUpDate,
		FollowUpCount:   e.FollowUpCount,
		ReplyReceivedAt: e.ReplyReceivedAt,
		Outcome:         e.Outcome,
	}
	if e.ContactName.Valid {
		s.Contact = &ContactRef{ID: s.ContactID, Name: e.ContactName.String, Email: e.ContactEmail.String}
	}
	if e.CompanyName.Valid {
		s.Company = &CompanyRef{ID: s.CompanyID, Name: e.CompanyName.String}
	}
	if e.TemplateID.Valid {
		s.TemplateID = e.TemplateID.UUID.String()
		if e.TemplateName.Valid {
			s.Template = &TemplateRef{ID: s.TemplateID, Name: e.TemplateName.String}
		}
	}
	return s
}

// StatusBreakdown counts listed emails per lifecycle status.
func (s *Stats) StatusBreakdown() map[string]int {
	out := make(map[string]int, len(models.EmailStatuses))
	for _, e := range s.EmailsList {
		out[e.Status]++
	}
	return out
}

// ReplyRate is the share of emails that got a reply, 0 when none were sent.
func (s *Stats) ReplyRate() float64 {
	if len(s.EmailsList) == 0 {
		return 0
	}
	replied := 0
	for _, e := range s.EmailsList {
		if e.ReplyReceivedAt != nil || e.Status == models.EmailStatusReplied {
			replied++
		}
	}
	return float64(replied) / float64(len(s.EmailsList))
}

func RenderDashboard(stats *Stats) string {
	var out strings.Builder

	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	out.WriteString("  OUTREACH DASHBOARD\n")
	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

	out.WriteString("EMAILS BY STATUS\n")
	renderStatuses(&out, stats.StatusBreakdown())
	out.WriteString("\n")

	out.WriteString("STATS\n")
	out.WriteString(fmt.Sprintf("  🏢 %d companies  📇 %d contacts  ✉️  %d emails  📝 %d templates\n",
		stats.Companies, stats.Contacts, stats.Emails, stats.TemplatesCount))
	out.WriteString(fmt.Sprintf("  Reply rate: %.0f%%\n\n", stats.ReplyRate()*100))

	if stats.FollowUpsDue > 0 {
		out.WriteString("NEEDS ATTENTION\n")
		out.WriteString(fmt.Sprintf("  ⚠️  %d follow-ups due\n", stats.FollowUpsDue))
	}

	return out.String()
}

func renderStatuses(out *strings.Builder, byStatus map[string]int) {
	maxCount := 0
	for _, n := range byStatus {
		if n > maxCount {
			maxCount = n
		}
	}
	if maxCount == 0 {
		maxCount = 1
	}

	for _, status := range models.EmailStatuses {
		n := byStatus[status]
		barLength := (n * 10) / maxCount
		bar := strings.Repeat("█", barLength) + strings.Repeat("░", 10-barLength)
		out.WriteString(fmt.Sprintf("  %-12s %s  %2d\n", status, bar, n))
	}
}
