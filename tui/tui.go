// ABOUTME: Terminal follow-up queue built on bubbletea
// ABOUTME: Lists due or all emails and updates the selected one from the keyboard
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/harperreed/outreach/db"
	"github.com/harperreed/outreach/models"
	"github.com/harperreed/outreach/outreach"
)

// ViewMode selects which emails the table shows.
type ViewMode int

const (
	ViewDue ViewMode = iota
	ViewAll
)

const allEmailsLimit = 200

type emailsLoadedMsg struct {
	view   ViewMode
	emails []models.EmailWithRefs
	err    error
}

type emailUpdatedMsg struct {
	email *models.Email
	err   error
}

// Model is the bubbletea model for the review screen.
type Model struct {
	ctx    context.Context
	svc    *outreach.Service
	view   ViewMode
	emails []models.EmailWithRefs
	table  table.Model
	status string
	err    error
	width  int
	height int
}

func NewModel(ctx context.Context, svc *outreach.Service) Model {
	t := table.New(
		table.WithColumns(columns(80)),
		table.WithFocused(true),
		table.WithHeight(14),
	)
	return Model{ctx: ctx, svc: svc, view: ViewDue, table: t, width: 80, height: 24}
}

func (m Model) Init() tea.Cmd {
	return m.load()
}

func (m Model) load() tea.Cmd {
	view := m.view
	return func() tea.Msg {
		var (
			emails []models.EmailWithRefs
			err    error
		)
		if view == ViewDue {
			emails, err = m.svc.ListDue(m.ctx)
		} else {
			emails, err = m.svc.ListEmails(m.ctx, db.EmailFilter{Limit: allEmailsLimit})
		}
		return emailsLoadedMsg{view: view, emails: emails, err: err}
	}
}

func (m Model) update(id uuid.UUID, patch outreach.EmailPatch) tea.Cmd {
	return func() tea.Msg {
		email, err := m.svc.UpdateEmail(m.ctx, id, patch)
		return emailUpdatedMsg{email: email, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.table.SetColumns(columns(msg.Width))
		m.table.SetHeight(max(msg.Height-8, 3))
		return m, nil

	case emailsLoadedMsg:
		if msg.view != m.view {
			return m, nil
		}
		m.err = msg.err
		m.emails = msg.emails
		m.table.SetRows(rows(msg.emails))
		if m.table.Cursor() >= len(msg.emails) {
			m.table.SetCursor(max(len(msg.emails)-1, 0))
		}
		return m, nil

	case emailUpdatedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.status = fmt.Sprintf("%s → %s", msg.email.Subject, msg.email.Status)
		return m, m.load()

	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}
	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "tab":
		if m.view == ViewDue {
			m.view = ViewAll
		} else {
			m.view = ViewDue
		}
		m.table.SetCursor(0)
		m.status = ""
		return m, m.load()
	case "r":
		return m, m.setStatus(models.EmailStatusReplied)
	case "n":
		return m, m.setStatus(models.EmailStatusNoResponse)
	case "c":
		return m, m.setStatus(models.EmailStatusClosed)
	case "f":
		selected := m.selected()
		if selected == nil {
			return m, nil
		}
		count := selected.FollowUpCount + 1
		return m, m.update(selected.ID, outreach.EmailPatch{FollowUpCount: &count})
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) setStatus(status string) tea.Cmd {
	selected := m.selected()
	if selected == nil {
		return nil
	}
	return m.update(selected.ID, outreach.EmailPatch{Status: &status})
}

func (m Model) selected() *models.EmailWithRefs {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.emails) {
		return nil
	}
	return &m.emails[i]
}

func (m Model) View() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("OUTREACH FOLLOW-UPS"))
	s.WriteString("\n")
	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")

	if len(m.emails) == 0 && m.err == nil {
		if m.view == ViewDue {
			s.WriteString("Nothing due. Nice.")
		} else {
			s.WriteString("No emails recorded yet.")
		}
	} else {
		s.WriteString(m.table.View())
	}
	s.WriteString("\n")

	switch {
	case m.err != nil:
		s.WriteString(errorStyle.Render("Error: " + m.err.Error()))
	case m.status != "":
		s.WriteString(statusStyle.Render(m.status))
	}
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("↑/↓: move • r: replied • n: no response • c: closed • f: follow-up sent • tab: switch view • q: quit"))
	return s.String()
}

func (m Model) renderTabs() string {
	tabs := []string{"Due", "All emails"}
	rendered := make([]string, len(tabs))
	for i, tab := range tabs {
		if ViewMode(i) == m.view {
			rendered[i] = tabActiveStyle.Render(tab)
		} else {
			rendered[i] = tabInactiveStyle.Render(tab)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func columns(width int) []table.Column {
	subject := max(width-78, 20)
	return []table.Column{
		{Title: "Contact", Width: 20},
		{Title: "Company", Width: 16},
		{Title: "Subject", Width: subject},
		{Title: "Status", Width: 12},
		{Title: "Due", Width: 10},
		{Title: "F/U", Width: 4},
	}
}

func rows(emails []models.EmailWithRefs) []table.Row {
	out := make([]table.Row, 0, len(emails))
	for _, e := range emails {
		due := ""
		if e.FollowUpDate != nil {
			due = e.FollowUpDate.Format("2006-01-02")
		}
		out = append(out, table.Row{
			e.ContactName.String,
			e.CompanyName.String,
			e.Subject,
			e.Status,
			due,
			fmt.Sprintf("%d", e.FollowUpCount),
		})
	}
	return out
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			MarginBottom(1)

	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Background(lipgloss.Color("235")).
			Padding(0, 2)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Padding(0, 2)

	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)
)
