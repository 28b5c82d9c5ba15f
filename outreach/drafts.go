// ABOUTME: Draft generation pipeline for cold emails, follow-ups and rewrites
// ABOUTME: Gathers context, builds a prompt, calls the generator and saves the draft
package outreach

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/outreach/db"
	"github.com/harperreed/outreach/metrics"
	"github.com/harperreed/outreach/models"
	"golang.org/x/sync/errgroup"
)

const (
	draftProjectLimit = 3
	draftSkillLimit   = 10
)

type DraftRequest struct {
	ContactID          string   `json:"contactId"`
	CompanyID          string   `json:"companyId"`
	JobTitle           string   `json:"jobTitle" validate:"max=200"`
	JobDescription     string   `json:"jobDescription" validate:"max=10000"`
	Tone               string   `json:"tone"`
	SelectedProjectIDs []string `json:"selectedProjectIds"`
	SelectedSkillIDs   []string `json:"selectedSkillIds"`
}

type FollowUpRequest struct {
	EmailID string `json:"emailId"`
	Tone    string `json:"tone"`
}

type ImproveRequest struct {
	CurrentSubject  string `json:"currentSubject"`
	CurrentBody     string `json:"currentBody"`
	ImprovementType string `json:"improvementType"`
}

// FollowUpDraft is a saved follow-up draft with its scheduling hints.
type FollowUpDraft struct {
	Draft                 *models.Draft
	FollowUpNumber        int
	SuggestedFollowUpDate time.Time
}

// Improved is a rewritten subject and body. It is never persisted.
type Improved struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// GenerateDraft writes a first-contact email for a contact and position.
func (s *Service) GenerateDraft(ctx context.Context, req DraftRequest) (*models.Draft, error) {
	trimAll(&req.ContactID, &req.CompanyID, &req.JobTitle, &req.JobDescription, &req.Tone)
	if req.ContactID == "" || req.CompanyID == "" || req.JobTitle == "" {
		return nil, BadRequest("Missing required fields: contactId, companyId, jobTitle")
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	contactID, err := ParseID(req.ContactID, "contact")
	if err != nil {
		return nil, err
	}
	companyID, err := ParseID(req.CompanyID, "company")
	if err != nil {
		return nil, err
	}
	projectIDs, err := parseIDList(req.SelectedProjectIDs, "selectedProjectIds")
	if err != nil {
		return nil, err
	}
	skillIDs, err := parseIDList(req.SelectedSkillIDs, "selectedSkillIds")
	if err != nil {
		return nil, err
	}

	contact, company, err := s.fetchRecipient(ctx, contactID, companyID)
	if err != nil {
		return nil, err
	}
	profile, err := s.store.GetProfile(ctx)
	if err != nil {
		return nil, storeError(err, "Settings not found")
	}
	tone, err := resolveTone(req.Tone, profile)
	if err != nil {
		return nil, err
	}

	projects, err := s.draftProjects(ctx, projectIDs)
	if err != nil {
		return nil, err
	}
	skills, err := s.draftSkills(ctx, skillIDs)
	if err != nil {
		return nil, err
	}

	portfolio := portfolioContext{Name: profile.FullName, Bio: profile.Bio, Projects: projects}
	usedProjects := models.StringList{}
	for _, p := range projects {
		usedProjects = append(usedProjects, p.ID.String())
	}
	usedSkills := models.StringList{}
	for _, sk := range skills {
		portfolio.Skills = append(portfolio.Skills, sk.Name)
		usedSkills = append(usedSkills, sk.ID.String())
	}

	prompt := buildDraftPrompt(draftPrompt{
		ContactName:    contact.Name,
		CompanyName:    company.Name,
		JobTitle:       req.JobTitle,
		JobDescription: req.JobDescription,
		Tone:           tone,
		Portfolio:      portfolio,
	})
	subject, body, err := s.generate(ctx, "draft", prompt)
	if err != nil {
		return nil, err
	}

	intent := models.IntentCold
	if req.JobDescription != "" {
		intent = models.IntentPostApplication
	}
	draft := &models.Draft{
		ContactID:          contact.ID,
		CompanyID:          company.ID,
		Intent:             intent,
		Tone:               tone,
		JobTitle:           req.JobTitle,
		JobDescription:     req.JobDescription,
		SelectedProjectIDs: usedProjects,
		SelectedSkillIDs:   usedSkills,
		Subject:            subject,
		Body:               body,
		ModelUsed:          s.gen.Model(),
	}
	if err := s.store.CreateDraft(ctx, draft); err != nil {
		return nil, fmt.Errorf("failed to save draft: %w", err)
	}
	s.logger.Info("draft generated", "id", draft.ID, "contact_id", contact.ID, "intent", intent)
	return draft, nil
}

// GenerateFollowUp writes the next follow-up for a recorded email. The cap
// is checked before any generation call.
func (s *Service) GenerateFollowUp(ctx context.Context, req FollowUpRequest) (*FollowUpDraft, error) {
	trimAll(&req.EmailID, &req.Tone)
	if req.EmailID == "" {
		return nil, BadRequest("Missing required field: emailId")
	}
	emailID, err := ParseID(req.EmailID, "email")
	if err != nil {
		return nil, err
	}
	email, err := s.store.GetEmail(ctx, emailID)
	if err != nil {
		return nil, storeError(err, "Email not found")
	}
	profile, err := s.store.GetProfile(ctx)
	if err != nil {
		return nil, storeError(err, "Settings not found")
	}
	maxFollowUps := profileMaxFollowUps(profile)
	if email.FollowUpCount >= maxFollowUps {
		return nil, BadRequest("Maximum follow-ups (%d) reached", maxFollowUps)
	}
	tone, err := resolveTone(req.Tone, profile)
	if err != nil {
		return nil, err
	}

	contact, company, err := s.fetchRecipient(ctx, email.ContactID, email.CompanyID)
	if err != nil {
		return nil, err
	}

	number := email.FollowUpCount + 1
	prompt := buildFollowUpPrompt(followUpPrompt{
		ContactName:     contact.Name,
		CompanyName:     company.Name,
		OriginalSubject: email.Subject,
		OriginalBody:    email.Body,
		FollowUpNumber:  number,
		Tone:            tone,
		SenderName:      profile.FullName,
		SenderBio:       profile.Bio,
	})
	subject, body, err := s.generate(ctx, "followup", prompt)
	if err != nil {
		return nil, err
	}

	draft := &models.Draft{
		ContactID: email.ContactID,
		CompanyID: email.CompanyID,
		Intent:    models.IntentFollowUp,
		Tone:      tone,
		Subject:   subject,
		Body:      body,
		ModelUsed: s.gen.Model(),
	}
	if err := s.store.CreateDraft(ctx, draft); err != nil {
		return nil, fmt.Errorf("failed to save draft: %w", err)
	}
	s.logger.Info("follow-up generated", "id", draft.ID, "email_id", email.ID, "number", number)

	return &FollowUpDraft{
		Draft:                 draft,
		FollowUpNumber:        number,
		SuggestedFollowUpDate: s.now().AddDate(0, 0, profileGapDays(profile)),
	}, nil
}

// Improve rewrites an email according to improvementType.
func (s *Service) Improve(ctx context.Context, req ImproveRequest) (*Improved, error) {
	trimAll(&req.CurrentSubject, &req.CurrentBody, &req.ImprovementType)
	if req.CurrentSubject == "" || req.CurrentBody == "" || req.ImprovementType == "" {
		return nil, BadRequest("Missing required fields: currentSubject, currentBody, improvementType")
	}
	if _, ok := improvementInstructions[req.ImprovementType]; !ok {
		return nil, BadRequest("Invalid improvementType. Must be: shorten, clarify, or confident")
	}

	subject, body, err := s.generate(ctx, "improve", buildImprovePrompt(req.CurrentSubject, req.CurrentBody, req.ImprovementType))
	if err != nil {
		return nil, err
	}
	return &Improved{Subject: subject, Body: body}, nil
}

func (s *Service) ListDrafts(ctx context.Context, filter db.DraftFilter) ([]models.Draft, error) {
	return s.store.ListDrafts(ctx, filter)
}

func (s *Service) DeleteDraft(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeleteDraft(ctx, id); err != nil {
		return storeError(err, "Draft not found")
	}
	return nil
}

// fetchRecipient loads a contact and a company concurrently.
func (s *Service) fetchRecipient(ctx context.Context, contactID, companyID uuid.UUID) (*models.Contact, *models.Company, error) {
	var (
		contact *models.Contact
		company *models.Company
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		contact, err = s.store.GetContact(gctx, contactID)
		return err
	})
	g.Go(func() error {
		var err error
		company, err = s.store.GetCompany(gctx, companyID)
		return err
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, nil, NotFound("Contact or company not found")
		}
		return nil, nil, err
	}
	return contact, company, nil
}

func (s *Service) draftProjects(ctx context.Context, ids []uuid.UUID) ([]models.Project, error) {
	if len(ids) > 0 {
		return s.store.PublishedProjectsByIDs(ctx, ids)
	}
	return s.store.FeaturedProjects(ctx, draftProjectLimit)
}

func (s *Service) draftSkills(ctx context.Context, ids []uuid.UUID) ([]models.Skill, error) {
	if len(ids) > 0 {
		return s.store.SkillsByIDs(ctx, ids)
	}
	return s.store.FeaturedSkills(ctx, draftSkillLimit)
}

// generate calls the generator and parses its reply. Failures are reported
// with status 500 and the generator's message.
func (s *Service) generate(ctx context.Context, kind, prompt string) (string, string, error) {
	start := time.Now()
	text, err := s.gen.Generate(ctx, prompt)
	metrics.RecordGeneration(kind, err, time.Since(start))
	if err != nil {
		s.logger.Error("generation failed", "kind", kind, "model", s.gen.Model(), "error", err)
		return "", "", &Error{Status: http.StatusInternalServerError, Message: err.Error()}
	}
	s.logger.Debug("generation finished", "kind", kind, "model", s.gen.Model(), "duration", time.Since(start))
	subject, body := parseGenerated(text)
	return subject, body, nil
}

func resolveTone(requested string, profile *models.Profile) (string, error) {
	tone := requested
	if tone == "" && profile != nil {
		tone = profile.DefaultTone
	}
	if tone == "" {
		tone = models.ToneProfessional
	}
	if !models.IsValidTone(tone) {
		return "", BadRequest("Invalid tone. Must be one of: %s", strings.Join(models.Tones, ", "))
	}
	return tone, nil
}

func parseIDList(raw []string, field string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, r := range raw {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		id, err := uuid.Parse(r)
		if err != nil {
			return nil, BadRequest("Invalid %s", field)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
