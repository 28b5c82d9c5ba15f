// ABOUTME: Portfolio database operations for the operator profile, projects and skills
// ABOUTME: Supplies the highlight context that draft generation feeds into prompts
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/harperreed/outreach/models"
	"github.com/jmoiron/sqlx"
)

const (
	projectColumns = `id, title, short_description, technologies, status, featured, sort_order`
	skillColumns   = `id, name, featured, sort_order`
)

// GetProfile returns the single operator profile row.
func (s *Store) GetProfile(ctx context.Context) (*models.Profile, error) {
	var profile models.Profile
	err := s.db.GetContext(ctx, &profile, `
		SELECT full_name, bio, default_tone, default_follow_up_gap_days, max_follow_ups, signature_snippet, updated_at
		FROM profile WHERE id = 1
	`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotConfigured
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// SaveProfile creates or replaces the operator profile.
func (s *Store) SaveProfile(ctx context.Context, profile *models.Profile) error {
	profile.UpdatedAt = s.now()
	if profile.DefaultTone == "" {
		profile.DefaultTone = models.ToneProfessional
	}
	if profile.DefaultFollowUpGapDays <= 0 {
		profile.DefaultFollowUpGapDays = models.DefaultFollowUpGapDays
	}

	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO profile (id, full_name, bio, default_tone, default_follow_up_gap_days, max_follow_ups, signature_snippet, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			full_name = excluded.full_name,
			bio = excluded.bio,
			default_tone = excluded.default_tone,
			default_follow_up_gap_days = excluded.default_follow_up_gap_days,
			max_follow_ups = excluded.max_follow_ups,
			signature_snippet = excluded.signature_snippet,
			updated_at = excluded.updated_at
	`), profile.FullName, profile.Bio, profile.DefaultTone, profile.DefaultFollowUpGapDays, profile.MaxFollowUps,
		profile.SignatureSnippet, profile.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// UpsertProject inserts the project, or replaces it when the id already exists.
func (s *Store) UpsertProject(ctx context.Context, project *models.Project) error {
	if project.ID == uuid.Nil {
		project.ID = uuid.New()
	}
	if project.Status == "" {
		project.Status = models.ProjectStatusDraft
	}
	if project.Technologies == nil {
		project.Technologies = models.StringList{}
	}

	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO projects (`+projectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			short_description = excluded.short_description,
			technologies = excluded.technologies,
			status = excluded.status,
			featured = excluded.featured,
			sort_order = excluded.sort_order
	`), project.ID, project.Title, project.ShortDescription, project.Technologies, project.Status, project.Featured, project.SortOrder)
	return err
}

// UpsertSkill inserts the skill, or replaces it when the id already exists.
func (s *Store) UpsertSkill(ctx context.Context, skill *models.Skill) error {
	if skill.ID == uuid.Nil {
		skill.ID = uuid.New()
	}
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO skills (`+skillColumns+`)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			featured = excluded.featured,
			sort_order = excluded.sort_order
	`), skill.ID, skill.Name, skill.Featured, skill.SortOrder)
	return err
}

// PublishedProjectsByIDs returns the published projects among ids, ordered by sort order.
func (s *Store) PublishedProjectsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Project, error) {
	projects := []models.Project{}
	if len(ids) == 0 {
		return projects, nil
	}
	query, args, err := sqlx.In(`SELECT `+projectColumns+` FROM projects WHERE id IN (?) AND status = ? ORDER BY sort_order ASC`,
		ids, models.ProjectStatusPublished)
	if err != nil {
		return nil, err
	}
	if err := s.db.SelectContext(ctx, &projects, s.q(query), args...); err != nil {
		return nil, fmt.Errorf("failed to load projects: %w", err)
	}
	return projects, nil
}

// FeaturedProjects returns featured, published projects by manual order.
func (s *Store) FeaturedProjects(ctx context.Context, limit int) ([]models.Project, error) {
	projects := []models.Project{}
	err := s.db.SelectContext(ctx, &projects, s.q(`
		SELECT `+projectColumns+` FROM projects
		WHERE featured = ? AND status = ?
		ORDER BY sort_order ASC
		LIMIT ?
	`), true, models.ProjectStatusPublished, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load featured projects: %w", err)
	}
	return projects, nil
}

// SkillsByIDs returns the skills among ids, ordered by sort order.
func (s *Store) SkillsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Skill, error) {
	skills := []models.Skill{}
	if len(ids) == 0 {
		return skills, nil
	}
	query, args, err := sqlx.In(`SELECT `+skillColumns+` FROM skills WHERE id IN (?) ORDER BY sort_order ASC`, ids)
	if err != nil {
		return nil, err
	}
	if err := s.db.SelectContext(ctx, &skills, s.q(query), args...); err != nil {
		return nil, fmt.Errorf("failed to load skills: %w", err)
	}
	return skills, nil
}

// FeaturedSkills returns featured skills by manual order.
func (s *Store) FeaturedSkills(ctx context.Context, limit int) ([]models.Skill, error) {
	skills := []models.Skill{}
	err := s.db.SelectContext(ctx, &skills, s.q(`
		SELECT `+skillColumns+` FROM skills WHERE featured = ? ORDER BY sort_order ASC LIMIT ?
	`), true, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load featured skills: %w", err)
	}
	return skills, nil
}
