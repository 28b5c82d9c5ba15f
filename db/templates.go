// ABOUTME: Template database operations
// ABOUTME: Stores reusable subject/body skeletons with type and tone filters
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/harperreed/outreach/models"
)

const templateColumns = `id, name, type, tone, subject_template, body_template, variables, created_at, updated_at`

type TemplateFilter struct {
	Type   string
	Tone   string
	Search string
}

func (s *Store) CreateTemplate(ctx context.Context, tmpl *models.Template) error {
	tmpl.ID = uuid.New()
	now := s.now()
	tmpl.CreatedAt = now
	tmpl.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO templates (id, name, type, tone, subject_template, body_template, variables, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), tmpl.ID, tmpl.Name, tmpl.Type, tmpl.Tone, tmpl.SubjectTemplate, tmpl.BodyTemplate, tmpl.Variables,
		tmpl.CreatedAt, tmpl.UpdatedAt)
	return err
}

func (s *Store) GetTemplate(ctx context.Context, id uuid.UUID) (*models.Template, error) {
	var tmpl models.Template
	err := s.db.GetContext(ctx, &tmpl, s.q(`SELECT `+templateColumns+` FROM templates WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tmpl, nil
}

func (s *Store) ListTemplates(ctx context.Context, filter TemplateFilter) ([]models.Template, error) {
	var conds conditions
	if filter.Type != "" {
		conds.add(`type = ?`, filter.Type)
	}
	if filter.Tone != "" {
		conds.add(`tone = ?`, filter.Tone)
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		conds.add(`(LOWER(name) LIKE ? OR LOWER(subject_template) LIKE ? OR LOWER(body_template) LIKE ?)`, pattern, pattern, pattern)
	}

	templates := []models.Template{}
	query := `SELECT ` + templateColumns + ` FROM templates` + conds.where() + ` ORDER BY updated_at DESC`
	if err := s.db.SelectContext(ctx, &templates, s.q(query), conds.args...); err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	return templates, nil
}

func (s *Store) UpdateTemplate(ctx context.Context, tmpl *models.Template) error {
	tmpl.UpdatedAt = s.now()
	res, err := s.db.ExecContext(ctx, s.q(`
		UPDATE templates
		SET name = ?, type = ?, tone = ?, subject_template = ?, body_template = ?, variables = ?, updated_at = ?
		WHERE id = ?
	`), tmpl.Name, tmpl.Type, tmpl.Tone, tmpl.SubjectTemplate, tmpl.BodyTemplate, tmpl.Variables, tmpl.UpdatedAt, tmpl.ID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// DeleteTemplate removes the template and detaches emails that used it.
func (s *Store) DeleteTemplate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, s.q(`UPDATE emails SET template_id = NULL WHERE template_id = ?`), id); err != nil {
		return fmt.Errorf("failed to detach emails: %w", err)
	}
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM templates WHERE id = ?`), id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
