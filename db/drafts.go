// ABOUTME: Draft database operations
// ABOUTME: Drafts are append-only; they are created and deleted, never updated
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/harperreed/outreach/models"
)

const draftColumns = `id, contact_id, company_id, intent, tone, job_title, job_description, selected_project_ids, selected_skill_ids, subject, body, model_used, created_at`

// DraftListLimit caps ListDrafts results.
const DraftListLimit = 20

type DraftFilter struct {
	ContactID *uuid.UUID
	CompanyID *uuid.UUID
}

func (s *Store) CreateDraft(ctx context.Context, draft *models.Draft) error {
	draft.ID = uuid.New()
	draft.CreatedAt = s.now()
	if draft.SelectedProjectIDs == nil {
		draft.SelectedProjectIDs = models.StringList{}
	}
	if draft.SelectedSkillIDs == nil {
		draft.SelectedSkillIDs = models.StringList{}
	}

	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO drafts (`+draftColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), draft.ID, draft.ContactID, draft.CompanyID, draft.Intent, draft.Tone, draft.JobTitle, draft.JobDescription,
		draft.SelectedProjectIDs, draft.SelectedSkillIDs, draft.Subject, draft.Body, draft.ModelUsed, draft.CreatedAt)
	return err
}

func (s *Store) GetDraft(ctx context.Context, id uuid.UUID) (*models.Draft, error) {
	var draft models.Draft
	err := s.db.GetContext(ctx, &draft, s.q(`SELECT `+draftColumns+` FROM drafts WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &draft, nil
}

// ListDrafts returns the newest drafts first.
func (s *Store) ListDrafts(ctx context.Context, filter DraftFilter) ([]models.Draft, error) {
	var conds conditions
	if filter.ContactID != nil {
		conds.add(`contact_id = ?`, *filter.ContactID)
	}
	if filter.CompanyID != nil {
		conds.add(`company_id = ?`, *filter.CompanyID)
	}

	drafts := []models.Draft{}
	query := fmt.Sprintf(`SELECT %s FROM drafts%s ORDER BY created_at DESC LIMIT %d`, draftColumns, conds.where(), DraftListLimit)
	if err := s.db.SelectContext(ctx, &drafts, s.q(query), conds.args...); err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}
	return drafts, nil
}

func (s *Store) DeleteDraft(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM drafts WHERE id = ?`), id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
