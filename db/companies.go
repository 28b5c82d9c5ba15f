// ABOUTME: Company database operations
// ABOUTME: Handles CRUD, identity lookups, star/archive toggles and the atomic import insert
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/harperreed/outreach/models"
)

const companyColumns = `id, name, country, website, career_page_url, tags, notes, starred, archived, created_at, updated_at`

// CompanyFilter narrows ListCompanies. Zero value lists every non-archived company.
type CompanyFilter struct {
	Search       string
	Starred      *bool
	ShowArchived bool
	Limit        int
}

func (s *Store) CreateCompany(ctx context.Context, company *models.Company) error {
	company.ID = uuid.New()
	now := s.now()
	company.CreatedAt = now
	company.UpdatedAt = now
	company.Tags = models.NewTagList(company.Tags)

	nameKey, countryKey := company.IdentityKey()
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO companies (id, name, country, name_key, country_key, website, career_page_url, tags, notes, starred, archived, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), company.ID, company.Name, company.Country, nameKey, countryKey, company.Website, company.CareerPageURL,
		company.Tags, company.Notes, company.Starred, company.Archived, company.CreatedAt, company.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrCompanyExists
	}
	return err
}

// InsertCompanyIfAbsent inserts the company unless one with the same identity
// key exists. It reports whether a row was created.
func (s *Store) InsertCompanyIfAbsent(ctx context.Context, company *models.Company) (bool, error) {
	company.ID = uuid.New()
	now := s.now()
	company.CreatedAt = now
	company.UpdatedAt = now
	company.Tags = models.NewTagList(company.Tags)

	nameKey, countryKey := company.IdentityKey()
	res, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO companies (id, name, country, name_key, country_key, website, career_page_url, tags, notes, starred, archived, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (name_key, country_key) DO NOTHING
	`), company.ID, company.Name, company.Country, nameKey, countryKey, company.Website, company.CareerPageURL,
		company.Tags, company.Notes, company.Starred, company.Archived, company.CreatedAt, company.UpdatedAt)
	if err != nil {
		return false, fmt.Errorf("failed to insert company: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *Store) GetCompany(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	var company models.Company
	err := s.db.GetContext(ctx, &company, s.q(`SELECT `+companyColumns+` FROM companies WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &company, nil
}

// FindCompanyByIdentity looks a company up by its case-insensitive name and country.
func (s *Store) FindCompanyByIdentity(ctx context.Context, name, country string) (*models.Company, error) {
	var company models.Company
	err := s.db.GetContext(ctx, &company, s.q(`
		SELECT `+companyColumns+` FROM companies WHERE name_key = ? AND country_key = ?
	`), models.NormalizeKey(name), models.NormalizeKey(country))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &company, nil
}

// FindCompanyByName returns the most recently updated company whose name
// matches case-insensitively, in any country.
func (s *Store) FindCompanyByName(ctx context.Context, name string, includeArchived bool) (*models.Company, error) {
	var conds conditions
	conds.add(`name_key = ?`, models.NormalizeKey(name))
	if !includeArchived {
		conds.add(`archived = ?`, false)
	}
	var company models.Company
	err := s.db.GetContext(ctx, &company, s.q(`SELECT `+companyColumns+` FROM companies`+conds.where()+` ORDER BY updated_at DESC LIMIT 1`), conds.args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &company, nil
}

func (s *Store) ListCompanies(ctx context.Context, filter CompanyFilter) ([]models.Company, error) {
	var conds conditions
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		conds.add(`(name_key LIKE ? OR LOWER(tags) LIKE ? OR LOWER(notes) LIKE ?)`, pattern, pattern, pattern)
	}
	if filter.Starred != nil {
		conds.add(`starred = ?`, *filter.Starred)
	}
	if !filter.ShowArchived {
		conds.add(`archived = ?`, false)
	}

	query := `SELECT ` + companyColumns + ` FROM companies` + conds.where() + ` ORDER BY updated_at DESC`
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	companies := []models.Company{}
	if err := s.db.SelectContext(ctx, &companies, s.q(query), conds.args...); err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	return companies, nil
}

// UpdateCompany persists every mutable field of company.
func (s *Store) UpdateCompany(ctx context.Context, company *models.Company) error {
	company.UpdatedAt = s.now()
	company.Tags = models.NewTagList(company.Tags)
	nameKey, countryKey := company.IdentityKey()

	res, err := s.db.ExecContext(ctx, s.q(`
		UPDATE companies
		SET name = ?, country = ?, name_key = ?, country_key = ?, website = ?, career_page_url = ?,
			tags = ?, notes = ?, starred = ?, archived = ?, updated_at = ?
		WHERE id = ?
	`), company.Name, company.Country, nameKey, countryKey, company.Website, company.CareerPageURL,
		company.Tags, company.Notes, company.Starred, company.Archived, company.UpdatedAt, company.ID)
	if isUniqueViolation(err) {
		return ErrCompanyExists
	}
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (s *Store) ToggleCompanyStar(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	return s.toggleCompanyFlag(ctx, id, "starred")
}

func (s *Store) ToggleCompanyArchive(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	return s.toggleCompanyFlag(ctx, id, "archived")
}

func (s *Store) toggleCompanyFlag(ctx context.Context, id uuid.UUID, column string) (*models.Company, error) {
	res, err := s.db.ExecContext(ctx, s.q(`
		UPDATE companies SET `+column+` = NOT `+column+`, updated_at = ? WHERE id = ?
	`), s.now(), id)
	if err != nil {
		return nil, fmt.Errorf("failed to toggle %s: %w", column, err)
	}
	if err := requireAffected(res); err != nil {
		return nil, err
	}
	return s.GetCompany(ctx, id)
}

// DeleteCompany removes a company that no contact references.
func (s *Store) DeleteCompany(ctx context.Context, id uuid.UUID) error {
	var contactCount int
	if err := s.db.GetContext(ctx, &contactCount, s.q(`SELECT COUNT(*) FROM contacts WHERE company_id = ?`), id); err != nil {
		return fmt.Errorf("failed to check contacts: %w", err)
	}
	if contactCount > 0 {
		return ErrCompanyHasContacts
	}

	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM companies WHERE id = ?`), id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
