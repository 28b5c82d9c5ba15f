// ABOUTME: Company operations: create, update, star and archive toggles, delete and import
// ABOUTME: Inputs are trimmed and validated before reaching the store
package outreach

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/harperreed/outreach/db"
	"github.com/harperreed/outreach/importer"
	"github.com/harperreed/outreach/models"
)

type CompanyInput struct {
	Name          string  `json:"name" validate:"required,max=200"`
	Country       string  `json:"country" validate:"required,max=100"`
	Website       string  `json:"website" validate:"omitempty,looseurl"`
	CareerPageURL string  `json:"careerPageUrl" validate:"omitempty,looseurl"`
	Tags          TagList `json:"tags"`
	Notes         string  `json:"notes" validate:"max=2000"`
}

// CompanyPatch holds the fields a PATCH may change; nil leaves a field alone.
type CompanyPatch struct {
	Name          *string  `json:"name"`
	Country       *string  `json:"country"`
	Website       *string  `json:"website"`
	CareerPageURL *string  `json:"careerPageUrl"`
	Tags          *TagList `json:"tags"`
	Notes         *string  `json:"notes"`
	Starred       *bool    `json:"starred"`
	Archived      *bool    `json:"archived"`
}

func (s *Service) ListCompanies(ctx context.Context, filter db.CompanyFilter) ([]models.Company, error) {
	return s.store.ListCompanies(ctx, filter)
}

func (s *Service) CreateCompany(ctx context.Context, in CompanyInput) (*models.Company, error) {
	trimAll(&in.Name, &in.Country, &in.Website, &in.CareerPageURL, &in.Notes)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	company := &models.Company{
		Name:          in.Name,
		Country:       in.Country,
		Website:       in.Website,
		CareerPageURL: in.CareerPageURL,
		Tags:          models.NewTagList(in.Tags),
		Notes:         in.Notes,
	}
	if err := s.store.CreateCompany(ctx, company); err != nil {
		return nil, storeError(err, "Company not found")
	}
	s.logger.Info("company created", "id", company.ID, "name", company.Name)
	return company, nil
}

func (s *Service) GetCompany(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	company, err := s.store.GetCompany(ctx, id)
	if err != nil {
		return nil, storeError(err, "Company not found")
	}
	return company, nil
}

func (s *Service) UpdateCompany(ctx context.Context, id uuid.UUID, patch CompanyPatch) (*models.Company, error) {
	company, err := s.GetCompany(ctx, id)
	if err != nil {
		return nil, err
	}

	in := CompanyInput{
		Name:          company.Name,
		Country:       company.Country,
		Website:       company.Website,
		CareerPageURL: company.CareerPageURL,
		Tags:          TagList(company.Tags),
		Notes:         company.Notes,
	}
	setString(&in.Name, patch.Name)
	setString(&in.Country, patch.Country)
	setString(&in.Website, patch.Website)
	setString(&in.CareerPageURL, patch.CareerPageURL)
	setString(&in.Notes, patch.Notes)
	if patch.Tags != nil {
		in.Tags = *patch.Tags
	}
	trimAll(&in.Name, &in.Country, &in.Website, &in.CareerPageURL, &in.Notes)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	company.Name = in.Name
	company.Country = in.Country
	company.Website = in.Website
	company.CareerPageURL = in.CareerPageURL
	company.Tags = models.NewTagList(in.Tags)
	company.Notes = in.Notes
	if patch.Starred != nil {
		company.Starred = *patch.Starred
	}
	if patch.Archived != nil {
		company.Archived = *patch.Archived
	}

	if err := s.store.UpdateCompany(ctx, company); err != nil {
		return nil, storeError(err, "Company not found")
	}
	return company, nil
}

// StarCompany sets the starred flag, or flips it when starred is nil.
func (s *Service) StarCompany(ctx context.Context, id uuid.UUID, starred *bool) (*models.Company, error) {
	company, err := s.GetCompany(ctx, id)
	if err != nil {
		return nil, err
	}
	if starred != nil && company.Starred == *starred {
		return company, nil
	}
	company, err = s.store.ToggleCompanyStar(ctx, id)
	return company, storeError(err, "Company not found")
}

// ArchiveCompany sets the archived flag, or flips it when archived is nil.
func (s *Service) ArchiveCompany(ctx context.Context, id uuid.UUID, archived *bool) (*models.Company, error) {
	company, err := s.GetCompany(ctx, id)
	if err != nil {
		return nil, err
	}
	if archived != nil && company.Archived == *archived {
		return company, nil
	}
	company, err = s.store.ToggleCompanyArchive(ctx, id)
	return company, storeError(err, "Company not found")
}

func (s *Service) DeleteCompany(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeleteCompany(ctx, id); err != nil {
		return storeError(err, "Company not found")
	}
	s.logger.Info("company deleted", "id", id)
	return nil
}

// ImportCompanies runs the dedup-merge importer over an upload.
func (s *Service) ImportCompanies(ctx context.Context, data []byte, mapping map[string]string) (*importer.Result, error) {
	result, err := s.importer.ImportCompanies(ctx, data, mapping)
	if err != nil {
		return nil, importError(err)
	}
	return result, nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func importError(err error) error {
	var (
		parseErr *importer.ParseError
		validErr *importer.ValidationError
	)
	switch {
	case errors.As(err, &parseErr):
		return &Error{Status: http.StatusBadRequest, Message: parseErr.Error(), Details: parseErr.Details}
	case errors.As(err, &validErr):
		return &Error{Status: http.StatusBadRequest, Message: validErr.Error(), RowErrors: validErr.Errors}
	case errors.Is(err, importer.ErrNoData):
		return BadRequest("%s", err.Error())
	}
	return fmt.Errorf("failed to import: %w", err)
}
