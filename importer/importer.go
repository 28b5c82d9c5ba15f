// ABOUTME: Dedup-merge importer for company and contact uploads
// ABOUTME: Creates new records atomically and fills only empty fields on existing ones
package importer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/harperreed/outreach/db"
	"github.com/harperreed/outreach/metrics"
	"github.com/harperreed/outreach/models"
)

// ErrNoData is returned when the upload is empty.
var ErrNoData = errors.New("CSV data is required")

// ValidationError is returned when every parsed row failed validation.
type ValidationError struct {
	Errors []RowError
}

func (e *ValidationError) Error() string {
	return "All rows have validation errors"
}

// Result summarizes one import batch.
type Result struct {
	Imported         int        `json:"imported"`
	Updated          int        `json:"updated"`
	Skipped          int        `json:"skipped"`
	Total            int        `json:"total"`
	Errors           []RowError `json:"errors"`
	ValidationErrors []RowError `json:"validationErrors"`
}

type outcome int

const (
	outcomeImported outcome = iota
	outcomeUpdated
	outcomeSkipped
)

type Importer struct {
	store  *db.Store
	locker KeyLocker
	logger *slog.Logger
}

// New builds an Importer. A nil locker falls back to a LocalLocker.
func New(store *db.Store, locker KeyLocker, logger *slog.Logger) *Importer {
	if locker == nil {
		locker = NewLocalLocker()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{store: store, locker: locker, logger: logger}
}

// ImportCompanies imports company rows keyed by name and country.
func (im *Importer) ImportCompanies(ctx context.Context, data []byte, mapping map[string]string) (*Result, error) {
	rows, result, err := prepare(data, mapping, CompanyRules)
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		out, err := im.importCompany(ctx, row)
		if err != nil {
			im.logger.Warn("company row failed", "row", row.Number, "error", err)
			result.Errors = append(result.Errors, RowError{Row: row.Number, Message: err.Error()})
			continue
		}
		result.count(out)
	}

	result.record("companies")
	im.logger.Info("company import complete",
		"imported", result.Imported, "updated", result.Updated, "skipped", result.Skipped,
		"errors", len(result.Errors), "invalid", len(result.ValidationErrors))
	return result, nil
}

// ImportContacts imports contact rows keyed by email. Each row's company is
// resolved by name among all companies, archived ones included.
func (im *Importer) ImportContacts(ctx context.Context, data []byte, mapping map[string]string) (*Result, error) {
	rows, result, err := prepare(data, mapping, ContactRules)
	if err != nil {
		return nil, err
	}

	companies, err := im.store.ListCompanies(ctx, db.CompanyFilter{ShowArchived: true})
	if err != nil {
		return nil, fmt.Errorf("failed to load companies: %w", err)
	}
	matcher := NewCompanyMatcher(companies)

	for _, row := range rows {
		rawName, _ := row.Get("companyname")
		company, found := matcher.FindMatch(rawName)
		if !found {
			result.Skipped++
			result.Errors = append(result.Errors, RowError{
				Row:     row.Number,
				Field:   "companyname",
				Message: fmt.Sprintf("Company '%s' not found", rawName),
			})
			continue
		}

		out, err := im.importContact(ctx, row, company)
		if err != nil {
			im.logger.Warn("contact row failed", "row", row.Number, "error", err)
			result.Errors = append(result.Errors, RowError{Row: row.Number, Message: err.Error()})
			continue
		}
		result.count(out)
	}

	result.record("contacts")
	im.logger.Info("contact import complete",
		"imported", result.Imported, "updated", result.Updated, "skipped", result.Skipped,
		"errors", len(result.Errors), "invalid", len(result.ValidationErrors))
	return result, nil
}

// prepare parses, maps and validates the upload, returning the valid rows.
func prepare(data []byte, mapping map[string]string, rules []FieldRule) ([]Row, *Result, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil, ErrNoData
	}
	table, err := Parse(data)
	if err != nil {
		return nil, nil, err
	}

	rows := table.Apply(mapping)
	result := &Result{Total: len(rows), Errors: []RowError{}, ValidationErrors: []RowError{}}
	valid := make([]Row, 0, len(rows))
	for _, row := range rows {
		if errs := ValidateRow(row, rules); len(errs) > 0 {
			result.ValidationErrors = append(result.ValidationErrors, errs...)
			continue
		}
		valid = append(valid, row)
	}

	if len(valid) == 0 {
		return nil, nil, &ValidationError{Errors: result.ValidationErrors}
	}
	return valid, result, nil
}

func (im *Importer) importCompany(ctx context.Context, row Row) (outcome, error) {
	incoming := &models.Company{
		Name:          row.Value("companyname"),
		Country:       row.Value("country"),
		Website:       row.Value("website"),
		CareerPageURL: row.Value("careerpageurl"),
		Tags:          models.SplitTags(row.Value("tags")),
		Notes:         row.Value("notes"),
	}
	nameKey, countryKey := incoming.IdentityKey()

	unlock, err := im.locker.Lock(ctx, "company:"+nameKey+"|"+countryKey)
	if err != nil {
		return outcomeSkipped, err
	}
	defer unlock()

	created, err := im.store.InsertCompanyIfAbsent(ctx, incoming)
	if err != nil {
		return outcomeSkipped, err
	}
	if created {
		return outcomeImported, nil
	}

	existing, err := im.store.FindCompanyByIdentity(ctx, incoming.Name, incoming.Country)
	if err != nil {
		return outcomeSkipped, fmt.Errorf("failed to load existing company: %w", err)
	}
	if !MergeCompany(existing, incoming) {
		return outcomeSkipped, nil
	}
	if err := im.store.UpdateCompany(ctx, existing); err != nil {
		return outcomeSkipped, fmt.Errorf("failed to update company: %w", err)
	}
	return outcomeUpdated, nil
}

func (im *Importer) importContact(ctx context.Context, row Row, company *models.Company) (outcome, error) {
	incoming := &models.Contact{
		CompanyID:   company.ID,
		Name:        row.Value("name"),
		Email:       row.Value("email"),
		RoleTitle:   row.Value("roletitle"),
		LinkedInURL: row.Value("linkedinurl"),
		Notes:       row.Value("notes"),
		Status:      models.ContactStatusNew,
	}

	unlock, err := im.locker.Lock(ctx, "contact:"+incoming.IdentityKey())
	if err != nil {
		return outcomeSkipped, err
	}
	defer unlock()

	created, err := im.store.InsertContactIfAbsent(ctx, incoming)
	if err != nil {
		return outcomeSkipped, err
	}
	if created {
		return outcomeImported, nil
	}

	existing, err := im.store.FindContactByEmail(ctx, incoming.Email)
	if err != nil {
		return outcomeSkipped, fmt.Errorf("failed to load existing contact: %w", err)
	}
	if !MergeContact(existing, incoming) {
		return outcomeSkipped, nil
	}
	if err := im.store.UpdateContact(ctx, existing); err != nil {
		return outcomeSkipped, fmt.Errorf("failed to update contact: %w", err)
	}
	return outcomeUpdated, nil
}

// MergeCompany copies incoming optional fields into existing where existing
// is empty. It reports whether anything changed.
func MergeCompany(existing, incoming *models.Company) bool {
	changed := fillEmpty(&existing.Website, incoming.Website)
	changed = fillEmpty(&existing.CareerPageURL, incoming.CareerPageURL) || changed
	if len(existing.Tags) == 0 && len(incoming.Tags) > 0 {
		existing.Tags = incoming.Tags
		changed = true
	}
	changed = fillEmpty(&existing.Notes, incoming.Notes) || changed
	return changed
}

// MergeContact copies incoming optional fields into existing where existing
// is empty. Company and status are never changed by an import.
func MergeContact(existing, incoming *models.Contact) bool {
	changed := fillEmpty(&existing.Name, incoming.Name)
	changed = fillEmpty(&existing.RoleTitle, incoming.RoleTitle) || changed
	changed = fillEmpty(&existing.LinkedInURL, incoming.LinkedInURL) || changed
	changed = fillEmpty(&existing.Notes, incoming.Notes) || changed
	return changed
}

func fillEmpty(dst *string, value string) bool {
	if value == "" || strings.TrimSpace(*dst) != "" {
		return false
	}
	*dst = value
	return true
}

func (r *Result) count(out outcome) {
	switch out {
	case outcomeImported:
		r.Imported++
	case outcomeUpdated:
		r.Updated++
	default:
		r.Skipped++
	}
}

func (r *Result) record(entity string) {
	metrics.RecordImport(entity, "imported", r.Imported)
	metrics.RecordImport(entity, "updated", r.Updated)
	metrics.RecordImport(entity, "skipped", r.Skipped)
	metrics.RecordImport(entity, "failed", len(r.Errors))
	metrics.RecordImport(entity, "invalid", len(r.ValidationErrors))
}
