// ABOUTME: Company lookup index used while importing contacts
// ABOUTME: Resolves a row's company name case-insensitively without a query per row
package importer

import (
	"github.com/harperreed/outreach/models"
)

type CompanyMatcher struct {
	byName map[string]*models.Company
}

// NewCompanyMatcher indexes companies by normalized name. When several
// companies share a name across countries, the first one listed wins.
func NewCompanyMatcher(companies []models.Company) *CompanyMatcher {
	m := &CompanyMatcher{
		byName: make(map[string]*models.Company, len(companies)),
	}

	for i := range companies {
		key := models.NormalizeKey(companies[i].Name)
		if key == "" {
			continue
		}
		if _, exists := m.byName[key]; !exists {
			m.byName[key] = &companies[i]
		}
	}

	return m
}

// FindMatch looks up a company by name.
func (m *CompanyMatcher) FindMatch(name string) (*models.Company, bool) {
	key := models.NormalizeKey(name)
	if key == "" {
		return nil, false
	}
	company, found := m.byName[key]
	return company, found
}

// Len reports how many distinct names are indexed.
func (m *CompanyMatcher) Len() int {
	return len(m.byName)
}
