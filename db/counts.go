// ABOUTME: Aggregate count queries used by the stats dashboard
// ABOUTME: Counts are recomputed from the tables on every call
package db

import (
	"context"
	"fmt"
)

// Counts holds per-entity totals.
type Counts struct {
	Companies int `db:"companies"`
	Contacts  int `db:"contacts"`
	Emails    int `db:"emails"`
	Templates int `db:"templates"`
	Drafts    int `db:"drafts"`
}

func (s *Store) CountAll(ctx context.Context) (*Counts, error) {
	var counts Counts
	err := s.db.GetContext(ctx, &counts, `
		SELECT
			(SELECT COUNT(*) FROM companies) AS companies,
			(SELECT COUNT(*) FROM contacts) AS contacts,
			(SELECT COUNT(*) FROM emails) AS emails,
			(SELECT COUNT(*) FROM templates) AS templates,
			(SELECT COUNT(*) FROM drafts) AS drafts
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to count records: %w", err)
	}
	return &counts, nil
}
