// ABOUTME: Outreach service wiring the record store, importer and content generator
// ABOUTME: Every boundary (HTTP, MCP, CLI) drives the engine through this type
package outreach

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/harperreed/outreach/db"
	"github.com/harperreed/outreach/generator"
	"github.com/harperreed/outreach/importer"
	"github.com/harperreed/outreach/models"
)

type Service struct {
	store    *db.Store
	gen      generator.Generator
	importer *importer.Importer
	logger   *slog.Logger
	now      func() time.Time
}

// New builds a Service. A nil generator disables generation; a nil importer
// gets one with an in-process locker.
func New(store *db.Store, gen generator.Generator, im *importer.Importer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if gen == nil {
		gen = generator.Disabled{}
	}
	if im == nil {
		im = importer.New(store, nil, logger)
	}
	return &Service{
		store:    store,
		gen:      gen,
		importer: im,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the service clock.
func (s *Service) SetClock(now func() time.Time) {
	s.now = func() time.Time { return now().UTC() }
}

// Store exposes the record store for read-only consumers such as stats.
func (s *Service) Store() *db.Store {
	return s.store
}

// followUpSettings returns the follow-up cap and gap. Missing settings fall
// back to the defaults.
func (s *Service) followUpSettings(ctx context.Context) (maxFollowUps, gapDays int, err error) {
	maxFollowUps, gapDays = models.DefaultMaxFollowUps, models.DefaultFollowUpGapDays
	profile, err := s.store.GetProfile(ctx)
	if errors.Is(err, db.ErrProfileNotConfigured) {
		return maxFollowUps, gapDays, nil
	}
	if err != nil {
		return 0, 0, err
	}
	return profileMaxFollowUps(profile), profileGapDays(profile), nil
}

// profileMaxFollowUps never exceeds the stored follow-up count ceiling, so
// the cap stays reachable.
func profileMaxFollowUps(p *models.Profile) int {
	if p.MaxFollowUps > 0 {
		return min(p.MaxFollowUps, models.FollowUpCountCeiling)
	}
	return models.DefaultMaxFollowUps
}

func profileGapDays(p *models.Profile) int {
	if p.DefaultFollowUpGapDays > 0 {
		return p.DefaultFollowUpGapDays
	}
	return models.DefaultFollowUpGapDays
}
