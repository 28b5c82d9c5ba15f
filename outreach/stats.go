// ABOUTME: Dashboard statistics entry point for the boundaries
// ABOUTME: Applies the configured follow-up cap to the due count
package outreach

import (
	"context"

	"github.com/harperreed/outreach/stats"
)

func (s *Service) Stats(ctx context.Context) (*stats.Stats, error) {
	maxFollowUps, _, err := s.followUpSettings(ctx)
	if err != nil {
		return nil, err
	}
	return stats.Compute(ctx, s.store, s.now(), maxFollowUps)
}
