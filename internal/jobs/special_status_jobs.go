package jobs

import (
	"context"
	"fmt"

	"munlink-backend/internal/logger"
)

// ExpireSpecialStatuses marks approved statuses whose expiry has passed as
// expired. The service notifies each holder.
func (jr *JobRunner) ExpireSpecialStatuses() error {
	return jr.runWithRecovery(JobExpireSpecialStatuses, func(ctx context.Context) error {
		now := jr.now().In(jr.config.Location())
		expired, err := jr.services.SpecialStatuses.ExpireDue(ctx, now)
		if err != nil {
			return fmt.Errorf("failed to expire special statuses: %w", err)
		}
		logger.InfoContext(ctx, "Expired special statuses", "count", len(expired))
		return nil
	})
}
