package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// DonorStatusRefresher recomputes donor lifecycle statuses from their last
// donation dates.
type DonorStatusRefresher interface {
	RefreshAllStatuses() (int64, error)
}

// RefreshDonorStatusesTask walks every donor and recomputes the
// active/inactive status from the last donation date. Enqueued nightly by
// the scheduler, and on demand from the tasks endpoint.
type RefreshDonorStatusesTask struct{}

// Config returns the queue configuration for status refresh tasks.
func (t RefreshDonorStatusesTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "refresh_donor_statuses",
		MaxAttempts: 3,
		Backoff:     10 * time.Minute,
		Timeout:     10 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// RefreshDonorStatusesProcessor creates a processor function for
// RefreshDonorStatusesTask.
func RefreshDonorStatusesProcessor(refresher DonorStatusRefresher) backlite.QueueProcessor[RefreshDonorStatusesTask] {
	return func(ctx context.Context, task RefreshDonorStatusesTask) error {
		if refresher == nil {
			return fmt.Errorf("donor status refresher not configured")
		}

		changed, err := refresher.RefreshAllStatuses()
		if err != nil {
			return fmt.Errorf("refresh donor statuses: %w", err)
		}

		log.Printf("[TASK] Refreshed donor statuses, %d changed", changed)
		return nil
	}
}

// NewRefreshDonorStatusesQueue creates a backlite queue for donor status
// refresh tasks.
func NewRefreshDonorStatusesQueue(refresher DonorStatusRefresher) backlite.Queue {
	return backlite.NewQueue(RefreshDonorStatusesProcessor(refresher))
}
