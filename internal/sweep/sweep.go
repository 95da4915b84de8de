// Package sweep runs the periodic overdue reclassification in-process.
// The same bulk update is reachable over HTTP through the cron endpoint
// for platforms that schedule externally; both paths are idempotent so
// overlapping runs only cost a no-op update.
package sweep

import (
	"context"
	"log"
	"time"

	"github.com/iliyamo/library-loan-system/internal/queue"
	"github.com/iliyamo/library-loan-system/internal/repository"
	queue_publisher "github.com/iliyamo/library-loan-system/internal/service"
)

// Run blocks, marking overdue loans every interval until ctx is
// cancelled. Sweep failures are logged and retried on the next tick;
// the sweeper never takes the process down.
func Run(ctx context.Context, interval time.Duration, loans *repository.LoanRepo) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweepOnce(ctx, loans)
		}
	}
}

func sweepOnce(ctx context.Context, loans *repository.LoanRepo) {
	now := time.Now().UTC()
	updated, err := loans.MarkOverdue(ctx, now)
	if err != nil {
		log.Printf("sweep: mark overdue failed: %v", err)
		return
	}
	if updated == 0 {
		return
	}
	log.Printf("sweep: marked %d loans overdue", updated)
	_ = queue_publisher.PublishOverdueSwept(ctx, queue.OverdueSweptEvent{
		UpdatedLoans: updated,
		SweptAt:      now.Format(time.RFC3339),
	})
}
