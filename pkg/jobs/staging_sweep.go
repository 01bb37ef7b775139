package jobs

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/s10-intake/intake-api/pkg/intake_api/storage"
	"github.com/s10-intake/intake-api/pkg/tools"
)

// ScheduleStagingSweep sets up a cron job that purges stale staging copies
// every day. Staging copies are audit/debug artifacts, never authoritative,
// so removing them after the retention window is safe.
func ScheduleStagingSweep(ctx context.Context, staging *storage.StagingWriter, retention time.Duration) *cron.Cron {
	c := cron.New()
	_, _ = c.AddFunc("@daily", func() {
		tools.Dispatch(context.Background(), "staging_sweep", func(ctx context.Context) error {
			removed, err := staging.Sweep(retention)
			if err != nil {
				return err
			}
			if removed > 0 {
				log.Printf("staging sweep removed %d stale copies from %s", removed, staging.Dir())
			}
			return nil
		})
	})
	c.Start()

	go func() {
		<-ctx.Done()
		c.Stop()
	}()
	return c
}
