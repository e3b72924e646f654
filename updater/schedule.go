package updater

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Schedule runs the updater on the cron spec (e.g. "@every 5m") until ctx is
// done. A tick is skipped while the previous run is still going. Each
// completed run is passed to notify, which may be nil.
func (u *Updater) Schedule(ctx context.Context, spec, filter string, notify func(Report, error)) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	_, err := c.AddFunc(spec, func() {
		rep, err := u.Run(ctx, filter)
		if notify != nil {
			notify(rep, err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}

	u.logger.Info("rate schedule started", zap.String("schedule", spec))
	c.Start()
	<-ctx.Done()
	// wait for a running update to complete
	<-c.Stop().Done()
	u.logger.Info("rate schedule stopped", zap.String("schedule", spec))
	return nil
}
