package scheduler

import (
	"context"
	"time"

	appinv "github.com/retail/backend/internal/application/inventory"
	"github.com/retail/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// AlertPurgeJobName is the registered name of the resolved-alert purge
const AlertPurgeJobName = "alert_purge"

// AlertPurger deletes resolved low-stock alerts older than a retention window
type AlertPurger interface {
	PurgeResolved(ctx context.Context, olderThan time.Duration) (*appinv.PurgeAlertsResponse, error)
}

// NewAlertPurgeJob builds the job that trims the alert register. Open alerts
// are never touched.
func NewAlertPurgeJob(purger AlertPurger, cfg config.InventoryConfig, logger *zap.Logger) Job {
	if logger == nil {
		logger = zap.NewNop()
	}
	retention := cfg.AlertPurgeAfter
	return Job{
		Name:       AlertPurgeJobName,
		Interval:   cfg.AlertPurgeInterval,
		RunOnStart: true,
		MaxRetries: 2,
		Run: func(ctx context.Context) error {
			resp, err := purger.PurgeResolved(ctx, retention)
			if err != nil {
				return err
			}
			logger.Info("Resolved alerts purged",
				zap.Int64("deleted", resp.Deleted),
				zap.Time("cutoff", resp.Cutoff),
			)
			return nil
		},
	}
}
