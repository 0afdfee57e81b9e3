package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// OrphanCleaner removes positions left without a referencing transaction.
type OrphanCleaner interface {
	CleanOrphanedPositions(ctx context.Context) (int, error)
}

// ExposureRefresher recomputes the net exposure gauges.
type ExposureRefresher interface {
	RefreshExposure(ctx context.Context) error
}

type OrphanCleanupJob struct {
	cleaner OrphanCleaner
	timeout time.Duration
	log     zerolog.Logger
}

func NewOrphanCleanupJob(cleaner OrphanCleaner, timeout time.Duration, log zerolog.Logger) *OrphanCleanupJob {
	return &OrphanCleanupJob{cleaner: cleaner, timeout: timeout, log: log}
}

func (j *OrphanCleanupJob) Name() string { return "orphan_cleanup" }

func (j *OrphanCleanupJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	removed, err := j.cleaner.CleanOrphanedPositions(ctx)
	if err != nil {
		return err
	}
	if removed > 0 {
		j.log.Info().Int("removed", removed).Msg("orphaned positions cleaned")
	}
	return nil
}

type ExposureRefreshJob struct {
	refresher ExposureRefresher
	timeout   time.Duration
}

func NewExposureRefreshJob(refresher ExposureRefresher, timeout time.Duration) *ExposureRefreshJob {
	return &ExposureRefreshJob{refresher: refresher, timeout: timeout}
}

func (j *ExposureRefreshJob) Name() string { return "exposure_refresh" }

func (j *ExposureRefreshJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()
	return j.refresher.RefreshExposure(ctx)
}
