package jobs

import (
	"fmt"
	"log/slog"
	"time"

	"dispatch/internal/core/ports"
)

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	snapshotBroadcastJob *SnapshotBroadcastJob
}

// NewJobManager creates a new job manager with all required jobs.
func NewJobManager(
	reader snapshotReader,
	geoRepo ports.GeoRepository,
	publisher ports.EventPublisher,
	snapshotInterval time.Duration,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		snapshotBroadcastJob: NewSnapshotBroadcastJob(reader, geoRepo, publisher, snapshotInterval, logger),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.snapshotBroadcastJob.Start(); err != nil {
		return fmt.Errorf("failed to start snapshot broadcast job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.snapshotBroadcastJob.Stop()
}
