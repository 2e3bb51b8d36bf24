package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/events"
	"dispatch/internal/core/ports"

	"github.com/robfig/cron/v3"
)

// snapshotReader is the slice of the query side the job needs.
type snapshotReader interface {
	Handle(ctx context.Context, query queries.GetBranchSnapshotQuery) (queries.GetBranchSnapshotQueryResponse, error)
}

// SnapshotBroadcastJob periodically pushes a full branch snapshot into every
// active branch's room. The router never replays missed events, so this push
// is the server-side half of the resync safety net: a subscriber that lost
// events catches up on the next snapshot even if it never calls the resync
// endpoint itself.
type SnapshotBroadcastJob struct {
	reader    snapshotReader
	geoRepo   ports.GeoRepository
	publisher ports.EventPublisher
	interval  time.Duration
	cron      *cron.Cron
	logger    *slog.Logger
}

// NewSnapshotBroadcastJob creates the snapshot job. The interval should match
// the resync cadence expected of clients (30s in production).
func NewSnapshotBroadcastJob(
	reader snapshotReader,
	geoRepo ports.GeoRepository,
	publisher ports.EventPublisher,
	interval time.Duration,
	logger *slog.Logger,
) *SnapshotBroadcastJob {
	return &SnapshotBroadcastJob{
		reader:    reader,
		geoRepo:   geoRepo,
		publisher: publisher,
		interval:  interval,
		cron:      cron.New(),
		logger:    logger.With("component", "snapshot_broadcast_job"),
	}
}

// Start schedules the snapshot push on the configured interval.
func (j *SnapshotBroadcastJob) Start() error {
	_, err := j.cron.AddFunc(fmt.Sprintf("@every %s", j.interval), func() {
		ctx := context.Background()
		if err := j.RunOnce(ctx); err != nil {
			j.logger.ErrorContext(ctx, "Snapshot broadcast failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Snapshot broadcast job started", "interval", j.interval.String())
	return nil
}

// Stop stops the snapshot job.
func (j *SnapshotBroadcastJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Snapshot broadcast job stopped")
}

// RunOnce pushes one snapshot round: every active branch gets a
// branch.snapshot event with its current orders and couriers.
func (j *SnapshotBroadcastJob) RunOnce(ctx context.Context) error {
	branches, err := j.geoRepo.GetActiveBranches(ctx)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	for _, branch := range branches {
		query, err := queries.NewGetBranchSnapshotQuery(branch.ID())
		if err != nil {
			return err
		}

		snapshot, err := j.reader.Handle(ctx, query)
		if err != nil {
			return err
		}

		j.publisher.Publish(ctx, events.Event{
			BranchID:  branch.ID(),
			Type:      events.BranchSnapshot,
			Payload:   snapshot,
			EmittedAt: now,
		})
	}

	return nil
}
