// Package jobs provides scheduled background tasks for the dispatch system.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3.
//
// # Available Jobs
//
// 1. SnapshotBroadcastJob - Pushes a full branch snapshot into every active
// branch's room on a fixed interval (30s in production). The broadcast router
// never replays missed events, so the periodic snapshot is the mandatory
// recovery path for subscribers that were disconnected or evicted.
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	jobManager := jobs.NewJobManager(snapshotHandler, geoRepo, router, 30*time.Second, logger)
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	defer jobManager.StopAll()
package jobs
