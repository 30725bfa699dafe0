package service

import (
	"context"
	"errors"
	gosync "sync"
	"time"

	"inversebias/internal/pipeline/dto"
	"inversebias/pkg/logger"
)

// ErrCycleInProgress is returned when Execute is called while a previous
// cycle is still running.
var ErrCycleInProgress = errors.New("previous cycle is still running")

// CycleRunner wraps one pipeline run with storage synchronization:
// download the previous snapshot, run, upload the new one. A download
// failure aborts the cycle before any work happens; an upload failure is
// logged and tolerated since local state survives for the next attempt.
// At most one cycle runs at a time; overlapping Execute calls are rejected
// with ErrCycleInProgress instead of racing on the sync state machine.
type CycleRunner struct {
	sync        *StorageSync
	pipeline    PipelineService
	uploadGrace time.Duration
	logger      *logger.Logger
	running     gosync.Mutex
}

// NewCycleRunner creates a new instance of CycleRunner.
func NewCycleRunner(sync *StorageSync, pipeline PipelineService, uploadGrace time.Duration, log *logger.Logger) *CycleRunner {
	return &CycleRunner{
		sync:        sync,
		pipeline:    pipeline,
		uploadGrace: uploadGrace,
		logger:      log,
	}
}

// Execute runs one complete cycle. The machine is reset first so a failed
// previous cycle does not wedge the scheduler.
func (r *CycleRunner) Execute(ctx context.Context) (*dto.RunSummary, error) {
	if !r.running.TryLock() {
		r.logger.Warn("Cycle trigger skipped, previous cycle still running")
		return nil, ErrCycleInProgress
	}
	defer r.running.Unlock()

	r.sync.Reset()

	if err := r.sync.Download(ctx); err != nil {
		var syncErr *dto.SyncError
		if errors.As(err, &syncErr) {
			r.logger.Error("Snapshot download failed, aborting cycle", logger.ErrorField(err))
		}
		return nil, err
	}
	if err := r.sync.Begin(); err != nil {
		return nil, err
	}

	summary, runErr := r.pipeline.Run(ctx)
	if runErr != nil && summary == nil {
		r.sync.Reset()
		return nil, runErr
	}

	// Upload on a detached context so a cancelled run still persists what
	// it processed before stopping.
	uploadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.uploadGrace)
	defer cancel()
	if err := r.sync.Upload(uploadCtx); err != nil {
		r.logger.Error("Snapshot upload failed, local state retained for next cycle", logger.ErrorField(err))
	}

	return summary, runErr
}
