package service

import (
	"context"
	"fmt"
	"sync"

	"inversebias/internal/pipeline/dto"
	"inversebias/internal/pipeline/repository"
	"inversebias/pkg/blobstore"
	"inversebias/pkg/logger"
)

// SyncState is a state of the storage synchronization machine.
type SyncState string

const (
	SyncIdle        SyncState = "idle"
	SyncDownloading SyncState = "downloading"
	SyncReady       SyncState = "ready"
	SyncRunning     SyncState = "running"
	SyncUploading   SyncState = "uploading"
	SyncFailed      SyncState = "failed"
)

// StorageSync reconciles the local working store with the remote durable
// snapshot across process restarts: download before the run, upload after.
// It assumes a single active cycle at a time; overlapping cycles are the
// external scheduler's responsibility to prevent.
type StorageSync struct {
	mu     sync.Mutex
	state  SyncState
	store  blobstore.Store
	repo   repository.SnapshotRepository
	logger *logger.Logger
}

// NewStorageSync creates a new instance of StorageSync in the Idle state.
func NewStorageSync(store blobstore.Store, repo repository.SnapshotRepository, log *logger.Logger) *StorageSync {
	return &StorageSync{
		state:  SyncIdle,
		store:  store,
		repo:   repo,
		logger: log,
	}
}

// State returns the current machine state.
func (s *StorageSync) State() SyncState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Download fetches the remote snapshot and imports it into the local
// working store. An absent remote copy means a first run and is not an
// error. Any failure here is cycle-fatal: without the remote state,
// deduplication would produce false negatives.
func (s *StorageSync) Download(ctx context.Context) error {
	if err := s.transition(SyncIdle, SyncDownloading); err != nil {
		return err
	}

	data, ok, err := s.store.Download(ctx)
	if err != nil {
		s.fail()
		return &dto.SyncError{Phase: dto.SyncPhaseDownload, Err: err}
	}
	if !ok {
		s.logger.Info("No remote snapshot found, starting with empty local store")
		return s.transition(SyncDownloading, SyncReady)
	}

	snapshot, err := repository.DecodeSnapshot(data)
	if err != nil {
		s.fail()
		return &dto.SyncError{Phase: dto.SyncPhaseDownload, Err: err}
	}
	if err := s.repo.Import(ctx, snapshot); err != nil {
		s.fail()
		return &dto.SyncError{Phase: dto.SyncPhaseDownload, Err: err}
	}

	s.logger.Info("Downloaded remote snapshot",
		logger.IntField("articles", len(snapshot.Articles)),
		logger.IntField("results", len(snapshot.Results)),
	)
	return s.transition(SyncDownloading, SyncReady)
}

// Begin marks the pipeline run as started.
func (s *StorageSync) Begin() error {
	return s.transition(SyncReady, SyncRunning)
}

// Upload exports the local working store and replaces the remote snapshot.
// Failure leaves local state intact; the next cycle downloads the previous
// good snapshot, merges on top of the still-valid local data, and retries
// the upload, losing at most nothing and duplicating nothing.
func (s *StorageSync) Upload(ctx context.Context) error {
	if err := s.transition(SyncRunning, SyncUploading); err != nil {
		return err
	}

	snapshot, err := s.repo.Export(ctx)
	if err != nil {
		s.fail()
		return &dto.SyncError{Phase: dto.SyncPhaseUpload, Err: err}
	}
	data, err := snapshot.Encode()
	if err != nil {
		s.fail()
		return &dto.SyncError{Phase: dto.SyncPhaseUpload, Err: err}
	}
	if err := s.store.Upload(ctx, data); err != nil {
		s.fail()
		return &dto.SyncError{Phase: dto.SyncPhaseUpload, Err: err}
	}

	s.logger.Info("Uploaded snapshot",
		logger.IntField("articles", len(snapshot.Articles)),
		logger.IntField("bytes", len(data)),
	)
	return s.transition(SyncUploading, SyncIdle)
}

// Reset returns a failed machine to Idle so the next scheduled cycle can
// retry from scratch.
func (s *StorageSync) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = SyncIdle
}

func (s *StorageSync) transition(from, to SyncState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != from {
		return fmt.Errorf("invalid sync transition %s -> %s (current state %s)", from, to, s.state)
	}
	s.state = to
	return nil
}

func (s *StorageSync) fail() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = SyncFailed
}
