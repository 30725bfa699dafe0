package dto

import (
	"errors"
	"fmt"
)

// Sentinel errors for the pipeline stages. Per-item errors are isolated by
// the pipeline; only download-phase sync errors abort a cycle.
var (
	ErrFetchFailed           = errors.New("fetch failed")
	ErrExtractionFailed      = errors.New("extraction failed")
	ErrCapabilityUnavailable = errors.New("sentiment capability unavailable")
)

// TransientError marks an error as retryable (network failures, 5xx,
// rate-limit responses). Anything not wrapped is treated as permanent for
// the item.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient: %v", e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// Transient wraps err as retryable.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

// IsTransient reports whether err is marked retryable.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// SyncPhase identifies the storage-sync phase an error occurred in.
type SyncPhase string

const (
	SyncPhaseDownload SyncPhase = "download"
	SyncPhaseUpload   SyncPhase = "upload"
)

// SyncError is a storage-synchronization failure. Download-phase errors are
// cycle-fatal; upload-phase errors leave local state intact for the next
// cycle to retry.
type SyncError struct {
	Phase SyncPhase
	Err   error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("storage sync %s failed: %v", e.Phase, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}
