// Package blobstore abstracts the remote durable location that holds the
// serialized repository snapshot between pipeline cycles.
package blobstore

import "context"

// Store reads and writes a single opaque blob. Download returns ok=false
// when no blob has been uploaded yet, which callers treat as a first run.
type Store interface {
	Download(ctx context.Context) (data []byte, ok bool, err error)
	Upload(ctx context.Context, data []byte) error
}
