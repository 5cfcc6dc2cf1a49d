package storage

import "context"

// Storage is the capability set the download pipeline needs from a backend.
// Save must be atomic from the perspective of concurrent readers: a reader
// either sees the complete object under key, or no object at all.
type Storage interface {
	Exists(ctx context.Context, key string) (bool, error)
	Save(ctx context.Context, localPath, key string) error
	List(ctx context.Context, prefix string) ([]string, error)
	// GetLocalPath returns a local filesystem path for key, downloading the
	// object first when the backend is remote.
	GetLocalPath(ctx context.Context, key string) (string, error)
}
