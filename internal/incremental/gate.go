package incremental

import (
	"context"

	"github.com/kacper-wojtaszczyk/copernicus-ingest/internal/storage"
)

// Gate answers whether a unit's work is already done. A unit counts as done
// when the primary artifact exists, or when the sidecar request record
// exists on its own: a committed request marker is enough even if the raw
// artifact was pruned later.
type Gate struct {
	store storage.Storage
}

func NewGate(store storage.Storage) *Gate {
	return &Gate{store: store}
}

// Done queries storage directly on every call; committed state is never
// cached across units within a run.
func (g *Gate) Done(ctx context.Context, key storage.ObjectKey) (bool, error) {
	exists, err := g.store.Exists(ctx, key.Key())
	if err != nil || exists {
		return exists, err
	}
	return g.store.Exists(ctx, key.Sidecar())
}
