package incremental

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/kacper-wojtaszczyk/copernicus-ingest/internal/storage"
)

// Committer materializes a successful fetch under its permanent keys. The
// artifact commits before the sidecar: the sidecar is the idempotency
// marker, so it must never exist without the artifact it marks. A crash
// between the two writes leaves the artifact in place, which the gate also
// accepts as done.
type Committer struct {
	store storage.Storage
}

func NewCommitter(store storage.Storage) *Committer {
	return &Committer{store: store}
}

// Commit writes the issued payload to a local sidecar next to the staged
// artifact, then moves both into storage via atomic saves.
func (c *Committer) Commit(ctx context.Context, key storage.ObjectKey, artifactPath string, payload map[string]any) error {
	sidecarPath := artifactPath + ".json"
	data, err := json.MarshalIndent(payload, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode request payload: %w", err)
	}
	if err := os.WriteFile(sidecarPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write sidecar %s: %w", sidecarPath, err)
	}

	if err := c.store.Save(ctx, artifactPath, key.Key()); err != nil {
		return fmt.Errorf("failed to save artifact %s: %w", key.Key(), err)
	}
	if err := c.store.Save(ctx, sidecarPath, key.Sidecar()); err != nil {
		return fmt.Errorf("failed to save sidecar %s: %w", key.Sidecar(), err)
	}
	return nil
}
