package storage

import (
	"fmt"

	"github.com/kacper-wojtaszczyk/copernicus-ingest/internal/model"
)

// ObjectKey identifies one dataset granule's artifact in storage.
type ObjectKey struct {
	Dataset   string
	Unit      model.TimeUnit
	Extension string
}

// Key returns the artifact key: dataset/year[/MM[/DD]].ext, depending on
// which components the unit sets.
func (k ObjectKey) Key() string {
	u := k.Unit
	switch {
	case u.Day != 0:
		return fmt.Sprintf("%s/%04d/%02d/%02d.%s", k.Dataset, u.Year, u.Month, u.Day, k.Extension)
	case u.Month != 0:
		return fmt.Sprintf("%s/%04d/%02d.%s", k.Dataset, u.Year, u.Month, k.Extension)
	default:
		return fmt.Sprintf("%s/%04d.%s", k.Dataset, u.Year, k.Extension)
	}
}

// Sidecar returns the key of the paired request-payload record. Its presence
// alone marks the unit as already requested.
func (k ObjectKey) Sidecar() string {
	return k.Key() + ".json"
}
