package incremental

import (
	"context"
	"errors"
	"strings"

	"github.com/kacper-wojtaszczyk/copernicus-ingest/internal/adapters/cds"
)

// notAvailableMarker is the provider's phrasing for a period that has not
// been published yet.
const notAvailableMarker = "not available yet"

// Retriever is the provider capability the executor needs. Retrieve blocks
// until the artifact is written to target or the request fails.
type Retriever interface {
	Retrieve(ctx context.Context, dataset string, payload map[string]any, target string) error
}

// Executor issues provider calls and classifies their outcome. It never
// decides stop/skip policy; that belongs to the Scheduler.
type Executor struct {
	provider Retriever
}

func NewExecutor(provider Retriever) *Executor {
	return &Executor{provider: provider}
}

// Fetch runs one provider call for a unit and classifies the result.
func (e *Executor) Fetch(ctx context.Context, dataset string, payload map[string]any, target string) Outcome {
	err := e.provider.Retrieve(ctx, dataset, payload, target)
	if err == nil {
		return Outcome{Kind: OutcomeSuccess}
	}

	var reqErr *cds.RequestError
	if errors.As(err, &reqErr) {
		if strings.Contains(strings.ToLower(reqErr.Message), notAvailableMarker) {
			return Outcome{Kind: OutcomeNotYetAvailable, Message: reqErr.Message}
		}
		return Outcome{
			Kind:    OutcomeFatal,
			Message: reqErr.Message,
			Reason:  reqErr.Reason,
			Trace:   reqErr.Trace,
			Err:     err,
		}
	}

	return Outcome{Kind: OutcomeFatal, Message: err.Error(), Err: err}
}
