package incremental

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/kacper-wojtaszczyk/copernicus-ingest/internal/config"
	"github.com/kacper-wojtaszczyk/copernicus-ingest/internal/model"
	"github.com/kacper-wojtaszczyk/copernicus-ingest/internal/storage"
)

// State is the terminal state of one dataset run.
type State string

const (
	StateRunning   State = "running"
	StateHalted    State = "halted"
	StateCompleted State = "completed"
	StateAborted   State = "aborted"
)

// Scheduler drives one dataset's incremental download: it enumerates units
// in ascending order, skips committed ones, and applies the dataset's
// failure policy to each classified outcome. Units are never processed out
// of order, and nothing is attempted after a halt.
type Scheduler struct {
	dataset   *config.Dataset
	gate      *Gate
	executor  *Executor
	committer *Committer
	tmpDir    string
	runID     string

	// PostCommit, when set, runs after each successful commit. Errors are
	// logged, not propagated; post-processing never fails a run.
	PostCommit func(ctx context.Context, key storage.ObjectKey) error

	logger *slog.Logger
	now    func() time.Time
}

// NewScheduler wires a scheduler for one dataset. tmpDir holds staging files
// before commit; each run stages under a unique run ID so concurrently
// scheduled datasets never collide.
func NewScheduler(dataset *config.Dataset, provider Retriever, store storage.Storage, tmpDir string) *Scheduler {
	return &Scheduler{
		dataset:   dataset,
		gate:      NewGate(store),
		executor:  NewExecutor(provider),
		committer: NewCommitter(store),
		tmpDir:    tmpDir,
		runID:     uuid.NewString(),
		logger:    slog.Default(),
		now:       time.Now,
	}
}

// Run processes every due unit for the configured years and returns the
// run's terminal state. The returned error is non-nil only for Aborted runs.
func (s *Scheduler) Run(ctx context.Context, years []int) (State, error) {
	template := NormalizeTemplate(s.dataset.Request)

	var minDate *time.Time
	if s.dataset.MinDate != nil {
		minDate = &s.dataset.MinDate.Time
	}
	start, end := Bounds(years, minDate, s.dataset.LagDays, s.now())

	s.logger.InfoContext(ctx, "starting incremental download",
		"dataset", s.dataset.Name,
		"granularity", s.dataset.Granularity,
		"from", start.Format("2006-01-02"),
		"to", end.Format("2006-01-02"))

	enum := NewEnumerator(s.dataset.Granularity, start, end,
		TemplateMonths(template), TemplateDays(template))

	for unit := range enum.Units() {
		if err := ctx.Err(); err != nil {
			return StateAborted, err
		}

		key := storage.ObjectKey{
			Dataset:   s.dataset.Name,
			Unit:      unit,
			Extension: s.dataset.Extension,
		}

		done, err := s.gate.Done(ctx, key)
		if err != nil {
			return StateAborted, fmt.Errorf("idempotency check for %s: %w", key.Key(), err)
		}
		if done {
			s.logger.DebugContext(ctx, "skipping committed unit", "dataset", s.dataset.Name, "unit", unit.String())
			continue
		}

		payload := BuildRequest(template, unit, s.dataset.DateEncoding)
		target := s.stagingPath(unit)

		s.logger.InfoContext(ctx, "requesting unit", "dataset", s.dataset.Name, "unit", unit.String())
		outcome := s.executor.Fetch(ctx, s.dataset.Name, payload, target)

		switch outcome.Kind {
		case OutcomeSuccess:
			if err := s.committer.Commit(ctx, key, target, payload); err != nil {
				return StateAborted, err
			}
			s.logger.InfoContext(ctx, "unit committed", "dataset", s.dataset.Name, "key", key.Key())
			s.runPostCommit(ctx, key)

		case OutcomeNotYetAvailable:
			// Publication is monotonic in time: if this unit isn't out,
			// no later unit is either.
			if s.dataset.FailOnError {
				s.logger.WarnContext(ctx, "data not yet available, halting run",
					"dataset", s.dataset.Name, "unit", unit.String(), "message", outcome.Message)
				return StateHalted, nil
			}
			s.logger.WarnContext(ctx, "data not yet available, skipping unit",
				"dataset", s.dataset.Name, "unit", unit.String(), "message", outcome.Message)

		case OutcomeFatal:
			if s.dataset.FailOnError {
				return StateAborted, fmt.Errorf("fetch %s %s: %w", s.dataset.Name, unit.String(), outcome.Err)
			}
			s.logger.ErrorContext(ctx, "fetch failed, skipping unit",
				"dataset", s.dataset.Name, "unit", unit.String(),
				"message", outcome.Message, "reason", outcome.Reason)
		}
	}

	return StateCompleted, nil
}

func (s *Scheduler) runPostCommit(ctx context.Context, key storage.ObjectKey) {
	if s.PostCommit == nil {
		return
	}
	if err := s.PostCommit(ctx, key); err != nil {
		s.logger.ErrorContext(ctx, "post-processing failed", "key", key.Key(), "error", err)
	}
}

// stagingPath is run- and unit-unique so concurrent dataset runs sharing a
// temp dir never collide.
func (s *Scheduler) stagingPath(unit model.TimeUnit) string {
	return filepath.Join(s.tmpDir, fmt.Sprintf("%s-%s.%s", s.runID, unit.String(), s.dataset.Extension))
}
