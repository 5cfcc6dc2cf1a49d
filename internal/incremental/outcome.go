package incremental

// OutcomeKind tags the result of a single fetch attempt.
type OutcomeKind int

const (
	// OutcomeSuccess means the artifact was downloaded to the staging path.
	OutcomeSuccess OutcomeKind = iota
	// OutcomeNotYetAvailable means the provider has not published the
	// requested period yet. This is an expected boundary, not a bug.
	OutcomeNotYetAvailable
	// OutcomeFatal means the fetch failed for any other reason.
	OutcomeFatal
)

// Outcome is the classified result of one provider call. Message, Reason and
// Trace are filled from a structured provider error when one was present;
// Err carries the underlying error for fatal outcomes.
type Outcome struct {
	Kind    OutcomeKind
	Message string
	Reason  string
	Trace   []string
	Err     error
}
