package exitcode

// Exit codes for the downloader CLI.
// The orchestration layer (cron, Dagster, ...) can use these to decide
// retry strategy.
const (
	// Success - all selected dataset runs completed or halted cleanly
	Success = 0

	// ConfigError - missing or invalid configuration
	// Don't retry: fix the config first
	ConfigError = 1

	// ApplicationError - at least one dataset run aborted
	// Check logs; committed units stay committed, so a retry resumes
	ApplicationError = 2

	// StorageError - failed to initialize the storage backend
	// Retry with backoff
	StorageError = 3
)
