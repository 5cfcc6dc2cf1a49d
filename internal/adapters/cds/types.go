package cds

// jobState represents the state of a CDS job (internal).
type jobState string

const (
	jobStateAccepted   jobState = "accepted"
	jobStateRunning    jobState = "running"
	jobStateSuccessful jobState = "successful"
	jobStateFailed     jobState = "failed"
	jobStateRejected   jobState = "rejected"
	jobStateDismissed  jobState = "dismissed"
)

// jobResponse is the raw API response for job submission and status.
type jobResponse struct {
	JobID  string   `json:"jobID"`
	Status jobState `json:"status"`
}

// resultResponse is the raw API response for a completed job's results.
type resultResponse struct {
	Asset asset `json:"asset"`
}

type asset struct {
	Value value `json:"value"`
}

type value struct {
	Type string `json:"type"`
	Href string `json:"href"`
}

// executionRequest wraps a request payload the way the CDS processes API
// expects it.
type executionRequest struct {
	Inputs map[string]any `json:"inputs"`
}

// errorBody is the structured error document CDS returns on failed requests.
type errorBody struct {
	Message   string   `json:"message"`
	Reason    string   `json:"reason"`
	Traceback []string `json:"traceback"`
}
