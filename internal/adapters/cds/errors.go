package cds

import "fmt"

// RequestError is a structured failure reported by the CDS API. Message and
// Reason come from the error body; Trace carries the provider-side traceback
// lines when present.
type RequestError struct {
	StatusCode int
	Message    string
	Reason     string
	Trace      []string
}

func (e *RequestError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("cds: %s: %s (status %d)", e.Reason, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("cds: %s (status %d)", e.Message, e.StatusCode)
}
