package cds

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"
)

// Client interacts with the CDS API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client

	// Polling configuration (internal)
	pollInterval time.Duration
	pollTimeout  time.Duration
}

// NewClient creates a new CDS API client.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:      baseURL,
		apiKey:       apiKey,
		pollInterval: 10 * time.Second, // sensible default
		pollTimeout:  30 * time.Minute, // sensible default
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Retrieve requests data from CDS and writes the resulting artifact to
// target. It handles the full async flow: submit → poll → download. Failures
// reported by the API surface as *RequestError when the body is structured.
func (c *Client) Retrieve(ctx context.Context, dataset string, payload map[string]any, target string) error {
	slog.InfoContext(ctx, "submitting execute request", "dataset", dataset)
	job, err := c.apiPostExecute(ctx, dataset, payload)
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "execute request submitted", "job_id", job.JobID, "status", job.Status)

	if err := c.waitForCompletion(ctx, job.JobID); err != nil {
		return err
	}

	resultResp, err := c.apiGetResults(ctx, job.JobID)
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "downloading result asset", "asset_url", resultResp.Asset.Value.Href, "asset_type", resultResp.Asset.Value.Type)

	return c.apiDownloadAsset(ctx, resultResp.Asset.Value.Href, target)
}

func (c *Client) doRequest(ctx context.Context, method string, path string, body io.Reader, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("PRIVATE-TOKEN", c.apiKey)

	// Set optional headers
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	return c.httpClient.Do(req)
}

func (c *Client) apiPostExecute(ctx context.Context, dataset string, payload map[string]any) (*jobResponse, error) {
	body, err := json.Marshal(executionRequest{Inputs: payload})
	if err != nil {
		return nil, err
	}
	response, err := c.doRequest(
		ctx,
		"POST",
		fmt.Sprintf("/processes/%s/execution", dataset),
		bytes.NewBuffer(body),
		map[string]string{
			"Content-Type": "application/json",
			"Accept":       "application/json",
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to submit execute request: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != 201 {
		return nil, c.apiError(response, "execute request failed")
	}

	var job jobResponse
	if err := json.NewDecoder(response.Body).Decode(&job); err != nil {
		return nil, err
	}

	return &job, nil
}

func (c *Client) apiGetJob(ctx context.Context, jobID string) (*jobResponse, error) {
	response, err := c.doRequest(
		ctx,
		"GET",
		fmt.Sprintf("/jobs/%s", jobID),
		nil,
		map[string]string{
			"Accept": "application/json",
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get job status: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != 200 {
		return nil, c.apiError(response, "failed to get job status")
	}

	var job jobResponse
	if err := json.NewDecoder(response.Body).Decode(&job); err != nil {
		return nil, err
	}

	return &job, nil
}

func (c *Client) apiGetResults(ctx context.Context, jobID string) (*resultResponse, error) {
	response, err := c.doRequest(
		ctx,
		"GET",
		fmt.Sprintf("/jobs/%s/results", jobID),
		nil,
		map[string]string{
			"Accept": "application/json",
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get job results: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != 200 {
		return nil, c.apiError(response, "failed to get job results")
	}

	var resultResp resultResponse
	if err := json.NewDecoder(response.Body).Decode(&resultResp); err != nil {
		return nil, err
	}

	return &resultResp, nil
}

func (c *Client) apiDownloadAsset(ctx context.Context, assetURL, target string) error {
	req, err := http.NewRequestWithContext(ctx, "GET", assetURL, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download asset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return c.apiError(resp, "failed to download asset")
	}

	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", target, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("failed to write %s: %w", target, err)
	}
	return out.Close()
}

// waitForCompletion polls until the job completes or fails. A failed job's
// error details live behind the results endpoint, so fetch them from there.
func (c *Client) waitForCompletion(ctx context.Context, jobID string) error {
	ctx, cancel := context.WithTimeout(ctx, c.pollTimeout)
	defer cancel()

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			// continue polling
		}

		job, err := c.apiGetJob(ctx, jobID)
		if err != nil {
			return err
		}

		switch job.Status {
		case jobStateSuccessful:
			slog.InfoContext(ctx, "job completed", "job_id", job.JobID, "status", job.Status)
			return nil
		case jobStateFailed, jobStateRejected, jobStateDismissed:
			if _, err := c.apiGetResults(ctx, jobID); err != nil {
				return err
			}
			return fmt.Errorf("job %s failed with status: %s", jobID, job.Status)
		default:
			slog.InfoContext(ctx, "job not completed yet", "job_id", job.JobID, "status", job.Status)
		}
	}
}

// apiError turns a non-2xx response into a *RequestError when the body is a
// structured CDS error document, otherwise into a plain error with the raw
// body text.
func (c *Client) apiError(resp *http.Response, context string) error {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return fmt.Errorf("%s (status %d)", context, resp.StatusCode)
	}

	var body errorBody
	if err := json.Unmarshal(raw, &body); err == nil && body.Message != "" {
		return &RequestError{
			StatusCode: resp.StatusCode,
			Message:    body.Message,
			Reason:     body.Reason,
			Trace:      body.Traceback,
		}
	}

	return fmt.Errorf("%s (status %d): %s", context, resp.StatusCode, bytes.TrimSpace(raw))
}
