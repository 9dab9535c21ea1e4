// Package scorers contains the HTTP clients for the external scoring
// collaborators the pipeline consumes: four evidence scorers, the genome
// reference service, the guide design service, the off-target screen, and
// the spacer efficacy model. Every client makes exactly one bounded-timeout
// attempt per call; a timeout is reported like any other failure and never
// retried, because the calling stages substitute neutral defaults instead.
package scorers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Config configures one model-backed collaborator endpoint.
type Config struct {
	BaseURL string
	ModelID string
	Timeout time.Duration
}

// EndpointConfig configures a collaborator endpoint that takes no model id.
type EndpointConfig struct {
	BaseURL string
	Timeout time.Duration
}

// maxResponseBytes bounds collaborator response bodies. The largest
// legitimate payload is a reference-sequence window of a few hundred bases.
const maxResponseBytes = 4 << 20

// postJSON marshals in, POSTs it to url, and decodes the 200 response body
// into out. Non-200 statuses come back as errors carrying the body text.
func postJSON(ctx context.Context, hc *http.Client, url string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// getText GETs url and returns the raw response body as a string.
func getText(ctx context.Context, hc *http.Client, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(body))
	}
	return string(body), nil
}

func orNop(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}
