package scorers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"oncostrike/internal/genomics"
)

// Reference fetches genome reference sequence windows.
type Reference struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
}

// DefaultReferenceConfig returns sensible defaults.
func DefaultReferenceConfig() EndpointConfig {
	return EndpointConfig{
		BaseURL: "http://localhost:9105",
		Timeout: 30 * time.Second,
	}
}

// NewReference creates a reference sequence client.
func NewReference(cfg EndpointConfig, log *zap.Logger) *Reference {
	return &Reference{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        orNop(log),
	}
}

// Fetch returns the reference sequence for region, cleaned of whitespace
// and uppercased. An empty payload is an error; length checks beyond that
// belong to the caller.
func (c *Reference) Fetch(ctx context.Context, region genomics.Region) (string, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.httpClient.Timeout)
		defer cancel()
	}

	start := time.Now()
	raw, err := getText(ctx, c.httpClient, fmt.Sprintf("%s/sequence/%s", c.baseURL, region))
	if err != nil {
		return "", err
	}

	seq := genomics.Clean(raw)
	if seq == "" {
		return "", fmt.Errorf("empty sequence for %s", region)
	}

	c.log.Debug("reference fetched",
		zap.String("region", region.String()),
		zap.Int("length", len(seq)),
		zap.Duration("elapsed", time.Since(start)))
	return seq, nil
}
