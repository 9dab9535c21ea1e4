package scorers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Efficacy estimates cut efficacy for one guide via the spacer efficacy
// model.
type Efficacy struct {
	baseURL    string
	modelID    string
	httpClient *http.Client
	log        *zap.Logger
}

// DefaultEfficacyConfig returns sensible defaults.
func DefaultEfficacyConfig() Config {
	return Config{
		BaseURL: "http://localhost:9108",
		ModelID: "spacer-ml-v1",
		Timeout: 60 * time.Second,
	}
}

// NewEfficacy creates a spacer efficacy client.
func NewEfficacy(cfg Config, log *zap.Logger) *Efficacy {
	return &Efficacy{
		baseURL:    cfg.BaseURL,
		modelID:    cfg.ModelID,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        orNop(log),
	}
}

type efficacyRequest struct {
	GuideSequence  string `json:"guide_sequence"`
	TargetSequence string `json:"target_sequence,omitempty"`
	ModelID        string `json:"model_id"`
	WindowSize     int    `json:"window_size"`
}

// EfficacyEstimate is the model's prediction for one guide.
type EfficacyEstimate struct {
	Score      float64 `json:"efficacy_score"`
	Delta      float64 `json:"delta"`
	Confidence float64 `json:"confidence"`
}

// Score estimates efficacy for guide. targetSeq is the genomic context the
// guide was designed against and may be empty when unavailable.
func (c *Efficacy) Score(ctx context.Context, guide, targetSeq string, windowSize int) (EfficacyEstimate, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.httpClient.Timeout)
		defer cancel()
	}

	start := time.Now()
	var out EfficacyEstimate
	err := postJSON(ctx, c.httpClient, c.baseURL+"/score/efficacy", efficacyRequest{
		GuideSequence:  guide,
		TargetSequence: targetSeq,
		ModelID:        c.modelID,
		WindowSize:     windowSize,
	}, &out)
	if err != nil {
		return EfficacyEstimate{}, err
	}

	c.log.Debug("efficacy scored",
		zap.Float64("score", out.Score),
		zap.Float64("confidence", out.Confidence),
		zap.Duration("elapsed", time.Since(start)))
	return out, nil
}
