package scorers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"oncostrike/internal/genomics"
)

// Essentiality scores how essential a gene is to tumor survival given the
// patient's matched variants.
type Essentiality struct {
	baseURL    string
	modelID    string
	httpClient *http.Client
	log        *zap.Logger
}

// DefaultEssentialityConfig returns sensible defaults.
func DefaultEssentialityConfig() Config {
	return Config{
		BaseURL: "http://localhost:9102",
		ModelID: "ess-gnn-v3",
		Timeout: 45 * time.Second,
	}
}

// NewEssentiality creates an essentiality scorer client.
func NewEssentiality(cfg Config, log *zap.Logger) *Essentiality {
	return &Essentiality{
		baseURL:    cfg.BaseURL,
		modelID:    cfg.ModelID,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        orNop(log),
	}
}

type essentialityRequest struct {
	Gene     string             `json:"gene"`
	Variants []genomics.Variant `json:"variants"`
	ModelID  string             `json:"model_id"`
}

type essentialityResponse struct {
	EssentialityScore float64 `json:"essentiality_score"`
}

// Score returns the essentiality score for gene. The variant list carries
// the patient mutations matched to the gene, and may be empty.
func (c *Essentiality) Score(ctx context.Context, gene string, variants []genomics.Variant) (float64, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.httpClient.Timeout)
		defer cancel()
	}

	if variants == nil {
		variants = []genomics.Variant{}
	}

	start := time.Now()
	var out essentialityResponse
	err := postJSON(ctx, c.httpClient, c.baseURL+"/score/essentiality", essentialityRequest{
		Gene:     gene,
		Variants: variants,
		ModelID:  c.modelID,
	}, &out)
	if err != nil {
		return 0, err
	}

	c.log.Debug("essentiality scored",
		zap.String("gene", gene),
		zap.Int("variants", len(variants)),
		zap.Float64("score", out.EssentialityScore),
		zap.Duration("elapsed", time.Since(start)))
	return out.EssentialityScore, nil
}
