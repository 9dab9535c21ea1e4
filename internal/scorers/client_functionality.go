package scorers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Functionality scores how strongly a protein-level variant alters gene
// function.
type Functionality struct {
	baseURL    string
	modelID    string
	httpClient *http.Client
	log        *zap.Logger
}

// DefaultFunctionalityConfig returns sensible defaults.
func DefaultFunctionalityConfig() Config {
	return Config{
		BaseURL: "http://localhost:9101",
		ModelID: "protfunc-2026.1",
		Timeout: 45 * time.Second,
	}
}

// NewFunctionality creates a functionality scorer client.
func NewFunctionality(cfg Config, log *zap.Logger) *Functionality {
	return &Functionality{
		baseURL:    cfg.BaseURL,
		modelID:    cfg.ModelID,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        orNop(log),
	}
}

type functionalityRequest struct {
	Gene    string `json:"gene"`
	HGVSp   string `json:"hgvs_p"`
	ModelID string `json:"model_id"`
}

type functionalityResponse struct {
	FunctionalityScore float64 `json:"functionality_score"`
}

// Score returns the functionality impact score for a protein change on gene.
func (c *Functionality) Score(ctx context.Context, gene, hgvsP string) (float64, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.httpClient.Timeout)
		defer cancel()
	}

	start := time.Now()
	var out functionalityResponse
	err := postJSON(ctx, c.httpClient, c.baseURL+"/score/functionality", functionalityRequest{
		Gene:    gene,
		HGVSp:   hgvsP,
		ModelID: c.modelID,
	}, &out)
	if err != nil {
		return 0, err
	}

	c.log.Debug("functionality scored",
		zap.String("gene", gene),
		zap.Float64("score", out.FunctionalityScore),
		zap.Duration("elapsed", time.Since(start)))
	return out.FunctionalityScore, nil
}
