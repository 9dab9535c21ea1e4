package scorers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Regulatory scores the regulatory impact of a coordinate-level variant.
type Regulatory struct {
	baseURL    string
	modelID    string
	httpClient *http.Client
	log        *zap.Logger
}

// DefaultRegulatoryConfig returns sensible defaults. Regulatory inference
// runs a heavier model, so the timeout is wider than the other scorers.
func DefaultRegulatoryConfig() Config {
	return Config{
		BaseURL: "http://localhost:9103",
		ModelID: "reg-lstm-v2",
		Timeout: 60 * time.Second,
	}
}

// NewRegulatory creates a regulatory scorer client.
func NewRegulatory(cfg Config, log *zap.Logger) *Regulatory {
	return &Regulatory{
		baseURL:    cfg.BaseURL,
		modelID:    cfg.ModelID,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        orNop(log),
	}
}

type regulatoryRequest struct {
	Chrom   string `json:"chrom"`
	Pos     int64  `json:"pos"`
	Ref     string `json:"ref"`
	Alt     string `json:"alt"`
	ModelID string `json:"model_id"`
}

type regulatoryResponse struct {
	RegulatoryImpactScore float64 `json:"regulatory_impact_score"`
}

// Score returns the regulatory impact score for a coordinate variant.
func (c *Regulatory) Score(ctx context.Context, chrom string, pos int64, ref, alt string) (float64, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.httpClient.Timeout)
		defer cancel()
	}

	start := time.Now()
	var out regulatoryResponse
	err := postJSON(ctx, c.httpClient, c.baseURL+"/score/regulatory", regulatoryRequest{
		Chrom:   chrom,
		Pos:     pos,
		Ref:     ref,
		Alt:     alt,
		ModelID: c.modelID,
	}, &out)
	if err != nil {
		return 0, err
	}

	c.log.Debug("regulatory scored",
		zap.String("chrom", chrom),
		zap.Int64("pos", pos),
		zap.Float64("score", out.RegulatoryImpactScore),
		zap.Duration("elapsed", time.Since(start)))
	return out.RegulatoryImpactScore, nil
}
