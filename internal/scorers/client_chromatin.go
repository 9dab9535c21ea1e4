package scorers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// MethodDeterministicFallback is the provenance method the chromatin
// collaborator reports when it could not run genuine inference and answered
// from its deterministic stub path instead. Stub readings are lower-trust
// and are dropped from weighted fusion upstream.
const MethodDeterministicFallback = "deterministic_fallback"

// ChromatinConfig configures the chromatin accessibility scorer client.
type ChromatinConfig struct {
	BaseURL string
	Timeout time.Duration
	Radius  int // window in bases around the queried position
}

// DefaultChromatinConfig returns sensible defaults.
func DefaultChromatinConfig() ChromatinConfig {
	return ChromatinConfig{
		BaseURL: "http://localhost:9104",
		Timeout: 45 * time.Second,
		Radius:  500,
	}
}

// Chromatin scores chromatin accessibility around a genomic position.
type Chromatin struct {
	baseURL    string
	radius     int
	httpClient *http.Client
	log        *zap.Logger
}

// NewChromatin creates a chromatin scorer client.
func NewChromatin(cfg ChromatinConfig, log *zap.Logger) *Chromatin {
	radius := cfg.Radius
	if radius <= 0 {
		radius = DefaultChromatinConfig().Radius
	}
	return &Chromatin{
		baseURL:    cfg.BaseURL,
		radius:     radius,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        orNop(log),
	}
}

type chromatinRequest struct {
	Chrom  string `json:"chrom"`
	Pos    int64  `json:"pos"`
	Radius int    `json:"radius"`
}

type chromatinResponse struct {
	AccessibilityScore float64 `json:"accessibility_score"`
	Provenance         struct {
		Method string `json:"method"`
	} `json:"provenance"`
}

// ChromatinResult is one accessibility reading with the provenance method
// the collaborator used to produce it.
type ChromatinResult struct {
	Score  float64
	Method string
}

// Score returns the accessibility score around chrom:pos.
func (c *Chromatin) Score(ctx context.Context, chrom string, pos int64) (ChromatinResult, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.httpClient.Timeout)
		defer cancel()
	}

	start := time.Now()
	var out chromatinResponse
	err := postJSON(ctx, c.httpClient, c.baseURL+"/score/chromatin", chromatinRequest{
		Chrom:  chrom,
		Pos:    pos,
		Radius: c.radius,
	}, &out)
	if err != nil {
		return ChromatinResult{}, err
	}

	c.log.Debug("chromatin scored",
		zap.String("chrom", chrom),
		zap.Int64("pos", pos),
		zap.Float64("score", out.AccessibilityScore),
		zap.String("method", out.Provenance.Method),
		zap.Duration("elapsed", time.Since(start)))
	return ChromatinResult{Score: out.AccessibilityScore, Method: out.Provenance.Method}, nil
}
