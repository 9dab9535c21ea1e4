package scorers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// OffTarget runs the heuristic off-target screen over a batch of guides.
type OffTarget struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
}

// DefaultOffTargetConfig returns sensible defaults.
func DefaultOffTargetConfig() EndpointConfig {
	return EndpointConfig{
		BaseURL: "http://localhost:9107",
		Timeout: 45 * time.Second,
	}
}

// NewOffTarget creates an off-target screen client.
func NewOffTarget(cfg EndpointConfig, log *zap.Logger) *OffTarget {
	return &OffTarget{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        orNop(log),
	}
}

type offTargetRequest struct {
	Guides []string `json:"guides"`
}

// OffTargetScore is the per-guide heuristic screen result. Higher means
// safer (fewer predicted off-target liabilities).
type OffTargetScore struct {
	HeuristicScore float64 `json:"heuristic_score"`
	GCContent      float64 `json:"gc_content"`
	Homopolymer    int     `json:"homopolymer"`
}

type offTargetResponse struct {
	Scores map[string]OffTargetScore `json:"scores"`
}

// ScoreBatch screens guides in one call and returns results keyed by guide
// sequence. A guide missing from the returned map got no screen result.
func (c *OffTarget) ScoreBatch(ctx context.Context, guides []string) (map[string]OffTargetScore, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.httpClient.Timeout)
		defer cancel()
	}

	start := time.Now()
	var out offTargetResponse
	err := postJSON(ctx, c.httpClient, c.baseURL+"/screen/offtarget", offTargetRequest{Guides: guides}, &out)
	if err != nil {
		return nil, err
	}

	c.log.Debug("off-target batch screened",
		zap.Int("guides", len(guides)),
		zap.Int("scored", len(out.Scores)),
		zap.Duration("elapsed", time.Since(start)))
	return out.Scores, nil
}
