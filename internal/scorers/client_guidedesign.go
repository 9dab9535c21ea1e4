package scorers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// GuideDesign asks the design collaborator for candidate guide sequences
// against a target window.
type GuideDesign struct {
	baseURL    string
	modelID    string
	httpClient *http.Client
	log        *zap.Logger
}

// DefaultGuideDesignConfig returns sensible defaults.
func DefaultGuideDesignConfig() Config {
	return Config{
		BaseURL: "http://localhost:9106",
		ModelID: "guidegen-v2",
		Timeout: 45 * time.Second,
	}
}

// NewGuideDesign creates a guide design client.
func NewGuideDesign(cfg Config, log *zap.Logger) *GuideDesign {
	return &GuideDesign{
		baseURL:    cfg.BaseURL,
		modelID:    cfg.ModelID,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        orNop(log),
	}
}

type guideDesignRequest struct {
	TargetSequence string `json:"target_sequence"`
	PAM            string `json:"pam"`
	Num            int    `json:"num"`
	ModelID        string `json:"model_id"`
}

// DesignedGuide is one candidate as returned by the collaborator. GC and
// the efficacy heuristic are pointers because the collaborator may omit
// either; absence is meaningful downstream.
type DesignedGuide struct {
	Sequence                string   `json:"sequence"`
	PAM                     string   `json:"pam"`
	GC                      *float64 `json:"gc,omitempty"`
	SpacerEfficacyHeuristic *float64 `json:"spacer_efficacy_heuristic,omitempty"`
}

type guideDesignResponse struct {
	Candidates []DesignedGuide `json:"candidates"`
}

// Design requests up to num guides targeting targetSeq with the given PAM
// pattern. The collaborator may return fewer, including zero.
func (c *GuideDesign) Design(ctx context.Context, targetSeq, pam string, num int) ([]DesignedGuide, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.httpClient.Timeout)
		defer cancel()
	}

	start := time.Now()
	var out guideDesignResponse
	err := postJSON(ctx, c.httpClient, c.baseURL+"/design/guides", guideDesignRequest{
		TargetSequence: targetSeq,
		PAM:            pam,
		Num:            num,
		ModelID:        c.modelID,
	}, &out)
	if err != nil {
		return nil, err
	}

	c.log.Debug("guides designed",
		zap.Int("requested", num),
		zap.Int("returned", len(out.Candidates)),
		zap.Duration("elapsed", time.Since(start)))
	return out.Candidates, nil
}
