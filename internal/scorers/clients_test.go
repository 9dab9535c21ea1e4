package scorers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oncostrike/internal/genomics"
)

func TestFunctionalityScore(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/score/functionality", r.URL.Path)

		var body functionalityRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "EGFR", body.Gene)
		assert.Equal(t, "p.L858R", body.HGVSp)
		assert.Equal(t, "protfunc-2026.1", body.ModelID)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"functionality_score": 0.82}`))
	}))
	defer server.Close()

	cfg := DefaultFunctionalityConfig()
	cfg.BaseURL = server.URL
	client := NewFunctionality(cfg, nil)

	score, err := client.Score(context.Background(), "EGFR", "p.L858R")
	require.NoError(t, err)
	assert.InDelta(t, 0.82, score, 1e-9)
}

func TestFunctionalityScoreServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	cfg := DefaultFunctionalityConfig()
	cfg.BaseURL = server.URL
	client := NewFunctionality(cfg, nil)

	_, err := client.Score(context.Background(), "EGFR", "p.L858R")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
}

func TestFunctionalityScoreTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"functionality_score": 0.5}`))
	}))
	defer server.Close()

	cfg := DefaultFunctionalityConfig()
	cfg.BaseURL = server.URL
	cfg.Timeout = 20 * time.Millisecond
	client := NewFunctionality(cfg, nil)

	_, err := client.Score(context.Background(), "EGFR", "p.L858R")
	require.Error(t, err, "single attempt, no retry")
}

func TestEssentialityScoreSendsVariants(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body essentialityRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "VEGFA", body.Gene)
		require.Len(t, body.Variants, 1)
		assert.Equal(t, "chr6", body.Variants[0].Chrom)

		w.Write([]byte(`{"essentiality_score": 0.8}`))
	}))
	defer server.Close()

	cfg := DefaultEssentialityConfig()
	cfg.BaseURL = server.URL
	client := NewEssentiality(cfg, nil)

	score, err := client.Score(context.Background(), "VEGFA", []genomics.Variant{
		{Gene: "VEGFA", Chrom: "chr6", Pos: 43770210, Ref: "G", Alt: "A"},
	})
	require.NoError(t, err)
	assert.InDelta(t, 0.8, score, 1e-9)
}

func TestEssentialityScoreEmptyVariantList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]json.RawMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		// variants must be [] on the wire, never null
		assert.Equal(t, "[]", string(raw["variants"]))
		w.Write([]byte(`{"essentiality_score": 0.1}`))
	}))
	defer server.Close()

	cfg := DefaultEssentialityConfig()
	cfg.BaseURL = server.URL
	client := NewEssentiality(cfg, nil)

	_, err := client.Score(context.Background(), "VEGFR1", nil)
	require.NoError(t, err)
}

func TestRegulatoryScore(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body regulatoryRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "chr12", body.Chrom)
		assert.Equal(t, int64(25245350), body.Pos)
		assert.Equal(t, "C", body.Ref)
		assert.Equal(t, "T", body.Alt)

		w.Write([]byte(`{"regulatory_impact_score": 0.41}`))
	}))
	defer server.Close()

	cfg := DefaultRegulatoryConfig()
	cfg.BaseURL = server.URL
	client := NewRegulatory(cfg, nil)

	score, err := client.Score(context.Background(), "chr12", 25245350, "C", "T")
	require.NoError(t, err)
	assert.InDelta(t, 0.41, score, 1e-9)
}

func TestChromatinScore(t *testing.T) {
	t.Run("genuine inference", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var body chromatinRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, 500, body.Radius)

			w.Write([]byte(`{"accessibility_score": 0.77, "provenance": {"method": "atacnet_v4"}}`))
		}))
		defer server.Close()

		cfg := DefaultChromatinConfig()
		cfg.BaseURL = server.URL
		client := NewChromatin(cfg, nil)

		res, err := client.Score(context.Background(), "chr7", 55191822)
		require.NoError(t, err)
		assert.InDelta(t, 0.77, res.Score, 1e-9)
		assert.Equal(t, "atacnet_v4", res.Method)
	})

	t.Run("fallback method surfaces", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"accessibility_score": 0.9, "provenance": {"method": "deterministic_fallback"}}`))
		}))
		defer server.Close()

		cfg := DefaultChromatinConfig()
		cfg.BaseURL = server.URL
		client := NewChromatin(cfg, nil)

		res, err := client.Score(context.Background(), "chr7", 55191822)
		require.NoError(t, err)
		assert.Equal(t, MethodDeterministicFallback, res.Method)
	})
}

func TestReferenceFetch(t *testing.T) {
	t.Run("cleans payload", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/sequence/chr7:100-200", r.URL.Path)
			w.Write([]byte("acgt\nACGT\n"))
		}))
		defer server.Close()

		cfg := DefaultReferenceConfig()
		cfg.BaseURL = server.URL
		client := NewReference(cfg, nil)

		seq, err := client.Fetch(context.Background(), genomics.Region{Chrom: "chr7", Start: 100, End: 200})
		require.NoError(t, err)
		assert.Equal(t, "ACGTACGT", seq)
	})

	t.Run("empty payload is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("\n  \n"))
		}))
		defer server.Close()

		cfg := DefaultReferenceConfig()
		cfg.BaseURL = server.URL
		client := NewReference(cfg, nil)

		_, err := client.Fetch(context.Background(), genomics.Region{Chrom: "chr7", Start: 100, End: 200})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "empty sequence")
	})
}

func TestGuideDesign(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body guideDesignRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "NGG", body.PAM)
		assert.Equal(t, 3, body.Num)

		w.Write([]byte(`{"candidates": [
			{"sequence": "ACGTACGTACGTACGTACGT", "pam": "AGG", "gc": 0.5, "spacer_efficacy_heuristic": 0.7},
			{"sequence": "TTTTACGTACGTACGTACGT", "pam": "TGG"}
		]}`))
	}))
	defer server.Close()

	cfg := DefaultGuideDesignConfig()
	cfg.BaseURL = server.URL
	client := NewGuideDesign(cfg, nil)

	guides, err := client.Design(context.Background(), "ACGT", "NGG", 3)
	require.NoError(t, err)
	require.Len(t, guides, 2)

	require.NotNil(t, guides[0].GC)
	assert.InDelta(t, 0.5, *guides[0].GC, 1e-9)
	require.NotNil(t, guides[0].SpacerEfficacyHeuristic)

	assert.Nil(t, guides[1].GC, "omitted gc stays nil")
	assert.Nil(t, guides[1].SpacerEfficacyHeuristic)
}

func TestOffTargetScoreBatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body offTargetRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []string{"AAAA", "CCCC"}, body.Guides)

		w.Write([]byte(`{"scores": {
			"AAAA": {"heuristic_score": 0.9, "gc_content": 0.0, "homopolymer": 4}
		}}`))
	}))
	defer server.Close()

	cfg := DefaultOffTargetConfig()
	cfg.BaseURL = server.URL
	client := NewOffTarget(cfg, nil)

	scores, err := client.ScoreBatch(context.Background(), []string{"AAAA", "CCCC"})
	require.NoError(t, err)
	require.Contains(t, scores, "AAAA")
	assert.InDelta(t, 0.9, scores["AAAA"].HeuristicScore, 1e-9)
	assert.Equal(t, 4, scores["AAAA"].Homopolymer)
	assert.NotContains(t, scores, "CCCC", "unscored guide absent from map")
}

func TestEfficacyScore(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body efficacyRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ACGTACGTACGTACGTACGT", body.GuideSequence)
		assert.Equal(t, 150, body.WindowSize)

		w.Write([]byte(`{"efficacy_score": 0.66, "delta": -0.12, "confidence": 0.9}`))
	}))
	defer server.Close()

	cfg := DefaultEfficacyConfig()
	cfg.BaseURL = server.URL
	client := NewEfficacy(cfg, nil)

	est, err := client.Score(context.Background(), "ACGTACGTACGTACGTACGT", "ACGT", 150)
	require.NoError(t, err)
	assert.InDelta(t, 0.66, est.Score, 1e-9)
	assert.InDelta(t, -0.12, est.Delta, 1e-9)
	assert.InDelta(t, 0.9, est.Confidence, 1e-9)
}
