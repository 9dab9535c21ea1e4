package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"oncostrike/internal/config"
	"oncostrike/internal/genomics"
	"oncostrike/internal/intercept"
	"oncostrike/internal/ruleset"
)

var (
	interceptMission  string
	interceptVariants string
	interceptNum      int
	interceptJSON     bool
)

// interceptCmd runs one request through the pipeline from the terminal
var interceptCmd = &cobra.Command{
	Use:   "intercept",
	Short: "Run one interception request against the configured collaborators",
	Long: `Runs a single request through target lock, candidate design, the
safety screen, and score fusion, then renders the ranked report.

The variants file is a JSON array of patient mutations:

  [
    {"gene": "VEGFA", "chrom": "chr6", "pos": 43770210, "ref": "C",
     "alt": "T", "hgvs_p": "p.R108Q"}
  ]

Example:
  oncostrike intercept --mission angiogenesis --variants patient.json`,
	RunE: runInterceptCmd,
}

func init() {
	interceptCmd.Flags().StringVar(&interceptMission, "mission", "", "Mission step to target (required)")
	interceptCmd.Flags().StringVar(&interceptVariants, "variants", "", "Path to the patient variants JSON file (required)")
	interceptCmd.Flags().IntVar(&interceptNum, "num", 0, "Candidate count override, 1-10 (0 uses the ruleset value)")
	interceptCmd.Flags().BoolVar(&interceptJSON, "json", false, "Print the raw JSON response instead of the report")
	interceptCmd.MarkFlagRequired("mission")
	interceptCmd.MarkFlagRequired("variants")
}

func runInterceptCmd(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := reinitLogger(cfg); err != nil {
		return err
	}
	if rulesetPath != "" {
		cfg.RulesetPath = rulesetPath
	}

	mutations, err := loadVariants(interceptVariants)
	if err != nil {
		return err
	}

	store, err := ruleset.NewStore(cfg.RulesetPath, logger)
	if err != nil {
		return fmt.Errorf("loading ruleset: %w", err)
	}

	trail, err := openAuditTrail(cfg)
	if err != nil {
		return err
	}
	defer trail.Close()

	pipeline := buildPipeline(cfg, store, trail, logger)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.GetRequestTimeout())
	defer cancel()

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal")
		cancel()
	}()

	req := intercept.Request{
		MissionStep: interceptMission,
		Mutations:   mutations,
	}
	if interceptNum != 0 {
		req.Options = &intercept.Options{NumCandidates: interceptNum}
	}

	logger.Info("running interception",
		zap.String("mission", interceptMission),
		zap.Int("mutations", len(mutations)))

	res, err := pipeline.Intercept(ctx, req)
	if err != nil {
		return fmt.Errorf("interception failed: %w", err)
	}

	if interceptJSON {
		out, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding response: %w", err)
		}
		fmt.Println(string(out))
		return nil
	}

	fmt.Print(renderReport(res))
	return nil
}

func loadVariants(path string) ([]genomics.Variant, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading variants file: %w", err)
	}
	var mutations []genomics.Variant
	if err := json.Unmarshal(data, &mutations); err != nil {
		return nil, fmt.Errorf("parsing variants file: %w", err)
	}
	return mutations, nil
}
