package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"oncostrike/internal/assassin"
	"oncostrike/internal/audit"
	"oncostrike/internal/config"
	"oncostrike/internal/design"
	"oncostrike/internal/intercept"
	"oncostrike/internal/ruleset"
	"oncostrike/internal/safety"
	"oncostrike/internal/scorers"
	"oncostrike/internal/server"
	"oncostrike/internal/signals"
	"oncostrike/internal/targetlock"
)

// serveCmd runs the HTTP service
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the interception HTTP service",
	Long: `Starts the HTTP service exposing the pipeline:

  POST /v1/intercept       run one interception request
  GET  /healthz            readiness and ruleset summary
  POST /v1/ruleset/reload  explicit ruleset reload

When a ruleset file is configured, it is also watched for changes and
hot-reloaded; a document that fails validation is rejected and the
current snapshot stays in force.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
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
	srv := server.New(server.Config{
		ListenAddr:     cfg.Server.ListenAddr,
		RequestTimeout: cfg.GetRequestTimeout(),
		ShutdownGrace:  cfg.GetShutdownGrace(),
	}, pipeline, store, logger)

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Pipeline.WatchRuleset && store.Path() != "" {
		watcher, err := ruleset.NewWatcher(store, logger)
		if err != nil {
			logger.Warn("ruleset watcher unavailable", zap.Error(err))
		} else if err := watcher.Start(ctx); err != nil {
			logger.Warn("ruleset watcher failed to start", zap.Error(err))
		} else {
			defer watcher.Stop()
		}
	}

	return srv.Run(ctx)
}

// openAuditTrail opens the configured audit trail, or returns a nil
// trail when none is configured.
func openAuditTrail(cfg *config.Config) (*audit.Log, error) {
	if cfg.AuditLogPath == "" {
		return nil, nil
	}
	trail, err := audit.Open(cfg.AuditLogPath, logger)
	if err != nil {
		return nil, fmt.Errorf("opening audit trail: %w", err)
	}
	return trail, nil
}

// buildPipeline wires the collaborator clients and pipeline stages from
// the loaded configuration.
func buildPipeline(cfg *config.Config, store *ruleset.Store, trail *audit.Log, log *zap.Logger) *intercept.Pipeline {
	col := cfg.Collaborators

	functionality := scorers.NewFunctionality(scorers.Config{
		BaseURL: col.Functionality.BaseURL,
		ModelID: col.Functionality.ModelID,
		Timeout: col.Functionality.Duration(scorers.DefaultFunctionalityConfig().Timeout),
	}, log)
	essentiality := scorers.NewEssentiality(scorers.Config{
		BaseURL: col.Essentiality.BaseURL,
		ModelID: col.Essentiality.ModelID,
		Timeout: col.Essentiality.Duration(scorers.DefaultEssentialityConfig().Timeout),
	}, log)
	regulatory := scorers.NewRegulatory(scorers.Config{
		BaseURL: col.Regulatory.BaseURL,
		ModelID: col.Regulatory.ModelID,
		Timeout: col.Regulatory.Duration(scorers.DefaultRegulatoryConfig().Timeout),
	}, log)
	chromatin := scorers.NewChromatin(scorers.ChromatinConfig{
		BaseURL: col.Chromatin.BaseURL,
		Timeout: col.Chromatin.Duration(scorers.DefaultChromatinConfig().Timeout),
		Radius:  col.Chromatin.Radius,
	}, log)

	collector := signals.NewCollector(functionality, essentiality, regulatory, chromatin, log)
	selector := targetlock.NewSelector(store, collector, targetlock.Config{
		GeneConcurrency: cfg.Pipeline.GeneConcurrency,
	}, log)

	reference := scorers.NewReference(scorers.EndpointConfig{
		BaseURL: col.Reference.BaseURL,
		Timeout: col.Reference.Duration(scorers.DefaultReferenceConfig().Timeout),
	}, log)
	guideDesign := scorers.NewGuideDesign(scorers.Config{
		BaseURL: col.GuideDesign.BaseURL,
		ModelID: col.GuideDesign.ModelID,
		Timeout: col.GuideDesign.Duration(scorers.DefaultGuideDesignConfig().Timeout),
	}, log)
	generator := design.NewGenerator(reference, guideDesign, log)

	offTarget := scorers.NewOffTarget(scorers.EndpointConfig{
		BaseURL: col.OffTarget.BaseURL,
		Timeout: col.OffTarget.Duration(scorers.DefaultOffTargetConfig().Timeout),
	}, log)
	evaluator := safety.NewEvaluator(offTarget, log)

	efficacy := scorers.NewEfficacy(scorers.Config{
		BaseURL: col.Efficacy.BaseURL,
		ModelID: col.Efficacy.ModelID,
		Timeout: col.Efficacy.Duration(scorers.DefaultEfficacyConfig().Timeout),
	}, log)
	scorer := assassin.NewScorer(efficacy, log)

	return intercept.NewPipeline(store, selector, generator, evaluator, scorer, trail, log)
}
