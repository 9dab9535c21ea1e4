package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"oncostrike/internal/config"
	"oncostrike/internal/ruleset"
)

// rulesCmd groups ruleset inspection commands
var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Ruleset inspection commands",
}

var rulesValidateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Validate a ruleset document",
	Long: `Parses and validates a ruleset document without installing it.
Checks gene set references, threshold ranges, and that both fusion
weight vectors sum to 1.0.

With no argument the path comes from --ruleset or the config file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRulesValidate,
}

var rulesShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective ruleset as YAML",
	RunE:  runRulesShow,
}

func init() {
	rulesCmd.AddCommand(rulesValidateCmd)
	rulesCmd.AddCommand(rulesShowCmd)
}

func resolveRulesetPath(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if rulesetPath != "" {
		return rulesetPath, nil
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return "", err
	}
	return cfg.RulesetPath, nil
}

func runRulesValidate(cmd *cobra.Command, args []string) error {
	path, err := resolveRulesetPath(args)
	if err != nil {
		return err
	}
	if path == "" {
		return fmt.Errorf("no ruleset path: pass one, or set --ruleset or ruleset_path in the config")
	}

	rs, err := ruleset.Load(path)
	if err != nil {
		return err
	}

	fmt.Printf("ok: version %s, %d mission steps, %d gene sets\n",
		rs.Version, len(rs.MissionToGeneSets), len(rs.GeneSets))
	return nil
}

func runRulesShow(cmd *cobra.Command, args []string) error {
	path, err := resolveRulesetPath(args)
	if err != nil {
		return err
	}

	var rs *ruleset.Ruleset
	if path == "" {
		rs = ruleset.Default()
	} else {
		rs, err = ruleset.Load(path)
		if err != nil {
			return err
		}
	}

	out, err := yaml.Marshal(rs)
	if err != nil {
		return fmt.Errorf("encoding ruleset: %w", err)
	}
	fmt.Print(string(out))
	return nil
}
