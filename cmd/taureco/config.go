package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/randalmurphal/taureco/pkg/taureco/config"
)

// overrides holds --set key=value pairs.
var overrides []string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Print the configuration a run would use: the config file with every
--set override applied.

Values are parsed as YAML, so numbers, booleans and flow maps keep their
types. Overrides replace whole top-level keys.

Examples:
  taureco config --config taureco.yaml
  taureco config --set jet_pt_min=15 --set builder=basic
  taureco config --set 'builder_params={track_min_pt: 1.0}' --json`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	configCmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file (YAML or JSON)")
	configCmd.Flags().StringArrayVar(&overrides, "set", nil, "Override a config key (key=value, repeatable)")
}

func runConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(configPath, overrides)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if jsonOutput {
		return encodeJSON(out, cfg.Raw())
	}
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(cfg.Raw()); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return enc.Close()
}

// loadConfig reads path, when set, and applies overrides on top.
func loadConfig(path string, sets []string) (config.Config, error) {
	cfg := config.New(nil)
	if path != "" {
		var err error
		if cfg, err = config.FromFile(path); err != nil {
			return config.Config{}, err
		}
	}
	over, err := parseOverrides(sets)
	if err != nil {
		return config.Config{}, err
	}
	return config.Merge(cfg, over), nil
}

// parseOverrides turns key=value pairs into a Config.
func parseOverrides(sets []string) (config.Config, error) {
	data := make(map[string]any, len(sets))
	for _, s := range sets {
		key, raw, ok := strings.Cut(s, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return config.Config{}, fmt.Errorf("invalid --set %q: want key=value", s)
		}
		var v any
		if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
			return config.Config{}, fmt.Errorf("invalid --set %s: %w", key, err)
		}
		data[key] = v
	}
	return config.New(data), nil
}
