/*
Package config provides type-safe configuration extraction from map[string]any.

Config wraps a decoded YAML or JSON document. Accessors take a default that
is returned when the key is missing:

	cfg, err := config.FromFile("taureco.yaml")
	if err != nil {
	    log.Fatal(err)
	}
	minPt, err := cfg.FloatStrict("jet_pt_min", 0)
	params := cfg.Sub("builder_params")

Numbers are read with FloatStrict so a mistyped value is an error rather
than a silent default. Merge overlays command-line overrides on a loaded
file.

Config is safe for concurrent read access.
*/
package config
