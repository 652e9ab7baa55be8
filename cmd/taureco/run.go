package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"runtime"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/randalmurphal/taureco/pkg/taureco"
	"github.com/randalmurphal/taureco/pkg/taureco/builder"
	"github.com/randalmurphal/taureco/pkg/taureco/config"
	"github.com/randalmurphal/taureco/pkg/taureco/store"
)

const defaultFieldTesla = 3.8

// Run flags
var (
	configPath string
	inputPath  string
	storePath  string
	runID      string
	workers    int
	seed       uint64
	eventRate  float64
	telemetry  bool
	replace    bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process an events file",
	Long: `Process every event of an input file and print a summary per event.

The input is YAML or JSON with a top-level "events" list. With --store the
products of every event are saved to a SQLite database under the run ID.

Examples:
  taureco run --input events.yaml
  taureco run --input events.json --config taureco.yaml --store runs.db
  taureco run --input events.yaml --workers 4 --seed 42 --json
  taureco run --input events.yaml --set jet_pt_min=20 --store runs.db --run-id nightly --replace

The config file may also set "workers"; the --workers flag wins.`,
	Args: cobra.NoArgs,
	RunE: runEvents,
}

func init() {
	runCmd.Flags().StringVarP(&inputPath, "input", "i", "", "Events file (required)")
	runCmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file (YAML or JSON)")
	runCmd.Flags().StringVarP(&storePath, "store", "s", "", "SQLite database for products")
	runCmd.Flags().StringVar(&runID, "run-id", "", "Run identifier (default: random UUID)")
	runCmd.Flags().IntVarP(&workers, "workers", "w", runtime.NumCPU(), "Parallel workers")
	runCmd.Flags().Uint64Var(&seed, "seed", 0, "Seed for synthetic vertices; reproducible with one worker")
	runCmd.Flags().Float64Var(&eventRate, "rate", 0, "Max events per second (0 = unlimited)")
	runCmd.Flags().BoolVar(&telemetry, "telemetry", false, "Record OpenTelemetry metrics and spans")
	runCmd.Flags().StringArrayVar(&overrides, "set", nil, "Override a config key (key=value, repeatable)")
	runCmd.Flags().BoolVar(&replace, "replace", false, "Delete stored products of the run ID before processing")
	_ = runCmd.MarkFlagRequired("input")
}

// pipeline is everything needed to build producers for a run.
type pipeline struct {
	settings    taureco.Settings
	builderName string
	params      config.Config
	deps        taureco.Dependencies
}

// newPipeline reads settings and resolves setup services from cfg.
func newPipeline(cfg config.Config) (*pipeline, error) {
	settings, err := taureco.SettingsFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	bz, err := cfg.FloatStrict("magnetic_field_tesla", defaultFieldTesla)
	if err != nil {
		return nil, err
	}
	field := taureco.UniformField{Bz: bz}
	setup := taureco.NewSetup().
		Put(taureco.MagneticFieldRecord, field).
		Put(taureco.TrackBuilderRecord, taureco.NewHelixTrackBuilder(field))

	deps, err := taureco.ResolveDependencies(setup)
	if err != nil {
		return nil, err
	}

	p := &pipeline{
		settings:    settings,
		builderName: cfg.String("builder", taureco.DefaultBuilder),
		params:      cfg.Sub("builder_params"),
		deps:        deps,
	}
	// Fail on bad builder config before any event is read.
	if _, err := builder.New(p.builderName, p.params, p.deps); err != nil {
		return nil, err
	}
	return p, nil
}

// factory returns a ProducerFactory giving each worker its own builder.
func (p *pipeline) factory(logger *slog.Logger, opts ...taureco.Option) taureco.ProducerFactory {
	return func(worker int) (*taureco.Producer, error) {
		b, err := builder.New(p.builderName, p.params, p.deps)
		if err != nil {
			return nil, err
		}
		all := append([]taureco.Option{
			taureco.WithLogger(logger.With(slog.Int("worker", worker))),
		}, opts...)
		return taureco.NewProducer(p.settings, b, all...)
	}
}

func runEvents(cmd *cobra.Command, _ []string) error {
	logger := newLogger()
	if replace && storePath == "" {
		return fmt.Errorf("--replace needs --store")
	}

	cfg, err := loadConfig(configPath, overrides)
	if err != nil {
		return err
	}
	pl, err := newPipeline(cfg)
	if err != nil {
		return err
	}
	n, err := workerCount(cmd.Flags().Changed("workers"), workers, cfg)
	if err != nil {
		return err
	}

	events, err := loadEvents(inputPath)
	if err != nil {
		return err
	}

	id := runID
	if id == "" {
		id = uuid.NewString()
	}
	if telemetry {
		session := startTelemetry()
		defer func() {
			ctx := context.WithoutCancel(cmd.Context())
			if err := session.report(ctx, logger); err != nil {
				logger.Warn("metrics report failed", slog.String("error", err.Error()))
			}
			if err := session.shutdown(ctx); err != nil {
				logger.Warn("telemetry shutdown failed", slog.String("error", err.Error()))
			}
		}()
	}
	opts := []taureco.Option{
		taureco.WithRunID(id),
		taureco.WithMetrics(telemetry),
		taureco.WithTracing(telemetry),
	}

	if storePath != "" {
		st, err := store.NewSQLiteStore(storePath)
		if err != nil {
			return err
		}
		defer st.Close()
		if replace {
			if err := st.DeleteRun(id); err != nil {
				return err
			}
			logger.Info("replaced stored run", slog.String("run_id", id))
		}
		opts = append(opts, taureco.WithStore(st))
	}

	seeded := cmd.Flags().Changed("seed")
	factory := func(worker int) (*taureco.Producer, error) {
		workerOpts := opts
		if seeded {
			src := rand.New(rand.NewPCG(seed, uint64(worker)))
			workerOpts = append(append([]taureco.Option{}, opts...), taureco.WithRandSource(src))
		}
		return pl.factory(logger, workerOpts...)(worker)
	}

	runner := taureco.NewRunner(factory,
		taureco.WithWorkers(n),
		taureco.WithEventRate(eventRate),
		taureco.WithRunnerLogger(logger),
	)
	results, err := runner.Run(cmd.Context(), events)
	if err != nil {
		return err
	}

	if jsonOutput {
		return encodeJSON(cmd.OutOrStdout(), struct {
			RunID  string             `json:"run_id"`
			Events []taureco.Products `json:"events"`
		}{id, results})
	}
	return printSummary(cmd, id, results)
}

// workerCount returns the flag value when it was given, else the config's
// "workers" key, else the flag default.
func workerCount(flagSet bool, flagValue int, cfg config.Config) (int, error) {
	if flagSet || !cfg.Has("workers") {
		return flagValue, nil
	}
	n := cfg.Int("workers", 0)
	if n <= 0 {
		return 0, fmt.Errorf("config key %q: want a positive integer", "workers")
	}
	return n, nil
}

func printSummary(cmd *cobra.Command, id string, results []taureco.Products) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "run %s\n", id)
	fmt.Fprintln(w, "EVENT\tCANDIDATES\tDETIDS\tVERTEX")
	for _, r := range results {
		vtx := "primary"
		if r.SyntheticVertex {
			vtx = "synthetic"
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", r.EventID, len(r.Candidates), len(r.DetIDs), vtx)
	}
	return w.Flush()
}
