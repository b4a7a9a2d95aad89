// Command sim-fileopens simulates a pipeline step that keeps a dataset file
// open while it works.
package main

import (
	"context"
	"errors"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/tracer-e2e/batchcheck/internal/metrics"
	"github.com/tracer-e2e/batchcheck/internal/version"
	"github.com/tracer-e2e/batchcheck/pkg/config"
	"github.com/tracer-e2e/batchcheck/pkg/simulator"
)

const toolName = "sim-fileopens"

func main() {
	root := newRootCmd(os.Stdout)
	if err := root.Execute(); err != nil {
		// Usage and not-found have already been reported on stdout.
		if !errors.Is(err, simulator.ErrUsage) && !errors.Is(err, simulator.ErrNotFound) {
			log.Print(err)
		}
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	cfg := config.LoadSimulatorFromEnv()

	cmd := &cobra.Command{
		Use:           toolName + " <dataset_file>",
		Short:         "Open a dataset file read/write, hold it, and exit",
		Version:       version.Version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runSimulate(cmd.Context(), cfg, out, args)
		},
	}

	flags := cmd.Flags()
	flags.DurationVar(&cfg.HoldDuration, "hold", cfg.HoldDuration, "How long to keep the file open")
	flags.StringVar(&cfg.Encoding, "encoding", cfg.Encoding, "Text encoding the file is opened with")
	flags.StringVar(&cfg.Telemetry.TextfilePath, "metrics-textfile", cfg.Telemetry.TextfilePath, "Write run metrics to this Prometheus textfile")
	flags.StringVar(&cfg.Telemetry.PushgatewayURL, "pushgateway", cfg.Telemetry.PushgatewayURL, "Push run metrics to this Pushgateway URL")

	return cmd
}

func runSimulate(ctx context.Context, cfg *config.SimulatorConfig, out io.Writer, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	metrics.SetBuildInfo(toolName, version.Version)

	sim := &simulator.Simulator{
		Config:  cfg,
		Out:     out,
		Program: toolName,
	}
	runErr := sim.Run(ctx, args)

	if err := metrics.Export(ctx, cfg.Telemetry.TextfilePath, cfg.Telemetry.PushgatewayURL, cfg.Telemetry.Job, nil); err != nil {
		log.Printf("[metrics] export failed: %v", err)
	}

	return runErr
}
