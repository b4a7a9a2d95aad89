// Command validate-batch-runs asserts that a batch pipeline run finished and
// that its processing-time metrics reached object storage.
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
	"github.com/tracer-e2e/batchcheck/pkg/objstore"
	"github.com/tracer-e2e/batchcheck/pkg/validator"
)

const toolName = "validate-batch-runs"

func main() {
	root := newRootCmd(os.Stdout, nil)
	if err := root.Execute(); err != nil {
		if !errors.Is(err, validator.ErrValidationFailed) {
			log.Print(err)
		}
		os.Exit(1)
	}
}

// newRootCmd builds the command. open overrides bucket construction in tests.
func newRootCmd(out io.Writer, open func(context.Context, config.StorageConfig) (objstore.Bucket, error)) *cobra.Command {
	cfg := config.LoadCheckerFromEnv()
	if open == nil {
		open = objstore.New
	}

	cmd := &cobra.Command{
		Use:           toolName + " [work_dir]",
		Short:         "Check that a batch pipeline completed and captured processing times",
		Version:       version.Version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				cfg.WorkDir = args[0]
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runValidate(cmd.Context(), cfg, out, open)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.Storage.Backend, "backend", cfg.Storage.Backend, "Metrics bucket backend: s3, gcs or file")
	flags.StringVar(&cfg.Storage.Bucket, "bucket", cfg.Storage.Bucket, "Bucket holding metrics records")
	flags.StringVar(&cfg.Storage.Prefix, "prefix", cfg.Storage.Prefix, "Key prefix of metrics records")
	flags.StringVar(&cfg.Storage.Region, "region", cfg.Storage.Region, "Bucket region (defaults to the ambient AWS configuration)")
	flags.StringVar(&cfg.Storage.Endpoint, "endpoint", cfg.Storage.Endpoint, "Custom storage endpoint, e.g. a MinIO or emulator URL")
	flags.BoolVar(&cfg.Storage.PathStyle, "path-style", cfg.Storage.PathStyle, "Use path-style S3 addressing")
	flags.StringVar(&cfg.Storage.Root, "bucket-root", cfg.Storage.Root, "Directory used as the bucket when --backend=file")
	flags.DurationVar(&cfg.SettleDelay, "settle-delay", cfg.SettleDelay, "Wait before checking, for storage to settle")
	flags.DurationVar(&cfg.LogWaitTimeout, "log-wait", cfg.LogWaitTimeout, "Watch the pipeline log this long for completion (0 disables)")
	flags.StringVar(&cfg.Telemetry.TextfilePath, "metrics-textfile", cfg.Telemetry.TextfilePath, "Write run metrics to this Prometheus textfile")
	flags.StringVar(&cfg.Telemetry.PushgatewayURL, "pushgateway", cfg.Telemetry.PushgatewayURL, "Push run metrics to this Pushgateway URL")

	return cmd
}

func runValidate(ctx context.Context, cfg *config.CheckerConfig, out io.Writer, open func(context.Context, config.StorageConfig) (objstore.Bucket, error)) error {
	if ctx == nil {
		ctx = context.Background()
	}
	metrics.SetBuildInfo(toolName, version.Version)

	bucket, err := open(ctx, cfg.Storage)
	if err != nil {
		log.Printf("[validate] storage unavailable: %v", err)
		bucket = objstore.Unavailable(objstore.DisplayName(cfg.Storage), err)
	}
	defer bucket.Close()

	runner := &validator.Runner{
		Config: cfg,
		Bucket: bucket,
		Out:    out,
	}
	_, runErr := runner.Run(ctx)

	if err := metrics.Export(ctx, cfg.Telemetry.TextfilePath, cfg.Telemetry.PushgatewayURL, cfg.Telemetry.Job, nil); err != nil {
		log.Printf("[metrics] export failed: %v", err)
	}

	return runErr
}
