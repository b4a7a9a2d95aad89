// Command nextflow-run fakes a pipeline run for local harness checks: it writes
// a work directory log and drops per-dataset metrics records into a directory
// bucket that validate-batch-runs can read with --backend=file.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/tracer-e2e/batchcheck/pkg/completion"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatal(err)
	}
}

func newRootCmd() *cobra.Command {
	var workDir, bucketRoot string
	var datasets int
	var step time.Duration
	var fail bool

	cmd := &cobra.Command{
		Use:   "nextflow-run",
		Short: "Write a fake Nextflow log and metrics records",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(workDir, bucketRoot, datasets, step, fail)
		},
	}

	cmd.Flags().StringVar(&workDir, "work", "work", "Work directory to write .nextflow.log into")
	cmd.Flags().StringVar(&bucketRoot, "bucket-root", "bucket", "Directory standing in for the metrics bucket")
	cmd.Flags().IntVar(&datasets, "datasets", 3, "Number of datasets to process")
	cmd.Flags().DurationVar(&step, "step", time.Second, "Delay between processed datasets")
	cmd.Flags().BoolVar(&fail, "fail", false, "End the run with a failure instead of success")
	return cmd
}

func run(workDir, bucketRoot string, datasets int, step time.Duration, fail bool) error {
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return fmt.Errorf("create work dir: %w", err)
	}
	metricsDir := filepath.Join(bucketRoot, "metrics")
	if err := os.MkdirAll(metricsDir, 0o755); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}

	logFile, err := os.Create(completion.LogPath(workDir))
	if err != nil {
		return fmt.Errorf("create log: %w", err)
	}
	defer logFile.Close()

	logf := func(level, msg string) {
		fmt.Fprintf(logFile, "%s [main] %-5s nextflow.Nextflow - %s\n", time.Now().Format("Jan-02 15:04:05.000"), level, msg)
	}

	log.Println("Pipeline started...")
	logf("INFO", "N E X T F L O W  ~  version 23.10.1")

	for i := 1; i <= datasets; i++ {
		name := fmt.Sprintf("sample_%02d.fastq", i)
		start := time.Now()
		time.Sleep(step)

		record := map[string]any{
			"dataset":         name,
			"processing_time": time.Since(start).Seconds(),
		}
		data, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("marshal record: %w", err)
		}
		if err := os.WriteFile(filepath.Join(metricsDir, name+".json"), data, 0o644); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
		logf("INFO", fmt.Sprintf("[process] Submitted process > PROCESS_DATASET (%s)", name))
		log.Printf("Processed %s", name)
	}

	if fail {
		logf("ERROR", "Error executing process > 'PROCESS_DATASET' terminated with an error exit status (1)")
		log.Println("Pipeline failed.")
		return nil
	}

	logf("INFO", completion.SuccessMarker)
	log.Println("Pipeline finished.")
	return nil
}
