package validator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/tracer-e2e/batchcheck/internal/metrics"
	"github.com/tracer-e2e/batchcheck/pkg/completion"
	"github.com/tracer-e2e/batchcheck/pkg/config"
	"github.com/tracer-e2e/batchcheck/pkg/metricscheck"
	"github.com/tracer-e2e/batchcheck/pkg/objstore"
	"github.com/tracer-e2e/batchcheck/pkg/outcome"
)

// ErrValidationFailed is returned when either check is not satisfied.
var ErrValidationFailed = errors.New("batch run validation failed")

const (
	checkPipeline = "pipeline_completion"
	checkTimings  = "processing_times"
)

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the default SleepFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Report holds the outcome of both checks.
type Report struct {
	PipelineCompletion outcome.Outcome
	ProcessingTimes    outcome.Outcome
}

// Passed reports whether both checks were satisfied.
func (r Report) Passed() bool {
	return r.PipelineCompletion.OK() && r.ProcessingTimes.OK()
}

// Runner wires the checks to a bucket and an output stream.
type Runner struct {
	Config *config.CheckerConfig
	Bucket objstore.Bucket
	Out    io.Writer
	Sleep  SleepFunc
	Logger *log.Logger
}

// Run waits for the settle delay, evaluates both checks, prints the two report
// lines to Out, and returns ErrValidationFailed unless both passed.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	cfg := r.Config
	sleep := r.Sleep
	if sleep == nil {
		sleep = Sleep
	}
	logger := r.Logger
	if logger == nil {
		logger = log.Default()
	}

	metrics.SetSettleDelay(cfg.SettleDelay)
	logger.Printf("[validate] waiting %s for %s to settle", cfg.SettleDelay, r.Bucket.Name())
	if err := sleep(ctx, cfg.SettleDelay); err != nil {
		return Report{}, fmt.Errorf("settle wait: %w", err)
	}

	var report Report

	start := time.Now()
	report.PipelineCompletion = completion.Wait(ctx, cfg.WorkDir, cfg.LogWaitTimeout)
	metrics.ObserveCheck(start, checkPipeline, report.PipelineCompletion.Status.String())

	start = time.Now()
	res := metricscheck.Check(ctx, r.Bucket, cfg.Storage.Prefix)
	report.ProcessingTimes = res.Outcome
	metrics.ObserveCheck(start, checkTimings, report.ProcessingTimes.Status.String())
	metrics.SetObjectsScanned(res.Scanned)

	logOutcome(logger, checkPipeline, report.PipelineCompletion)
	logOutcome(logger, checkTimings, report.ProcessingTimes)

	fmt.Fprintf(r.Out, "Pipeline completion: %s\n", report.PipelineCompletion.Label())
	fmt.Fprintf(r.Out, "Processing times captured: %s\n", report.ProcessingTimes.Label())

	metrics.SetPassed(report.Passed())
	if !report.Passed() {
		return report, ErrValidationFailed
	}
	return report, nil
}

func logOutcome(logger *log.Logger, check string, o outcome.Outcome) {
	if o.OK() {
		return
	}
	logger.Printf("[validate] %s %s", check, o)
}
