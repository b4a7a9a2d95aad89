package metrics

import (
	"context"
	"fmt"
	"log"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "batchcheck"

var (
	// Registry is a dedicated Prometheus registry for harness run metrics.
	Registry = prometheus.NewRegistry()

	// CheckOutcome is 1 for the outcome a check produced and 0 for the others.
	CheckOutcome = promauto.With(Registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "check_outcome",
			Help:      "Outcome of each harness check (1 for the observed outcome)",
		},
		[]string{"check", "outcome"}, // pipeline_completion | processing_times ; satisfied | not_satisfied | inconclusive
	)

	// CheckDuration measures time spent evaluating each check.
	CheckDuration = promauto.With(Registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "check_duration_ms",
			Help:      "Duration of harness checks in milliseconds",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
		},
		[]string{"check"},
	)

	// ObjectsScanned counts metrics records fetched before the metrics check settled.
	ObjectsScanned = promauto.With(Registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "metrics_objects_scanned",
			Help:      "Number of metrics objects fetched during the last processing-time check",
		},
	)

	// SettleDelaySeconds records the configured eventual-consistency wait.
	SettleDelaySeconds = promauto.With(Registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "settle_delay_seconds",
			Help:      "Wait applied before checks to let object storage settle",
		},
	)

	// ValidationPassed is 1 when every check was satisfied.
	ValidationPassed = promauto.With(Registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "validation_passed",
			Help:      "1 if the last validation run passed",
		},
	)

	// HoldDuration measures how long the simulator held its file handle.
	HoldDuration = promauto.With(Registry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sim_hold_duration_ms",
			Help:      "Time the file-open simulator kept its handle open, in milliseconds",
			Buckets:   []float64{10, 100, 500, 1000, 2000, 5000, 10000},
		},
	)

	// SimulatorRuns counts simulator invocations by result.
	SimulatorRuns = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sim_runs_total",
			Help:      "File-open simulator runs by result",
		},
		[]string{"result"}, // finished | usage | not_found | error
	)

	// BuildInfo exposes static information about the binary.
	BuildInfo = promauto.With(Registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "build_info",
			Help:      "Static information about the running tool",
		},
		[]string{"tool", "version", "os", "arch"},
	)
)

var outcomes = []string{"satisfied", "not_satisfied", "inconclusive"}

// SetBuildInfo publishes the info metric for the running tool.
func SetBuildInfo(tool, version string) {
	if version == "" {
		version = "dev"
	}
	BuildInfo.WithLabelValues(tool, version, runtime.GOOS, runtime.GOARCH).Set(1)
}

// ObserveCheck records timing and the outcome label for a single check.
func ObserveCheck(start time.Time, check, outcome string) {
	elapsed := float64(time.Since(start)) / float64(time.Millisecond)
	CheckDuration.WithLabelValues(check).Observe(elapsed)
	for _, o := range outcomes {
		v := 0.0
		if o == outcome {
			v = 1
		}
		CheckOutcome.WithLabelValues(check, o).Set(v)
	}
}

// SetObjectsScanned reports how many metrics records were fetched.
func SetObjectsScanned(count int) {
	if count < 0 {
		count = 0
	}
	ObjectsScanned.Set(float64(count))
}

// SetSettleDelay reports the configured settle wait.
func SetSettleDelay(d time.Duration) {
	SettleDelaySeconds.Set(d.Seconds())
}

// SetPassed toggles the validation result gauge.
func SetPassed(passed bool) {
	if passed {
		ValidationPassed.Set(1)
		return
	}
	ValidationPassed.Set(0)
}

// ObserveHold records a simulator hold and its result.
func ObserveHold(start time.Time) {
	elapsed := float64(time.Since(start)) / float64(time.Millisecond)
	HoldDuration.Observe(elapsed)
}

// CountSimulatorRun increments the simulator run counter for result.
func CountSimulatorRun(result string) {
	SimulatorRuns.WithLabelValues(result).Inc()
}

// Export writes the registry to a node_exporter textfile and/or pushes it to a
// Pushgateway. Either destination may be empty; with both empty Export is a no-op.
func Export(ctx context.Context, textfile, pushgatewayURL, job string, logger *log.Logger) error {
	if logger == nil {
		logger = log.Default()
	}

	if textfile != "" {
		if err := prometheus.WriteToTextfile(textfile, Registry); err != nil {
			return fmt.Errorf("write metrics textfile: %w", err)
		}
		logger.Printf("[metrics] wrote %s", textfile)
	}

	if pushgatewayURL != "" {
		if job == "" {
			job = namespace
		}
		if err := push.New(pushgatewayURL, job).Gatherer(Registry).PushContext(ctx); err != nil {
			return fmt.Errorf("push metrics to %s: %w", pushgatewayURL, err)
		}
		logger.Printf("[metrics] pushed job %q to %s", job, pushgatewayURL)
	}

	return nil
}
