package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/text/encoding/htmlindex"
)

const envPrefix = "BATCHCHECK_"

// Storage backends understood by objstore.New.
const (
	BackendS3   = "s3"
	BackendGCS  = "gcs"
	BackendFile = "file"
)

// CheckerConfig holds configuration for the completion checker
type CheckerConfig struct {
	// WorkDir is the pipeline work directory holding .nextflow.log
	WorkDir string

	// SettleDelay is the unconditional wait before any check runs, giving the
	// storage backend time to become consistent
	SettleDelay time.Duration

	// LogWaitTimeout enables follow mode when > 0: the completion check watches
	// the log for up to this long before giving up
	LogWaitTimeout time.Duration

	// Storage selects and addresses the metrics bucket
	Storage StorageConfig

	// Telemetry controls where run metrics are exported
	Telemetry TelemetryConfig
}

// StorageConfig addresses the bucket holding metrics records
type StorageConfig struct {
	Backend   string
	Bucket    string
	Prefix    string
	Region    string
	Endpoint  string
	PathStyle bool
	// Root is the directory standing in for the bucket when Backend is "file"
	Root string
}

// TelemetryConfig controls Prometheus export for one-shot runs
type TelemetryConfig struct {
	TextfilePath   string
	PushgatewayURL string
	Job            string
}

// SimulatorConfig holds configuration for the file-open simulator
type SimulatorConfig struct {
	HoldDuration time.Duration
	Encoding     string
	Telemetry    TelemetryConfig
}

// DefaultCheckerConfig returns the default checker configuration
func DefaultCheckerConfig() *CheckerConfig {
	return &CheckerConfig{
		WorkDir:        "work",
		SettleDelay:    30 * time.Second,
		LogWaitTimeout: 0,
		Storage: StorageConfig{
			Backend: BackendS3,
			Bucket:  "tracer-nxf-outputs",
			Prefix:  "metrics/",
		},
		Telemetry: TelemetryConfig{Job: "validate_batch_runs"},
	}
}

// DefaultSimulatorConfig returns the default simulator configuration
func DefaultSimulatorConfig() *SimulatorConfig {
	return &SimulatorConfig{
		HoldDuration: 2 * time.Second,
		Encoding:     "utf8",
		Telemetry:    TelemetryConfig{Job: "sim_fileopens"},
	}
}

// LoadCheckerFromEnv loads checker configuration from environment variables
func LoadCheckerFromEnv() *CheckerConfig {
	cfg := DefaultCheckerConfig()

	if v := getenv("WORK_DIR"); v != "" {
		cfg.WorkDir = v
	}
	if v := getenv("SETTLE_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.SettleDelay = d
		}
	}
	if v := getenv("LOG_WAIT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.LogWaitTimeout = d
		}
	}
	if v := getenv("BACKEND"); v != "" {
		cfg.Storage.Backend = strings.ToLower(v)
	}
	if v := getenv("BUCKET"); v != "" {
		cfg.Storage.Bucket = v
	}
	if v := getenv("PREFIX"); v != "" {
		cfg.Storage.Prefix = v
	}
	if v := getenv("REGION"); v != "" {
		cfg.Storage.Region = v
	}
	if v := getenv("ENDPOINT"); v != "" {
		cfg.Storage.Endpoint = v
	}
	if v := getenv("PATH_STYLE"); v != "" {
		cfg.Storage.PathStyle = parseBool(v)
	}
	if v := getenv("BUCKET_ROOT"); v != "" {
		cfg.Storage.Root = v
	}

	cfg.Telemetry = loadTelemetryFromEnv(cfg.Telemetry)

	return cfg
}

// LoadSimulatorFromEnv loads simulator configuration from environment variables
func LoadSimulatorFromEnv() *SimulatorConfig {
	cfg := DefaultSimulatorConfig()

	if v := getenv("SIM_HOLD"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.HoldDuration = d
		}
	}
	if v := getenv("SIM_ENCODING"); v != "" {
		cfg.Encoding = v
	}

	cfg.Telemetry = loadTelemetryFromEnv(cfg.Telemetry)

	return cfg
}

// Validate checks if the checker configuration is valid
func (c *CheckerConfig) Validate() error {
	if c.WorkDir == "" {
		return fmt.Errorf("work dir must not be empty")
	}

	if c.SettleDelay < 0 {
		return fmt.Errorf("settle delay must be >= 0, got: %s", c.SettleDelay)
	}

	if c.LogWaitTimeout < 0 {
		return fmt.Errorf("log wait timeout must be >= 0, got: %s", c.LogWaitTimeout)
	}

	if err := c.Storage.Validate(); err != nil {
		return fmt.Errorf("storage config invalid: %w", err)
	}

	return nil
}

// Validate checks the bucket addressing for the selected backend
func (s StorageConfig) Validate() error {
	switch s.Backend {
	case BackendS3, BackendGCS:
		if s.Bucket == "" {
			return fmt.Errorf("bucket must not be empty for backend %s", s.Backend)
		}
	case BackendFile:
		if s.Root == "" {
			return fmt.Errorf("bucket root directory is required for the file backend")
		}
	default:
		return fmt.Errorf("invalid storage backend: %s (must be 's3', 'gcs' or 'file')", s.Backend)
	}
	return nil
}

// Validate checks if the simulator configuration is valid
func (c *SimulatorConfig) Validate() error {
	if c.HoldDuration < 0 {
		return fmt.Errorf("hold duration must be >= 0, got: %s", c.HoldDuration)
	}
	if _, err := htmlindex.Get(c.Encoding); err != nil {
		return fmt.Errorf("unknown encoding %q: %w", c.Encoding, err)
	}
	return nil
}

func loadTelemetryFromEnv(cfg TelemetryConfig) TelemetryConfig {
	if v := getenv("METRICS_TEXTFILE"); v != "" {
		cfg.TextfilePath = v
	}
	if v := getenv("PUSHGATEWAY_URL"); v != "" {
		cfg.PushgatewayURL = v
	}
	if v := getenv("METRICS_JOB"); v != "" {
		cfg.Job = v
	}
	return cfg
}

func getenv(name string) string {
	return strings.TrimSpace(os.Getenv(envPrefix + name))
}

func parseBool(v string) bool {
	return v == "1" || v == "true" || v == "TRUE"
}
