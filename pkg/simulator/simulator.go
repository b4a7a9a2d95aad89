// Package simulator stands in for a long-running dataset step: it opens a file
// for read/write, holds the descriptor for a while, and exits.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"time"

	"golang.org/x/text/encoding/htmlindex"

	"github.com/tracer-e2e/batchcheck/internal/metrics"
	"github.com/tracer-e2e/batchcheck/internal/platform"
	"github.com/tracer-e2e/batchcheck/pkg/config"
)

var (
	// ErrUsage is returned when no dataset path was given.
	ErrUsage = errors.New("missing dataset file argument")
	// ErrNotFound is returned when the dataset path does not exist.
	ErrNotFound = errors.New("dataset file not found")
)

// Simulator holds a dataset file open for a configured duration.
type Simulator struct {
	Config *config.SimulatorConfig
	Out    io.Writer
	// Program is the name shown in the usage line.
	Program string
	Sleep   func(ctx context.Context, d time.Duration) error
	Logger  *log.Logger
}

// Run simulates processing of the file named by args[0].
func (s *Simulator) Run(ctx context.Context, args []string) error {
	if len(args) < 1 {
		fmt.Fprintf(s.Out, "Usage: %s <dataset_file>\n", s.Program)
		metrics.CountSimulatorRun("usage")
		return ErrUsage
	}
	path := args[0]

	info, err := os.Stat(platform.Normalize(path))
	if err != nil {
		fmt.Fprintf(s.Out, "File not found: %s\n", path)
		metrics.CountSimulatorRun("not_found")
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	fmt.Fprintf(s.Out, "Processing dataset: %s\n", path)

	if err := s.hold(ctx, path, info); err != nil {
		metrics.CountSimulatorRun("error")
		return err
	}

	fmt.Fprintf(s.Out, "Finished processing: %s\n", path)
	metrics.CountSimulatorRun("finished")
	return nil
}

func (s *Simulator) hold(ctx context.Context, path string, info os.FileInfo) error {
	logger := s.Logger
	if logger == nil {
		logger = log.Default()
	}
	sleep := s.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	if _, err := htmlindex.Get(s.Config.Encoding); err != nil {
		return fmt.Errorf("resolve encoding %q: %w", s.Config.Encoding, err)
	}

	if info.IsDir() {
		return fmt.Errorf("open %s: is a directory", path)
	}

	f, err := os.OpenFile(platform.Normalize(path), os.O_RDWR, 0)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			// Name the missing mode bit when the bits explain the denial.
			if detail := platform.CheckAccess(path, info, platform.Read|platform.Write); detail != nil {
				return fmt.Errorf("open %s: %w (%w)", path, err, detail)
			}
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	logger.Printf("[sim] holding %s (%s) for %s", path, s.Config.Encoding, s.Config.HoldDuration)
	start := time.Now()
	err = sleep(ctx, s.Config.HoldDuration)
	metrics.ObserveHold(start)
	if err != nil {
		return fmt.Errorf("hold %s: %w", path, err)
	}
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
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
