package completion

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fsnotify/fsnotify"

	"github.com/tracer-e2e/batchcheck/internal/platform"
	"github.com/tracer-e2e/batchcheck/pkg/outcome"
)

const (
	// LogName is the pipeline engine's log file inside the work directory.
	LogName = ".nextflow.log"
	// SuccessMarker is the line fragment written when a workflow completes.
	SuccessMarker = "Workflow completed successfully"
)

var errInvalidUTF8 = errors.New("log is not valid UTF-8")

// LogPath returns the log location for workDir.
func LogPath(workDir string) string {
	return filepath.Join(workDir, LogName)
}

// Check reads the work directory's log once and looks for SuccessMarker.
// A missing log is NotSatisfied; any other read or decode failure is Inconclusive.
func Check(workDir string) outcome.Outcome {
	path := LogPath(workDir)

	data, err := os.ReadFile(platform.Normalize(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return outcome.Fail("%s not found", path)
		}
		return outcome.Inconclusivef(err, "read %s", path)
	}
	if !utf8.Valid(data) {
		return outcome.Inconclusivef(errInvalidUTF8, "decode %s", path)
	}

	if !strings.Contains(string(data), SuccessMarker) {
		return outcome.Fail("%q not found in %s", SuccessMarker, path)
	}
	return outcome.Satisfy()
}

// Wait re-runs Check whenever the log is created or written, until it is
// Satisfied or timeout elapses, and returns the last outcome. If the work
// directory cannot be watched it falls back to a single Check.
func Wait(ctx context.Context, workDir string, timeout time.Duration) outcome.Outcome {
	current := Check(workDir)
	if current.OK() || timeout <= 0 {
		return current
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("[completion] watcher unavailable, using one-shot check: %v", err)
		return current
	}
	defer watcher.Close()

	if err := watcher.Add(platform.Normalize(workDir)); err != nil {
		log.Printf("[completion] cannot watch %s, using one-shot check: %v", workDir, err)
		return current
	}

	// The log may have been written between the first Check and Add.
	if current = Check(workDir); current.OK() {
		return current
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return current
		case <-timer.C:
			log.Printf("[completion] gave up waiting for %s after %s", LogPath(workDir), timeout)
			return current
		case evt, ok := <-watcher.Events:
			if !ok {
				return current
			}
			if filepath.Base(evt.Name) != LogName || evt.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if current = Check(workDir); current.OK() {
				return current
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return current
			}
			if err != nil {
				log.Printf("[completion] watcher error: %v", err)
			}
		}
	}
}
