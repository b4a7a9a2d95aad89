package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tracer-e2e/batchcheck/pkg/simulator"
)

func TestRootCmd(t *testing.T) {
	dataset := filepath.Join(t.TempDir(), "dataset.csv")
	if err := os.WriteFile(dataset, nil, 0o644); err != nil {
		t.Fatalf("write dataset: %v", err)
	}
	missing := filepath.Join(t.TempDir(), "missing.csv")

	tests := []struct {
		name    string
		args    []string
		wantErr error
		wantOut string
	}{
		{
			name:    "no argument",
			args:    []string{},
			wantErr: simulator.ErrUsage,
			wantOut: "Usage: sim-fileopens <dataset_file>\n",
		},
		{
			name:    "missing file",
			args:    []string{missing},
			wantErr: simulator.ErrNotFound,
			wantOut: "File not found: " + missing + "\n",
		},
		{
			name:    "existing file",
			args:    []string{dataset, "--hold", "10ms"},
			wantOut: "Processing dataset: " + dataset + "\nFinished processing: " + dataset + "\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			cmd := newRootCmd(&out)
			cmd.SetArgs(tt.args)

			err := cmd.Execute()
			if tt.wantErr == nil && err != nil {
				t.Fatalf("Execute() error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("Execute() error = %v, want %v", err, tt.wantErr)
			}
			if out.String() != tt.wantOut {
				t.Fatalf("unexpected output.\nExpected:\n%s\nGot:\n%s", tt.wantOut, out.String())
			}
		})
	}
}

func TestRootCmdRejectsUnknownEncoding(t *testing.T) {
	dataset := filepath.Join(t.TempDir(), "dataset.csv")
	if err := os.WriteFile(dataset, nil, 0o644); err != nil {
		t.Fatalf("write dataset: %v", err)
	}

	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs([]string{dataset, "--encoding", "klingon"})

	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "unknown encoding") {
		t.Fatalf("expected encoding error, got %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("nothing should be printed for a config error, got %q", out.String())
	}
}
