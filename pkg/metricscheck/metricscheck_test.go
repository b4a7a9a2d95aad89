package metricscheck

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"

	"github.com/tracer-e2e/batchcheck/pkg/objstore"
	"github.com/tracer-e2e/batchcheck/pkg/outcome"
)

// memBucket is an in-memory objstore.Bucket that records which keys were opened.
type memBucket struct {
	objects map[string][]byte
	listErr error
	openErr map[string]error
	opened  []string
}

func (m *memBucket) Name() string { return "mem://test" }

func (m *memBucket) List(_ context.Context, prefix string) ([]objstore.Object, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []objstore.Object
	for k, v := range m.objects {
		if strings.HasPrefix(k, prefix) {
			out = append(out, objstore.Object{Key: k, Size: int64(len(v))})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *memBucket) Open(_ context.Context, key string) (io.ReadCloser, error) {
	m.opened = append(m.opened, key)
	if err := m.openErr[key]; err != nil {
		return nil, err
	}
	data, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("get %s: %w", key, objstore.ErrNotFound)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memBucket) Close() error { return nil }

func gz(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write([]byte(s)); err != nil {
		t.Fatalf("gzip: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	return buf.Bytes()
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name        string
		bucket      *memBucket
		status      outcome.Status
		wantScanned int
	}{
		{
			name: "single record with processing_time",
			bucket: &memBucket{objects: map[string][]byte{
				"metrics/a.json": []byte(`{"processing_time": 12}`),
			}},
			status:      outcome.Satisfied,
			wantScanned: 1,
		},
		{
			name: "field present with null value",
			bucket: &memBucket{objects: map[string][]byte{
				"metrics/a.json": []byte(`{"processing_time": null}`),
			}},
			status:      outcome.Satisfied,
			wantScanned: 1,
		},
		{
			name: "match on later record",
			bucket: &memBucket{objects: map[string][]byte{
				"metrics/a.json": []byte(`{"cpu": 0.5}`),
				"metrics/b.json": []byte(`{"processing_time": "3s"}`),
			}},
			status:      outcome.Satisfied,
			wantScanned: 2,
		},
		{
			name:        "empty listing",
			bucket:      &memBucket{objects: map[string][]byte{}},
			status:      outcome.NotSatisfied,
			wantScanned: 0,
		},
		{
			name: "objects outside prefix only",
			bucket: &memBucket{objects: map[string][]byte{
				"other/a.json": []byte(`{"processing_time": 1}`),
			}},
			status: outcome.NotSatisfied,
		},
		{
			name: "no record carries the field",
			bucket: &memBucket{objects: map[string][]byte{
				"metrics/a.json": []byte(`{"cpu": 0.5}`),
				"metrics/b.json": []byte(`{"nested": {"processing_time": 1}}`),
			}},
			status:      outcome.NotSatisfied,
			wantScanned: 2,
		},
		{
			name: "non-object json is skipped",
			bucket: &memBucket{objects: map[string][]byte{
				"metrics/a.json": []byte(`["processing_time"]`),
				"metrics/b.json": []byte(`{"processing_time": 4}`),
			}},
			status:      outcome.Satisfied,
			wantScanned: 2,
		},
		{
			name: "malformed json stops the scan",
			bucket: &memBucket{objects: map[string][]byte{
				"metrics/a.json": []byte(`{"processing_time": `),
				"metrics/b.json": []byte(`{"processing_time": 4}`),
			}},
			status:      outcome.Inconclusive,
			wantScanned: 1,
		},
		{
			name:   "list failure",
			bucket: &memBucket{listErr: errors.New("AccessDenied")},
			status: outcome.Inconclusive,
		},
		{
			name: "fetch failure",
			bucket: &memBucket{
				objects: map[string][]byte{"metrics/a.json": []byte(`{"processing_time": 1}`)},
				openErr: map[string]error{"metrics/a.json": errors.New("connection reset")},
			},
			status:      outcome.Inconclusive,
			wantScanned: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Check(context.Background(), tt.bucket, "metrics/")
			if got.Status != tt.status {
				t.Fatalf("Check() = %v, want status %v", got.Outcome, tt.status)
			}
			if got.Scanned != tt.wantScanned {
				t.Fatalf("Check() scanned %d objects, want %d", got.Scanned, tt.wantScanned)
			}
		})
	}
}

func TestCheckStopsAtFirstMatch(t *testing.T) {
	bucket := &memBucket{objects: map[string][]byte{
		"metrics/a.json": []byte(`{"processing_time": 1}`),
		"metrics/b.json": []byte(`{"processing_time": 2}`),
		"metrics/c.json": []byte(`not json`),
	}}

	got := Check(context.Background(), bucket, "metrics/")
	if !got.OK() {
		t.Fatalf("Check() = %v, want satisfied", got.Outcome)
	}
	if len(bucket.opened) != 1 || bucket.opened[0] != "metrics/a.json" {
		t.Fatalf("expected only metrics/a.json to be fetched, got %v", bucket.opened)
	}
}

func TestCheckDecodesCompressedRecords(t *testing.T) {
	bucket := &memBucket{objects: map[string][]byte{
		"metrics/a.json.gz": gz(t, `{"processing_time": 7}`),
	}}

	got := Check(context.Background(), bucket, "metrics/")
	if !got.OK() {
		t.Fatalf("Check() = %v, want satisfied for gzip record", got.Outcome)
	}
}
