package objstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeObject(t *testing.T, root, key, body string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", key, err)
	}
}

func TestLocalBucketListFiltersByPrefix(t *testing.T) {
	root := t.TempDir()
	writeObject(t, root, "metrics/b.json", `{}`)
	writeObject(t, root, "metrics/a.json", `{"processing_time":1}`)
	writeObject(t, root, "metrics/nested/c.json", `{}`)
	writeObject(t, root, "logs/run.log", "ignored")

	bucket, err := NewLocalBucket(root)
	if err != nil {
		t.Fatalf("NewLocalBucket() error: %v", err)
	}

	objects, err := bucket.List(context.Background(), "metrics/")
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}

	var keys []string
	for _, o := range objects {
		keys = append(keys, o.Key)
	}
	want := []string{"metrics/a.json", "metrics/b.json", "metrics/nested/c.json"}
	if diff := cmp.Diff(want, keys); diff != "" {
		t.Fatalf("List() keys mismatch (-want +got):\n%s", diff)
	}
}

func TestLocalBucketListSortsByFullKey(t *testing.T) {
	root := t.TempDir()
	writeObject(t, root, "metrics/a/b", `{}`)
	writeObject(t, root, "metrics/a.json", `{}`)
	writeObject(t, root, "metrics/a-1.json", `{}`)

	bucket, err := NewLocalBucket(root)
	if err != nil {
		t.Fatalf("NewLocalBucket() error: %v", err)
	}

	objects, err := bucket.List(context.Background(), "metrics/")
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}

	var keys []string
	for _, o := range objects {
		keys = append(keys, o.Key)
	}
	want := []string{"metrics/a-1.json", "metrics/a.json", "metrics/a/b"}
	if diff := cmp.Diff(want, keys); diff != "" {
		t.Fatalf("List() keys mismatch (-want +got):\n%s", diff)
	}
}

func TestLocalBucketListMissingRoot(t *testing.T) {
	bucket, err := NewLocalBucket(filepath.Join(t.TempDir(), "absent"))
	if err != nil {
		t.Fatalf("NewLocalBucket() error: %v", err)
	}

	_, err = bucket.List(context.Background(), "metrics/")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLocalBucketReadObject(t *testing.T) {
	root := t.TempDir()
	writeObject(t, root, "metrics/a.json", sampleRecord)

	bucket, err := NewLocalBucket(root)
	if err != nil {
		t.Fatalf("NewLocalBucket() error: %v", err)
	}

	data, err := ReadObject(context.Background(), bucket, "metrics/a.json")
	if err != nil {
		t.Fatalf("ReadObject() error: %v", err)
	}
	if string(data) != sampleRecord {
		t.Fatalf("unexpected body %q", data)
	}
}

func TestLocalBucketOpenErrors(t *testing.T) {
	bucket, err := NewLocalBucket(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalBucket() error: %v", err)
	}

	if _, err := bucket.Open(context.Background(), "metrics/missing.json"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing key, got %v", err)
	}

	if _, err := bucket.Open(context.Background(), "../escape.json"); err == nil {
		t.Fatal("expected error for key escaping the root")
	}
}
