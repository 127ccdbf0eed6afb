package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"sync/atomic"
	"testing"

	"github.com/freeradical16/comfyui-runpod-cuda-runtime/pkg/models"
)

func knownFolders(key string) bool {
	return models.NewFolderMap("/tmp").Has(key)
}

func TestParseBatch(t *testing.T) {
	t.Run("mixed input", func(t *testing.T) {
		input := "loras http://x\n# comment\nhttp://y\ncontrolnet   http://z"

		items := ParseBatch(input, knownFolders)

		want := []BatchItem{
			{Folder: "loras", URL: "http://x"},
			{URL: "http://y"},
			{Folder: "controlnet", URL: "http://z"},
		}
		if !reflect.DeepEqual(items, want) {
			t.Errorf("ParseBatch() = %v, want %v", items, want)
		}
	})

	t.Run("blank and comment lines", func(t *testing.T) {
		input := "\n\n# one\n   \n  # two\n"
		if items := ParseBatch(input, knownFolders); len(items) != 0 {
			t.Errorf("Expected no items, got %v", items)
		}
	})

	t.Run("unknown first token stays part of the line", func(t *testing.T) {
		items := ParseBatch("notafolder http://x", knownFolders)
		if len(items) != 1 {
			t.Fatalf("Expected 1 item, got %d", len(items))
		}
		if items[0].Folder != "" || items[0].URL != "notafolder http://x" {
			t.Errorf("Unexpected item %+v", items[0])
		}
	})

	t.Run("surrounding whitespace trimmed", func(t *testing.T) {
		items := ParseBatch("   vae   http://x   ", knownFolders)
		want := []BatchItem{{Folder: "vae", URL: "http://x"}}
		if !reflect.DeepEqual(items, want) {
			t.Errorf("ParseBatch() = %v, want %v", items, want)
		}
	})
}

func TestRunBatch(t *testing.T) {
	zeroDelay := RetryPolicy{Attempts: 3}

	t.Run("eventual success counts as success", func(t *testing.T) {
		var requests atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Attempts one and two die on the probe; the third succeeds
			if requests.Add(1) <= 2 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.Write([]byte("data"))
		}))
		defer server.Close()

		fetcher, _ := newTestFetcher(t)

		items := []BatchItem{{URL: server.URL + "/f.bin"}}
		result := fetcher.RunBatch(context.Background(), items, "checkpoints", false, zeroDelay, nil)

		if result.Succeeded != 1 {
			t.Errorf("Expected 1 success, got %d", result.Succeeded)
		}
		if len(result.Failures) != 0 {
			t.Errorf("Expected no failures, got %v", result.Failures)
		}
	})

	t.Run("exhausted item fails exactly once", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		fetcher, _ := newTestFetcher(t)

		items := []BatchItem{{Folder: "loras", URL: server.URL + "/f.bin"}}
		result := fetcher.RunBatch(context.Background(), items, "checkpoints", false, zeroDelay, nil)

		if result.Succeeded != 0 {
			t.Errorf("Expected 0 successes, got %d", result.Succeeded)
		}
		if len(result.Failures) != 1 {
			t.Fatalf("Expected exactly 1 failure entry, got %d", len(result.Failures))
		}

		failure := result.Failures[0]
		if failure.Folder != "loras" || failure.URL != items[0].URL {
			t.Errorf("Failure should carry folder and URL, got %+v", failure)
		}
		if failure.Err == nil {
			t.Error("Failure should carry the last error")
		}
	})

	t.Run("one failure does not stop the batch", func(t *testing.T) {
		good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("data"))
		}))
		defer good.Close()
		bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer bad.Close()

		fetcher, _ := newTestFetcher(t)

		items := []BatchItem{
			{URL: bad.URL + "/a.bin"},
			{URL: good.URL + "/b.bin"},
		}
		result := fetcher.RunBatch(context.Background(), items, "checkpoints", false, zeroDelay, nil)

		if result.Succeeded != 1 {
			t.Errorf("Expected the second item to succeed, got %d successes", result.Succeeded)
		}
		if len(result.Failures) != 1 || result.Failures[0].URL != items[0].URL {
			t.Errorf("Expected the first item in the failure list, got %v", result.Failures)
		}
	})

	t.Run("default folder applies without override", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("data"))
		}))
		defer server.Close()

		fetcher, root := newTestFetcher(t)

		items := []BatchItem{
			{URL: server.URL + "/plain.bin"},
			{Folder: "vae", URL: server.URL + "/override.bin"},
		}
		result := fetcher.RunBatch(context.Background(), items, "controlnet", false, zeroDelay, nil)

		if result.Succeeded != 2 {
			t.Fatalf("Expected 2 successes, got %d (failures: %v)", result.Succeeded, result.Failures)
		}

		if _, err := os.Stat(filepath.Join(root, "controlnet", "plain.bin")); err != nil {
			t.Errorf("Expected plain.bin in the default folder: %v", err)
		}
		if _, err := os.Stat(filepath.Join(root, "vae", "override.bin")); err != nil {
			t.Errorf("Expected override.bin in the overridden folder: %v", err)
		}
	})

	t.Run("fresh sink per item", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("data"))
		}))
		defer server.Close()

		fetcher, _ := newTestFetcher(t)

		items := []BatchItem{
			{URL: server.URL + "/a.bin"},
			{URL: server.URL + "/b.bin"},
		}

		var sinks int
		fetcher.RunBatch(context.Background(), items, "checkpoints", false, zeroDelay,
			func(BatchItem) ProgressFunc {
				sinks++
				return nil
			})

		if sinks != len(items) {
			t.Errorf("Expected %d sinks, got %d", len(items), sinks)
		}
	})
}
