package binary

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

type recordingProgress struct {
	total    int64
	added    int64
	starts   int
	finished bool
}

func (r *recordingProgress) Start(total int64) { r.total = total; r.starts++ }
func (r *recordingProgress) Add(n int64)       { r.added += n }
func (r *recordingProgress) Finish()           { r.finished = true }

func newTestDownloader(opts ...DownloaderOption) *Downloader {
	return NewDownloader(opts...)
}

func TestDownloaderDownloadToFile(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		wantErr    bool
	}{
		{
			name:       "successful_download",
			statusCode: http.StatusOK,
			body:       "test binary content",
			wantErr:    false,
		},
		{
			name:       "404_not_found",
			statusCode: http.StatusNotFound,
			body:       "not found",
			wantErr:    true,
		},
		{
			name:       "500_server_error",
			statusCode: http.StatusInternalServerError,
			body:       "server error",
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("User-Agent") != DefaultUserAgent {
					t.Errorf("unexpected User-Agent: %s", r.Header.Get("User-Agent"))
				}

				w.WriteHeader(tt.statusCode)
				if _, err := w.Write([]byte(tt.body)); err != nil {
					t.Errorf("failed to write response: %v", err)
				}
			}))
			defer server.Close()

			tmpDir := t.TempDir()
			downloader := newTestDownloader()

			destPath := filepath.Join(tmpDir, "test-file")
			err := downloader.DownloadToFile(context.Background(), server.URL, destPath, nil)

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error but got none")
				}
				if !errors.Is(err, ErrUnexpectedStatus) {
					t.Errorf("expected ErrUnexpectedStatus, got: %v", err)
				}
				if fileExists(destPath) {
					t.Error("failed download left a file behind")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			content, err := os.ReadFile(destPath)
			if err != nil {
				t.Fatalf("failed to read downloaded file: %v", err)
			}

			if string(content) != tt.body {
				t.Errorf("content mismatch:\ngot:  %q\nwant: %q", string(content), tt.body)
			}
		})
	}
}

func TestDownloaderSingleAttempt(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
	}{
		{"server_error", http.StatusInternalServerError},
		{"unavailable", http.StatusServiceUnavailable},
		{"not_found", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var attempts int64
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt64(&attempts, 1)
				w.WriteHeader(tt.statusCode)
			}))
			defer server.Close()

			destPath := filepath.Join(t.TempDir(), "f")
			err := newTestDownloader().DownloadToFile(context.Background(), server.URL, destPath, nil)
			if !errors.Is(err, ErrUnexpectedStatus) {
				t.Fatalf("expected ErrUnexpectedStatus, got: %v", err)
			}
			if !strings.Contains(err.Error(), strconv.Itoa(tt.statusCode)) {
				t.Errorf("error %q does not name status %d", err, tt.statusCode)
			}
			if got := atomic.LoadInt64(&attempts); got != 1 {
				t.Errorf("expected 1 attempt, got %d", got)
			}
			if _, statErr := os.Stat(destPath); !os.IsNotExist(statErr) {
				t.Errorf("expected no file at %s after failure", destPath)
			}
		})
	}
}

func TestDownloaderContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("too late"))
	}))
	defer server.Close()

	downloader := newTestDownloader()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := downloader.DownloadToFile(ctx, server.URL, filepath.Join(t.TempDir(), "test-file"), nil)
	if err == nil {
		t.Fatal("expected context cancellation error")
	}

	if !strings.Contains(err.Error(), "context") {
		t.Errorf("expected context error, got: %v", err)
	}
}

func TestDownloaderDownloadIsIdempotent(t *testing.T) {
	const mockContent = "mock driver archive"

	var requests int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&requests, 1)
		_, _ = w.Write([]byte(mockContent))
	}))
	defer server.Close()

	destDir := filepath.Join(t.TempDir(), "gecko", "v0.34.0")
	downloader := newTestDownloader()
	info := DownloadInfo{
		URL:      server.URL + "/geckodriver-v0.34.0-linux64.tar.gz",
		Filename: "geckodriver-v0.34.0-linux64.tar.gz",
	}

	path1, err := downloader.Download(context.Background(), info, destDir, false)
	if err != nil {
		t.Fatalf("first download failed: %v", err)
	}
	if want := filepath.Join(destDir, info.Filename); path1 != want {
		t.Errorf("path = %s, want %s", path1, want)
	}

	path2, err := downloader.Download(context.Background(), info, destDir, false)
	if err != nil {
		t.Fatalf("second download failed: %v", err)
	}

	if path1 != path2 {
		t.Errorf("paths don't match:\nfirst:  %s\nsecond: %s", path1, path2)
	}
	if got := atomic.LoadInt64(&requests); got != 1 {
		t.Errorf("expected 1 request, got %d", got)
	}

	entries, err := os.ReadDir(destDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the archive in %s, found %d entries", destDir, len(entries))
	}
}

func TestDownloaderDownloadInvalidFilename(t *testing.T) {
	downloader := newTestDownloader()

	for _, name := range []string{"", "../evil.zip", "a/b.zip"} {
		_, err := downloader.Download(context.Background(), DownloadInfo{URL: "http://example.invalid/x", Filename: name}, t.TempDir(), false)
		if err == nil {
			t.Errorf("expected error for filename %q", name)
		}
	}
}

func TestDownloaderProgress(t *testing.T) {
	body := bytes.Repeat([]byte("x"), 5000)

	tests := []struct {
		name      string
		chunked   bool
		wantTotal int64
	}{
		{name: "with_content_length", chunked: false, wantTotal: int64(len(body))},
		{name: "without_content_length", chunked: true, wantTotal: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.chunked {
					w.WriteHeader(http.StatusOK)
					w.(http.Flusher).Flush()
				} else {
					w.Header().Set("Content-Length", strconv.Itoa(len(body)))
				}
				_, _ = w.Write(body)
			}))
			defer server.Close()

			rec := &recordingProgress{}
			downloader := newTestDownloader(WithProgress(func(string) ProgressReporter { return rec }))

			_, err := downloader.Download(context.Background(), DownloadInfo{URL: server.URL, Filename: "driver.zip"}, t.TempDir(), true)
			if err != nil {
				t.Fatalf("download failed: %v", err)
			}

			if rec.total != tt.wantTotal {
				t.Errorf("total = %d, want %d", rec.total, tt.wantTotal)
			}
			if rec.added != int64(len(body)) {
				t.Errorf("added = %d, want %d", rec.added, len(body))
			}
			if !rec.finished {
				t.Error("progress was not finished")
			}
		})
	}
}

func TestDownloaderProgressDisabled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("content"))
	}))
	defer server.Close()

	rec := &recordingProgress{}
	downloader := newTestDownloader(WithProgress(func(string) ProgressReporter { return rec }))

	if _, err := downloader.Download(context.Background(), DownloadInfo{URL: server.URL, Filename: "driver.zip"}, t.TempDir(), false); err != nil {
		t.Fatalf("download failed: %v", err)
	}
	if rec.starts != 0 {
		t.Error("progress reporter used although progress was not requested")
	}
}

func TestFileExists(t *testing.T) {
	tmpDir := t.TempDir()

	empty := filepath.Join(tmpDir, "empty")
	if err := os.WriteFile(empty, nil, 0644); err != nil {
		t.Fatal(err)
	}
	full := filepath.Join(tmpDir, "full")
	if err := os.WriteFile(full, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		path string
		want bool
	}{
		{full, true},
		{empty, false},
		{tmpDir, false},
		{filepath.Join(tmpDir, "missing"), false},
	}
	for _, tt := range tests {
		if got := fileExists(tt.path); got != tt.want {
			t.Errorf("fileExists(%s) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
