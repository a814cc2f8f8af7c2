package binary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/ZebulonRouseFrantzich/webdrivermanager/internal/logger"
)

const (
	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 5 * time.Minute
	// DefaultUserAgent is the User-Agent header sent with requests
	DefaultUserAgent = "webdrivermanager/1.0"
	// ChunkSize is the read size used when streaming a download to disk
	ChunkSize = 1024
)

// Downloader fetches driver archives over HTTP.
type Downloader struct {
	client      *http.Client
	userAgent   string
	newProgress func(label string) ProgressReporter
	log         logger.Logger
}

// DownloaderOption configures a Downloader.
type DownloaderOption func(*Downloader)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) DownloaderOption {
	return func(d *Downloader) { d.client = c }
}

// WithProgress sets the reporter factory used when progress is requested.
func WithProgress(f func(label string) ProgressReporter) DownloaderOption {
	return func(d *Downloader) { d.newProgress = f }
}

// WithDownloadLogger sets the logger.
func WithDownloadLogger(l logger.Logger) DownloaderOption {
	return func(d *Downloader) { d.log = logger.OrNop(l) }
}

// NewDownloader creates a new downloader
func NewDownloader(opts ...DownloaderOption) *Downloader {
	d := &Downloader{
		client: &http.Client{
			Timeout: DefaultTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// Allow up to 10 redirects
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
		userAgent: DefaultUserAgent,
		newProgress: func(label string) ProgressReporter {
			return NewProgressBar(os.Stderr, label)
		},
		log: logger.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Download fetches info into destDir and returns the local path. When a
// non-empty file with the same name is already there it is returned
// without any request.
func (d *Downloader) Download(ctx context.Context, info DownloadInfo, destDir string, showProgress bool) (string, error) {
	if info.URL == "" {
		return "", fmt.Errorf("download info has no url")
	}
	if info.Filename == "" || filepath.Base(info.Filename) != info.Filename {
		return "", fmt.Errorf("invalid download filename %q", info.Filename)
	}

	destPath := filepath.Join(destDir, info.Filename)
	if fileExists(destPath) {
		d.log.Info("Skipping download, file already on filesystem", "path", destPath)
		return destPath, nil
	}

	var progress ProgressReporter = nopProgress{}
	if showProgress && d.newProgress != nil {
		progress = d.newProgress(info.Filename)
	}

	d.log.Debug("Starting download", "url", info.URL, "path", destPath)
	if err := d.DownloadToFile(ctx, info.URL, destPath, progress); err != nil {
		return "", fmt.Errorf("download %s: %w", info.Filename, err)
	}
	d.log.Debug("Finished download", "url", info.URL, "path", destPath)

	return destPath, nil
}

// DownloadToFile downloads a URL to a specific file path in a single
// attempt. The file only appears at destPath once fully written.
func (d *Downloader) DownloadToFile(ctx context.Context, url, destPath string, progress ProgressReporter) error {
	if progress == nil {
		progress = nopProgress{}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	destDir := filepath.Dir(destPath)
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("create dest dir: %w", err)
	}

	tmpFile, err := os.CreateTemp(destDir, filepath.Base(destPath)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	cleanupNeeded := true
	defer func() {
		tmpFile.Close()
		if cleanupNeeded {
			os.Remove(tmpPath)
		}
	}()

	// ContentLength is -1 when the server did not send one.
	progress.Start(resp.ContentLength)
	if err := copyChunks(tmpFile, resp.Body, progress); err != nil {
		return err
	}
	progress.Finish()

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}

	cleanupNeeded = false
	return nil
}

func copyChunks(dst io.Writer, src io.Reader, progress ProgressReporter) error {
	buf := make([]byte, ChunkSize)
	for {
		n, err := src.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return fmt.Errorf("write chunk: %w", werr)
			}
			progress.Add(int64(n))
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read response body: %w", err)
		}
	}
}

// fileExists checks if a file exists and is not empty
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir() && info.Size() > 0
}

// dirExists checks if path is an existing directory
func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
