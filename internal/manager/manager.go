// Package manager ties a source adapter to the downloader and installer:
// resolve a version selector, fetch the archive, unpack it and link the
// driver executable.
package manager

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/ZebulonRouseFrantzich/webdrivermanager/internal/binary"
	"github.com/ZebulonRouseFrantzich/webdrivermanager/internal/logger"
	"github.com/ZebulonRouseFrantzich/webdrivermanager/internal/platform"
	"github.com/ZebulonRouseFrantzich/webdrivermanager/internal/probe"
	"github.com/ZebulonRouseFrantzich/webdrivermanager/internal/source"
	"github.com/ZebulonRouseFrantzich/webdrivermanager/internal/transaction"
	"github.com/ZebulonRouseFrantzich/webdrivermanager/internal/version"
)

var (
	// ErrNoDriverForOS is returned when the family ships no driver for the
	// target operating system.
	ErrNoDriverForOS = errors.New("no driver available for this operating system")
	// ErrDriverNotFound is returned when the archive held none of the
	// accepted driver filenames.
	ErrDriverNotFound = errors.New("driver binary not found in archive")
)

// Options configures a Manager.
type Options struct {
	// DownloadRoot is where <family>/<version>/ trees are created. Required.
	DownloadRoot string
	// LinkDir receives the driver link or copy. Empty skips linking.
	LinkDir string
	// Platform is the target OS and bitness. Required.
	Platform *platform.Info
	// HTTPClient is used for upstream metadata requests.
	HTTPClient *http.Client
	// Downloader fetches archives. Defaults to binary.NewDownloader.
	Downloader *binary.Downloader
	// Prober overrides the installed-browser probe.
	Prober probe.Prober
	// GitHubToken authenticates GitHub API calls.
	GitHubToken string
	// LockPollInterval is how often a held install lock is retried.
	LockPollInterval time.Duration
	Logger           logger.Logger
}

// Manager downloads and installs drivers for one browser family.
type Manager struct {
	adapter      source.Adapter
	downloader   *binary.Downloader
	installer    *binary.Installer
	downloadRoot string
	linkDir      string
	lockPoll     time.Duration
	log          logger.Logger
}

// New creates a Manager for the registered browser name.
func New(browser string, opts Options) (*Manager, error) {
	if opts.Platform == nil {
		return nil, fmt.Errorf("new manager: platform is required")
	}
	adapter, err := source.New(browser, source.Options{
		DownloadRoot: opts.DownloadRoot,
		Platform:     opts.Platform,
		HTTPClient:   opts.HTTPClient,
		Prober:       opts.Prober,
		GitHubToken:  opts.GitHubToken,
		Logger:       opts.Logger,
	})
	if err != nil {
		return nil, err
	}
	return NewWithAdapter(adapter, opts)
}

// NewWithAdapter creates a Manager around an existing adapter. The download
// root and, unless linking is skipped, the link directory are created.
func NewWithAdapter(adapter source.Adapter, opts Options) (*Manager, error) {
	if opts.Platform == nil {
		return nil, fmt.Errorf("new manager: platform is required")
	}
	if opts.DownloadRoot == "" {
		return nil, fmt.Errorf("new manager: download root is required")
	}

	log := logger.OrNop(opts.Logger)

	if err := ensureDir(opts.DownloadRoot, "Created download root directory", log); err != nil {
		return nil, err
	}
	if opts.LinkDir != "" {
		if err := ensureDir(opts.LinkDir, "Created symlink directory", log); err != nil {
			return nil, err
		}
	}

	downloader := opts.Downloader
	if downloader == nil {
		downloader = binary.NewDownloader(binary.WithDownloadLogger(log))
	}

	return &Manager{
		adapter:      adapter,
		downloader:   downloader,
		installer:    binary.NewInstaller(opts.Platform, log),
		downloadRoot: opts.DownloadRoot,
		linkDir:      opts.LinkDir,
		lockPoll:     opts.LockPollInterval,
		log:          log,
	}, nil
}

// Name returns the driver family name.
func (m *Manager) Name() string {
	return m.adapter.Name()
}

// LinkDir returns the directory drivers are linked into, empty when skipped.
func (m *Manager) LinkDir() string {
	return m.linkDir
}

// ResolveVersion turns a selector token ("latest", "compatible", or an
// explicit version) into a concrete version.
func (m *Manager) ResolveVersion(ctx context.Context, token string) (string, error) {
	return version.Resolve(ctx, version.ParseSelector(token), m.adapter, m.log)
}

// Download fetches the archive for token and returns its local path.
func (m *Manager) Download(ctx context.Context, token string, showProgress bool) (string, error) {
	path, _, err := m.download(ctx, token, showProgress)
	return path, err
}

func (m *Manager) download(ctx context.Context, token string, showProgress bool) (string, string, error) {
	v, err := m.ResolveVersion(ctx, token)
	if err != nil {
		return "", "", err
	}

	desc, err := m.adapter.DownloadURL(ctx, v)
	if err != nil {
		return "", "", fmt.Errorf("find %s %s download: %w", m.Name(), v, err)
	}

	m.log.Debug("Resolved download", "driver", m.Name(), "version", v, "url", desc.URL)

	info := binary.DownloadInfo{URL: desc.URL, Filename: desc.Filename}
	path, err := m.downloader.Download(ctx, info, m.adapter.DownloadPath(v), showProgress)
	if err != nil {
		return "", "", err
	}
	return path, v, nil
}

// DownloadAndInstall downloads the archive for token, extracts it and links
// the driver. Running it again for the same version changes nothing on disk.
func (m *Manager) DownloadAndInstall(ctx context.Context, token string, showProgress bool) (*binary.InstallResult, error) {
	filenames := m.adapter.DriverFilenames()
	if len(filenames) == 0 {
		return nil, fmt.Errorf("%s: %w", m.Name(), ErrNoDriverForOS)
	}

	archive, v, err := m.download(ctx, token, showProgress)
	if err != nil {
		return nil, err
	}

	lock, err := transaction.WaitLock(ctx, filepath.Join(m.downloadRoot, m.Name()), m.lockPoll)
	if err != nil {
		return nil, fmt.Errorf("lock %s install: %w", m.Name(), err)
	}
	defer func() {
		if err := lock.Release(); err != nil {
			m.log.Warn("Failed to release install lock", "error", err)
		}
	}()

	result, err := m.installer.Install(archive, m.adapter.DownloadPath(v), filenames, m.linkDir)
	if err != nil {
		return nil, fmt.Errorf("install %s %s: %w", m.Name(), v, err)
	}
	if result == nil {
		return nil, fmt.Errorf("install %s %s: %w", m.Name(), v, ErrDriverNotFound)
	}
	result.Version = v
	return result, nil
}

func ensureDir(dir, msg string, log logger.Logger) error {
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	log.Info(msg, "path", dir)
	return nil
}
