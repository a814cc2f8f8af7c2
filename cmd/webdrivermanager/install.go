package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZebulonRouseFrantzich/webdrivermanager/internal/config"
	"github.com/ZebulonRouseFrantzich/webdrivermanager/internal/manager"
	"github.com/ZebulonRouseFrantzich/webdrivermanager/internal/shell"
	"github.com/ZebulonRouseFrantzich/webdrivermanager/internal/source"
	"github.com/ZebulonRouseFrantzich/webdrivermanager/internal/version"
)

const networkErrorMessage = "Unable to download webdriver's at this time due to network connectivity error"

// Link kinds reported in driverResult.
const (
	linkSymlink = "symlink"
	linkCopy    = "copy"
)

// driverResult is one browser token's outcome, rendered by --format.
type driverResult struct {
	Browser    string `json:"browser" yaml:"browser"`
	Version    string `json:"version,omitempty" yaml:"version,omitempty"`
	BinaryPath string `json:"binary_path,omitempty" yaml:"binary_path,omitempty"`
	LinkPath   string `json:"link_path,omitempty" yaml:"link_path,omitempty"`
	LinkKind   string `json:"link_kind,omitempty" yaml:"link_kind,omitempty"`
	Error      string `json:"error,omitempty" yaml:"error,omitempty"`
}

// parseToken splits "browser[:version]". A missing version selects the
// browser-compatible release.
func parseToken(token string) (browser, selector string) {
	browser, selector, found := strings.Cut(token, ":")
	if !found || selector == "" {
		selector = version.TokenCompatible
	}
	return browser, selector
}

func runInstall(ctx context.Context, a *app, opts *options, args []string) error {
	if err := opts.validateFormat(); err != nil {
		return err
	}

	log := opts.logger(a)
	out := newPrinter(a.stdout, a.stderr, opts.format == formatText)

	parser := config.NewParser(a.detector).WithLogger(log)
	host, settings, err := opts.resolve(ctx, a, parser, log)
	if err != nil {
		return err
	}
	target := host.WithOverrides(settings.OS, settings.Bitness)

	log.Debug("Target platform", "os", target.OS, "bitness", target.Bitness, "arch", target.Arch)

	var results []driverResult
	failed := 0

	for _, token := range args {
		browser, selector := parseToken(token)
		result := driverResult{Browser: browser}

		m, err := a.newManager(browser, manager.Options{
			DownloadRoot: settings.DownloadRoot,
			LinkDir:      settings.LinkDir,
			Platform:     target,
			GitHubToken:  settings.GitHubToken,
			Logger:       log,
		})
		if errors.Is(err, source.ErrUnknownBrowser) {
			out.warn("Unrecognized browser: %q.  Ignoring...", browser)
			out.blank()
			continue
		}

		out.info("Downloading WebDriver for browser: %q", browser)

		if err == nil {
			var installed *installedDriver
			installed, err = install(ctx, m, selector, settings.ShowProgress)
			if err == nil {
				result.Version = installed.version
				result.BinaryPath = installed.binaryPath
				result.LinkPath = installed.linkPath
				result.LinkKind = installed.linkKind
				reportInstalled(ctx, out, a, installed)
			}
		}

		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if source.IsNetworkError(err) {
				log.Debug("Network failure", "browser", browser, "error", err)
				out.always(networkErrorMessage)
				return &silentError{err: err}
			}
			log.Error("Failed to install driver", "browser", browser, "error", err)
			result.Error = err.Error()
			failed++
		}

		results = append(results, result)
		out.blank()
	}

	if err := renderResults(a.stdout, opts.format, results); err != nil {
		return err
	}

	if failed > 0 {
		return &silentError{err: fmt.Errorf("%d of %d drivers failed", failed, len(results))}
	}
	return nil
}

type installedDriver struct {
	version    string
	binaryPath string
	linkPath   string
	linkKind   string
}

func install(ctx context.Context, m driverManager, selector string, showProgress bool) (*installedDriver, error) {
	res, err := m.DownloadAndInstall(ctx, selector, showProgress)
	if err != nil {
		return nil, err
	}

	installed := &installedDriver{
		version:    res.Version,
		binaryPath: res.BinaryPath,
		linkPath:   res.LinkPath,
	}
	if res.LinkPath != "" {
		installed.linkKind = linkCopy
		if fi, err := os.Lstat(res.LinkPath); err == nil && fi.Mode()&os.ModeSymlink != 0 {
			installed.linkKind = linkSymlink
		}
	}
	return installed, nil
}

func reportInstalled(ctx context.Context, out *printer, a *app, d *installedDriver) {
	out.success("Driver binary downloaded to: %q", d.binaryPath)

	if d.linkPath == "" {
		out.plain("Linking webdriver skipped")
		return
	}

	if d.linkKind == linkSymlink {
		out.plain("Symlink created: %s", d.linkPath)
	} else {
		out.plain("Driver copied to: %s", d.linkPath)
	}

	linkDir := filepath.Dir(d.linkPath)
	if !onPath(linkDir, a.getenv("PATH")) {
		out.warn("WARNING: Path %q is not in the PATH environment variable.", linkDir)
		printPathHint(ctx, out, a, linkDir)
	}
}

func onPath(dir, pathList string) bool {
	clean := filepath.Clean(dir)
	for _, entry := range filepath.SplitList(pathList) {
		if entry != "" && filepath.Clean(entry) == clean {
			return true
		}
	}
	return false
}

func printPathHint(ctx context.Context, out *printer, a *app, dir string) {
	if a.shell == nil {
		return
	}
	detected := a.shell.Detect(ctx)
	if hint, ok := shell.PathHintFor(detected.Shell, dir); ok {
		out.plain("To add it for %s, run:\n  %s", detected.Shell, hint)
	}
}
