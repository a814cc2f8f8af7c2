// Package probe reads the version of a locally installed browser by running
// a list of OS-specific candidate commands.
package probe

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ZebulonRouseFrantzich/webdrivermanager/internal/executor"
	"github.com/ZebulonRouseFrantzich/webdrivermanager/internal/logger"
	"github.com/ZebulonRouseFrantzich/webdrivermanager/internal/platform"
)

// DefaultCommandTimeout bounds each candidate command.
const DefaultCommandTimeout = 10 * time.Second

var (
	// ErrUnsupportedSystem is returned when no candidate command is
	// registered for the operating system.
	ErrUnsupportedSystem = errors.New("browser version probe not supported on this system")
	// ErrBrowserNotFound is returned when every candidate command failed or
	// printed nothing that looks like a version.
	ErrBrowserNotFound = errors.New("unable to read installed browser version")
)

// chromiumVersionPattern captures the build prefix (major.minor.build) and
// the patch component separately.
var chromiumVersionPattern = regexp.MustCompile(`(\d+\.\d+\.\d+)(\.\d+)`)

// ChromeCommands are the candidate commands for Chrome and Chromium.
var ChromeCommands = map[string][][]string{
	platform.OSWindows: {
		{"reg", "query", `HKEY_CURRENT_USER\Software\Google\Chrome\BLBeacon`, "/v", "version"},
		{"reg", "query", `HKEY_CURRENT_USER\Software\Chromium\BLBeacon`, "/v", "version"},
	},
	platform.OSLinux: {
		{"chromium", "--version"},
		{"chromium-browser", "--version"},
		{"google-chrome", "--version"},
	},
	platform.OSMac: {
		{"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome", "--version"},
		{"/Applications/Chromium.app/Contents/MacOS/Chromium", "--version"},
	},
}

// EdgeCommands are the candidate commands for Microsoft Edge (Chromium).
var EdgeCommands = map[string][][]string{
	platform.OSWindows: {
		{"reg", "query", `HKEY_CURRENT_USER\Software\Microsoft\Edge\BLBeacon`, "/v", "version"},
	},
	platform.OSLinux: {
		{"microsoft-edge", "--version"},
		{"microsoft-edge-stable", "--version"},
	},
	platform.OSMac: {
		{"/Applications/Microsoft Edge.app/Contents/MacOS/Microsoft Edge", "--version"},
	},
}

// BrowserVersion is a version string read from an installed browser.
type BrowserVersion struct {
	Full  string // e.g. "120.0.6099.109"
	Build string // major.minor.build, e.g. "120.0.6099"
	Major int
}

// Prober reads installed browser versions.
type Prober interface {
	Version(ctx context.Context) (BrowserVersion, error)
}

// Probe runs candidate commands until one prints a version.
type Probe struct {
	osName   string
	commands map[string][][]string
	pattern  *regexp.Regexp
	exec     executor.CommandExecutor
	timeout  time.Duration
	log      logger.Logger
}

// Option configures a Probe.
type Option func(*Probe)

// WithExecutor replaces the command executor.
func WithExecutor(e executor.CommandExecutor) Option {
	return func(p *Probe) { p.exec = e }
}

// WithTimeout sets the per-command timeout.
func WithTimeout(d time.Duration) Option {
	return func(p *Probe) { p.timeout = d }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(p *Probe) { p.log = l }
}

// New creates a probe for osName using the given candidate commands.
func New(osName string, commands map[string][][]string, opts ...Option) *Probe {
	p := &Probe{
		osName:   osName,
		commands: commands,
		pattern:  chromiumVersionPattern,
		exec:     executor.NewSystemExecutor(),
		timeout:  DefaultCommandTimeout,
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Version returns the version reported by the first candidate command whose
// output matches the version pattern. Failing commands are skipped.
func (p *Probe) Version(ctx context.Context) (BrowserVersion, error) {
	candidates := p.commands[p.osName]
	if len(candidates) == 0 {
		return BrowserVersion{}, fmt.Errorf("%w: %s", ErrUnsupportedSystem, p.osName)
	}

	for _, cmd := range candidates {
		if ctx.Err() != nil {
			return BrowserVersion{}, ctx.Err()
		}

		output, err := p.run(ctx, cmd)
		if err != nil {
			p.log.Debug("Command failed", "command", strings.Join(cmd, " "), "error", err)
			continue
		}

		match := p.pattern.FindStringSubmatch(output)
		if match == nil {
			p.log.Debug("No version in command output", "command", cmd[0])
			continue
		}

		v, err := newBrowserVersion(match)
		if err != nil {
			continue
		}
		p.log.Debug("Detected browser version", "command", cmd[0], "version", v.Full)
		return v, nil
	}

	return BrowserVersion{}, ErrBrowserNotFound
}

// MajorVersion returns the leading numeric component of Version.
func (p *Probe) MajorVersion(ctx context.Context) (int, error) {
	v, err := p.Version(ctx)
	if err != nil {
		return 0, err
	}
	return v.Major, nil
}

func (p *Probe) run(ctx context.Context, cmd []string) (string, error) {
	runCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	out, err := p.exec.Output(runCtx, cmd[0], cmd[1:]...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

func newBrowserVersion(match []string) (BrowserVersion, error) {
	build := match[1]
	majorStr, _, _ := strings.Cut(build, ".")
	major, err := strconv.Atoi(majorStr)
	if err != nil {
		return BrowserVersion{}, err
	}
	return BrowserVersion{
		Full:  match[0],
		Build: build,
		Major: major,
	}, nil
}
