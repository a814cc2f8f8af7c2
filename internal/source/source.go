package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/ZebulonRouseFrantzich/webdrivermanager/internal/logger"
	"github.com/ZebulonRouseFrantzich/webdrivermanager/internal/platform"
	"github.com/ZebulonRouseFrantzich/webdrivermanager/internal/probe"
)

const (
	// DefaultTimeout is the default timeout for metadata requests.
	DefaultTimeout = 60 * time.Second
	// DefaultUserAgent is the User-Agent header sent with requests.
	DefaultUserAgent = "webdrivermanager/1.0"
)

// Adapter discovers versions and download URLs for one browser driver family.
type Adapter interface {
	// Name returns the family name, also used to namespace local storage.
	Name() string
	// LatestVersion returns the newest upstream release.
	LatestVersion(ctx context.Context) (string, error)
	// CompatibleVersion returns the release matching the installed browser.
	// Families without such a mapping return an error wrapping ErrNotSupported.
	CompatibleVersion(ctx context.Context) (string, error)
	// DownloadURL returns where to fetch the driver archive for version.
	DownloadURL(ctx context.Context, version string) (Descriptor, error)
	// DownloadPath returns the local directory for version.
	DownloadPath(version string) string
	// DriverFilenames returns the accepted driver executable names for the
	// current OS, or nil when the family has no driver for it.
	DriverFilenames() []string
}

// Descriptor identifies a downloadable driver archive.
type Descriptor struct {
	URL      string
	Filename string
}

// NewDescriptor builds a Descriptor whose filename is the last path element of rawURL.
func NewDescriptor(rawURL string) (Descriptor, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return Descriptor{}, fmt.Errorf("parse download url: %w", err)
	}
	d := Descriptor{URL: rawURL}
	if !strings.HasSuffix(parsed.Path, "/") {
		d.Filename = path.Base(parsed.Path)
	}
	if err := d.Validate(); err != nil {
		return Descriptor{}, err
	}
	return d, nil
}

// Validate checks that the descriptor can be downloaded to a named file.
func (d Descriptor) Validate() error {
	if d.URL == "" {
		return fmt.Errorf("invalid download descriptor: empty url")
	}
	switch d.Filename {
	case "", ".", "..", "/":
		return fmt.Errorf("invalid download descriptor: no filename for %s", d.URL)
	}
	if strings.ContainsAny(d.Filename, `/\`) {
		return fmt.Errorf("invalid download descriptor: filename %q is not a single path element", d.Filename)
	}
	return nil
}

// Options configures adapter construction.
type Options struct {
	// DownloadRoot is the directory under which <family>/<version> is created.
	DownloadRoot string
	// Platform is the OS and bitness to match downloads against. Required.
	Platform *platform.Info
	// HTTPClient is used for metadata requests. Defaults to a client with DefaultTimeout.
	HTTPClient *http.Client
	// Prober overrides the installed-browser probe for compatible lookups.
	Prober probe.Prober
	// GitHubToken is sent to the GitHub API when set.
	GitHubToken string
	// UserAgent defaults to DefaultUserAgent.
	UserAgent string
	// Logger defaults to a no-op logger.
	Logger logger.Logger
}

func (o Options) fetcher() *fetcher {
	client := o.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	ua := o.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	return &fetcher{client: client, userAgent: ua, log: logger.OrNop(o.Logger)}
}

func (o Options) prober(commands map[string][][]string) probe.Prober {
	if o.Prober != nil {
		return o.Prober
	}
	osName := ""
	if o.Platform != nil {
		osName = o.Platform.OS
	}
	return probe.New(osName, commands, probe.WithLogger(logger.OrNop(o.Logger)))
}

// base carries what every family shares: naming, storage layout, platform
// and transport.
type base struct {
	family       string
	downloadRoot string
	platform     *platform.Info
	filenames    map[string][]string
	http         *fetcher
	log          logger.Logger
}

func newBase(family string, filenames map[string][]string, opts Options) base {
	info := opts.Platform
	if info == nil {
		info = &platform.Info{}
	}
	return base{
		family:       family,
		downloadRoot: opts.DownloadRoot,
		platform:     info,
		filenames:    filenames,
		http:         opts.fetcher(),
		log:          logger.OrNop(opts.Logger),
	}
}

func (b *base) Name() string {
	return b.family
}

func (b *base) DownloadPath(version string) string {
	return filepath.Join(b.downloadRoot, b.family, version)
}

func (b *base) DriverFilenames() []string {
	return b.filenames[b.platform.OS]
}

func (b *base) CompatibleVersion(ctx context.Context) (string, error) {
	return "", fmt.Errorf("%s: %w", b.family, ErrNotSupported)
}

// osBitness is the "<os><bitness>" token used in most archive names.
func (b *base) osBitness() string {
	return b.platform.OS + b.platform.Bitness
}

func single(name string) map[string][]string {
	return map[string][]string{
		platform.OSWindows: {name + ".exe"},
		platform.OSMac:     {name},
		platform.OSLinux:   {name},
	}
}
