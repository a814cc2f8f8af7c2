package source

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ZebulonRouseFrantzich/webdrivermanager/internal/platform"
	"github.com/ZebulonRouseFrantzich/webdrivermanager/internal/probe"
	"github.com/ZebulonRouseFrantzich/webdrivermanager/internal/version"
)

// StableChannel is the only Chrome for Testing channel that is resolved.
const StableChannel = "Stable"

// ChromeForTesting resolves chromedriver from the Chrome for Testing JSON
// manifests. Downloads are only offered when the installed Chrome has the
// same major version as the driver.
type ChromeForTesting struct {
	base

	// LastKnownGoodURL lists the current release of each channel.
	LastKnownGoodURL string
	// KnownGoodURL lists every published version.
	KnownGoodURL string

	prober  probe.Prober
	channel *cftChannel
}

// NewChromeForTesting returns the Chrome for Testing adapter.
func NewChromeForTesting(opts Options) *ChromeForTesting {
	return &ChromeForTesting{
		base:             newBase("chrome", single("chromedriver"), opts),
		LastKnownGoodURL: "https://googlechromelabs.github.io/chrome-for-testing/last-known-good-versions-with-downloads.json",
		KnownGoodURL:     "https://googlechromelabs.github.io/chrome-for-testing/known-good-versions-with-downloads.json",
		prober:           opts.prober(probe.ChromeCommands),
	}
}

type cftDownload struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
}

type cftDownloads struct {
	Chromedriver []cftDownload `json:"chromedriver"`
}

type cftChannel struct {
	Channel   string       `json:"channel"`
	Version   string       `json:"version"`
	Downloads cftDownloads `json:"downloads"`
}

type cftLastKnownGood struct {
	Channels map[string]cftChannel `json:"channels"`
}

type cftKnownGood struct {
	Versions []cftChannel `json:"versions"`
}

// stable fetches the Stable channel once per adapter value.
func (c *ChromeForTesting) stable(ctx context.Context) (*cftChannel, error) {
	if c.channel != nil {
		return c.channel, nil
	}

	resp, err := c.http.getOK(ctx, c.LastKnownGoodURL, nil)
	if err != nil {
		return nil, err
	}

	var doc cftLastKnownGood
	if err := json.Unmarshal(resp.Body, &doc); err != nil {
		return nil, fmt.Errorf("decode chrome for testing manifest: %w", err)
	}
	ch, ok := doc.Channels[StableChannel]
	if !ok || ch.Version == "" {
		return nil, fmt.Errorf("chrome for testing channel %s: %w", StableChannel, ErrNotFound)
	}
	c.channel = &ch
	return c.channel, nil
}

func (c *ChromeForTesting) LatestVersion(ctx context.Context) (string, error) {
	ch, err := c.stable(ctx)
	if err != nil {
		return "", err
	}
	return ch.Version, nil
}

// CompatibleVersion returns the Stable channel version when its major
// version equals the installed Chrome's.
func (c *ChromeForTesting) CompatibleVersion(ctx context.Context) (string, error) {
	bv, err := c.prober.Version(ctx)
	if err != nil {
		return "", fmt.Errorf("read chrome version: %w", err)
	}

	ch, err := c.stable(ctx)
	if err != nil {
		return "", err
	}
	if err := gateMajor(bv.Major, ch.Version); err != nil {
		return "", err
	}
	return ch.Version, nil
}

func (c *ChromeForTesting) DownloadURL(ctx context.Context, v string) (Descriptor, error) {
	bv, err := c.prober.Version(ctx)
	if err != nil {
		return Descriptor{}, fmt.Errorf("read chrome version: %w", err)
	}
	if err := gateMajor(bv.Major, v); err != nil {
		return Descriptor{}, err
	}

	entry, err := c.lookup(ctx, v)
	if err != nil {
		return Descriptor{}, err
	}

	key := cftPlatform(c.platform)
	for _, d := range entry.Downloads.Chromedriver {
		if d.Platform == key {
			c.log.Info("Download URL", "url", d.URL)
			return NewDescriptor(d.URL)
		}
	}
	return Descriptor{}, fmt.Errorf("chromedriver %s for %s: %w", v, key, ErrNotFound)
}

// lookup finds v in the Stable channel, or in the full version list.
func (c *ChromeForTesting) lookup(ctx context.Context, v string) (*cftChannel, error) {
	ch, err := c.stable(ctx)
	if err != nil {
		return nil, err
	}
	if ch.Version == v {
		return ch, nil
	}

	resp, err := c.http.getOK(ctx, c.KnownGoodURL, nil)
	if err != nil {
		return nil, err
	}
	var doc cftKnownGood
	if err := json.Unmarshal(resp.Body, &doc); err != nil {
		return nil, fmt.Errorf("decode chrome for testing version list: %w", err)
	}
	for i := range doc.Versions {
		if doc.Versions[i].Version == v {
			return &doc.Versions[i], nil
		}
	}
	return nil, fmt.Errorf("chromedriver version %s: %w", v, ErrNotFound)
}

func gateMajor(browserMajor int, driverVersion string) error {
	driverMajor, err := version.MajorOf(driverVersion)
	if err != nil {
		return fmt.Errorf("parse driver version: %w", err)
	}
	if driverMajor != browserMajor {
		return &IncompatibleBrowserError{BrowserMajor: browserMajor, DriverVersion: driverVersion}
	}
	return nil
}

// cftPlatform maps the platform to a Chrome for Testing platform key. Apple
// silicon is decided by processor name, see platform.Info.IsAppleSilicon.
func cftPlatform(info *platform.Info) string {
	switch info.OS {
	case platform.OSMac:
		if info.IsAppleSilicon() {
			return "mac-arm64"
		}
		return "mac-x64"
	case platform.OSWindows:
		return "win" + info.Bitness
	default:
		return "linux64"
	}
}
