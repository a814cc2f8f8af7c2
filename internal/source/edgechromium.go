package source

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/ZebulonRouseFrantzich/webdrivermanager/internal/probe"
)

var edgeChromiumVersionPattern = regexp.MustCompile(`.*/edgewebdriver/([\d.]+)/edgedriver_.*\.zip`)

// EdgeChromium resolves msedgedriver from the Azure blob container that
// Microsoft publishes it to.
type EdgeChromium struct {
	base
	listing blobListing
	prober  probe.Prober

	// ListURL is the container listing URL.
	ListURL string
}

// NewEdgeChromium returns the Edge (Chromium) adapter.
func NewEdgeChromium(opts Options) *EdgeChromium {
	e := &EdgeChromium{
		base:    newBase("edgechromium", single("msedgedriver"), opts),
		prober:  opts.prober(probe.EdgeCommands),
		ListURL: "https://msedgewebdriverstorage.blob.core.windows.net/edgewebdriver?maxresults=1000&comp=list&timeout=60000",
	}
	token := "edgedriver_" + e.osBitness()
	e.listing = blobListing{
		element: "Url",
		keep:    func(entry string) bool { return strings.Contains(entry, token) },
		extract: func(entry string) (string, bool) {
			m := edgeChromiumVersionPattern.FindStringSubmatch(entry)
			if m == nil {
				return "", false
			}
			return m[1], true
		},
	}
	return e
}

func (e *EdgeChromium) LatestVersion(ctx context.Context) (string, error) {
	if err := e.listing.load(ctx, e.http, e.ListURL); err != nil {
		return "", fmt.Errorf("list edge drivers: %w", err)
	}
	return e.listing.latest()
}

// CompatibleVersion returns the installed Edge version when the listing
// carries a driver built for it. Driver releases share the browser's
// version number.
func (e *EdgeChromium) CompatibleVersion(ctx context.Context) (string, error) {
	bv, err := e.prober.Version(ctx)
	if err != nil {
		return "", fmt.Errorf("read edge version: %w", err)
	}
	if err := e.listing.load(ctx, e.http, e.ListURL); err != nil {
		return "", fmt.Errorf("list edge drivers: %w", err)
	}

	suffix := "/" + bv.Full + "/edgedriver_" + e.osBitness() + ".zip"
	for _, entry := range e.listing.entries {
		if strings.HasSuffix(entry, suffix) {
			return bv.Full, nil
		}
	}
	return "", fmt.Errorf("no edge driver for browser version %s: %w", bv.Full, ErrNotFound)
}

func (e *EdgeChromium) DownloadURL(ctx context.Context, v string) (Descriptor, error) {
	if err := e.listing.load(ctx, e.http, e.ListURL); err != nil {
		return Descriptor{}, fmt.Errorf("list edge drivers: %w", err)
	}
	e.log.Debug("Detected OS", "os", e.platform.OS, "bitness", e.platform.Bitness)

	entry, err := selectExact(e.listing.entries, "/"+v+"/edgedriver_"+e.osBitness()+".zip",
		e.platform.OS, e.platform.Bitness)
	if err != nil {
		return Descriptor{}, err
	}
	return NewDescriptor(entry)
}
