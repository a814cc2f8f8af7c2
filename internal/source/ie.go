package source

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/ZebulonRouseFrantzich/webdrivermanager/internal/platform"
)

var ieVersionPattern = regexp.MustCompile(`.*/IEDriverServer_(x64|Win32)_(\d+\.\d+\.\d+)\.zip`)

// InternetExplorer resolves IEDriverServer from the Selenium release bucket.
// The driver only exists for Windows.
type InternetExplorer struct {
	base
	listing blobListing

	// BaseURL is the bucket URL. Listing keys are relative to it.
	BaseURL string
}

// NewInternetExplorer returns the Internet Explorer adapter.
func NewInternetExplorer(opts Options) *InternetExplorer {
	return &InternetExplorer{
		base: newBase("ie", map[string][]string{
			platform.OSWindows: {"IEDriverServer.exe"},
		}, opts),
		listing: blobListing{
			element: "Key",
			keep:    func(entry string) bool { return strings.Contains(entry, "IEDriverServer_") },
			extract: func(entry string) (string, bool) {
				m := ieVersionPattern.FindStringSubmatch(entry)
				if m == nil {
					return "", false
				}
				return m[2], true
			},
		},
		BaseURL: "https://selenium-release.storage.googleapis.com",
	}
}

func (ie *InternetExplorer) LatestVersion(ctx context.Context) (string, error) {
	if err := ie.listing.load(ctx, ie.http, ie.BaseURL); err != nil {
		return "", fmt.Errorf("list ie drivers: %w", err)
	}
	return ie.listing.latest()
}

func (ie *InternetExplorer) DownloadURL(ctx context.Context, v string) (Descriptor, error) {
	if err := ie.listing.load(ctx, ie.http, ie.BaseURL); err != nil {
		return Descriptor{}, fmt.Errorf("list ie drivers: %w", err)
	}
	ie.log.Debug("Detected OS", "os", ie.platform.OS, "bitness", ie.platform.Bitness)

	key, err := selectExact(ie.listing.entries, "IEDriverServer_"+ieArch(ie.platform.Bitness)+"_"+v+".zip",
		ie.platform.OS, ie.platform.Bitness)
	if err != nil {
		return Descriptor{}, err
	}
	return NewDescriptor(strings.TrimSuffix(ie.BaseURL, "/") + "/" + key)
}

// ieArch is the architecture token in IEDriverServer archive names.
func ieArch(bitness string) string {
	if bitness == platform.Bitness32 {
		return "Win32"
	}
	return "x64"
}
