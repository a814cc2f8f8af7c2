package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/ZebulonRouseFrantzich/webdrivermanager/internal/platform"
	"github.com/ZebulonRouseFrantzich/webdrivermanager/internal/probe"
)

// ChromeLegacy resolves chromedriver releases up to 114 from the
// chromedriver Google Cloud Storage bucket.
type ChromeLegacy struct {
	base

	// BucketURL is the JSON API URL of the bucket.
	BucketURL string

	prober probe.Prober
}

// NewChromeLegacy returns the legacy chromedriver adapter.
func NewChromeLegacy(opts Options) *ChromeLegacy {
	return &ChromeLegacy{
		base:      newBase("chrome", single("chromedriver"), opts),
		BucketURL: "https://www.googleapis.com/storage/v1/b/chromedriver",
		prober:    opts.prober(probe.ChromeCommands),
	}
}

type gcsObject struct {
	Name      string `json:"name"`
	MediaLink string `json:"mediaLink"`
}

type gcsObjectList struct {
	Items         []gcsObject `json:"items"`
	NextPageToken string      `json:"nextPageToken"`
}

func (c *ChromeLegacy) LatestVersion(ctx context.Context) (string, error) {
	return c.releaseMarker(ctx, "LATEST_RELEASE")
}

// CompatibleVersion reads LATEST_RELEASE_<build> for the installed Chrome.
func (c *ChromeLegacy) CompatibleVersion(ctx context.Context) (string, error) {
	bv, err := c.prober.Version(ctx)
	if err != nil {
		return "", fmt.Errorf("read chrome version: %w", err)
	}
	return c.releaseMarker(ctx, "LATEST_RELEASE_"+bv.Build)
}

// releaseMarker fetches a marker object's metadata and then its content.
func (c *ChromeLegacy) releaseMarker(ctx context.Context, name string) (string, error) {
	resp, err := c.http.getOK(ctx, c.BucketURL+"/o/"+url.PathEscape(name), nil)
	if err != nil {
		return "", fmt.Errorf("get %s: %w", name, err)
	}

	var obj gcsObject
	if err := json.Unmarshal(resp.Body, &obj); err != nil {
		return "", fmt.Errorf("decode %s metadata: %w", name, err)
	}
	if obj.MediaLink == "" {
		return "", fmt.Errorf("%s media link: %w", name, ErrNotFound)
	}

	content, err := c.http.getOK(ctx, obj.MediaLink, nil)
	if err != nil {
		return "", fmt.Errorf("get %s content: %w", name, err)
	}
	return strings.TrimSpace(string(content.Body)), nil
}

func (c *ChromeLegacy) DownloadURL(ctx context.Context, v string) (Descriptor, error) {
	// Windows builds exist only as 32-bit and mac builds only as 64-bit.
	bitness := c.platform.Bitness
	switch c.platform.OS {
	case platform.OSWindows:
		bitness = platform.Bitness32
	case platform.OSMac:
		bitness = platform.Bitness64
	}
	c.log.Debug("Detected OS", "os", c.platform.OS, "bitness", bitness)

	objects, err := c.listObjects(ctx, v+"/")
	if err != nil {
		return Descriptor{}, err
	}

	token := c.platform.OS + bitness
	matcher := regexp.MustCompile(`^` + regexp.QuoteMeta(v) + `/.*` + regexp.QuoteMeta(token))
	var matches []gcsObject
	for _, o := range objects {
		if matcher.MatchString(o.Name) {
			matches = append(matches, o)
		}
	}

	// chromedriver_mac64.zip and chromedriver_mac64_m1.zip both match;
	// the exact archive name breaks the tie.
	if len(matches) > 1 {
		exact := "chromedriver_" + token + ".zip"
		var narrowed []gcsObject
		for _, o := range matches {
			if path.Base(o.Name) == exact {
				narrowed = append(narrowed, o)
			}
		}
		matches = narrowed
	}

	if len(matches) != 1 {
		names := make([]string, len(matches))
		for i, o := range matches {
			names[i] = o.Name
		}
		return Descriptor{}, &AmbiguousMatchError{OS: c.platform.OS, Bitness: bitness, Candidates: names}
	}

	d := Descriptor{URL: matches[0].MediaLink, Filename: path.Base(matches[0].Name)}
	if err := d.Validate(); err != nil {
		return Descriptor{}, err
	}
	return d, nil
}

func (c *ChromeLegacy) listObjects(ctx context.Context, prefix string) ([]gcsObject, error) {
	var all []gcsObject
	pageToken := ""
	for {
		q := url.Values{}
		q.Set("prefix", prefix)
		if pageToken != "" {
			q.Set("pageToken", pageToken)
		}

		resp, err := c.http.getOK(ctx, c.BucketURL+"/o?"+q.Encode(), nil)
		if err != nil {
			return nil, err
		}

		var page gcsObjectList
		if err := json.Unmarshal(resp.Body, &page); err != nil {
			return nil, fmt.Errorf("decode chromedriver object list: %w", err)
		}
		all = append(all, page.Items...)

		if page.NextPageToken == "" {
			return all, nil
		}
		pageToken = page.NextPageToken
	}
}
