package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const githubHost = "https://github.com"

// GitHubReleases resolves drivers published as GitHub release assets.
//
// The REST API is tried first. A 403 means the anonymous rate limit was hit,
// and the public releases page is scraped instead. Any other non-2xx status
// is returned as an UpstreamError.
type GitHubReleases struct {
	base

	// APIURL is the releases API endpoint, ending in a slash.
	APIURL string
	// PageURL is the public releases page, ending in a slash.
	PageURL string

	token string
}

// NewGecko returns the adapter for geckodriver (Firefox).
func NewGecko(opts Options) *GitHubReleases {
	return &GitHubReleases{
		base:    newBase("gecko", single("geckodriver"), opts),
		APIURL:  "https://api.github.com/repos/mozilla/geckodriver/releases/",
		PageURL: "https://github.com/mozilla/geckodriver/releases/",
		token:   opts.GitHubToken,
	}
}

// NewOpera returns the adapter for operachromiumdriver.
func NewOpera(opts Options) *GitHubReleases {
	return &GitHubReleases{
		base:    newBase("operachromium", single("operadriver"), opts),
		APIURL:  "https://api.github.com/repos/operasoftware/operachromiumdriver/releases/",
		PageURL: "https://github.com/operasoftware/operachromiumdriver/releases/",
		token:   opts.GitHubToken,
	}
}

type githubRelease struct {
	TagName string        `json:"tag_name"`
	Assets  []githubAsset `json:"assets"`
}

type githubAsset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

func (g *GitHubReleases) apiHeader() http.Header {
	h := http.Header{}
	h.Set("Accept", "application/vnd.github+json")
	if g.token != "" {
		h.Set("Authorization", "Bearer "+g.token)
	}
	return h
}

// releaseAPIURL returns the API URL for version, which may be "latest".
func (g *GitHubReleases) releaseAPIURL(version string) string {
	if version == "latest" {
		return g.APIURL + "latest"
	}
	return g.APIURL + "tags/" + url.PathEscape(version)
}

func (g *GitHubReleases) LatestVersion(ctx context.Context) (string, error) {
	apiURL := g.releaseAPIURL("latest")
	resp, err := g.http.get(ctx, apiURL, g.apiHeader())
	if err != nil {
		return "", err
	}

	switch {
	case resp.ok():
		var rel githubRelease
		if err := json.Unmarshal(resp.Body, &rel); err != nil {
			return "", fmt.Errorf("decode %s release: %w", g.family, err)
		}
		if rel.TagName == "" {
			return "", fmt.Errorf("%s latest release: %w: empty tag_name", g.family, ErrNotFound)
		}
		return rel.TagName, nil
	case resp.StatusCode == http.StatusForbidden:
		g.log.Warn("GitHub API rate limited, falling back to releases page", "driver", g.family)
		return g.latestFromPage(ctx)
	default:
		return "", resp.upstreamError(apiURL)
	}
}

func (g *GitHubReleases) DownloadURL(ctx context.Context, version string) (Descriptor, error) {
	g.log.Debug("Detected OS", "os", g.platform.OS, "bitness", g.platform.Bitness)

	apiURL := g.releaseAPIURL(version)
	resp, err := g.http.get(ctx, apiURL, g.apiHeader())
	if err != nil {
		return Descriptor{}, err
	}

	var downloadURL string
	switch {
	case resp.ok():
		downloadURL, err = g.assetURL(resp.Body)
		if err != nil {
			return Descriptor{}, fmt.Errorf("%s %s: %w", g.family, version, err)
		}
	case resp.StatusCode == http.StatusForbidden:
		g.log.Warn("GitHub API rate limited, falling back to releases page", "driver", g.family)
		var found bool
		downloadURL, found = g.scrapeReleasePage(ctx, version)
		if !found {
			return Descriptor{}, fmt.Errorf("%s %s download for %s: %w", g.family, version, g.osBitness(), ErrNotFound)
		}
	default:
		return Descriptor{}, resp.upstreamError(apiURL)
	}

	g.log.Info("Download URL", "url", downloadURL)
	return NewDescriptor(downloadURL)
}

func (g *GitHubReleases) assetURL(body []byte) (string, error) {
	var rel githubRelease
	if err := json.Unmarshal(body, &rel); err != nil {
		return "", fmt.Errorf("decode release: %w", err)
	}

	names := make([]string, len(rel.Assets))
	for i, a := range rel.Assets {
		names[i] = a.Name
	}

	idx, err := selectAsset(names, g.platform.OS, g.platform.Bitness)
	if err != nil {
		return "", err
	}
	return rel.Assets[idx].BrowserDownloadURL, nil
}

// latestFromPage reads the latest tag from the public releases page.
// GitHub redirects releases/latest to releases/tag/<tag>; when it does not,
// the first tag link on the page is used.
func (g *GitHubReleases) latestFromPage(ctx context.Context) (string, error) {
	pageURL := g.PageURL + "latest"
	resp, err := g.http.getOK(ctx, pageURL, nil)
	if err != nil {
		return "", err
	}

	if tag, ok := tagFromPath(resp.URL.Path); ok {
		return tag, nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return "", fmt.Errorf("parse %s releases page: %w", g.family, err)
	}

	var tag string
	doc.Find(`a[href*="/releases/tag/"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		if t, ok := tagFromPath(href); ok {
			tag = t
			return false
		}
		return true
	})
	if tag == "" {
		return "", fmt.Errorf("%s latest release on releases page: %w", g.family, ErrNotFound)
	}
	return tag, nil
}

func tagFromPath(p string) (string, bool) {
	const marker = "/releases/tag/"
	i := strings.Index(p, marker)
	if i < 0 {
		return "", false
	}
	tag := strings.Trim(p[i+len(marker):], "/")
	if unescaped, err := url.PathUnescape(tag); err == nil {
		tag = unescaped
	}
	return tag, tag != ""
}

// scrapeReleasePage finds the asset link for version on the public release
// page. Newer pages load assets from an expanded_assets fragment, which is
// tried when the tag page has no matching links. Reports false when nothing
// usable was found.
func (g *GitHubReleases) scrapeReleasePage(ctx context.Context, version string) (string, bool) {
	var pages []string
	var matcher string
	if version == "latest" {
		pages = []string{g.PageURL + "latest"}
		matcher = `.*/releases/download/.*` + regexp.QuoteMeta(g.platform.OS)
	} else {
		escaped := url.PathEscape(version)
		pages = []string{g.PageURL + "tag/" + escaped, g.PageURL + "expanded_assets/" + escaped}
		matcher = `.*/releases/download/` + regexp.QuoteMeta(version) + `/.*` + regexp.QuoteMeta(g.platform.OS)
	}

	for _, pageURL := range pages {
		resp, err := g.http.get(ctx, pageURL, nil)
		if err != nil || resp.StatusCode != http.StatusOK {
			continue
		}

		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
		if err != nil {
			continue
		}

		links := matchingHrefs(doc, regexp.MustCompile(matcher))
		if len(links) == 2 {
			links = matchingHrefs(doc, regexp.MustCompile(matcher+`.*`+regexp.QuoteMeta(g.platform.Bitness)))
		}
		if len(links) > 0 {
			return absoluteGitHubURL(links[0]), true
		}
	}
	return "", false
}

func matchingHrefs(doc *goquery.Document, re *regexp.Regexp) []string {
	var hrefs []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if re.MatchString(href) {
			hrefs = append(hrefs, href)
		}
	})
	return hrefs
}

func absoluteGitHubURL(href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	return githubHost + path.Clean("/"+href)
}
