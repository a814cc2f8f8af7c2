package source

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ZebulonRouseFrantzich/webdrivermanager/internal/platform"
)

var edgeReleaseLabel = regexp.MustCompile(`"WebDriver for release number ([\d.]+)"`)

// EdgeLegacy scrapes the Microsoft WebDriver tools page for pre-Chromium
// Edge drivers. Page layout changes are reported as not found.
type EdgeLegacy struct {
	base

	// PageURL is the tools page.
	PageURL string
}

// NewEdgeLegacy returns the legacy Edge adapter.
func NewEdgeLegacy(opts Options) *EdgeLegacy {
	return &EdgeLegacy{
		base: newBase("edge", map[string][]string{
			platform.OSWindows: {"MicrosoftWebDriver.exe", "msedgedriver.exe"},
		}, opts),
		PageURL: "https://developer.microsoft.com/en-us/microsoft-edge/tools/webdriver/",
	}
}

func (e *EdgeLegacy) page(ctx context.Context) (*goquery.Document, error) {
	resp, err := e.http.getOK(ctx, e.PageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("get edge tools page: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("parse edge tools page: %w", err)
	}
	return doc, nil
}

func (e *EdgeLegacy) LatestVersion(ctx context.Context) (string, error) {
	doc, err := e.page(ctx)
	if err != nil {
		return "", err
	}
	v, ok := latestEdgeRelease(doc)
	if !ok {
		return "", fmt.Errorf("edge latest release: %w", ErrNotFound)
	}
	return v, nil
}

func (e *EdgeLegacy) DownloadURL(ctx context.Context, v string) (Descriptor, error) {
	e.log.Debug("Detected OS", "os", e.platform.OS, "bitness", e.platform.Bitness)

	doc, err := e.page(ctx)
	if err != nil {
		return Descriptor{}, err
	}
	href, ok := edgeReleaseHref(doc, v, e.platform.Bitness)
	if !ok {
		return Descriptor{}, fmt.Errorf("edge release %s: %w", v, ErrNotFound)
	}

	u, err := url.Parse(href)
	if err != nil {
		return Descriptor{}, fmt.Errorf("edge release %s: %w", v, ErrNotFound)
	}
	if page, err := url.Parse(e.PageURL); err == nil {
		u = page.ResolveReference(u)
	}
	return NewDescriptor(u.String())
}

// latestEdgeRelease reads the release number from the aria-label of the
// first "Release " anchor.
func latestEdgeRelease(doc *goquery.Document) (string, bool) {
	anchors := anchorsWithText(doc, "Release ")
	if anchors.Length() == 0 {
		return "", false
	}
	html, err := goquery.OuterHtml(anchors.First())
	if err != nil {
		return "", false
	}
	m := edgeReleaseLabel.FindStringSubmatch(html)
	if m == nil || m[1] == "" {
		return "", false
	}
	return m[1], true
}

// edgeReleaseHref finds the download link for version. Newer releases link
// to an index page from the release anchor, in which case the per-bitness
// link is found by aria-label. The page labels 32-bit builds x86.
func edgeReleaseHref(doc *goquery.Document, v, bitness string) (string, bool) {
	anchors := anchorsWithText(doc, "Release "+v)
	if anchors.Length() == 0 {
		return "", false
	}
	href, ok := anchors.First().Attr("href")
	if !ok {
		return "", false
	}
	if !strings.Contains(href, "index.html") {
		return href, href != ""
	}

	arch := bitness
	if arch == platform.Bitness32 {
		arch = "86"
	}
	label := "WebDriver for release number " + v + " x" + arch
	var found string
	doc.Find("a[aria-label]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if l, _ := s.Attr("aria-label"); strings.Contains(l, label) {
			found, _ = s.Attr("href")
			return false
		}
		return true
	})
	return found, found != ""
}

func anchorsWithText(doc *goquery.Document, text string) *goquery.Selection {
	return doc.Find("a").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.Contains(s.Text(), text)
	})
}
