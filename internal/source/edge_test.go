package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const edgeToolsPage = `<!DOCTYPE html>
<html><body>
<ul class="driver-downloads">
  <li><a href="https://download.microsoft.com/download/F/8/A/F8AF50AB/MicrosoftWebDriver.exe" aria-label="WebDriver for release number 17134">Release 17134</a></li>
  <li><a href="https://developer.microsoft.com/16299/index.html" aria-label="WebDriver for release number 16299">Release 16299</a></li>
</ul>
<div>
  <a href="https://download.microsoft.com/download/D/4/1/x64/MicrosoftWebDriver.exe" aria-label="WebDriver for release number 16299 x64">x64</a>
  <a href="https://download.microsoft.com/download/D/4/1/x86/MicrosoftWebDriver.exe" aria-label="WebDriver for release number 16299 x86">x86</a>
</div>
</body></html>`

func newTestEdge(t *testing.T, page string, bitness string) *EdgeLegacy {
	t.Helper()
	srv, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, page)
	})
	e := NewEdgeLegacy(testOptions("win", bitness))
	e.PageURL = srv.URL + "/webdriver/"
	return e
}

func TestEdgeLegacy_LatestVersion(t *testing.T) {
	v, err := newTestEdge(t, edgeToolsPage, "64").LatestVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "17134", v)
}

func TestEdgeLegacy_DownloadURL(t *testing.T) {
	tests := []struct {
		name    string
		version string
		bitness string
		want    string
	}{
		{"direct link", "17134", "64", "https://download.microsoft.com/download/F/8/A/F8AF50AB/MicrosoftWebDriver.exe"},
		{"index page x64", "16299", "64", "https://download.microsoft.com/download/D/4/1/x64/MicrosoftWebDriver.exe"},
		{"index page x86", "16299", "32", "https://download.microsoft.com/download/D/4/1/x86/MicrosoftWebDriver.exe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc, err := newTestEdge(t, edgeToolsPage, tt.bitness).DownloadURL(context.Background(), tt.version)
			require.NoError(t, err)
			assert.Equal(t, tt.want, desc.URL)
			assert.Equal(t, "MicrosoftWebDriver.exe", desc.Filename)
		})
	}
}

func TestEdgeLegacy_PageChangesAreNotFound(t *testing.T) {
	tests := []struct {
		name    string
		page    string
		version string
	}{
		{"no release anchors", "<html><body><p>moved</p></body></html>", "17134"},
		{"unknown release", edgeToolsPage, "10240"},
		{"index page without labels", `<a href="/x/index.html">Release 15063</a>`, "15063"},
		{"not html at all", "{}", "17134"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestEdge(t, tt.page, "64").DownloadURL(context.Background(), tt.version)
			assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)
		})
	}

	_, err := newTestEdge(t, `<a href="/x">Release notes</a>`, "64").LatestVersion(context.Background())
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestEdgeLegacy_DownloadURLWithoutFilename(t *testing.T) {
	page := `<a href="https://download.microsoft.com/download/F/8/A/">Release 17134</a>`

	_, err := newTestEdge(t, page, "64").DownloadURL(context.Background(), "17134")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid download descriptor")
}

func TestEdgeLegacy_DriverFilenames(t *testing.T) {
	e := NewEdgeLegacy(testOptions("win", "64"))
	assert.Equal(t, []string{"MicrosoftWebDriver.exe", "msedgedriver.exe"}, e.DriverFilenames())
}
