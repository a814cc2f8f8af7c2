package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const geckoPagePath = "/mozilla/geckodriver/releases/"

func newTestGecko(srv *httptest.Server, osName, bitness string) *GitHubReleases {
	g := NewGecko(testOptions(osName, bitness))
	g.APIURL = srv.URL + "/repos/mozilla/geckodriver/releases/"
	g.PageURL = srv.URL + geckoPagePath
	return g
}

func geckoRelease(tag string) githubRelease {
	rel := githubRelease{TagName: tag}
	for _, name := range geckoAssets {
		rel.Assets = append(rel.Assets, githubAsset{
			Name:               name,
			BrowserDownloadURL: "https://github.com/mozilla/geckodriver/releases/download/" + tag + "/" + name,
		})
	}
	return rel
}

func TestGitHubReleases_LatestVersion(t *testing.T) {
	srv, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/mozilla/geckodriver/releases/latest", r.URL.Path)
		assert.Equal(t, "application/vnd.github+json", r.Header.Get("Accept"))
		_ = json.NewEncoder(w).Encode(geckoRelease("v0.26.0"))
	})

	v, err := newTestGecko(srv, "linux", "64").LatestVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v0.26.0", v)
}

func TestGitHubReleases_DownloadURL(t *testing.T) {
	srv, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/mozilla/geckodriver/releases/tags/v0.26.0", r.URL.Path)
		_ = json.NewEncoder(w).Encode(geckoRelease("v0.26.0"))
	})

	tests := []struct {
		os       string
		bitness  string
		filename string
	}{
		{"linux", "32", "geckodriver-v0.26.0-linux32.tar.gz"},
		{"linux", "64", "geckodriver-v0.26.0-linux64.tar.gz"},
		{"mac", "64", "geckodriver-v0.26.0-macos.tar.gz"},
		{"win", "32", "geckodriver-v0.26.0-win32.zip"},
		{"win", "64", "geckodriver-v0.26.0-win64.zip"},
	}

	for _, tt := range tests {
		t.Run(tt.os+tt.bitness, func(t *testing.T) {
			desc, err := newTestGecko(srv, tt.os, tt.bitness).DownloadURL(context.Background(), "v0.26.0")
			require.NoError(t, err)
			assert.Equal(t, tt.filename, desc.Filename)
			assert.Equal(t, "https://github.com/mozilla/geckodriver/releases/download/v0.26.0/"+tt.filename, desc.URL)
		})
	}
}

func TestGitHubReleases_Token(t *testing.T) {
	srv, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(geckoRelease("v0.26.0"))
	})

	opts := testOptions("linux", "64")
	opts.GitHubToken = "secret"
	g := NewGecko(opts)
	g.APIURL = srv.URL + "/repos/mozilla/geckodriver/releases/"

	_, err := g.LatestVersion(context.Background())
	require.NoError(t, err)
}

func TestGitHubReleases_RateLimitedLatest(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/mozilla/geckodriver/releases/latest", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusForbidden)
	})
	mux.HandleFunc(geckoPagePath+"latest", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, geckoPagePath+"tag/v0.34.0", http.StatusFound)
	})
	mux.HandleFunc(geckoPagePath+"tag/v0.34.0", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body>release</body></html>")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	v, err := newTestGecko(srv, "linux", "64").LatestVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v0.34.0", v)
}

func TestGitHubReleases_RateLimitedLatestFromAnchor(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/mozilla/geckodriver/releases/latest", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	mux.HandleFunc(geckoPagePath+"latest", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
<a href="/mozilla/geckodriver/releases">all</a>
<a href="/mozilla/geckodriver/releases/tag/v0.33.0">v0.33.0</a>
</body></html>`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	v, err := newTestGecko(srv, "linux", "64").LatestVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v0.33.0", v)
}

func TestGitHubReleases_RateLimitedDownloadURL(t *testing.T) {
	const assets = `<html><body>
<a href="/mozilla/geckodriver/releases/download/v0.26.0/geckodriver-v0.26.0-linux32.tar.gz">linux32</a>
<a href="/mozilla/geckodriver/releases/download/v0.26.0/geckodriver-v0.26.0-linux64.tar.gz">linux64</a>
<a href="/mozilla/geckodriver/releases/download/v0.26.0/geckodriver-v0.26.0-win64.zip">win64</a>
</body></html>`

	tests := []struct {
		name     string
		tagPage  string
		expanded string
	}{
		{name: "assets on tag page", tagPage: assets},
		{name: "assets in expanded fragment", tagPage: "<html><body>no assets</body></html>", expanded: assets},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("/repos/mozilla/geckodriver/releases/tags/v0.26.0", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
			})
			mux.HandleFunc(geckoPagePath+"tag/v0.26.0", func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tt.tagPage)
			})
			mux.HandleFunc(geckoPagePath+"expanded_assets/v0.26.0", func(w http.ResponseWriter, r *http.Request) {
				if tt.expanded == "" {
					http.NotFound(w, r)
					return
				}
				fmt.Fprint(w, tt.expanded)
			})
			srv := httptest.NewServer(mux)
			defer srv.Close()

			desc, err := newTestGecko(srv, "linux", "64").DownloadURL(context.Background(), "v0.26.0")
			require.NoError(t, err)
			assert.Equal(t, "https://github.com/mozilla/geckodriver/releases/download/v0.26.0/geckodriver-v0.26.0-linux64.tar.gz", desc.URL)
			assert.Equal(t, "geckodriver-v0.26.0-linux64.tar.gz", desc.Filename)
		})
	}
}

func TestGitHubReleases_RateLimitedNotFound(t *testing.T) {
	srv, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/repos/mozilla/geckodriver/releases/tags/v0.26.0" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		fmt.Fprint(w, "<html><body>nothing here</body></html>")
	})

	_, err := newTestGecko(srv, "linux", "64").DownloadURL(context.Background(), "v0.26.0")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestGitHubReleases_UpstreamError(t *testing.T) {
	srv, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := newTestGecko(srv, "linux", "64").LatestVersion(context.Background())

	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusInternalServerError, upstream.StatusCode)
	assert.Contains(t, upstream.Body, "boom")
}

func TestGitHubReleases_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	g := newTestGecko(srv, "linux", "64")
	srv.Close()

	_, err := g.LatestVersion(context.Background())
	require.Error(t, err)
	assert.True(t, IsNetworkError(err))
}

func TestGitHubReleases_CanceledIsNotNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	g := newTestGecko(srv, "linux", "64")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.LatestVersion(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
	assert.False(t, IsNetworkError(err))
}

func TestGitHubReleases_CompatibleNotSupported(t *testing.T) {
	_, err := NewOpera(testOptions("linux", "64")).CompatibleVersion(context.Background())
	assert.True(t, errors.Is(err, ErrNotSupported))
}
