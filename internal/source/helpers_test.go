package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/ZebulonRouseFrantzich/webdrivermanager/internal/platform"
	"github.com/ZebulonRouseFrantzich/webdrivermanager/internal/probe"
)

func testOptions(osName, bitness string) Options {
	return Options{
		DownloadRoot: "/tmp/wdm",
		Platform:     &platform.Info{OS: osName, Bitness: bitness},
	}
}

type fakeProber struct {
	version probe.BrowserVersion
	err     error
}

func (f *fakeProber) Version(ctx context.Context) (probe.BrowserVersion, error) {
	return f.version, f.err
}

// countingServer starts an httptest server and counts the requests it serves.
func countingServer(t *testing.T, h http.HandlerFunc) (*httptest.Server, *int64) {
	t.Helper()
	var count int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&count, 1)
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &count
}
