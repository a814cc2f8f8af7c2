package source

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/ZebulonRouseFrantzich/webdrivermanager/internal/version"
)

var (
	// ErrNotSupported signals that a family has no compatible-version mapping.
	ErrNotSupported = version.ErrNotSupported
	// ErrNotFound signals that upstream data did not contain what was asked for.
	ErrNotFound = errors.New("not found upstream")
	// ErrUnknownBrowser is returned by New for unregistered family names.
	ErrUnknownBrowser = errors.New("unknown browser")
)

// maxErrorBody caps how much of a response body is kept in an UpstreamError.
const maxErrorBody = 512

// UpstreamError is a non-2xx response with no fallback path.
type UpstreamError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody] + "..."
	}
	if body == "" {
		return fmt.Sprintf("GET %s: unexpected status code %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("GET %s: unexpected status code %d: %s", e.URL, e.StatusCode, body)
}

// AmbiguousMatchError means OS/bitness filtering did not leave exactly one
// candidate. Zero candidates is reported the same way.
type AmbiguousMatchError struct {
	OS         string
	Bitness    string
	Candidates []string
}

func (e *AmbiguousMatchError) Error() string {
	if len(e.Candidates) == 0 {
		return fmt.Sprintf("unable to find a download for %sbit %s", e.Bitness, e.OS)
	}
	return fmt.Sprintf("unable to determine correct download for %sbit %s: %d candidates (%s)",
		e.Bitness, e.OS, len(e.Candidates), strings.Join(e.Candidates, ", "))
}

// IncompatibleBrowserError means the installed browser's major version does
// not match the driver release being resolved.
type IncompatibleBrowserError struct {
	BrowserMajor  int
	DriverVersion string
}

func (e *IncompatibleBrowserError) Error() string {
	return fmt.Sprintf("installed browser major version %d does not match driver version %s",
		e.BrowserMajor, e.DriverVersion)
}

// IsNetworkError reports whether err is a connectivity failure rather than
// an upstream response. Cancellation, deadlines and malformed URLs are not.
func IsNetworkError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Op != "parse"
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
