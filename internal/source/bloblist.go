package source

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/ZebulonRouseFrantzich/webdrivermanager/internal/version"
)

// maxListingPages bounds marker pagination against a misbehaving server.
const maxListingPages = 100

// listBlobs collects the text of every element named element (compared
// case-insensitively) from an XML bucket listing. Azure and Google Cloud
// Storage both page with a NextMarker element that is sent back as the
// marker query parameter; pages are followed until it is empty.
func (f *fetcher) listBlobs(ctx context.Context, listURL, element string) ([]string, error) {
	var all []string
	marker := ""
	for page := 0; page < maxListingPages; page++ {
		pageURL, err := withMarker(listURL, marker)
		if err != nil {
			return nil, err
		}

		resp, err := f.getOK(ctx, pageURL, nil)
		if err != nil {
			return nil, err
		}

		values, next, err := parseListing(resp.Body, element)
		if err != nil {
			return nil, fmt.Errorf("parse listing %s: %w", pageURL, err)
		}
		all = append(all, values...)

		if next == "" {
			return all, nil
		}
		marker = next
	}
	return nil, fmt.Errorf("listing %s: more than %d pages", listURL, maxListingPages)
}

func withMarker(rawURL, marker string) (string, error) {
	if marker == "" {
		return rawURL, nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse listing url: %w", err)
	}
	q := u.Query()
	q.Set("marker", marker)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// parseListing returns the trimmed text of each element named element and
// the NextMarker value, if any.
func parseListing(body []byte, element string) ([]string, string, error) {
	body = bytes.TrimPrefix(body, []byte("\xef\xbb\xbf"))
	dec := xml.NewDecoder(bytes.NewReader(body))

	var (
		values  []string
		next    string
		text    strings.Builder
		inside  string
		capture bool
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := t.Name.Local
			if strings.EqualFold(name, element) || strings.EqualFold(name, "NextMarker") {
				inside = name
				capture = true
				text.Reset()
			}
		case xml.CharData:
			if capture {
				text.Write(t)
			}
		case xml.EndElement:
			if capture && t.Name.Local == inside {
				value := strings.TrimSpace(text.String())
				if strings.EqualFold(inside, "NextMarker") {
					next = value
				} else if value != "" {
					values = append(values, value)
				}
				capture = false
			}
		}
	}
	return values, next, nil
}

// blobListing is a bucket listing filtered to one driver family, with the
// versions found in it. It is fetched at most once per adapter value and
// shared by LatestVersion and DownloadURL.
type blobListing struct {
	element string
	keep    func(entry string) bool
	extract func(entry string) (string, bool)

	populated bool
	entries   []string
	versions  []version.Tuple
}

// load fetches and filters the listing on first use.
func (b *blobListing) load(ctx context.Context, f *fetcher, listURL string) error {
	if b.populated {
		return nil
	}

	all, err := f.listBlobs(ctx, listURL, b.element)
	if err != nil {
		return err
	}

	seen := make(map[string]bool)
	for _, e := range all {
		if !b.keep(e) {
			continue
		}
		b.entries = append(b.entries, e)

		raw, ok := b.extract(e)
		if !ok || seen[raw] {
			continue
		}
		t, err := version.ParseTuple(raw)
		if err != nil {
			continue
		}
		seen[raw] = true
		b.versions = append(b.versions, t)
	}
	b.populated = true
	return nil
}

func (b *blobListing) latest() (string, error) {
	best := version.Max(b.versions)
	if best == nil {
		return "", fmt.Errorf("no versions in listing: %w", ErrNotFound)
	}
	return best.String(), nil
}
