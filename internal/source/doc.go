// Package source implements version and download discovery for each
// browser driver family.
//
// Every family speaks a different upstream protocol, but all of them are
// exposed through the Adapter interface:
//
//   - GitHub releases (gecko, opera): REST API, with an HTML scrape of the
//     public releases page when the API answers 403 (rate limited)
//   - Chrome for Testing (chrometest): static JSON manifest, gated on the
//     installed Chrome major version
//   - Legacy Chrome (chrome): Google Cloud Storage JSON object listing
//   - Blob listings (edgechromium, ie): paginated XML listings, cached once
//     per adapter value
//   - Legacy Edge (edge): HTML tools page scrape that tolerates page changes
//
// # Usage
//
//	adapter, err := source.New("firefox", source.Options{
//	    DownloadRoot: "/opt/webdriver",
//	    Platform:     info,
//	})
//	if err != nil {
//	    return err
//	}
//	v, err := adapter.LatestVersion(ctx)
//	desc, err := adapter.DownloadURL(ctx, v)
//
// Adapters are not safe for concurrent use.
package source
