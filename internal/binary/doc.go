// Package binary downloads driver archives and installs the driver
// executable found inside them.
//
// # Download
//
// Downloader fetches an archive into a version directory. A non-empty file
// with the expected name is treated as already downloaded and no request is
// made. New downloads are streamed to a temporary file in 1024-byte chunks
// and renamed into place, so an interrupted transfer never leaves a file
// that looks complete.
//
// # Install
//
// Installer unpacks the archive into a directory named after it, walks that
// directory for an accepted driver filename and links the result into a
// directory on PATH:
//   - mac, linux: a symbolic link, left untouched when it already points at
//     the same file
//   - win: a copy, overwritten on every install
//
// # Usage
//
//	d := binary.NewDownloader()
//	archive, err := d.Download(ctx, binary.DownloadInfo{
//	    URL:      "https://github.com/mozilla/geckodriver/releases/download/v0.34.0/geckodriver-v0.34.0-linux64.tar.gz",
//	    Filename: "geckodriver-v0.34.0-linux64.tar.gz",
//	}, "/opt/webdriver/gecko/v0.34.0", true)
//	if err != nil {
//	    return err
//	}
//
//	inst := binary.NewInstaller(platformInfo, log)
//	result, err := inst.Install(archive, "/opt/webdriver/gecko/v0.34.0",
//	    []string{"geckodriver"}, "/usr/local/bin")
//
// # Archive Formats
//
// The archive kind is taken from the filename suffix: .tar.gz, .zip, or
// .exe. An .exe is a bare driver and is copied rather than extracted. Any
// other suffix is an UnknownArchiveError.
package binary
