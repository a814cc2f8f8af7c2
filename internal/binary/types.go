package binary

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnexpectedStatus is wrapped by download errors caused by a non-200 response.
var ErrUnexpectedStatus = errors.New("unexpected status code")

// DownloadInfo identifies one archive to fetch.
type DownloadInfo struct {
	URL      string
	Filename string // name of the file written into the destination directory
}

// InstallResult is the outcome of a successful install.
type InstallResult struct {
	// Version is the resolved driver version. Set by the caller that
	// resolved it; the installer itself leaves it empty.
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
	// BinaryPath is the driver executable inside the extraction directory.
	BinaryPath string `json:"binary_path" yaml:"binary_path"`
	// LinkPath is the symlink or copy in the link directory. Empty when
	// linking was skipped.
	LinkPath string `json:"link_path,omitempty" yaml:"link_path,omitempty"`
}

// ArchiveKind is how an archive is unpacked.
type ArchiveKind int

const (
	// ArchiveTarGz is a gzip-compressed tarball.
	ArchiveTarGz ArchiveKind = iota
	// ArchiveZip is a zip file.
	ArchiveZip
	// ArchiveExe is a bare executable that is copied, not extracted.
	ArchiveExe
)

// String returns the suffix of the archive kind.
func (k ArchiveKind) String() string {
	switch k {
	case ArchiveTarGz:
		return ".tar.gz"
	case ArchiveZip:
		return ".zip"
	case ArchiveExe:
		return ".exe"
	default:
		return "unknown"
	}
}

var archiveKinds = []ArchiveKind{ArchiveTarGz, ArchiveZip, ArchiveExe}

// UnknownArchiveError is returned for a filename with no recognised suffix.
type UnknownArchiveError struct {
	Filename string
}

func (e *UnknownArchiveError) Error() string {
	return fmt.Sprintf("unknown archive format: %s", e.Filename)
}

// ArchiveKindOf returns the archive kind for filename, compared
// case-insensitively, and the filename with the suffix removed.
func ArchiveKindOf(filename string) (ArchiveKind, string, error) {
	lower := strings.ToLower(filename)
	for _, k := range archiveKinds {
		suffix := k.String()
		if strings.HasSuffix(lower, suffix) && len(filename) > len(suffix) {
			return k, filename[:len(filename)-len(suffix)], nil
		}
	}
	return 0, "", &UnknownArchiveError{Filename: filename}
}
