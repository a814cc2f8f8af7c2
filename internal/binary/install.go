package binary

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ZebulonRouseFrantzich/webdrivermanager/internal/logger"
	"github.com/ZebulonRouseFrantzich/webdrivermanager/internal/platform"
)

// Installer unpacks downloaded archives and links the driver executable.
type Installer struct {
	platform  *platform.Info
	extractor *Extractor
	log       logger.Logger
}

// NewInstaller creates an installer. The linking policy follows info.OS.
func NewInstaller(info *platform.Info, log logger.Logger) *Installer {
	return &Installer{
		platform:  info,
		extractor: NewExtractor(),
		log:       logger.OrNop(log),
	}
}

// Install extracts archivePath under destDir, locates the first file named
// in driverFilenames and links it into linkDir. An empty linkDir skips
// linking.
//
// A nil result with a nil error means the archive was extracted but held
// no accepted driver file.
func (i *Installer) Install(archivePath, destDir string, driverFilenames []string, linkDir string) (*InstallResult, error) {
	if len(driverFilenames) == 0 {
		return nil, fmt.Errorf("no driver filename for %s", i.platform.OS)
	}

	filename := filepath.Base(archivePath)
	kind, stem, err := ArchiveKindOf(filename)
	if err != nil {
		return nil, err
	}

	extractDir := filepath.Join(destDir, stem)
	if dirExists(extractDir) {
		i.log.Debug("Archive already extracted", "dir", extractDir)
	} else if err := i.extract(kind, archivePath, extractDir); err != nil {
		return nil, err
	}

	binaryPath, err := findDriver(extractDir, driverFilenames)
	if err != nil {
		return nil, fmt.Errorf("locate driver: %w", err)
	}
	if binaryPath == "" {
		i.log.Warn("Cannot locate driver binary in archive", "archive", filename, "names", driverFilenames)
		return nil, nil
	}

	if linkDir == "" {
		return &InstallResult{BinaryPath: binaryPath}, nil
	}

	if i.platform.IsPOSIX() {
		return i.symlink(binaryPath, filepath.Join(linkDir, filepath.Base(binaryPath)))
	}
	return i.copyToLinkDir(binaryPath, filepath.Join(linkDir, filepath.Base(binaryPath)))
}

// extract unpacks into a sibling temporary directory that is renamed into
// place, so a crash never leaves a partial extraction directory behind.
func (i *Installer) extract(kind ArchiveKind, archivePath, extractDir string) error {
	parent := filepath.Dir(extractDir)
	if err := os.MkdirAll(parent, 0755); err != nil {
		return fmt.Errorf("create extract parent: %w", err)
	}

	tmpDir, err := os.MkdirTemp(parent, filepath.Base(extractDir)+".*.partial")
	if err != nil {
		return fmt.Errorf("create extract dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	if err := i.extractor.Extract(kind, archivePath, tmpDir); err != nil {
		return fmt.Errorf("extract %s: %w", filepath.Base(archivePath), err)
	}
	if err := os.Rename(tmpDir, extractDir); err != nil {
		return fmt.Errorf("rename extract dir: %w", err)
	}
	i.log.Debug("Extracted archive", "archive", archivePath, "dir", extractDir)
	return nil
}

// symlink points link at binaryPath. An existing entry that already
// resolves to binaryPath is left untouched.
func (i *Installer) symlink(binaryPath, link string) (*InstallResult, error) {
	result := &InstallResult{BinaryPath: binaryPath, LinkPath: link}

	if _, err := os.Lstat(link); err == nil {
		if sameFile(binaryPath, link) {
			i.log.Info("Symlink already exists", "link", link, "target", binaryPath)
			if err := addExecute(binaryPath); err != nil {
				return nil, err
			}
			return result, nil
		}

		i.log.Warn("Symlink target already exists and will be overwritten", "link", link)
		if err := os.Remove(link); err != nil {
			return nil, fmt.Errorf("remove existing link: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("stat link: %w", err)
	}

	if err := os.Symlink(binaryPath, link); err != nil {
		return nil, fmt.Errorf("create symlink: %w", err)
	}
	i.log.Info("Created symlink", "link", link, "target", binaryPath)

	if err := addExecute(binaryPath); err != nil {
		return nil, err
	}
	return result, nil
}

// copyToLinkDir copies binaryPath to dest, replacing any existing file.
func (i *Installer) copyToLinkDir(binaryPath, dest string) (*InstallResult, error) {
	if fileExists(dest) {
		i.log.Info("File already exists and will be overwritten", "path", dest)
	}
	if err := copyFile(binaryPath, dest); err != nil {
		return nil, fmt.Errorf("copy driver: %w", err)
	}
	if err := addExecute(dest); err != nil {
		return nil, err
	}
	i.log.Info("Copied driver", "path", dest)
	return &InstallResult{BinaryPath: binaryPath, LinkPath: dest}, nil
}

func sameFile(a, b string) bool {
	ai, err := os.Stat(a)
	if err != nil {
		return false
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ai, bi)
}

// findDriver walks root and returns the first regular file whose name is
// one of names, or "" when there is none.
func findDriver(root string, names []string) (string, error) {
	accepted := make(map[string]bool, len(names))
	for _, n := range names {
		accepted[n] = true
	}

	var match string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if accepted[d.Name()] {
			match = path
			return io.EOF
		}
		return nil
	})
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return match, nil
}
