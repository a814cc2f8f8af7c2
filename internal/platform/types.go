// Package platform detects the operating system, bitness, and processor
// that driver downloads are matched against.
//
// OS names follow the convention used by the upstream driver archives
// ("mac", "win", "linux"), not GOOS. The processor model name is read with
// gopsutil because GOARCH cannot tell an Apple silicon Mac apart from an
// amd64 binary running under Rosetta.
package platform

import (
	"context"
	"strings"
)

// OS name constants, as used in driver archive names.
const (
	OSMac     = "mac"
	OSWindows = "win"
	OSLinux   = "linux"
)

// Bitness constants.
const (
	Bitness32 = "32"
	Bitness64 = "64"
)

// SupportedOS lists the accepted values for OS overrides.
var SupportedOS = []string{OSMac, OSWindows, OSLinux}

// SupportedBitness lists the accepted values for bitness overrides.
var SupportedBitness = []string{Bitness32, Bitness64}

// Info contains platform detection information.
type Info struct {
	OS            string // "mac", "win", "linux"
	Bitness       string // "32", "64"
	Arch          string // GOARCH of the running binary
	ProcessorName string // CPU model name, empty when unknown
}

// IsMac returns true if the platform is macOS.
func (i *Info) IsMac() bool {
	return i.OS == OSMac
}

// IsWindows returns true if the platform is Windows.
func (i *Info) IsWindows() bool {
	return i.OS == OSWindows
}

// IsLinux returns true if the platform is Linux.
func (i *Info) IsLinux() bool {
	return i.OS == OSLinux
}

// IsPOSIX reports whether drivers are linked with symlinks rather than copied.
func (i *Info) IsPOSIX() bool {
	return i.OS == OSMac || i.OS == OSLinux
}

// IsAppleSilicon reports whether this is an arm64 Mac. The processor name
// wins over Arch; Arch is only consulted when the name is unknown.
func (i *Info) IsAppleSilicon() bool {
	if !i.IsMac() {
		return false
	}
	if i.ProcessorName != "" {
		name := strings.ToLower(i.ProcessorName)
		return strings.Contains(name, "apple") || strings.Contains(name, "arm")
	}
	return i.Arch == "arm64"
}

// WithOverrides returns a copy of i with non-empty OS and bitness overrides applied.
func (i Info) WithOverrides(osName, bitness string) *Info {
	if osName != "" {
		i.OS = osName
	}
	if bitness != "" {
		i.Bitness = bitness
	}
	return &i
}

// Detector is the interface for platform detection.
type Detector interface {
	Detect(ctx context.Context) (*Info, error)
}

// StaticDetector returns a fixed Info. Used for explicit overrides and tests.
type StaticDetector struct {
	Info *Info
	Err  error
}

// Detect returns the configured info and error.
func (s *StaticDetector) Detect(ctx context.Context) (*Info, error) {
	return s.Info, s.Err
}
