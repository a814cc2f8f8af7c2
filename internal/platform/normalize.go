package platform

import (
	"fmt"
	"strings"

	"github.com/shirou/gopsutil/v4/cpu"
)

// osNames maps GOOS values to driver archive OS names.
var osNames = map[string]string{
	"darwin":  OSMac,
	"windows": OSWindows,
	"linux":   OSLinux,
}

// normalizeOS converts a GOOS value to a driver archive OS name.
func normalizeOS(goos string) (string, error) {
	if name, ok := osNames[strings.ToLower(strings.TrimSpace(goos))]; ok {
		return name, nil
	}
	return "", fmt.Errorf("unsupported operating system: %s", goos)
}

// bitnessFromWordSize maps the native int size to a bitness token.
func bitnessFromWordSize(size int) string {
	if size == 64 {
		return Bitness64
	}
	return Bitness32
}

// processorName returns the first non-empty model name reported by gopsutil.
func processorName(stats []cpu.InfoStat) string {
	for _, s := range stats {
		if name := strings.TrimSpace(s.ModelName); name != "" {
			return name
		}
	}
	return ""
}

// ValidateOS reports an error for OS overrides outside SupportedOS.
func ValidateOS(name string) error {
	for _, s := range SupportedOS {
		if name == s {
			return nil
		}
	}
	return fmt.Errorf("invalid os %q (valid: %s)", name, strings.Join(SupportedOS, ", "))
}

// ValidateBitness reports an error for bitness overrides outside SupportedBitness.
func ValidateBitness(bitness string) error {
	for _, s := range SupportedBitness {
		if bitness == s {
			return nil
		}
	}
	return fmt.Errorf("invalid bitness %q (valid: %s)", bitness, strings.Join(SupportedBitness, ", "))
}
