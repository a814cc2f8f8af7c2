//go:build windows

package config

import (
	"os"
)

// isWritableDir probes dir by creating and removing a file; Windows ACLs
// are not reflected in mode bits.
func isWritableDir(dir string) bool {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return false
	}
	f, err := os.CreateTemp(dir, ".wdm-probe-*")
	if err != nil {
		return false
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	return true
}
