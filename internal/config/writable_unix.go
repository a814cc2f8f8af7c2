//go:build !windows

package config

import (
	"os"

	"golang.org/x/sys/unix"
)

// isWritableDir reports whether dir is a directory the current user may
// create entries in.
func isWritableDir(dir string) bool {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return false
	}
	return unix.Access(dir, unix.W_OK|unix.X_OK) == nil
}
