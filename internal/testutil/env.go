// Package testutil provides helpers for running webdrivermanager tests in
// isolation from the developer's machine.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// Env holds the directories created by SetupTestEnv.
type Env struct {
	Root       string
	Home       string
	ConfigHome string
	DataHome   string
	CacheHome  string
}

// SetupTestEnv points HOME and the XDG base directories at a fresh temp
// tree and clears the WDM_* and GITHUB_TOKEN variables, so tests never read
// the user's config file or write into their download root.
//
// Cleanup is handled by t.TempDir and t.Setenv.
func SetupTestEnv(t *testing.T) *Env {
	t.Helper()

	tmpDir := t.TempDir()
	env := &Env{
		Root:       tmpDir,
		Home:       filepath.Join(tmpDir, "home"),
		ConfigHome: filepath.Join(tmpDir, "config"),
		DataHome:   filepath.Join(tmpDir, "data"),
		CacheHome:  filepath.Join(tmpDir, "cache"),
	}

	t.Setenv("HOME", env.Home)
	t.Setenv("XDG_CONFIG_HOME", env.ConfigHome)
	t.Setenv("XDG_DATA_HOME", env.DataHome)
	t.Setenv("XDG_CACHE_HOME", env.CacheHome)

	for _, name := range []string{"WDM_DOWNLOAD_ROOT", "WDM_LINK_PATH", "GITHUB_TOKEN"} {
		t.Setenv(name, "")
	}

	for _, dir := range []string{env.Home, env.ConfigHome, env.DataHome, env.CacheHome} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			t.Fatalf("failed to create test directory %s: %v", dir, err)
		}
	}

	return env
}
