package config

import (
	"fmt"
	"strings"

	"github.com/ZebulonRouseFrantzich/webdrivermanager/internal/platform"
)

// Config is one layer of settings. Empty fields are unset and fall through
// to the next lower layer when layers are merged.
type Config struct {
	// Directory that receives <family>/<version>/ download trees
	DownloadRoot string `json:"download_root,omitempty" yaml:"download_root,omitempty"`

	// Directory for the driver link, or LinkPathAuto / LinkPathSkip
	LinkPath string `json:"link_path,omitempty" yaml:"link_path,omitempty"`

	// Platform overrides
	OS      string `json:"os,omitempty" yaml:"os,omitempty"`
	Bitness string `json:"bitness,omitempty" yaml:"bitness,omitempty"`

	// nil means unset; the resolved default is true
	ShowProgress *bool `json:"show_progress,omitempty" yaml:"show_progress,omitempty"`

	GitHubToken string `json:"-" yaml:"-"`
}

// Merge returns a copy of c with every field set in over replacing c's value.
func (c Config) Merge(over *Config) *Config {
	if over == nil {
		return &c
	}
	if over.DownloadRoot != "" {
		c.DownloadRoot = over.DownloadRoot
	}
	if over.LinkPath != "" {
		c.LinkPath = over.LinkPath
	}
	if over.OS != "" {
		c.OS = over.OS
	}
	if over.Bitness != "" {
		c.Bitness = over.Bitness
	}
	if over.ShowProgress != nil {
		v := *over.ShowProgress
		c.ShowProgress = &v
	}
	if over.GitHubToken != "" {
		c.GitHubToken = over.GitHubToken
	}
	return &c
}

// Validate checks the values that can be wrong without touching the filesystem.
func (c *Config) Validate() error {
	if c.OS != "" {
		if err := platform.ValidateOS(c.OS); err != nil {
			return &ValidationError{Field: luaFieldOS, Message: err.Error()}
		}
	}

	if c.Bitness != "" {
		if err := platform.ValidateBitness(c.Bitness); err != nil {
			return &ValidationError{Field: luaFieldBitness, Message: err.Error()}
		}
	}

	if err := validateDirPath(c.DownloadRoot); err != nil {
		return &ValidationError{Field: luaFieldDownloadRoot, Message: err.Error()}
	}

	if c.LinkPath != LinkPathAuto && c.LinkPath != LinkPathSkip {
		if err := validateDirPath(c.LinkPath); err != nil {
			return &ValidationError{Field: luaFieldLinkPath, Message: err.Error()}
		}
	}

	if strings.ContainsAny(c.GitHubToken, " \t\r\n") {
		return &ValidationError{Field: luaFieldGitHubToken, Message: "token must not contain whitespace"}
	}

	return nil
}

// ValidationError represents a config validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return "config validation failed for " + e.Field + ": " + e.Message
	}
	return "config validation failed: " + e.Message
}

// validateDirPath rejects directory values the OS would refuse. Empty is
// allowed and means unset.
func validateDirPath(path string) error {
	if path == "" {
		return nil
	}

	if strings.ContainsRune(path, 0) {
		return fmt.Errorf("path contains NUL byte")
	}

	if len(path) > 4096 {
		return fmt.Errorf("path too long (%d chars, max 4096)", len(path))
	}

	if strings.TrimSpace(path) != path {
		return fmt.Errorf("path has leading or trailing whitespace: %q", path)
	}

	return nil
}
