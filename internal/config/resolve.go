package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZebulonRouseFrantzich/webdrivermanager/internal/logger"
	"github.com/ZebulonRouseFrantzich/webdrivermanager/internal/platform"
)

// Settings are the resolved values the CLI runs with.
type Settings struct {
	// Effective is the merged configuration before link path resolution.
	Effective *Config

	DownloadRoot string
	LinkDir      string // empty when linking is skipped
	OS           string // override, empty to detect
	Bitness      string // override, empty to detect
	ShowProgress bool
	GitHubToken  string

	// ConfigFile is the file that was loaded, empty when none was.
	ConfigFile string
}

// Resolver merges defaults, environment, config file and flags.
type Resolver struct {
	parser *Parser
	getenv func(string) string
	euid   int
	log    logger.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithGetenv replaces os.Getenv.
func WithGetenv(getenv func(string) string) ResolverOption {
	return func(r *Resolver) { r.getenv = getenv }
}

// WithEUID replaces the effective user id used for root defaults.
func WithEUID(euid int) ResolverOption {
	return func(r *Resolver) { r.euid = euid }
}

// WithResolverLogger sets the logger.
func WithResolverLogger(l logger.Logger) ResolverOption {
	return func(r *Resolver) { r.log = logger.OrNop(l) }
}

// NewResolver creates a Resolver that reads config files with parser.
func NewResolver(parser *Parser, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		parser: parser,
		getenv: os.Getenv,
		euid:   os.Geteuid(),
		log:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve builds Settings for a host running hostOS. An explicit configPath
// must exist; otherwise DefaultConfigPath is loaded when present.
func (r *Resolver) Resolve(ctx context.Context, hostOS, configPath string, flags *Config) (*Settings, error) {
	defaults := r.Defaults(hostOS)

	fileCfg, loaded, err := r.loadFile(ctx, hostOS, configPath)
	if err != nil {
		return nil, err
	}

	merged := defaults.Merge(FromEnv(r.getenv)).Merge(fileCfg).Merge(flags)
	if err := merged.Validate(); err != nil {
		return nil, err
	}

	linkDir := ResolveLinkPath(merged.LinkPath, defaults.LinkPath, r.getenv("PATH"))
	if merged.LinkPath == LinkPathAuto && r.isRoot(hostOS) {
		linkDir = rootLinkDir
	}

	settings := &Settings{
		Effective:    merged,
		DownloadRoot: expandHome(merged.DownloadRoot, r.getenv),
		LinkDir:      expandHome(linkDir, r.getenv),
		OS:           merged.OS,
		Bitness:      merged.Bitness,
		ShowProgress: merged.ShowProgress == nil || *merged.ShowProgress,
		GitHubToken:  merged.GitHubToken,
		ConfigFile:   loaded,
	}

	r.log.Debug("Resolved settings",
		"download_root", settings.DownloadRoot,
		"link_dir", settings.LinkDir,
		"config_file", settings.ConfigFile)

	return settings, nil
}

func (r *Resolver) loadFile(ctx context.Context, hostOS, configPath string) (*Config, string, error) {
	path := configPath
	if path == "" {
		path = DefaultConfigPath(hostOS, r.getenv)
		if path == "" {
			return nil, "", nil
		}
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return nil, "", nil
		}
	}

	cfg, err := r.parser.ParseFile(ctx, path)
	if err != nil {
		return nil, "", fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, path, nil
}

func (r *Resolver) isRoot(hostOS string) bool {
	return hostOS != platform.OSWindows && r.euid == 0
}

// Defaults returns the lowest layer. root on mac and linux installs into
// /usr/local; everyone else gets a per-user data directory.
func (r *Resolver) Defaults(hostOS string) *Config {
	if r.isRoot(hostOS) {
		return &Config{DownloadRoot: rootDataDir, LinkPath: rootLinkDir}
	}
	root := filepath.Join(userDataDir(hostOS, r.getenv), appDirName)
	return &Config{DownloadRoot: root, LinkPath: filepath.Join(root, "bin")}
}

// FromEnv reads the environment layer.
func FromEnv(getenv func(string) string) *Config {
	return &Config{
		DownloadRoot: strings.TrimSpace(getenv(EnvDownloadRoot)),
		LinkPath:     strings.TrimSpace(getenv(EnvLinkPath)),
		GitHubToken:  strings.TrimSpace(getenv(EnvGitHubToken)),
	}
}

// ResolveLinkPath turns a link path setting into a directory. SKIP yields
// "", AUTO yields the first writable directory in pathList or fallback when
// there is none, and anything else is returned unchanged.
func ResolveLinkPath(linkPath, fallback, pathList string) string {
	switch linkPath {
	case LinkPathSkip:
		return ""
	case LinkPathAuto:
		if dir := firstWritableDir(pathList); dir != "" {
			return dir
		}
		return fallback
	case "":
		return fallback
	default:
		return linkPath
	}
}

func firstWritableDir(pathList string) string {
	for _, dir := range filepath.SplitList(pathList) {
		if dir == "" {
			continue
		}
		if isWritableDir(dir) {
			return dir
		}
	}
	return ""
}

// DefaultConfigPath returns where the config file is looked for when
// --config is not given.
func DefaultConfigPath(hostOS string, getenv func(string) string) string {
	var base string
	switch {
	case hostOS == platform.OSWindows:
		base = getenv("APPDATA")
	case getenv("XDG_CONFIG_HOME") != "":
		base = getenv("XDG_CONFIG_HOME")
	case getenv("HOME") != "":
		base = filepath.Join(getenv("HOME"), ".config")
	}
	if base == "" {
		return ""
	}
	return filepath.Join(base, configDirName, configFile)
}

func userDataDir(hostOS string, getenv func(string) string) string {
	home := getenv("HOME")
	switch hostOS {
	case platform.OSWindows:
		if dir := getenv("LOCALAPPDATA"); dir != "" {
			return dir
		}
		return filepath.Join(getenv("USERPROFILE"), "AppData", "Local")
	case platform.OSMac:
		return filepath.Join(home, "Library", "Application Support")
	default:
		if dir := getenv("XDG_DATA_HOME"); dir != "" {
			return dir
		}
		return filepath.Join(home, ".local", "share")
	}
}

func expandHome(path string, getenv func(string) string) string {
	if path == "~" {
		return getenv("HOME")
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(getenv("HOME"), path[2:])
	}
	return path
}
