package config

// Lua schema field names and globals
const (
	luaGlobalConfig      = "webdrivermanager"
	luaFieldDownloadRoot = "download_root"
	luaFieldLinkPath     = "link_path"
	luaFieldOS           = "os"
	luaFieldBitness      = "bitness"
	luaFieldShowProgress = "show_progress"
	luaFieldGitHubToken  = "github_token"
)

// Symbolic link path values.
const (
	LinkPathAuto = "AUTO"
	LinkPathSkip = "SKIP"
)

// Environment variables consulted by FromEnv.
const (
	EnvDownloadRoot = "WDM_DOWNLOAD_ROOT"
	EnvLinkPath     = "WDM_LINK_PATH"
	EnvGitHubToken  = "GITHUB_TOKEN"
)

// Resource limits for the Lua VM.
const (
	MaxConfigSize    = 10 * 1024 * 1024
	luaCallStackSize = 256
	luaRegistrySize  = 8 * 1024
)

const (
	appDirName    = "WebDriverManager"
	configDirName = "webdrivermanager"
	configFile    = "config.lua"
	rootDataDir   = "/usr/local/webdriver"
	rootLinkDir   = "/usr/local/bin"
)
