// Package config loads the optional webdrivermanager Lua configuration file
// and resolves it, together with environment variables and CLI flags, into
// the settings the CLI runs with.
//
// # Configuration File
//
// The file is plain Lua executed in a restricted gopher-lua VM. It must
// assign a global "webdrivermanager" table:
//
//	webdrivermanager = {
//	  download_root = "/opt/webdriver",
//	  link_path     = "AUTO",   -- "SKIP", or a directory
//	  os            = platform.os,
//	  bitness       = platform.when(platform.is_windows, "32"),
//	  show_progress = true,
//	}
//
// A read-only "platform" table describing the detected host is injected
// before the file runs.
//
// # Sandboxing
//
// User Lua code cannot:
//   - execute commands or exit the process (os library removed)
//   - touch the filesystem (io library removed)
//   - load other code (require, dofile, loadfile, load, loadstring)
//   - reach the debug library
//
// The string, table, and math libraries stay available. Files larger than
// MaxConfigSize are rejected before they reach the VM, and parsing honours
// the caller's context deadline.
//
// # Precedence
//
// Resolve merges layers from lowest to highest priority:
//
//	defaults < environment (WDM_*, GITHUB_TOKEN) < config file < flags
//
// LinkPath keeps its symbolic values ("AUTO", "SKIP") until ResolveLinkPath
// turns them into a concrete directory or "no link".
//
// # Security
//
// Hardcoded GitHub tokens in the file are reported by DetectSensitiveData so
// the CLI can warn about them. Prefer the GITHUB_TOKEN environment variable.
package config
