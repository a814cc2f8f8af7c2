// Package shell detects the user's shell and renders the line that puts a
// directory on its PATH.
//
// The CLI uses it after linking a driver into a directory that is not on
// PATH, so the warning comes with something the user can paste.
//
// # Shell Detection
//
// Detection tries, in order:
//  1. $SHELL environment variable (most reliable)
//  2. Name of the parent process
//
// When neither names a supported shell the result is ShellUnknown and no
// hint is printed.
//
// # Supported Shells
//
//   - bash: export line appended to ~/.bashrc
//   - zsh: export line appended to ~/.zshrc
//   - fish: fish_add_path in ~/.config/fish/config.fish
//   - PowerShell: $env:Path assignment in $PROFILE
package shell
