package shell

import "fmt"

// ShellType represents a supported shell
type ShellType string

const (
	// ShellBash represents the Bash shell
	ShellBash ShellType = "bash"
	// ShellZsh represents the Z shell
	ShellZsh ShellType = "zsh"
	// ShellFish represents the Fish shell
	ShellFish ShellType = "fish"
	// ShellPowerShell covers both Windows PowerShell and pwsh
	ShellPowerShell ShellType = "powershell"
	// ShellUnknown represents an unknown or unsupported shell
	ShellUnknown ShellType = "unknown"
)

// String returns the string representation of the shell type
func (s ShellType) String() string {
	return string(s)
}

// IsValid returns true if the shell type is supported
func (s ShellType) IsValid() bool {
	switch s {
	case ShellBash, ShellZsh, ShellFish, ShellPowerShell:
		return true
	default:
		return false
	}
}

// DetectionResult contains the result of shell detection
type DetectionResult struct {
	// Shell is the detected shell type
	Shell ShellType
	// Method describes how the shell was detected
	Method string
	// ShellPath is the filesystem path or process name of the shell
	ShellPath string
	// Confidence is the confidence level (high, medium, none)
	Confidence string
}

// PathHint tells the user how to put a directory on PATH.
type PathHint struct {
	Shell ShellType
	// RCFile is where Line belongs, "~"-relative where possible
	RCFile string
	// Line is the statement to add
	Line string
}

// String renders the hint as a one-line shell command.
func (h PathHint) String() string {
	if h.Shell == ShellPowerShell {
		return fmt.Sprintf("Add-Content -Path %s -Value '%s'", h.RCFile, h.Line)
	}
	return fmt.Sprintf("echo '%s' >> %s", h.Line, h.RCFile)
}
