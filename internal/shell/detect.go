package shell

import (
	"context"
	"os"
	"strings"

	"github.com/shirou/gopsutil/v4/process"
)

// Detector finds the user's shell.
type Detector struct {
	getenv     func(string) string
	parentName func(ctx context.Context) (string, error)
}

// NewDetector returns a Detector that reads $SHELL through getenv and
// falls back to the process table. A nil getenv means os.Getenv.
func NewDetector(getenv func(string) string) *Detector {
	if getenv == nil {
		getenv = os.Getenv
	}
	return &Detector{getenv: getenv, parentName: parentProcessName}
}

// Detect detects the user's shell using multiple methods
func (d *Detector) Detect(ctx context.Context) *DetectionResult {
	// Method 1: $SHELL environment variable (most reliable)
	if shell := d.getenv("SHELL"); shell != "" {
		shellType := parseShellFromPath(shell)
		if shellType.IsValid() {
			return &DetectionResult{
				Shell:      shellType,
				Method:     "$SHELL environment variable",
				ShellPath:  shell,
				Confidence: "high",
			}
		}
	}

	// Method 2: parent process
	if d.parentName != nil {
		if name, err := d.parentName(ctx); err == nil {
			if shellType := parseShellFromPath(name); shellType.IsValid() {
				return &DetectionResult{
					Shell:      shellType,
					Method:     "parent process",
					ShellPath:  name,
					Confidence: "medium",
				}
			}
		}
	}

	return &DetectionResult{
		Shell:      ShellUnknown,
		Method:     "detection failed",
		Confidence: "none",
	}
}

// parseShellFromPath extracts the shell type from a shell binary path
// Examples:
//   - /bin/bash -> bash
//   - /usr/bin/zsh -> zsh
//   - C:\...\pwsh.exe -> powershell
func parseShellFromPath(shellPath string) ShellType {
	// windows paths are handled on every host
	baseName := shellPath
	if i := strings.LastIndexAny(baseName, `/\`); i >= 0 {
		baseName = baseName[i+1:]
	}
	baseName = strings.TrimSuffix(strings.ToLower(baseName), ".exe")
	baseName = strings.TrimPrefix(baseName, "-") // login shells

	switch baseName {
	case "bash":
		return ShellBash
	case "zsh":
		return ShellZsh
	case "fish":
		return ShellFish
	case "pwsh", "powershell":
		return ShellPowerShell
	default:
		return ShellUnknown
	}
}

func parentProcessName(ctx context.Context) (string, error) {
	p, err := process.NewProcessWithContext(ctx, int32(os.Getppid()))
	if err != nil {
		return "", err
	}
	return p.NameWithContext(ctx)
}

// PathHintFor returns how to add dir to PATH in shell. ok is false for
// unsupported shells.
func PathHintFor(shell ShellType, dir string) (hint PathHint, ok bool) {
	switch shell {
	case ShellBash:
		return PathHint{Shell: shell, RCFile: "~/.bashrc", Line: exportLine(dir)}, true
	case ShellZsh:
		return PathHint{Shell: shell, RCFile: "~/.zshrc", Line: exportLine(dir)}, true
	case ShellFish:
		return PathHint{
			Shell:  shell,
			RCFile: "~/.config/fish/config.fish",
			Line:   "fish_add_path " + quoteDouble(dir),
		}, true
	case ShellPowerShell:
		return PathHint{
			Shell:  shell,
			RCFile: "$PROFILE",
			Line:   `$env:Path = "` + dir + `;" + $env:Path`,
		}, true
	default:
		return PathHint{}, false
	}
}

func exportLine(dir string) string {
	return `export PATH=` + quoteDouble(dir) + `:"$PATH"`
}

func quoteDouble(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, `$`, `\$`, "`", "\\`")
	return `"` + r.Replace(s) + `"`
}
