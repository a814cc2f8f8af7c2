package config

import (
	"fmt"
	"regexp"
	"strings"
)

// SensitivePattern represents a pattern that might indicate sensitive data
type SensitivePattern struct {
	Name        string
	Pattern     *regexp.Regexp
	Description string
}

var sensitivePatterns = []SensitivePattern{
	{
		Name:        "GitHub Token Field",
		Pattern:     regexp.MustCompile(`(?i)github[_-]?token\s*=\s*['"][^'"]+['"]`),
		Description: "Hardcoded github_token value",
	},
	{
		Name:        "GitHub Token",
		Pattern:     regexp.MustCompile(`gh[pousr]_[a-zA-Z0-9]{36,}`),
		Description: "Potential GitHub token detected",
	},
	{
		Name:        "GitHub Fine-Grained Token",
		Pattern:     regexp.MustCompile(`github_pat_[a-zA-Z0-9_]{22,}`),
		Description: "Potential GitHub fine-grained token detected",
	},
}

// SensitiveDataFinding represents a detected sensitive data instance
type SensitiveDataFinding struct {
	PatternName string
	Description string
	Line        int
	Preview     string // Redacted preview of the match
}

// DetectSensitiveData scans configuration content for potential sensitive
// data. Each line reports at most one finding; Lua comment lines are skipped.
func DetectSensitiveData(content string) []SensitiveDataFinding {
	var findings []SensitiveDataFinding
	lines := strings.Split(content, "\n")

	for lineNum, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		for _, pattern := range sensitivePatterns {
			if pattern.Pattern.MatchString(line) {
				findings = append(findings, SensitiveDataFinding{
					PatternName: pattern.Name,
					Description: pattern.Description,
					Line:        lineNum + 1, // 1-based line numbers
					Preview:     redactSensitiveValue(line),
				})
				break
			}
		}
	}

	return findings
}

// redactSensitiveValue creates a redacted preview of a line with sensitive data
func redactSensitiveValue(line string) string {
	eqIdx := strings.Index(line, "=")
	if eqIdx == -1 {
		line = strings.TrimSpace(line)
		if len(line) > 12 {
			return line[:12] + "... [REDACTED]"
		}
		return "[REDACTED]"
	}

	keyPart := strings.TrimSpace(line[:eqIdx])
	return keyPart + " = [REDACTED]"
}

// FormatSensitiveDataWarning formats findings into a user-friendly warning message
func FormatSensitiveDataWarning(path string, findings []SensitiveDataFinding) string {
	if len(findings) == 0 {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "WARNING: %s appears to contain a hardcoded GitHub token\n\n", path)

	for i, finding := range findings {
		fmt.Fprintf(&sb, "%d. %s (line %d)\n", i+1, finding.Description, finding.Line)
		fmt.Fprintf(&sb, "   Preview: %s\n", finding.Preview)
	}

	sb.WriteString("\nSet the " + EnvGitHubToken + " environment variable instead and keep tokens out of version control.\n")

	return sb.String()
}
