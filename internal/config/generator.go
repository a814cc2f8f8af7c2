package config

import (
	"bytes"
	"strings"
	"time"
)

// Generator generates Lua configuration code from a Config.
type Generator struct {
	indent string // Indentation string (default: two spaces)
	now    func() time.Time
}

// NewGenerator creates a new Lua config generator.
func NewGenerator() *Generator {
	return &Generator{
		indent: "  ",
		now:    time.Now,
	}
}

// Generate renders config as a file ParseString reads back to an equal
// Config. The GitHub token is never written.
func (g *Generator) Generate(config *Config) (string, error) {
	if err := config.Validate(); err != nil {
		return "", err
	}

	var buf bytes.Buffer

	buf.WriteString("-- webdrivermanager configuration\n")
	buf.WriteString("-- Generated: ")
	buf.WriteString(g.now().Format(time.RFC3339))
	buf.WriteString("\n--\n")
	buf.WriteString("-- Set " + EnvGitHubToken + " in the environment rather than here.\n\n")

	buf.WriteString(luaGlobalConfig + " = {\n")

	g.writeString(&buf, luaFieldDownloadRoot, config.DownloadRoot)
	g.writeString(&buf, luaFieldLinkPath, config.LinkPath)
	g.writeString(&buf, luaFieldOS, config.OS)
	g.writeString(&buf, luaFieldBitness, config.Bitness)

	if config.ShowProgress != nil {
		buf.WriteString(g.indent)
		buf.WriteString(luaFieldShowProgress)
		if *config.ShowProgress {
			buf.WriteString(" = true,\n")
		} else {
			buf.WriteString(" = false,\n")
		}
	}

	buf.WriteString("}\n")

	return buf.String(), nil
}

// writeString writes one string field; empty values are left out.
func (g *Generator) writeString(buf *bytes.Buffer, field, value string) {
	if value == "" {
		return
	}
	buf.WriteString(g.indent)
	buf.WriteString(field)
	buf.WriteString(" = ")
	buf.WriteString(g.quoteLuaString(value))
	buf.WriteString(",\n")
}

// quoteLuaString quotes a string for Lua, handling special characters.
func (g *Generator) quoteLuaString(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\") // Escape backslashes first
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	s = strings.ReplaceAll(s, "\t", "\\t")
	return "\"" + s + "\""
}
