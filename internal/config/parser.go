package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ZebulonRouseFrantzich/webdrivermanager/internal/logger"
	"github.com/ZebulonRouseFrantzich/webdrivermanager/internal/platform"
	lua "github.com/yuin/gopher-lua"
)

// Parser represents a Lua config parser with platform detection.
type Parser struct {
	detector platform.Detector
	log      logger.Logger
}

// NewParser creates a new config parser with the given platform detector.
// A nil detector leaves the platform table out of the VM.
func NewParser(detector platform.Detector) *Parser {
	return &Parser{detector: detector, log: logger.Nop()}
}

// WithLogger sets the logger used for parse diagnostics.
func (p *Parser) WithLogger(l logger.Logger) *Parser {
	p.log = logger.OrNop(l)
	return p
}

// ParseFile reads and parses the config file at path. Potential secrets in
// the file are logged as warnings; they do not fail the parse.
func (p *Parser) ParseFile(ctx context.Context, path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxConfigSize+1))
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if len(data) > MaxConfigSize {
		return nil, &ParseError{
			Message: "config file too large",
			Detail:  fmt.Sprintf("%s exceeds %d bytes", path, MaxConfigSize),
		}
	}

	content := string(data)
	for _, finding := range DetectSensitiveData(content) {
		p.log.Warn(finding.Description, "file", path, "line", finding.Line, "preview", finding.Preview)
	}

	p.log.Debug("Parsing config file", "path", path, "bytes", len(data))
	return p.ParseString(ctx, content)
}

// ParseString parses a Lua config from a string.
// This is useful for testing and in-memory config generation.
func (p *Parser) ParseString(ctx context.Context, luaCode string) (*Config, error) {
	if len(luaCode) > MaxConfigSize {
		return nil, &ParseError{
			Message: "config too large",
			Detail:  fmt.Sprintf("%d bytes exceeds %d", len(luaCode), MaxConfigSize),
		}
	}

	L := newSandboxedVM()
	defer L.Close()
	L.SetContext(ctx)

	if p.detector != nil {
		platformInfo, err := p.detector.Detect(ctx)
		if err != nil {
			return nil, fmt.Errorf("platform detection failed: %w", err)
		}
		if err := platform.InjectPlatformTable(L, platformInfo); err != nil {
			return nil, fmt.Errorf("inject platform table: %w", err)
		}
	}

	if err := L.DoString(luaCode); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("parse config: %w", ctxErr)
		}
		return nil, &ParseError{
			Message: "Lua syntax error",
			Detail:  err.Error(),
		}
	}

	return extractConfig(L)
}

// ParseError represents a config parsing error with friendly message.
type ParseError struct {
	Message string // User-friendly message
	Detail  string // Technical details (raw Lua error)
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Message, e.Detail)
}

// extractConfig reads the global "webdrivermanager" table.
func extractConfig(L *lua.LState) (*Config, error) {
	root := L.GetGlobal(luaGlobalConfig)
	if root.Type() != lua.LTTable {
		return nil, &ParseError{
			Message: fmt.Sprintf("missing or invalid '%s' table", luaGlobalConfig),
			Detail:  fmt.Sprintf("expected table, got %s", root.Type()),
		}
	}
	table := root.(*lua.LTable)

	config := &Config{}
	fields := []struct {
		name string
		dst  *string
	}{
		{luaFieldDownloadRoot, &config.DownloadRoot},
		{luaFieldLinkPath, &config.LinkPath},
		{luaFieldOS, &config.OS},
		{luaFieldBitness, &config.Bitness},
		{luaFieldGitHubToken, &config.GitHubToken},
	}
	for _, f := range fields {
		v, err := stringField(table, f.name)
		if err != nil {
			return nil, err
		}
		*f.dst = v
	}

	switch v := table.RawGetString(luaFieldShowProgress); v.Type() {
	case lua.LTNil:
	case lua.LTBool:
		b := bool(v.(lua.LBool))
		config.ShowProgress = &b
	default:
		return nil, fieldTypeError(luaFieldShowProgress, "boolean", v)
	}

	if err := config.Validate(); err != nil {
		return nil, &ParseError{
			Message: "config validation failed",
			Detail:  err.Error(),
		}
	}

	return config, nil
}

// stringField returns a string field. Numbers are accepted and rendered as
// integers so that bitness = 64 works. nil (from platform.when) is unset.
func stringField(table *lua.LTable, name string) (string, error) {
	v := table.RawGetString(name)
	switch v.Type() {
	case lua.LTNil:
		return "", nil
	case lua.LTString:
		return v.String(), nil
	case lua.LTNumber:
		n := float64(v.(lua.LNumber))
		if n != float64(int64(n)) {
			return "", fieldTypeError(name, "string or integer", v)
		}
		return strconv.FormatInt(int64(n), 10), nil
	default:
		return "", fieldTypeError(name, "string", v)
	}
}

func fieldTypeError(name, want string, got lua.LValue) *ParseError {
	return &ParseError{
		Message: fmt.Sprintf("invalid '%s' field", name),
		Detail:  fmt.Sprintf("expected %s, got %s", want, got.Type()),
	}
}

// FormatError formats a ParseError for user display.
// In verbose mode, show the raw Lua error. Otherwise, show friendly message.
func FormatError(err error, verbose bool) string {
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		if verbose {
			return fmt.Sprintf("%s\n\nDetails:\n%s", parseErr.Message, parseErr.Detail)
		}
		detail := parseErr.Detail
		if idx := strings.Index(detail, "stack traceback"); idx > 0 {
			detail = strings.TrimSpace(detail[:idx])
		}
		return fmt.Sprintf("%s: %s", parseErr.Message, detail)
	}
	return err.Error()
}
