package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/ZebulonRouseFrantzich/webdrivermanager/internal/binary"
	"github.com/ZebulonRouseFrantzich/webdrivermanager/internal/config"
	"github.com/ZebulonRouseFrantzich/webdrivermanager/internal/logger"
	"github.com/ZebulonRouseFrantzich/webdrivermanager/internal/manager"
	"github.com/ZebulonRouseFrantzich/webdrivermanager/internal/platform"
	"github.com/ZebulonRouseFrantzich/webdrivermanager/internal/shell"
	"github.com/ZebulonRouseFrantzich/webdrivermanager/internal/source"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// driverManager is the part of *manager.Manager the CLI drives.
type driverManager interface {
	Name() string
	DownloadAndInstall(ctx context.Context, token string, showProgress bool) (*binary.InstallResult, error)
}

// app holds the CLI's external dependencies so tests can replace them.
type app struct {
	stdout     io.Writer
	stderr     io.Writer
	detector   platform.Detector
	getenv     func(string) string
	euid       int
	newManager func(browser string, opts manager.Options) (driverManager, error)
	shell      shellDetector
}

type shellDetector interface {
	Detect(ctx context.Context) *shell.DetectionResult
}

func defaultApp() *app {
	return &app{
		stdout:   color.Output,
		stderr:   color.Error,
		detector: platform.NewDetector(),
		getenv:   os.Getenv,
		euid:     os.Geteuid(),
		newManager: func(browser string, opts manager.Options) (driverManager, error) {
			m, err := manager.New(browser, opts)
			if err != nil {
				return nil, err
			}
			return m, nil
		},
		shell: shell.NewDetector(os.Getenv),
	}
}

// options are the root command flags.
type options struct {
	downloadPath string
	linkPath     string
	osName       string
	bitness      string
	configPath   string
	noProgress   bool
	verbose      bool
	format       string
}

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// silentError carries an exit status whose message was already printed.
type silentError struct{ err error }

func (e *silentError) Error() string { return e.err.Error() }
func (e *silentError) Unwrap() error { return e.err }

// execute runs the CLI and returns the process exit code.
func execute(a *app, args []string) int {
	if args == nil {
		// cobra falls back to os.Args for a nil slice
		args = []string{}
	}

	cmd := newRootCmd(a)
	cmd.SetArgs(args)
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		var silent *silentError
		if !errors.As(err, &silent) {
			_, _ = color.New(color.FgRed).Fprintf(a.stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func newRootCmd(a *app) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "webdrivermanager [flags] browser[:version]...",
		Short: "Download and install WebDriver binaries",
		Long: fmt.Sprintf(`Tool for downloading and installing WebDriver binaries.

Valid browsers: %s

Append ":version" to pick a driver release, for example "gecko:v0.34.0".
"latest" picks the newest release. Without a version the driver matching the
installed browser is used where that can be determined, and the newest
release otherwise.`, strings.Join(source.Names(), " ")),
		Version:       Version,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstall(cmd.Context(), a, opts, args)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.downloadPath, "downloadpath", "d", "", "Where to download the webdriver binaries")
	flags.StringVarP(&opts.linkPath, "linkpath", "l", "",
		`Where to link the webdriver binary to. "AUTO" picks the first writable directory in PATH; "SKIP" disables linking`)
	flags.StringVarP(&opts.osName, "os", "o", "",
		"Overrides os detection with given os name. Values: "+strings.Join(platform.SupportedOS, " "))
	flags.StringVarP(&opts.bitness, "bitness", "b", "",
		"Overrides bitness detection with given value. Values: "+strings.Join(platform.SupportedBitness, " "))
	flags.StringVar(&opts.configPath, "config", "", "Lua configuration file (default $XDG_CONFIG_HOME/webdrivermanager/config.lua)")
	flags.BoolVar(&opts.noProgress, "no-progress", false, "Do not show download progress")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging for debugging")
	flags.StringVar(&opts.format, "format", formatText, "Output format: text, json or yaml")

	cmd.AddCommand(newConfigCmd(a, opts))

	return cmd
}

func (o *options) logger(a *app) logger.Logger {
	level := logger.LevelInfo
	if o.verbose {
		level = logger.LevelDebug
	}
	return logger.New(a.stderr, level)
}

// flagLayer turns the flags into the highest-priority config layer.
func (o *options) flagLayer() *config.Config {
	layer := &config.Config{
		DownloadRoot: o.downloadPath,
		LinkPath:     o.linkPath,
		OS:           o.osName,
		Bitness:      o.bitness,
	}
	if o.noProgress {
		off := false
		layer.ShowProgress = &off
	}
	return layer
}

func (o *options) validateFormat() error {
	switch o.format {
	case formatText, formatJSON, formatYAML:
		return nil
	default:
		return fmt.Errorf("invalid --format %q (valid: text, json, yaml)", o.format)
	}
}

// resolve detects the host and merges defaults, environment, config file
// and flags.
func (o *options) resolve(ctx context.Context, a *app, parser *config.Parser, log logger.Logger) (*platform.Info, *config.Settings, error) {
	host, err := a.detector.Detect(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("detect platform: %w", err)
	}

	resolver := config.NewResolver(parser,
		config.WithGetenv(a.getenv),
		config.WithEUID(a.euid),
		config.WithResolverLogger(log))

	settings, err := resolver.Resolve(ctx, host.OS, o.configPath, o.flagLayer())
	if err != nil {
		return nil, nil, errors.New(config.FormatError(err, o.verbose))
	}
	return host, settings, nil
}
