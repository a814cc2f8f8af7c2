package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ZebulonRouseFrantzich/webdrivermanager/internal/config"
	"github.com/spf13/cobra"
)

func newConfigCmd(a *app, opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the configuration after merging defaults, environment, the config
file and flags.

The text output is a Lua config file that can be saved and edited. The GitHub
token is never printed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfig(cmd.Context(), a, opts)
		},
	}
}

func runConfig(ctx context.Context, a *app, opts *options) error {
	if err := opts.validateFormat(); err != nil {
		return err
	}

	log := opts.logger(a)

	// The parser does not log here; findings are printed as one block below.
	parser := config.NewParser(a.detector)
	_, settings, err := opts.resolve(ctx, a, parser, log)
	if err != nil {
		return err
	}

	if settings.ConfigFile != "" {
		if content, err := os.ReadFile(settings.ConfigFile); err == nil {
			if findings := config.DetectSensitiveData(string(content)); len(findings) > 0 {
				_, _ = warnColor.Fprint(a.stderr, config.FormatSensitiveDataWarning(settings.ConfigFile, findings))
			}
		}
	}

	if opts.format != formatText {
		return renderStructured(a.stdout, opts.format, settings.Effective)
	}

	lua, err := config.NewGenerator().Generate(settings.Effective)
	if err != nil {
		return fmt.Errorf("generate config: %w", err)
	}
	if settings.ConfigFile != "" {
		fmt.Fprintf(a.stdout, "-- Loaded from: %s\n", settings.ConfigFile)
	}
	fmt.Fprint(a.stdout, lua)
	return nil
}
