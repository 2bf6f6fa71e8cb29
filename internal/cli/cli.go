// Package cli provides the command-line interface for rusync.
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/Theomat/rusync/internal/config"
	"github.com/Theomat/rusync/internal/logging"
	"github.com/Theomat/rusync/internal/registry"
	"github.com/Theomat/rusync/internal/ui"
)

var (
	// Version is the current version of the application.
	Version = "dev"
	// Commit is the git commit hash.
	Commit = "unknown"
	// BuildDate is the date and time of the build.
	BuildDate = "unknown"
)

// Run executes the CLI application with the given context and arguments.
func Run(ctx context.Context, args []string) error {
	app := &cli.Command{
		Name:    "rusync",
		Usage:   "Keep named sync profiles and push their files to remote machines",
		Version: Version,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable verbose output (info level logging)",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug output (debug level logging, implies verbose)",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "Disable colored output",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "Load configuration from `FILE` instead of the default location",
			},
			&cli.StringFlag{
				Name:  "registry",
				Usage: "Use `FILE` as the profile registry, overriding configuration",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return ctx, err
			}
			configureColors(cmd, cfg)
			configureLogging(cmd, cfg)
			return ctx, nil
		},
		// Bare invocation syncs whatever is in scope for the working
		// directory. Leftover arguments are typos, not profile names.
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Present() {
				return fmt.Errorf("unknown command %q", cmd.Args().First())
			}
			return runScoped(ctx, cmd)
		},
		EnableShellCompletion:      true,
		ShellCompletionCommandName: "completions",
		Commands: []*cli.Command{
			versionCommand(),
			newCommand(),
			addCommand(),
			lsCommand(),
			showCommand(),
			syncCommand(),
			delCommand(),
			rmCommand(),
		},
	}
	return app.Run(ctx, args)
}

// configureColors sets up color output based on CLI flags and configuration.
// The flag wins over the config file.
func configureColors(cmd *cli.Command, cfg *config.Config) {
	switch {
	case cmd.Bool("no-color"):
		ui.DisableColors()
	case cfg.Output.Color == "never":
		ui.DisableColors()
	case cfg.Output.Color == "always":
		ui.EnableColors()
	}
}

// configureLogging sets up the logging level based on CLI flags and
// configuration. Flags win over the config file.
func configureLogging(cmd *cli.Command, cfg *config.Config) {
	opts := logging.DefaultOptions()
	opts.Level = cfg.GetLogLevel()
	opts.JSON = cfg.LogJSON()

	if cmd.Bool("debug") {
		opts.Level = slog.LevelDebug
		opts.AddSource = true
	} else if cmd.Bool("verbose") {
		opts.Level = slog.LevelInfo
	}

	logger := logging.New(opts)
	logging.SetDefault(logger)

	logging.Debug("logging configured", slog.String("level", opts.Level.String()))
}

// loadConfig loads the configuration, honoring the global --config and
// --registry overrides.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path := cmd.String("config"); path != "" {
		cfg, err = config.LoadFromPath(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if path := cmd.String("registry"); path != "" {
		cfg.Registry.Path = path
	}
	return cfg, nil
}

// openStore loads the configuration and binds a store to the configured
// registry file.
func openStore(cmd *cli.Command) (*registry.Store, *config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	return registry.NewStore(cfg.RegistryPath(), cfg.Registry.Backups), cfg, nil
}
