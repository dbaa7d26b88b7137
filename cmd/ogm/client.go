package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rlch/ogm"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	ErrNoConnectionURI = errors.New("no connection URI specified (use --uri or .ogm.yaml)")
	ErrNoModels        = errors.New("no model files specified (use --models or .ogm.yaml)")
)

func connectionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "path to .ogm.yaml (default: nearest one walking up from the working directory)",
		},
		&cli.StringFlag{
			Name:    "uri",
			Usage:   "database connection URI",
			Sources: cli.EnvVars("OGM_URI"),
		},
		&cli.StringFlag{
			Name:    "username",
			Aliases: []string{"u"},
			Usage:   "database username",
			Sources: cli.EnvVars("OGM_USER"),
		},
		&cli.StringFlag{
			Name:    "password",
			Aliases: []string{"p"},
			Usage:   "database password",
			Sources: cli.EnvVars("OGM_PASS"),
		},
		&cli.StringFlag{
			Name:    "database",
			Aliases: []string{"d"},
			Usage:   "database name",
			Sources: cli.EnvVars("OGM_DATABASE"),
		},
		&cli.BoolFlag{
			Name:  "enterprise",
			Usage: "enable enterprise-only constraints",
		},
		&cli.StringSliceFlag{
			Name:    "models",
			Aliases: []string{"m"},
			Usage:   "model declaration files (YAML)",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "verbose output",
		},
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	config := zap.NewDevelopmentConfig()
	config.OutputPaths = []string{"stderr"}
	config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)

	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	return config.Build()
}

// loadConfig merges the config file with command line flags. Flags win.
func loadConfig(cmd *cli.Command) (*ogm.Config, error) {
	var (
		cfg *ogm.Config
		err error
	)

	if path := cmd.String("config"); path != "" {
		cfg, err = ogm.LoadConfigFile(path)
		if err != nil {
			return nil, err
		}
	} else {
		cfg, err = ogm.LoadConfig(".")
		if errors.Is(err, ogm.ErrConfigNotFound) {
			cfg, err = &ogm.Config{Driver: ogm.DefaultDriver}, nil
		}

		if err != nil {
			return nil, err
		}
	}

	if uri := cmd.String("uri"); uri != "" {
		cfg.Connection.URI = uri
	}

	if username := cmd.String("username"); username != "" {
		cfg.Connection.Username = username
	}

	if password := cmd.String("password"); password != "" {
		cfg.Connection.Password = password
	}

	if database := cmd.String("database"); database != "" {
		cfg.Connection.Database = database
	}

	if cmd.Bool("enterprise") {
		cfg.Enterprise = true
	}

	if models := cmd.StringSlice("models"); len(models) > 0 {
		cfg.Models = models
	}

	if len(cfg.Models) == 0 {
		return nil, ErrNoModels
	}

	return cfg, nil
}

// openClient connects to the configured database.
func openClient(ctx context.Context, cmd *cli.Command) (*ogm.Client, func(), error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}

	if cfg.Connection.URI == "" {
		return nil, nil, ErrNoConnectionURI
	}

	logger, err := newLogger(cmd.Bool("verbose"))
	if err != nil {
		return nil, nil, err
	}

	client, err := ogm.Open(cfg, ogm.WithLogger(logger))
	if err != nil {
		_ = logger.Sync()

		return nil, nil, fmt.Errorf("open %s: %w", cfg.Connection.URI, err)
	}

	cleanup := func() {
		_ = client.Close(ctx)
		_ = logger.Sync()
	}

	return client, cleanup, nil
}

// offlineClient defines the configured models without connecting, for commands
// that only inspect them.
func offlineClient(cmd *cli.Command) (*ogm.Client, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	client := ogm.New(nil, ogm.WithEnterprise(cfg.Enterprise))

	for _, path := range cfg.ModelPaths() {
		err := client.LoadModelsFile(path)
		if err != nil {
			return nil, err
		}
	}

	return client, nil
}
