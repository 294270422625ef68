package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/folio/internal"
	pkgconfig "github.com/starford/folio/pkg/config"
)

var version = "dev"

func flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to config file (.yaml or .toml)",
			DefaultText: "config/config.yaml",
			Value:       "config/config.yaml",
			Sources:     cli.EnvVars("APP_CONFIG_FILE"),
		},
		&cli.BoolFlag{
			Name:    "production",
			Usage:   "Prefix image paths with the site base path",
			Sources: cli.EnvVars("APP_PRODUCTION"),
		},
	}
}

// loadOptions reads the config file and applies flag overrides. The default
// config path may be absent; an explicit one must exist.
func loadOptions(cmd *cli.Command) ([]internal.Option, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if cmd.IsSet("config") {
		if err := pkgconfig.Load(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	} else if _, err := pkgconfig.LoadOptional(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cmd.IsSet("production") {
		cfg.Site.Production = cmd.Bool("production")
	}

	return []internal.Option{
		internal.WithConfig(cfg),
		internal.WithVersion(version),
	}, nil
}

func build(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	report, err := internal.Build(ctx, opts...)
	if err != nil {
		return fmt.Errorf("app build error: %w", err)
	}
	fmt.Fprintf(os.Stdout, "built %d posts, %d pages, removed %d stale in %s\n",
		report.Posts, report.Pages, report.Removed, report.Duration.Round(time.Millisecond))
	return nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	if err := internal.Serve(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func mcp(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	if err := internal.MCP(ctx, opts...); err != nil {
		return fmt.Errorf("mcp error: %w", err)
	}
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:    "folio",
		Usage:   "Static blog engine for Markdown posts with live preview, search and MCP access",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:   "build",
				Usage:  "Generate the static site into the output directory",
				Flags:  flags(),
				Action: build,
			},
			{
				Name:   "serve",
				Usage:  "Build, serve and rebuild the site on every post change",
				Flags:  flags(),
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Expose published posts to an MCP client over stdio",
				Flags:  flags(),
				Action: mcp,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
