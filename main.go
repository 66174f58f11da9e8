// Command match3 runs the match-3 board server and its tools.
//
// Commands:
//   - serve: HTTP server with the REST API, WebSocket stream and an /mcp endpoint
//   - mcp: MCP stdio server, reusing a running API or starting an internal one
//   - play: line-oriented game in the terminal
//   - presets: list, show, validate and analyze preset files
//
// Flags can also be set from the environment or a .env file in the working directory.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/wricardo/match3/game/config"
	"github.com/wricardo/match3/game/service"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "match3"
)

// app holds what every command shares
type app struct {
	logger *zap.Logger
	in     io.Reader
	out    io.Writer
}

func main() {
	// Load .env file if it exists
	envErr := godotenv.Load()

	a := &app{in: os.Stdin, out: os.Stdout}
	root := a.command()
	root.After = func(ctx context.Context, cmd *cli.Command) error {
		if a.logger != nil {
			a.logger.Sync()
		}
		return nil
	}
	root.Before = chainBefore(root.Before, func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
		if envErr != nil && !os.IsNotExist(envErr) {
			a.logger.Warn("failed to load .env file", zap.Error(envErr))
		}
		return ctx, nil
	})

	if err := root.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", AppName, err)
		os.Exit(1)
	}
}

// command builds the CLI
func (a *app) command() *cli.Command {
	return &cli.Command{
		Name:    AppName,
		Usage:   "match-3 board engine server and tools",
		Version: Version,
		Writer:  a.out,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "enable debug logging",
				Sources: cli.EnvVars("MATCH3_DEBUG"),
			},
			&cli.StringFlag{
				Name:    "preset-dir",
				Usage:   "directory containing board presets",
				Value:   "presets",
				Sources: cli.EnvVars("MATCH3_PRESET_DIR"),
			},
		},
		Before: a.setupLogger,
		Commands: []*cli.Command{
			a.serveCommand(),
			a.mcpCommand(),
			a.playCommand(),
			a.presetsCommand(),
		},
	}
}

// setupLogger builds the zap logger once flags are parsed
func (a *app) setupLogger(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if a.logger != nil {
		return ctx, nil
	}

	var (
		logger *zap.Logger
		err    error
	)
	if cmd.Bool("debug") {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return ctx, fmt.Errorf("failed to create logger: %w", err)
	}

	a.logger = logger.Named(AppName)
	return ctx, nil
}

func chainBefore(first, second cli.BeforeFunc) cli.BeforeFunc {
	return func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
		ctx, err := first(ctx, cmd)
		if err != nil {
			return ctx, err
		}
		return second(ctx, cmd)
	}
}

// initializeServices wires the preset manager and the game service
func (a *app) initializeServices(cmd *cli.Command) (*config.Manager, service.GameService, error) {
	presets, err := config.NewManager(cmd.String("preset-dir"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create preset manager: %w", err)
	}

	return presets, service.NewGameService(presets, a.logger), nil
}
