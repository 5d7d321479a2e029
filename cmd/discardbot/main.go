package main

import (
	"errors"
	"io/fs"
	"os"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/lox/discardbot/cmd/discardbot/shared"
	"github.com/lox/discardbot/internal/config"
)

// version is set by ldflags during build
var version = "dev"

// Globals are flags shared by every command.
type Globals struct {
	Config   string `short:"c" env:"DISCARDBOT_CONFIG" help:"HCL config file" type:"path"`
	LogLevel string `help:"Log level (debug, info, warn, error); overrides the config file"`
	LogJSON  bool   `help:"Log JSON lines instead of text"`
}

type CLI struct {
	Globals

	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Serve    ServeCmd         `cmd:"" help:"Serve the agent to a harness over HTTP and WebSocket"`
	Decide   DecideCmd        `cmd:"" help:"Answer one request read from a file or stdin"`
	Equity   EquityCmd        `cmd:"" help:"Estimate hand equity by Monte Carlo simulation"`
	Simulate SimulateCmd      `cmd:"" help:"Play a practice match on the local engine"`
	Journal  JournalCmd       `cmd:"" help:"Inspect the hand journal"`
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn("Failed to load .env", "error", err)
	}

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("discardbot"),
		kong.Description("Poker agent for the 27-card discard variant"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}

// setup loads the configuration, applies environment and command overrides
// and builds the logger.
func (g *Globals) setup(override func(*config.Config)) (config.Config, *log.Logger, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return config.Config{}, nil, err
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return config.Config{}, nil, err
	}
	if g.LogLevel != "" {
		cfg.Log.Level = g.LogLevel
	}
	if g.LogJSON {
		cfg.Log.JSON = true
	}
	if override != nil {
		override(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, nil, err
	}

	logger, err := shared.SetupLogger(os.Stderr, cfg.Log.Level, cfg.Log.JSON)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}
