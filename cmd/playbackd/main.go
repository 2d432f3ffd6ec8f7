// Package main provides the playbackd daemon entry point.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/playbackd/internal/app/command"
	"github.com/osa030/playbackd/internal/app/event"
	"github.com/osa030/playbackd/internal/app/player"
	"github.com/osa030/playbackd/internal/infra/config"
	"github.com/osa030/playbackd/internal/infra/engine"
	"github.com/osa030/playbackd/internal/infra/logger"
	"github.com/osa030/playbackd/internal/infra/resolver"
)

var (
	app        = kingpin.New("playbackd", "headless audio playback controller")
	configPath = app.Flag("config", "Path to config file").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stdout)").String()

	listCommandsCmd = app.Command("list-commands", "List registered commands and exit")
)

func init() {
	app.Command("start", "Start the daemon (default)").Default()
}

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	cmd := kingpin.MustParse(app.Parse(os.Args[1:]))

	if cmd == listCommandsCmd.FullCommand() {
		for _, name := range command.Names() {
			fmt.Println(name)
		}
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	loggerConfig := logger.Config{
		Output: cfg.Log.Output,
		Level:  cfg.Log.Level,
		File:   cfg.Log.File,
	}
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = *logfile
		loggerConfig.File = *logfile
	}
	if err := logger.Init(loggerConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		zlog.Error().Msgf("Daemon error: %v", err)
		os.Exit(1)
	}
}

// run executes the daemon. A separate function ensures defers run even
// when returning with an error.
func run(cfg *config.Config) error {
	eng := engine.NewNull()
	p := player.New(eng, resolver.NewFiles(), player.Options{
		CommandCapacity: cfg.Bus.CommandCapacity,
		EventCapacity:   cfg.Bus.EventCapacity,
		ResolveTimeout:  time.Duration(cfg.Resolver.TimeoutMs) * time.Millisecond,
		ReleaseAttempts: cfg.Release.Attempts,
		ReleaseInterval: time.Duration(cfg.Release.IntervalMs) * time.Millisecond,
	})
	defer p.Release()

	// Log every event flowing through the bus at debug level.
	p.Subscribe(event.Filter(func(event.Event) bool { return true }), func(e event.Event) {
		zlog.Debug().Msgf("event: %s: %+v", e.Name, e.Data)
	})

	zlog.Info().Msg("playbackd started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	zlog.Info().Msg("Received shutdown signal, releasing player...")
	return nil
}
