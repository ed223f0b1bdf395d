// Package main is the entry point for wumpushunt, a terminal client for a
// Hunt the Wumpus game server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/samdwyer/wumpushunt/internal/client"
	"github.com/samdwyer/wumpushunt/internal/config"
	"github.com/samdwyer/wumpushunt/internal/game"
	"github.com/samdwyer/wumpushunt/internal/logging"
	"github.com/samdwyer/wumpushunt/internal/telemetry"
)

func main() {
	// Load .env file for local development.
	// This makes HONEYCOMB_WUMPUSHUNT_API_KEY and friends available.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Note: .env file not loaded: %v\n", err)
	}

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "wumpushunt",
		Short:        "Hunt the wumpus from your terminal",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         run,
	}

	flags := cmd.Flags()
	flags.String("server", "", "Game server URL (env WUMPUSHUNT_SERVER_URL)")
	flags.String("error-style", "", "How turn errors are shown: panel or badge (env WUMPUSHUNT_ERROR_STYLE)")
	flags.Duration("confirm-timeout", 0, "How long the last-arrow question waits, 0 for no limit (env WUMPUSHUNT_CONFIRM_TIMEOUT)")
	flags.Duration("request-timeout", 0, "Per-request HTTP timeout (env WUMPUSHUNT_REQUEST_TIMEOUT)")
	flags.String("log-level", "", "Log level: debug, info, warn, error (env WUMPUSHUNT_LOG_LEVEL)")
	flags.String("log-file", "", "Rotating log file (env WUMPUSHUNT_LOG_FILE)")
	flags.Bool("plain", false, "Line mode instead of the full-screen game (env WUMPUSHUNT_PLAIN)")
	return cmd
}

func run(cmd *cobra.Command, _ []string) error {
	var cfg config.Config
	if err := config.ParseEnv(&cfg); err != nil {
		return err
	}
	if err := applyFlags(cmd, &cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logs, err := logging.Init(logging.Config{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return err
	}
	defer logs.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	// Initialize telemetry
	shutdown, err := telemetry.Setup(ctx, cfg.Telemetry())
	if err != nil {
		// Continue without telemetry - the game still works
		log.Warn().Err(err).Msg("telemetry setup failed, running without tracing")
	} else {
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				log.Warn().Err(err).Msg("shutting down telemetry")
			}
		}()
	}

	endpoints, err := cfg.Endpoints()
	if err != nil {
		return err
	}
	server, err := client.New(endpoints, client.WithTimeout(cfg.RequestTimeout))
	if err != nil {
		return err
	}

	gameCfg := game.Config{
		ErrorStyle:     cfg.ErrorStyle,
		ConfirmTimeout: cfg.ConfirmTimeout,
	}
	log.Info().
		Str("server", cfg.ServerURL).
		Bool("plain", cfg.Plain).
		Msg("wumpushunt starting")

	if cfg.Plain || !isTerminal(os.Stdout) {
		p, err := game.NewPlain(gameCfg, server)
		if err != nil {
			return err
		}
		return p.Run(ctx)
	}

	g, err := game.New(gameCfg, server)
	if err != nil {
		return err
	}
	return g.Run(ctx)
}

// applyFlags overrides environment settings with flags given on the command line.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	var err error
	if flags.Changed("server") {
		if cfg.ServerURL, err = flags.GetString("server"); err != nil {
			return err
		}
	}
	if flags.Changed("error-style") {
		if cfg.ErrorStyle, err = flags.GetString("error-style"); err != nil {
			return err
		}
	}
	if flags.Changed("confirm-timeout") {
		if cfg.ConfirmTimeout, err = flags.GetDuration("confirm-timeout"); err != nil {
			return err
		}
	}
	if flags.Changed("request-timeout") {
		if cfg.RequestTimeout, err = flags.GetDuration("request-timeout"); err != nil {
			return err
		}
	}
	if flags.Changed("log-level") {
		if cfg.LogLevel, err = flags.GetString("log-level"); err != nil {
			return err
		}
	}
	if flags.Changed("log-file") {
		if cfg.LogFile, err = flags.GetString("log-file"); err != nil {
			return err
		}
	}
	if flags.Changed("plain") {
		if cfg.Plain, err = flags.GetBool("plain"); err != nil {
			return err
		}
	}
	return nil
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
