package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Digital-Creators-Team/trick-or-treat-bot/bot"
	"github.com/Digital-Creators-Team/trick-or-treat-bot/claim"
	"github.com/Digital-Creators-Team/trick-or-treat-bot/config"
	"github.com/Digital-Creators-Team/trick-or-treat-bot/db/sqlite"
	"github.com/Digital-Creators-Team/trick-or-treat-bot/game"
	"github.com/Digital-Creators-Team/trick-or-treat-bot/ledger"
	"github.com/Digital-Creators-Team/trick-or-treat-bot/logging"
	"github.com/Digital-Creators-Team/trick-or-treat-bot/progress"
	"github.com/Digital-Creators-Team/trick-or-treat-bot/reward"
	"github.com/Digital-Creators-Team/trick-or-treat-bot/server"
)

func main() {
	var configFile string

	rootCmd := &cobra.Command{
		Use:   "totbot",
		Short: "Trick-or-Treat engagement bot",
		Long: `Discord engagement bot: tracks per-user points, awards points from
message activity, and runs the trick-or-treat mini games.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configFile)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config/config.yaml", "Path to config file")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configFile string) error {
	// Secrets come from the environment; .env is a local convenience
	_ = godotenv.Load()

	var cfg *config.Config
	var err error
	if _, statErr := os.Stat(configFile); statErr == nil {
		cfg, err = config.Load(configFile)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		return err
	}

	logger := logging.New(cfg.Logging)
	logger.Info().Str("environment", cfg.Environment).Msg("Starting trick-or-treat bot")

	client, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()
	logger.Info().Str("path", cfg.Database.Path).Msg("Database ready")

	store := ledger.NewStore(client, logger)
	gate := claim.NewGate(store, logger)
	selector := reward.NewSelector()
	notifier := progress.NewNotifier(128)
	converter := progress.NewConverter(store, notifier, cfg.Counter, logger)

	if err := cfg.Game.Rewards.Validate(); err != nil {
		return err
	}
	if err := cfg.Freeplay.Rewards.Validate(); err != nil {
		return err
	}

	manager := game.NewManager(store, gate, selector, cfg, logger)
	defer manager.Close()

	discordBot, err := bot.New(cfg, store, gate, converter, notifier, manager, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var healthServer *server.Server
	if cfg.Server.Enabled {
		healthServer = server.New(cfg.Server, store, func() string {
			if discordBot.Session().DataReady {
				return "online"
			}
			return "connecting"
		}, cfg, logger)

		go func() {
			if err := healthServer.Start(); err != nil {
				logger.Error().Err(err).Msg("Health server stopped")
			}
		}()
	}

	err = discordBot.Run(ctx)

	if healthServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = healthServer.Shutdown(shutdownCtx)
	}

	return err
}
