package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/cottons-kr/appplechat-api/internal/presence"
	"github.com/cottons-kr/appplechat-api/internal/server"
	"github.com/cottons-kr/appplechat-api/internal/store"
	"github.com/cottons-kr/appplechat-api/pkg/config"
	"github.com/cottons-kr/appplechat-api/pkg/logging"
	"github.com/cottons-kr/appplechat-api/pkg/token"
)

func main() {
	root := &cobra.Command{
		Use:          "chat-server",
		Short:        "Realtime chat backend",
		SilenceUsage: true,
	}
	root.AddCommand(newServeCommand())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newServeCommand() *cobra.Command {
	var configName string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the chat server",
		RunE: func(cmd *cobra.Command, args []string) error {
			bootLogger := logging.New(logging.LevelInfo)
			cfg, err := config.Load(bootLogger, configName)
			if err != nil {
				bootLogger.Error("Failed to load configuration", slog.Any("error", err))
				return err
			}

			logger := logging.New(logging.ParseLevel(cfg.Logging.Level))
			slog.SetDefault(logger)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			// The relational member/room store is an external collaborator;
			// the bundled in-memory store makes the binary runnable standalone.
			memStore := store.NewInMemoryStore(logger)
			seedDemoData(logger, memStore)

			tokens := token.NewStore(logger, memStore, cfg.Server.TokenFile, cfg.Server.TokenTTL)
			if err := tokens.Restore(); err != nil {
				logger.Warn("Continuing with an empty token store")
			}

			// Stale ONLINE statuses from an unclean shutdown are corrected
			// before the first connection is accepted.
			tracker := presence.NewTracker(logger, memStore)
			if err := tracker.OnProcessStart(ctx); err != nil {
				return err
			}

			app := server.NewApp(logger, ctx, cfg, tokens, memStore, memStore)
			if err := app.Run(); err != nil {
				logger.Error("Application run failed", slog.Any("error", err))
				return err
			}
			logger.Info("Application shut down successfully.")
			return nil
		},
	}

	cmd.Flags().StringVar(&configName, "config", "config", "config file name (without extension)")
	return cmd
}

func seedDemoData(logger *slog.Logger, s *store.InMemoryStore) {
	logger.Warn("Using the in-memory store with demo members; not for production")

	s.AddMember(store.Member{ID: "alice", UUID: "9f6e42cc-1b9a-4f2e-9c60-0a4a3f6f8b01", Nickname: "Alice"}, "alice1234")
	s.AddMember(store.Member{ID: "bob", UUID: "3c8b9af1-7d20-4f57-8d0e-5d9a2b1c7e02", Nickname: "Bob"}, "bob1234")
	s.AddRoom("5a1d0c3e-2f4b-4c6d-8e9f-7b8a9c0d1e03",
		"9f6e42cc-1b9a-4f2e-9c60-0a4a3f6f8b01",
		"3c8b9af1-7d20-4f57-8d0e-5d9a2b1c7e02",
	)
}
