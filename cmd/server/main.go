package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/hubbubchat/hubbub/internal/config"
	"github.com/hubbubchat/hubbub/internal/logging"
	"github.com/hubbubchat/hubbub/internal/server"
)

func main() {
	_ = godotenv.Load()

	cfg := config.LoadServerConfig()
	logger := logging.New(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg, logger)
	if err := srv.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("server shutdown")
		os.Exit(1)
	}
}
