package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"pixelvault/internal/app/server"
	"pixelvault/internal/app/server/config"
	"pixelvault/internal/utils/logger"
)

func main() {
	conf := config.MustLoad()
	log := logger.New(conf.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	if err := server.NewApp(conf, log).Run(ctx); err != nil {
		log.Error("server failed", "error", err)
		stop()
		os.Exit(1)
	}
}
