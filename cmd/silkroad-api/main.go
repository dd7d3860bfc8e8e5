package main

import (
	"context"
	"errors"
	"log"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/duality-2/SilkRoad/cmd/silkroad-api/app"
	"github.com/duality-2/SilkRoad/configs"
	"github.com/duality-2/SilkRoad/internal/logging"
)

func main() {
	env := os.Getenv("APP_ENV") // dev | staging | prod
	if env == "" {
		env = "dev"
	}

	cfg, err := configs.Load("configs", env)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, cleanup, err := app.InitWithConfig(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer cleanup()

	l := logging.New("main")
	go func() {
		l.Info("silkroad-api listening", "env", env, "addr", cfg.App.HTTPAddr)
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			l.Error("http server stopped", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	l.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		l.Error("graceful shutdown failed", "err", err)
	}
}
