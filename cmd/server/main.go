package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eventky/internal/app/client"
	"eventky/internal/app/server/api"
	"eventky/internal/app/server/config"
	"eventky/internal/utils/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	conf := config.MustLoad()
	log := logger.New(conf.Client.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if conf.Client.DataDir != "" {
		if err := os.MkdirAll(conf.Client.DataDir, 0o700); err != nil {
			log.Error("failed to create data dir", "path", conf.Client.DataDir, "error", err)
			os.Exit(1)
		}
	}

	app := client.New(conf.Client, log)
	if err := app.Initialize(conf.Client.Mode()); err != nil {
		log.Error("failed to initialize runtime", "mode", conf.Client.Mode().String(), "error", err)
		os.Exit(1)
	}
	defer app.Close()

	srv := &http.Server{
		Addr:              conf.Server.RunAddress,
		Handler:           api.New(conf, app, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("gateway listening", "address", conf.Server.RunAddress, "mode", conf.Client.Mode().String())
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
		}
		return
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", "error", err)
	}
}
