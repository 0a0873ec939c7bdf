package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jcb91/doorstop/internal/api"
	"github.com/jcb91/doorstop/internal/config"
	"github.com/jcb91/doorstop/internal/tree"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	cwd := cfg.Root
	if cwd == "" {
		var err error
		cwd, err = os.Getwd()
		if err != nil {
			log.Error("failed to get working directory", "error", err)
			os.Exit(1)
		}
	}

	t, err := tree.Build(cwd, log)
	if err != nil {
		log.Error("failed to build tree", "error", err)
		os.Exit(1)
	}
	log.Info("tree built", "tree", t.String(), "documents", t.Len())

	srv := api.NewServer(t, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting doorstop server", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
