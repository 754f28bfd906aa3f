package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/daoforge/governor-backend/cfg"
	"github.com/daoforge/governor-backend/server"
)

// The watcher republishes the reconciled snapshot at a fixed interval so
// the cache stays warm independently of API traffic and post-action
// refresh triggers.
func main() {
	if err := godotenv.Load(); err != nil {
		panic(err.Error())
	}

	serviceCfg, err := cfg.New()
	if err != nil {
		panic(err.Error())
	}

	logger, err := newLogger(serviceCfg)
	if err != nil {
		panic("cannot init logger")
	}
	logger.Info("Start watcher...")

	defer func() {
		if err := logger.Sync(); err != nil {
			logger.Error("cannot sync log")
		}
	}()

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         serviceCfg.SentryDSN,
		Environment: serviceCfg.ServerMode,
	}); err != nil {
		panic(err)
	}
	defer sentry.Flush(2 * time.Second)

	srv, err := server.New(server.Config{
		Cfg:    serviceCfg,
		Logger: logger,
	})
	if err != nil {
		log.Panicf("cannot create server instance %s", err.Error())
	}
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	ticker := time.NewTicker(serviceCfg.SyncInterval)
	defer ticker.Stop()
	for {
		if err := srv.Sync(ctx); err != nil {
			logger.Warn("sync pass failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			logger.Info("watcher stopped")
			return
		case <-ticker.C:
		}
	}
}
