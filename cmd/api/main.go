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
	"github.com/labstack/echo"
	"go.uber.org/zap"

	"github.com/daoforge/governor-backend/api"
	"github.com/daoforge/governor-backend/cfg"
	"github.com/daoforge/governor-backend/server"
)

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
	logger.Info("Start API server...")

	defer func() {
		if err := recover(); err != nil {
			logger.Error("cannot recover")
		}
		if err := logger.Sync(); err != nil {
			logger.Error("cannot sync log")
		}
	}()

	if err := setupSentry(serviceCfg); err != nil {
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

	// Seed the cache before serving so the first request does not pay for a
	// full pass.
	seedCtx, seedCancel := context.WithTimeout(context.Background(), 2*serviceCfg.DefaultAPITimeout)
	if err := srv.Sync(seedCtx); err != nil {
		logger.Warn("initial sync failed, serving live reads until the watcher catches up", zap.Error(err))
	}
	seedCancel()

	e := echo.New()
	go func() {
		api.Start(e, srv, serviceCfg)
	}()

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	waitExit := make(chan bool)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		for range sigCh {
			cancel()
			if err := e.Shutdown(ctx); err != nil {
				panic(err)
			}
			waitExit <- true
		}
	}()
	<-waitExit
}

func setupSentry(cfg cfg.Config) error {
	opts := sentry.ClientOptions{
		Dsn:         cfg.SentryDSN,
		Environment: cfg.ServerMode,
	}
	if err := sentry.Init(opts); err != nil {
		return err
	}
	return nil
}
