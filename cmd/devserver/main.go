package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	"github.com/fastygo/dialin/internal/config"
	"github.com/fastygo/dialin/internal/devserver"
	"github.com/fastygo/dialin/internal/services/lifecycle"
	"github.com/fastygo/dialin/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:      cfg.Logger.Level,
		Encoding:   cfg.Logger.Encoding,
		File:       cfg.Logger.File,
		MaxSizeMB:  cfg.Logger.MaxSizeMB,
		MaxBackups: cfg.Logger.MaxBackups,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	appCtx, cancel := manager.WithSignals(context.Background())
	defer cancel()

	server := devserver.New(devserver.Options{
		Name:           cfg.AppName + "-devserver",
		RequestTimeout: cfg.Context.RequestTimeout,
		BcryptCost:     cfg.DevServer.BcryptCost,
	}, zapLogger)

	go func() {
		if err := server.ListenAndServe(cfg.DevServerAddress()); err != nil {
			zapLogger.Error("devserver crashed", zap.Error(err))
			cancel()
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
