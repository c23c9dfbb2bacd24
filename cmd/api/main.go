package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomomini0815/ainance-v2-sub004/internal/config"
	"github.com/tomomini0815/ainance-v2-sub004/internal/container"
	"github.com/tomomini0815/ainance-v2-sub004/internal/logger"

	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load config")
	}

	c, err := container.NewContainer(cfg)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize container")
	}

	server := &http.Server{
		Addr:    cfg.ServerAddress(),
		Handler: c.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.RequestTimeout,
		WriteTimeout:      cfg.RequestTimeout,
	}

	go func() {
		logger.WithFields(logrus.Fields{
			"address":      cfg.ServerAddress(),
			"timeout":      cfg.RequestTimeout,
			"storage_type": cfg.StorageType,
			"languages":    cfg.OCRLanguages,
		}).Info("Starting HTTP server")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Fatal("Server forced to shutdown")
	}

	logger.Info("Server exited")
}
