package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/andriyanb/artikel-be/internal/config"
	"github.com/andriyanb/artikel-be/internal/server"
	"github.com/andriyanb/artikel-be/internal/storage/postgres"
	"github.com/andriyanb/artikel-be/internal/upload"
)

func main() {
	loadLocalEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zapLogger.Sync()
	logger := zapLogger.Sugar()

	ctx := context.Background()
	store, err := postgres.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatalw("init database", "err", err)
	}
	defer store.Close()

	uploads, err := upload.NewStore(cfg.UploadDir, cfg.PublicBaseURL, cfg.MaxUploadBytes)
	if err != nil {
		logger.Fatalw("init upload store", "err", err)
	}

	srv := server.New(cfg, store, store, uploads, logger)

	go func() {
		logger.Infow("artikel backend listening", "addr", cfg.HTTPAddress())
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatalw("http server error", "err", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Errorw("graceful shutdown", "err", err)
	}
}

func loadLocalEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found; relying on existing environment")
	}
}
