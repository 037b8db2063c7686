package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/solana-meme-detector/internal/app"
	"github.com/aman-zulfiqar/solana-meme-detector/internal/config"
	"github.com/aman-zulfiqar/solana-meme-detector/internal/server"
)

// env bootstrap function
func loadEnv(logger *logrus.Logger) {
	// Get the project root directory (where go.mod is)
	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Join(filepath.Dir(filename), "../..")
	envPath := filepath.Join(projectRoot, ".env")

	if err := godotenv.Load(envPath); err != nil {
		logger.Warnf("no .env file found at %s, using system environment variables", envPath)
	} else {
		logger.Infof("loaded .env from %s", envPath)
	}
}

// main is the entry point for the detector API
// It wires the detector and starts the HTTP server with graceful shutdown
func main() {
	// Initialize structured logger with custom formatting
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logger.SetLevel(logrus.InfoLevel)

	// load .env BEFORE anything reads os.Getenv
	loadEnv(logger)

	// Load and validate configuration from environment variables
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}
	setLevel(logger, cfg)

	logger.WithFields(logrus.Fields{
		"app":     cfg.AppName,
		"version": cfg.Version,
		"helius":  cfg.HeliusAPIKey != "",
	}).Info("starting")

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown (Ctrl+C, SIGTERM)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to build detector")
	}
	defer func() {
		_ = a.Close()
	}()

	h := &server.Handlers{
		Detector: a.Detector,
		Limits: server.Limits{
			DefaultLimit:        cfg.DefaultTokensLimit,
			MaxLimit:            cfg.MaxTokensLimit,
			DefaultMinLiquidity: cfg.DefaultMinLiquidity,
		},
		AppName: cfg.AppName,
		Version: cfg.Version,
		DevMode: cfg.Debug,
		Logger:  logger,
	}

	srv, err := server.NewServer(server.ServerDeps{
		Handlers: h,
		Config: server.ServerConfig{
			Addr:               cfg.APIAddr,
			DevMode:            cfg.Debug,
			RateLimitPerMinute: cfg.RateLimitPerMinute,
			Metrics:            a.Metrics.Handler(),
		},
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to create http server")
	}

	// Setup graceful shutdown in a separate goroutine
	go func() {
		<-sigCh // Wait for shutdown signal
		logger.Info("shutting down")
		cancel()                               // Cancel context to stop ongoing operations
		_ = srv.Shutdown(context.Background()) // Gracefully shutdown HTTP server
	}()

	logger.WithField("addr", cfg.APIAddr).Info("api server starting")
	if err := srv.Start(); err != nil {
		if !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("api server failed")
		}
	}

	// Wait for server to be fully shut down
	if err := srv.WaitClosed(context.Background()); err != nil {
		fmt.Println(err)
	}
}

func setLevel(logger *logrus.Logger, cfg *config.Config) {
	if cfg.Debug {
		logger.SetLevel(logrus.DebugLevel)
		return
	}
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(lvl)
	}
}
