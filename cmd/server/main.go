package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cerchia/cerchia-server-go/internal/config"
	"github.com/cerchia/cerchia-server-go/internal/game"
	"github.com/cerchia/cerchia-server-go/internal/repository"
	"github.com/cerchia/cerchia-server-go/internal/server"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting Cerchia server",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	if cfg.Server.TablePassword == "" {
		logger.Warn("table password not configured; anyone can join the table")
	}

	// Create context that listens for termination signals
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Initialize match persistence if a database is configured
	var matches *repository.MatchRepository
	if cfg.Database.URL != "" {
		db, dbErr := repository.NewDB(ctx, cfg.Database, logger)
		if dbErr != nil {
			logger.Fatal("failed to connect to database", zap.Error(dbErr))
		}
		defer db.Close()

		stats := db.Stats()
		logger.Info("database connection pool initialized",
			zap.Int32("total_conns", stats.TotalConns()),
			zap.Int32("idle_conns", stats.IdleConns()),
		)

		matches = repository.NewMatchRepository(db)
		if schemaErr := matches.EnsureSchema(ctx); schemaErr != nil {
			logger.Fatal("failed to prepare match tables", zap.Error(schemaErr))
		}
	} else {
		logger.Info("no database configured; match results will not be persisted")
	}

	gameCfg := game.Config{
		ActionsPerTurn:   cfg.Game.ActionsPerTurn,
		HandSize:         cfg.Game.HandSize,
		BotDelay:         cfg.Game.BotDelay,
		DefenderWithhold: cfg.Game.DefenderWithhold,
		Seed:             cfg.Game.Seed,
	}

	gw, err := server.New(cfg.Server, gameCfg, matches, logger)
	if err != nil {
		logger.Fatal("failed to initialize gateway", zap.Error(err))
	}
	go gw.Run(ctx)

	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: gw.Handler(),
	}

	go func() {
		logger.Info("starting WebSocket server", zap.String("address", cfg.Server.Addr))
		if serveErr := httpServer.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			logger.Error("WebSocket server error", zap.Error(serveErr))
		}
	}()

	// Wait for termination signal
	sig := <-sigChan
	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	logger.Info("shutting down gracefully...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		logger.Error("server shutdown error", zap.Error(shutdownErr))
	}

	logger.Info("Cerchia server stopped")
}

// initLogger initializes the zap logger based on configuration
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
