// Package main runs the Tax Free API as a standalone HTTP server. Without a reachable
// database it runs in demo mode: diagnoses are computed and kept in memory only.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"taxfree-engine/internal/config"
	"taxfree-engine/internal/handlers"
	"taxfree-engine/internal/services/cache"
	"taxfree-engine/internal/services/chat"
	"taxfree-engine/internal/services/database"
	s3service "taxfree-engine/internal/services/s3"
	"taxfree-engine/internal/services/ses"
	"taxfree-engine/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := utils.InitLogger(cfg.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer utils.Sync()
	logger := utils.GetLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server, cleanup, err := newServer(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to build server", zap.Error(err))
	}
	defer cleanup()

	handler := Chain(server.Routes(),
		OTel("taxfree-api"),
		RequestLogger(logger),
		Recover(logger),
		CORS(cfg.AllowedOrigins),
	)

	httpServer := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Graceful shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("Tax Free API server listening",
		zap.String("addr", httpServer.Addr),
		zap.Bool("persistent", server.store.Persistent()),
		zap.String("chatProvider", cfg.ChatProvider),
	)

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

// newServer connects every optional dependency. Missing ones degrade features instead
// of failing startup.
func newServer(ctx context.Context, cfg *config.Config) (*Server, func(), error) {
	logger := utils.GetLogger()
	cleanup := func() {}

	provider, err := chat.NewProvider(cfg)
	if err != nil {
		return nil, cleanup, err
	}

	var repo cache.Repository
	var pinger handlers.Pinger

	db, err := database.New(ctx, cfg)
	if err != nil {
		logger.Warn("Could not connect to database, running in demo mode", zap.Error(err))
	} else if err := db.EnsureSchema(ctx); err != nil {
		logger.Warn("Could not prepare schema, running in demo mode", zap.Error(err))
		db.Close()
	} else {
		repo = database.NewDiagnosisRepository(db)
		pinger = db
		cleanup = db.Close
	}

	store := cache.NewStore(cache.New(time.Duration(cfg.CacheTTLMinutes)*time.Minute), repo)

	server := &Server{
		config:  cfg,
		store:   store,
		health:  handlers.NewHealthHandlerWith(pinger),
		batches: handlers.NewCSVProcessorHandler(nil, store),
		chat:    chat.NewService(provider, cfg.ChatRatePerSec, cfg.ChatBurst),
		now:     time.Now,
	}

	if cfg.S3Bucket != "" {
		if reports, err := s3service.NewService(ctx, cfg); err != nil {
			logger.Warn("Report export disabled", zap.Error(err))
		} else {
			server.reports = reports
		}
	}

	if cfg.SESSenderEmail != "" {
		if mailer, err := ses.NewService(ctx, cfg); err != nil {
			logger.Warn("Report email disabled", zap.Error(err))
		} else {
			server.mailer = mailer
		}
	}

	return server, cleanup, nil
}
