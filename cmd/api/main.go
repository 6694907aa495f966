package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/brainovision/campus-assistant/backend/internal/config"
	"github.com/brainovision/campus-assistant/backend/internal/handler"
	"github.com/brainovision/campus-assistant/backend/internal/knowledge"
	"github.com/brainovision/campus-assistant/backend/internal/logging"
	"github.com/brainovision/campus-assistant/backend/internal/service/ai"
	"github.com/brainovision/campus-assistant/backend/internal/service/bot"
	"github.com/brainovision/campus-assistant/backend/internal/service/chat"
	"github.com/brainovision/campus-assistant/backend/internal/service/site"
	"github.com/brainovision/campus-assistant/backend/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	boot := zap.Must(zap.NewProduction())

	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		boot.Fatal("failed to load configuration", zap.Error(err))
	}

	logger, err := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, File: cfg.Log.File})
	if err != nil {
		boot.Fatal("failed to create logger", zap.Error(err))
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	if envErr != nil {
		logger.Info("no .env file loaded, continuing with system environment variables only", zap.Error(envErr))
	}

	intentStore, err := store.NewSQLite(cfg.Store.Path)
	if err != nil {
		logger.Fatal("failed to open intent store", zap.String("path", cfg.Store.Path), zap.Error(err))
	}
	defer intentStore.Close()

	base, err := knowledge.Load(cfg.Site.URL)
	if err != nil {
		logger.Fatal("failed to load knowledge base", zap.Error(err))
	}

	opts := []bot.Option{bot.WithLogger(logger.Named("bot"))}
	if cfg.AI.Enabled() {
		aiService, err := ai.NewService(ctx, cfg.AI, cfg.Site.URL, logger.Named("ai"))
		if err != nil {
			logger.Warn("failed to initialize AI service, continuing without it", zap.Error(err))
		} else {
			opts = append(opts, bot.WithAnswerer(aiService))
			logger.Info("AI service initialized", zap.String("model", cfg.AI.Model))
		}
	} else {
		logger.Info("Ark credentials not configured, skipping AI answers")
	}

	scraper := site.NewScraper(cfg.Site, logger.Named("site"))
	botService := bot.NewService(base, scraper, intentStore, opts...)
	if err := botService.Reload(ctx); err != nil {
		if errors.Is(err, store.ErrNotTrained) {
			logger.Info("no trained model yet, call GET /train to build one")
		} else {
			logger.Warn("failed to load trained model", zap.Error(err))
		}
	}

	router := handler.NewRouter(handler.Dependencies{
		Config:  cfg,
		Bot:     botService,
		ChatSvc: chat.NewService(),
		Logger:  logger,
	})

	startServer(ctx, logger, cfg.Server, router)
}

func startServer(ctx context.Context, logger *zap.Logger, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info("campus assistant listening", zap.String("addr", addr))
	if err := runServer(ctx, srv); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
