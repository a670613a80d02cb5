package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/moneydrop/moneydrop-backend/internal/bank"
	"github.com/moneydrop/moneydrop-backend/internal/config"
	"github.com/moneydrop/moneydrop-backend/internal/httpapi"
	"github.com/moneydrop/moneydrop-backend/internal/hub"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	questions, err := loadQuestions(cfg)
	if err != nil {
		logger.Fatal("load question bank", zap.Error(err))
	}
	logger.Info("question bank loaded", zap.Int("questions", len(questions)))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	h := hub.NewHub(ctx, questions, cfg.RoomIdleTTL, logger)
	handler := httpapi.SetupRoutes(h, logger, cfg.AllowedOrigins)

	srv := &http.Server{Addr: cfg.Addr, Handler: handler}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
	logger.Info("bye")
}

// loadQuestions prefers Postgres, then a JSON file, then the embedded bank.
func loadQuestions(cfg *config.Config) ([]bank.Question, error) {
	if cfg.DatabaseURL != "" {
		return bank.LoadDB(cfg.DatabaseURL)
	}
	if cfg.QuestionsFile != "" {
		return bank.LoadFile(cfg.QuestionsFile)
	}
	return bank.Default()
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
