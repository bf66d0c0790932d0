// Package main provides the game server binary: one HTTP listener carrying
// the WebSocket game interface and the polling API.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/bananopoly/backend/internal/config"
	"github.com/bananopoly/backend/internal/game/dice"
	"github.com/bananopoly/backend/internal/game/engine"
	"github.com/bananopoly/backend/internal/game/quiz"
	"github.com/bananopoly/backend/internal/observability"
	"github.com/bananopoly/backend/internal/room"
	"github.com/bananopoly/backend/internal/server"
	"github.com/bananopoly/backend/internal/transport/rest"
	"github.com/bananopoly/backend/internal/transport/ws"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	cryptoSrc := dice.NewCryptoSource()
	diceRoller := dice.NewRoller(cryptoSrc, logger)

	// Load the question bank
	bank := quiz.DefaultBank()
	if cfg.Game.QuestionsPath != "" {
		bankStart := time.Now()
		bank, err = quiz.LoadBankFromFile(cfg.Game.QuestionsPath)
		if err != nil {
			logger.Fatal("loading question bank", zap.Error(err))
		}
		logger.Info("question bank loaded",
			zap.String("path", cfg.Game.QuestionsPath),
			zap.Int("questions", bank.Len()),
			zap.Duration("elapsed", time.Since(bankStart)),
		)
	}

	engineOpts := engine.Options{
		InitialMoney:   cfg.Game.InitialMoney,
		PassStartBonus: cfg.Game.PassStartBonus,
		RollDelay:      cfg.Game.RollDelay,
	}
	newEngine := func() *engine.Engine {
		return engine.New(bank, diceRoller, logger, engineOpts)
	}

	registry := room.NewRegistry(cfg.Room.TTL, cfg.Room.CodeLength, newEngine, cryptoSrc, logger)

	// Build the HTTP surface
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Mount("/api", rest.NewHandler(registry, logger).Routes())
	router.Handle("/ws", ws.NewHandler(registry, logger))

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	lifecycle := server.NewLifecycle(logger)

	lifecycle.Add("http", &server.FuncService{
		StartFn: func() error {
			logger.Info("http server listening", zap.String("addr", cfg.Server.Addr()))
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		},
		StopFn: func() {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.Warn("http shutdown", zap.Error(err))
			}
		},
	})

	lifecycle.Add("rooms", &server.FuncService{
		StartFn: func() error {
			for {
				time.Sleep(time.Minute)
				logger.Info("room registry status", zap.Int("rooms", registry.Count()))
			}
		},
		StopFn: func() {
			registry.Shutdown()
		},
	})

	logger.Info("game server initialized",
		zap.Duration("startup", time.Since(start)),
		zap.String("addr", cfg.Server.Addr()),
		zap.Duration("room_ttl", cfg.Room.TTL),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
