package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/Skotchmaster/food_api/internal/auth"
	"github.com/Skotchmaster/food_api/internal/config"
	"github.com/Skotchmaster/food_api/internal/db"
	"github.com/Skotchmaster/food_api/internal/events"
	"github.com/Skotchmaster/food_api/internal/httpserver"
	"github.com/Skotchmaster/food_api/internal/logging"
	"github.com/Skotchmaster/food_api/internal/repo"
	"github.com/Skotchmaster/food_api/internal/search"
	"github.com/Skotchmaster/food_api/internal/service"
	"github.com/Skotchmaster/food_api/internal/tokens"
)

func main() {
	cfg := config.Load()
	config.MustValidate(cfg)

	logger := logging.NewWithWriter(os.Stdout, cfg.LogLevel, cfg.LogFormat).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gdb, err := db.Open(initCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatalf("db migrate error: %v", err)
	}

	tm, err := tokens.NewManager(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		log.Fatalf("tokens: %v", err)
	}

	pub := events.New(cfg.KafkaBrokers)
	defer func() {
		if err := pub.Close(); err != nil {
			logger.Error("publisher_close_failed", "error", err)
		}
	}()

	r := repo.New(gdb)
	foodSvc := &service.FoodService{Repo: r, Events: pub}
	if cfg.ESURL != "" {
		esCtx, esCancel := context.WithTimeout(context.Background(), 10*time.Second)
		client, err := search.NewClient(esCtx, search.Options{
			URL:      cfg.ESURL,
			Username: cfg.ESUser,
			Password: cfg.ESPassword,
		}, logger)
		esCancel()
		if err != nil {
			log.Fatalf("elasticsearch: %v", err)
		}
		foodSvc.Index = &search.ESIndex{ES: client, Index: cfg.ESIndex}
	}

	userSvc := &service.UserService{Repo: r, Events: pub}
	if _, err := userSvc.EnsureAdmin(context.Background(), cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Fatalf("bootstrap admin: %v", err)
	}

	e := httpserver.New(&httpserver.Deps{
		AuthHandler: &httpserver.AuthHTTP{Svc: &service.AuthService{Repo: r, Tokens: tm, Events: pub}},
		UserHandler: &httpserver.UserHTTP{Svc: userSvc},
		FoodHandler: &httpserver.FoodHTTP{Svc: foodSvc},
		Gate:        auth.NewGate(&auth.Validator{Tokens: tm, Users: r}),
		Ready: func() error {
			sqlDB, err := gdb.DB()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return sqlDB.PingContext(ctx)
		},
	}, logger)

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		logger.Info("server_started", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown_failed", "error", err)
	}
	logger.Info("server_stopped")
}
