package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"

	"github.com/handsomefox/mflix-browser/internal/catalog"
	"github.com/handsomefox/mflix-browser/internal/env"
	"github.com/handsomefox/mflix-browser/internal/handlers"
	"github.com/handsomefox/mflix-browser/internal/logger"
	"github.com/handsomefox/mflix-browser/internal/store"
	"github.com/handsomefox/mflix-browser/internal/web"

	_ "github.com/joho/godotenv/autoload"
)

const (
	defaultPort   = "8080"
	defaultDBPath = "data/movies.db"
)

func main() {
	level := slog.LevelDebug
	if env.Current == env.Production {
		level = slog.LevelInfo
	}
	slog.SetDefault(logger.New(level))

	if err := run(); err != nil {
		fmt.Println("Error:", err.Error())
		os.Exit(1)
	}
}

func run() error {
	dbPath := envOr("DB_PATH", defaultDBPath)

	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			slog.Error("Failed to close DB", logger.Error(err))
		}
	}()

	session := catalog.NewSession(st)
	defer session.Close()
	// First page load, as on view mount.
	session.Reload()

	app, err := handlers.New(&handlers.Config{Session: session})
	if err != nil {
		return fmt.Errorf("failed to init handlers: %w", err)
	}

	r := chi.NewRouter()
	r.Use(httplog.RequestLogger(slog.Default(), &httplog.Options{
		Level:         slog.LevelInfo,
		RecoverPanics: true,
	}))
	if env.Current == env.Local {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type"},
		}))
	}
	app.RegisterRoutes(r)

	dist, err := web.Dist()
	if err != nil {
		return fmt.Errorf("failed to load embedded frontend: %w", err)
	}
	spa, err := handlers.SPA(dist)
	if err != nil {
		return fmt.Errorf("failed to init spa handler: %w", err)
	}
	r.NotFound(spa.ServeHTTP)

	addr := ":" + envOr("PORT", defaultPort)
	slog.Info("listening", slog.String("addr", addr))
	server := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func envOr(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
