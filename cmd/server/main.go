package main

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alextreichler/orderdesk/internal/config"
	"github.com/alextreichler/orderdesk/internal/handlers"
	"github.com/alextreichler/orderdesk/internal/store"
	"github.com/alextreichler/orderdesk/templates"
	"github.com/gorilla/csrf"
)

func main() {
	// 1. Logger first, so configuration warnings honour LOG_LEVEL.
	// Using TextHandler for console readability.
	level := new(slog.LevelVar)
	level.Set(config.LogLevel())
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// 2. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	// A .env file may have set LOG_LEVEL.
	level.Set(cfg.LogLevel)

	// 3. Init DB
	db, err := store.NewStore(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to initialize store", "driver", cfg.DBDriver, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	// 4. Session Setup
	sessionStore := handlers.NewSessionStore(cfg.SessionKey, cfg.CookieSecure, cfg.CookieDomain)

	// 5. Init Templates, embedded unless TEMPLATES_DIR points at a checkout
	var pages fs.FS = templates.FS
	if cfg.TemplatesDir != "" {
		pages = os.DirFS(cfg.TemplatesDir)
	}
	tc := handlers.NewTemplateCache()
	if err := tc.Load(pages); err != nil {
		slog.Error("Failed to load templates", "error", err)
		os.Exit(1)
	}
	static, err := fs.Sub(pages, "static")
	if err != nil {
		slog.Error("Failed to open static files", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 6. Routes. Login attempts are limited to 5 per minute per client.
	mux := handlers.Router{
		Deps: handlers.Deps{
			Store:        db,
			Templates:    tc,
			SessionStore: sessionStore,
		},
		LoginLimiter: handlers.NewRateLimiter(ctx, 5, time.Minute),
		Static:       static,
	}.Handler()

	// 7. Middleware Setup
	CSRF := csrf.Protect(
		cfg.CSRFKey,
		csrf.Secure(cfg.CookieSecure),
		csrf.Path("/"),
		csrf.TrustedOrigins([]string{"localhost:" + cfg.Port, "127.0.0.1:" + cfg.Port, "localhost", "127.0.0.1"}),
	)

	// Chain: Logger -> Security Headers -> CSRF -> Mux
	handler := handlers.LoggingMiddleware(
		handlers.SecurityHeadersMiddleware(
			CSRF(mux),
		),
	)

	// 8. Start Server with Graceful Shutdown
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("Server starting", "port", cfg.Port, "driver", cfg.DBDriver)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to listen and serve", "error", err)
			os.Exit(1)
		}
	}()

	<-stop

	slog.Info("Shutting down server gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited gracefully.")
}
