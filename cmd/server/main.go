package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/segyhp/reminder-engine/internal/app"
	"github.com/segyhp/reminder-engine/internal/config"
	"github.com/segyhp/reminder-engine/internal/handler"
	"github.com/segyhp/reminder-engine/pkg/logger"
	"github.com/segyhp/reminder-engine/pkg/response"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("failed to load configuration", zap.Error(err))
	}

	log := logger.Must(cfg.Logging.Level, cfg.Logging.Format)
	defer log.Sync()
	zap.ReplaceGlobals(log)

	ctx := context.Background()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to initialize application", zap.Error(err))
	}
	defer a.Close()

	reminderHandler := handler.NewReminderHandler(a.Service, a.Runs, log.Named("http"))
	healthHandler := handler.NewHealthHandler(a.DB, a.Redis)

	router := setupRoutes(reminderHandler, healthHandler, log)

	server := &http.Server{
		Addr:              cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server starting", zap.String("addr", server.Addr), zap.String("env", cfg.Server.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server exited")
}

func setupRoutes(reminderHandler *handler.ReminderHandler, healthHandler *handler.HealthHandler, log *zap.Logger) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.LoggingMiddleware(log.Named("http")))

	// Health check
	router.HandleFunc("/health", healthHandler.Health).Methods(http.MethodGet)
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()
	reminderHandler.RegisterRoutes(api)

	return router
}
