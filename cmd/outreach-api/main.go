// Outreach API — backend редактора кампаний.
//
// Принимает снимки графа (/api/save-flow), запросы на планирование писем
// (/api/schedule-email) и управляет списками лидов (/api/lists).
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/Outreach/internal/api"
	"github.com/shaiso/Outreach/internal/repo"
	"github.com/shaiso/Outreach/internal/telemetry"
)

var startTime = time.Now()

func main() {
	// .env необязателен: в контейнере переменные приходят из окружения
	_ = godotenv.Load()

	logger := telemetry.SetupLogger()
	logger.Info("starting outreach-api")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pool, err := repo.NewPool(ctx)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("connected to database")

	if err := repo.CreateSchema(ctx, pool); err != nil {
		logger.Error("failed to create schema", "error", err)
		os.Exit(1)
	}

	var origins []string
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		origins = strings.Split(v, ",")
	}

	handler := api.NewHandler(api.Config{
		Flows:          repo.NewFlowRepo(pool),
		Lists:          repo.NewListRepo(pool),
		Emails:         repo.NewEmailRepo(pool),
		AllowedOrigins: origins,
		Logger:         logger,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "ok %s", time.Since(startTime))
	})
	mux.Handle("/metrics", promhttp.Handler())
	handler.RegisterRoutes(mux)

	// Порт редактора по умолчанию: UI ходит на localhost:5000/api
	addr := ":5000"
	if v := os.Getenv("API_PORT"); v != "" {
		addr = ":" + v
	}

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	logger.Info("stopped")
}
