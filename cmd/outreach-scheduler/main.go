// Outreach Scheduler — переводит наступившие письма в очередь доставки.
//
// Работает только лидер (pg_try_advisory_lock); остальные экземпляры
// ждут и периодически пытаются перехватить лидерство.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/Outreach/internal/mq"
	"github.com/shaiso/Outreach/internal/repo"
	"github.com/shaiso/Outreach/internal/scheduler"
	"github.com/shaiso/Outreach/internal/telemetry"
)

const (
	schedLockKey        int64 = 424243
	leaderRetryInterval       = 10 * time.Second
)

func main() {
	_ = godotenv.Load()

	logger := telemetry.SetupLogger()
	logger.Info("starting outreach-scheduler")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pool, err := repo.NewPool(ctx)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("database connected")

	// Без брокера scheduler бесполезен: письма некуда публиковать
	mqConn, err := mq.NewConnection(mq.DefaultURL(), logger)
	if err != nil {
		logger.Error("failed to connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer mqConn.Close()

	if err := mq.SetupTopology(ctx, mqConn); err != nil {
		logger.Error("failed to setup topology", "error", err)
		os.Exit(1)
	}
	logger.Debug("rabbitmq topology", "info", mq.TopologyInfo())

	sched := scheduler.New(scheduler.Config{
		Emails:    repo.NewEmailRepo(pool),
		Publisher: mq.NewPublisher(mqConn, logger),
		Logger:    logger,
	})

	runner, err := scheduler.NewRunner(os.Getenv("SCHED_SPEC"), sched, logger)
	if err != nil {
		logger.Error("invalid SCHED_SPEC", "error", err)
		os.Exit(1)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	port := ":8081"
	if v := os.Getenv("SCHED_PORT"); v != "" {
		port = ":" + v
	}
	go func() {
		logger.Info("listening", "addr", port)
		if err := http.ListenAndServe(port, mux); err != nil {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	leader := waitForLeadership(ctx, pool, logger)
	if leader == nil {
		logger.Info("outreach-scheduler stopped")
		return
	}
	defer leader.Release(context.Background())
	logger.Info("acquired scheduler leadership", "spec", runner.Spec())

	if err := runner.Run(ctx); err != nil {
		logger.Error("scheduler runner error", "error", err)
	}

	logger.Info("outreach-scheduler stopped")
}

// waitForLeadership блокируется, пока экземпляр не станет лидером
// или ctx не будет отменён (тогда возвращает nil).
func waitForLeadership(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) *repo.Leader {
	ticker := time.NewTicker(leaderRetryInterval)
	defer ticker.Stop()

	for {
		leader, err := repo.TryLead(ctx, pool, schedLockKey)
		switch {
		case err != nil:
			logger.Warn("leader election failed", "error", err)
		case leader != nil:
			return leader
		default:
			logger.Debug("another scheduler holds the lock, waiting")
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
