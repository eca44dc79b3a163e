// Package telemetry — логирование и метрики сервисов Outreach.
//
// Включает:
//   - logging.go — structured logging через slog (LOG_LEVEL, LOG_FORMAT)
//   - metrics.go — Prometheus счётчики API, планирования и доставки
//
// API, scheduler и mailer экспортируют метрики на /metrics.
package telemetry
