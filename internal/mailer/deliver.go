package mailer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Outreach/internal/domain"
	"github.com/shaiso/Outreach/internal/repo"
	"github.com/shaiso/Outreach/internal/telemetry"
)

// Deliver загружает письмо, отправляет его и фиксирует результат.
//
// Ошибка доставки не возвращается: она записывается в письмо
// (Retry или MarkFailed). Возвращаются только ошибки БД и
// ErrEmailNotFound / ErrEmailNotQueued.
func (m *Mailer) Deliver(ctx context.Context, emailID uuid.UUID) error {
	email, err := m.emails.GetByID(ctx, emailID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrEmailNotFound, emailID)
		}
		return fmt.Errorf("get email: %w", err)
	}

	if email.Status != domain.EmailStatusQueued {
		return ErrEmailNotQueued
	}

	logger := telemetry.WithEmailID(m.logger, email.ID.String())
	attempt := email.Attempts + 1

	start := time.Now()
	sendErr := m.sender.Send(ctx, email)
	telemetry.DeliveryDuration.Observe(time.Since(start).Seconds())

	if sendErr == nil {
		if err := m.emails.MarkSent(ctx, email.ID, m.now().UTC()); err != nil {
			return fmt.Errorf("mark sent: %w", err)
		}
		telemetry.EmailsDeliveredTotal.WithLabelValues("sent").Inc()
		logger.Info("email sent", "to", email.Email, "attempt", attempt)
		return nil
	}

	// Отмена контекста — не вина письма, возвращаем сообщение в очередь
	if ctx.Err() != nil {
		return ctx.Err()
	}

	if m.retry.ShouldRetry(attempt, sendErr) {
		nextAt := m.now().Add(m.retry.Delay(attempt)).UTC()
		if err := m.emails.Retry(ctx, email.ID, sendErr.Error(), nextAt); err != nil {
			return fmt.Errorf("schedule retry: %w", err)
		}
		telemetry.EmailsDeliveredTotal.WithLabelValues("retry").Inc()
		logger.Warn("email delivery failed, retry scheduled",
			"attempt", attempt,
			"next_at", nextAt,
			"error", sendErr,
		)
		return nil
	}

	if err := m.emails.MarkFailed(ctx, email.ID, sendErr.Error()); err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	telemetry.EmailsDeliveredTotal.WithLabelValues("failed").Inc()
	logger.Error("email delivery failed",
		"attempt", attempt,
		"error", sendErr,
	)
	return nil
}
