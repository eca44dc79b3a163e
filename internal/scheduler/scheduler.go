package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Outreach/internal/domain"
	"github.com/shaiso/Outreach/internal/repo"
	"github.com/shaiso/Outreach/internal/telemetry"
)

// EmailStore — операции хранилища писем, нужные планировщику.
type EmailStore interface {
	ListDue(ctx context.Context, now time.Time, limit int) ([]domain.ScheduledEmail, error)
	MarkQueued(ctx context.Context, id uuid.UUID) error
	Requeue(ctx context.Context, id uuid.UUID) error
}

// Publisher ставит письмо в очередь доставки.
type Publisher interface {
	PublishEmailDue(ctx context.Context, emailID uuid.UUID, attempt int) error
}

// Scheduler — планировщик, переводящий наступившие письма в очередь.
type Scheduler struct {
	emails    EmailStore
	publisher Publisher
	logger    *slog.Logger
	batchSize int
	now       func() time.Time
}

// Config — конфигурация Scheduler.
type Config struct {
	Emails    EmailStore
	Publisher Publisher
	Logger    *slog.Logger
	BatchSize int              // писем за один тик (default: 100)
	Clock     func() time.Time // default: time.Now
}

// New создаёт новый Scheduler.
func New(cfg Config) *Scheduler {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		emails:    cfg.Emails,
		publisher: cfg.Publisher,
		logger:    telemetry.WithComponent(logger, "scheduler"),
		batchSize: batchSize,
		now:       clock,
	}
}

// Tick выполняет один тик планировщика.
//
// 1. Находит письма PENDING с send_at <= now
// 2. Переводит каждое в QUEUED (условный UPDATE, гонки между репликами безопасны)
// 3. Публикует email.due; при сбое публикации возвращает письмо в PENDING
//
// Ошибка одного письма не блокирует обработку остальных.
func (s *Scheduler) Tick(ctx context.Context) error {
	now := s.now()

	emails, err := s.emails.ListDue(ctx, now, s.batchSize)
	if err != nil {
		telemetry.SchedulerTicksTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("list due emails: %w", err)
	}

	if len(emails) == 0 {
		telemetry.SchedulerTicksTotal.WithLabelValues("idle").Inc()
		return nil
	}

	s.logger.Debug("found due emails", "count", len(emails))

	var queued, skipped, failed int
	for i := range emails {
		email := &emails[i]

		ok, err := s.processEmail(ctx, email)
		switch {
		case err != nil:
			failed++
			s.logger.Error("failed to queue email",
				"email_id", email.ID,
				"error", err,
			)
		case ok:
			queued++
		default:
			skipped++
		}
	}

	telemetry.SchedulerTicksTotal.WithLabelValues("processed").Inc()
	s.logger.Info("scheduler tick completed",
		"due", len(emails),
		"queued", queued,
		"skipped", skipped,
		"failed", failed,
	)

	return nil
}

// processEmail ставит одно письмо в очередь.
// Возвращает false без ошибки, если письмо уже забрал другой тик.
func (s *Scheduler) processEmail(ctx context.Context, email *domain.ScheduledEmail) (bool, error) {
	if err := s.emails.MarkQueued(ctx, email.ID); err != nil {
		if errors.Is(err, repo.ErrInvalidState) || errors.Is(err, repo.ErrNotFound) {
			s.logger.Debug("email already taken, skipping", "email_id", email.ID)
			return false, nil
		}
		return false, fmt.Errorf("mark queued: %w", err)
	}

	if err := s.publisher.PublishEmailDue(ctx, email.ID, email.Attempts); err != nil {
		// Письмо должно вернуться в PENDING, иначе оно навсегда останется в QUEUED
		if rqErr := s.emails.Requeue(ctx, email.ID); rqErr != nil {
			return false, errors.Join(fmt.Errorf("publish email.due: %w", err), fmt.Errorf("requeue: %w", rqErr))
		}
		return false, fmt.Errorf("publish email.due: %w", err)
	}

	telemetry.EmailsQueuedTotal.Inc()
	s.logger.Info("email queued",
		"email_id", email.ID,
		"send_at", email.SendAt,
		"attempt", email.Attempts,
	)
	return true, nil
}
