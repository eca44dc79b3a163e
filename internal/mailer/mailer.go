package mailer

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Outreach/internal/domain"
	"github.com/shaiso/Outreach/internal/mq"
	"github.com/shaiso/Outreach/internal/telemetry"
)

const defaultPrefetch = 5

// EmailStore — операции хранилища писем, нужные mailer'у.
type EmailStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ScheduledEmail, error)
	MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error
	MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error
	Retry(ctx context.Context, id uuid.UUID, errMsg string, nextAt time.Time) error
}

// Mailer доставляет письма из очереди emails.due.
//
// Mailer — stateless: несколько экземпляров читают одну очередь.
// Повторная попытка планируется через БД (письмо возвращается в PENDING
// с новым send_at), так что паузы backoff не держат consumer.
type Mailer struct {
	emails EmailStore
	sender Sender
	retry  RetryPolicy
	conn   *mq.Connection
	now    func() time.Time

	consumer *mq.Consumer
	prefetch int

	logger     *slog.Logger
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

// Config — конфигурация Mailer.
type Config struct {
	Emails EmailStore
	Sender Sender
	Conn   *mq.Connection

	// Retry (опционально; по умолчанию DefaultRetryPolicy()).
	Retry *RetryPolicy

	Prefetch int
	Clock    func() time.Time
	Logger   *slog.Logger
}

// New создаёт новый Mailer.
func New(cfg Config) *Mailer {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	retry := DefaultRetryPolicy()
	if cfg.Retry != nil {
		retry = *cfg.Retry
	}

	prefetch := cfg.Prefetch
	if prefetch <= 0 {
		prefetch = defaultPrefetch
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	sender := cfg.Sender
	if sender == nil {
		sender = &LogSender{Logger: logger}
	}

	return &Mailer{
		emails:   cfg.Emails,
		sender:   sender,
		retry:    retry,
		conn:     cfg.Conn,
		now:      clock,
		prefetch: prefetch,
		logger:   telemetry.WithComponent(logger, "mailer"),
	}
}

// Start запускает consumer очереди emails.due.
func (m *Mailer) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel

	m.consumer = mq.NewConsumer(m.conn, m.logger, mq.ConsumerConfig{
		Queue:    string(mq.QueueEmailsDue),
		Handler:  m.handleEmailDue,
		Prefetch: m.prefetch,
	})

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		if err := m.consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			m.logger.Error("email consumer error", "error", err)
		}
	}()

	m.logger.Info("mailer started", "prefetch", m.prefetch, "max_attempts", m.retry.MaxAttempts)
	return nil
}

// Stop останавливает Mailer и ждёт завершения текущей доставки.
func (m *Mailer) Stop() {
	m.logger.Info("stopping mailer...")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	if m.consumer != nil {
		m.consumer.Stop()
	}

	m.wg.Wait()
	m.logger.Info("mailer stopped")
}

// handleEmailDue обрабатывает сообщение email.due.
func (m *Mailer) handleEmailDue(ctx context.Context, delivery *mq.Delivery) error {
	payload, err := mq.ParsePayload[mq.EmailDuePayload](&delivery.Message)
	if err != nil {
		return mq.Permanent(err)
	}

	if err := m.Deliver(ctx, payload.EmailID); err != nil {
		// Письмо уже обработано другим экземпляром — ack
		if errors.Is(err, ErrEmailNotFound) || errors.Is(err, ErrEmailNotQueued) {
			m.logger.Debug("email not delivered", "email_id", payload.EmailID, "reason", err)
			return nil
		}
		return err
	}
	return nil
}
