package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/smtp"
	"net/textproto"
	"os"
	"strings"
	"time"

	"github.com/shaiso/Outreach/internal/domain"
)

// Sender доставляет одно письмо.
//
// Ошибка, обёрнутая в ErrRejected, означает окончательный отказ.
// Любая другая ошибка считается временной.
type Sender interface {
	Send(ctx context.Context, email *domain.ScheduledEmail) error
}

// NewSenderFromEnv выбирает отправителя по окружению:
// MAILER_WEBHOOK_URL → HTTPSender, SMTP_ADDR → SMTPSender, иначе LogSender.
func NewSenderFromEnv(logger *slog.Logger) Sender {
	if url := os.Getenv("MAILER_WEBHOOK_URL"); url != "" {
		return &HTTPSender{URL: url, Token: os.Getenv("MAILER_WEBHOOK_TOKEN")}
	}

	if addr := os.Getenv("SMTP_ADDR"); addr != "" {
		from := os.Getenv("SMTP_FROM")
		if from == "" {
			from = "outreach@localhost"
		}
		s := &SMTPSender{Addr: addr, From: from}
		if user := os.Getenv("SMTP_USER"); user != "" {
			host, _, _ := strings.Cut(addr, ":")
			s.Auth = smtp.PlainAuth("", user, os.Getenv("SMTP_PASSWORD"), host)
		}
		return s
	}

	return &LogSender{Logger: logger}
}

// LogSender только пишет письмо в лог. Для локальной разработки.
type LogSender struct {
	Logger *slog.Logger
}

func (s *LogSender) Send(ctx context.Context, email *domain.ScheduledEmail) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("email delivered (log sender)",
		"email_id", email.ID,
		"to", email.Email,
		"subject", email.Subject,
	)
	return nil
}

// SMTPSender отправляет письмо через SMTP-relay.
type SMTPSender struct {
	Addr string
	From string
	Auth smtp.Auth
}

func (s *SMTPSender) Send(ctx context.Context, email *domain.ScheduledEmail) error {
	// smtp.SendMail не принимает context, проверяем отмену до отправки
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := buildMessage(s.From, email)
	if err := smtp.SendMail(s.Addr, s.Auth, s.From, []string{email.Email}, msg); err != nil {
		// 5xx от SMTP-сервера — постоянный отказ (неверный адрес и т.п.)
		var protoErr *textproto.Error
		if errors.As(err, &protoErr) && protoErr.Code >= 500 {
			return fmt.Errorf("%w: %v", ErrRejected, err)
		}
		return fmt.Errorf("%w: %v", ErrSend, err)
	}
	return nil
}

// buildMessage формирует RFC 5322 сообщение с plain-text телом.
func buildMessage(from string, email *domain.ScheduledEmail) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", email.Email)
	fmt.Fprintf(&b, "Subject: %s\r\n", email.Subject)
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().UTC().Format(time.RFC1123Z))
	fmt.Fprintf(&b, "Message-ID: <%s@outreach>\r\n", email.ID)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(email.Body, "\n", "\r\n"))
	return b.Bytes()
}

const defaultHTTPTimeout = 30 * time.Second

// HTTPSender передаёт письмо во внешний почтовый API (webhook).
//
// Тело запроса: {"id", "to", "subject", "body"}.
// 2xx — доставлено, 4xx — ErrRejected, остальное — ErrSend.
type HTTPSender struct {
	URL     string
	Token   string
	Timeout time.Duration
	Client  *http.Client
}

type webhookPayload struct {
	ID      string `json:"id"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func (s *HTTPSender) Send(ctx context.Context, email *domain.ScheduledEmail) error {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	body, err := json.Marshal(webhookPayload{
		ID:      email.ID.String(),
		To:      email.Email,
		Subject: email.Subject,
		Body:    email.Body,
	})
	if err != nil {
		return fmt.Errorf("%w: marshal body: %v", ErrRejected, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: create request: %v", ErrRejected, err)
	}
	req.Header.Set("Content-Type", "application/json")
	// Повтор с тем же ключом провайдер не доставит дважды
	req.Header.Set("Idempotency-Key", email.ID.String())
	if s.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSend, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 300 {
		return nil
	}

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	msg := fmt.Sprintf("HTTP %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
		return fmt.Errorf("%w: %s", ErrRejected, msg)
	}
	return fmt.Errorf("%w: %s", ErrSend, msg)
}

// truncate обрезает строку до указанной длины.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
