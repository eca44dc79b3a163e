package domain

import (
	"time"

	"github.com/google/uuid"
)

// Значения по умолчанию для пустых полей ColdEmail.
const (
	DefaultRecipient = "yashplw@gmail.com"
	DefaultSubject   = "Cold Email"
	DefaultBody      = "Default email content"
)

// ISOLayout — формат времени в запросе на планирование (как Date.toISOString).
const ISOLayout = "2006-01-02T15:04:05.000Z07:00"

// EmailRequest — тело запроса POST /schedule-email.
type EmailRequest struct {
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required"`
	Body    string `json:"body" validate:"required"`
	Time    string `json:"time" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
}

// NewEmailRequest формирует запрос для узла ColdEmail с подстановкой значений по умолчанию.
func NewEmailRequest(n Node, sendAt time.Time) EmailRequest {
	req := EmailRequest{
		Email:   n.Data.RecipientEmail,
		Subject: n.Data.Subject,
		Body:    n.Data.EmailBody(),
		Time:    FormatISO(sendAt),
	}
	if req.Email == "" {
		req.Email = DefaultRecipient
	}
	if req.Subject == "" {
		req.Subject = DefaultSubject
	}
	if req.Body == "" {
		req.Body = DefaultBody
	}
	return req
}

// FormatISO форматирует момент в UTC с миллисекундами.
func FormatISO(t time.Time) string {
	return t.UTC().Format(ISOLayout)
}

// ScheduledEmail — письмо, принятое backend'ом на отправку.
//
// Scheduler проверяет SendAt и публикует письмо в очередь, когда время подошло.
type ScheduledEmail struct {
	// ID — уникальный идентификатор письма.
	ID uuid.UUID `json:"id"`

	// Email — адрес получателя.
	Email string `json:"email"`

	// Subject — тема письма.
	Subject string `json:"subject"`

	// Body — тело письма.
	Body string `json:"body"`

	// SendAt — момент отправки (UTC).
	SendAt time.Time `json:"send_at"`

	// Status — текущий статус доставки.
	Status EmailStatus `json:"status"`

	// Attempts — количество попыток доставки.
	Attempts int `json:"attempts"`

	// Error — текст последней ошибки доставки.
	Error string `json:"error,omitempty"`

	// SentAt — время успешной доставки.
	SentAt *time.Time `json:"sent_at,omitempty"`

	// CreatedAt — время приёма письма.
	CreatedAt time.Time `json:"created_at"`
}

// NewScheduledEmail создаёт письмо в статусе PENDING.
func NewScheduledEmail(email, subject, body string, sendAt time.Time) *ScheduledEmail {
	return &ScheduledEmail{
		ID:        uuid.New(),
		Email:     email,
		Subject:   subject,
		Body:      body,
		SendAt:    sendAt.UTC(),
		Status:    EmailStatusPending,
		CreatedAt: time.Now().UTC(),
	}
}

// IsDue проверяет, пора ли отправлять.
func (e *ScheduledEmail) IsDue(now time.Time) bool {
	if e.Status != EmailStatusPending {
		return false
	}
	return !now.Before(e.SendAt)
}

// MarkQueued переводит письмо в статус QUEUED.
func (e *ScheduledEmail) MarkQueued() {
	e.Status = EmailStatusQueued
}

// MarkSent переводит письмо в статус SENT.
func (e *ScheduledEmail) MarkSent() {
	now := time.Now().UTC()
	e.Status = EmailStatusSent
	e.SentAt = &now
	e.Attempts++
	e.Error = ""
}

// MarkFailed переводит письмо в статус FAILED с ошибкой.
func (e *ScheduledEmail) MarkFailed(err string) {
	e.Status = EmailStatusFailed
	e.Attempts++
	e.Error = err
}
