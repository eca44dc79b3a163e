package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/Outreach/internal/domain"
)

// EmailRepo — репозиторий запланированных писем.
type EmailRepo struct {
	pool *pgxpool.Pool
}

// NewEmailRepo создаёт новый EmailRepo.
func NewEmailRepo(pool *pgxpool.Pool) *EmailRepo {
	return &EmailRepo{pool: pool}
}

// EmailFilter — параметры фильтрации писем.
type EmailFilter struct {
	Status *domain.EmailStatus
	Limit  int
	Offset int
}

const emailColumns = `id, email, subject, body, send_at, status, attempts, error, sent_at, created_at`

// Create сохраняет новое письмо.
func (r *EmailRepo) Create(ctx context.Context, e *domain.ScheduledEmail) error {
	query := `
		INSERT INTO scheduled_emails (id, email, subject, body, send_at, status, attempts, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.pool.Exec(ctx, query,
		e.ID,
		e.Email,
		e.Subject,
		e.Body,
		e.SendAt,
		string(e.Status),
		e.Attempts,
		e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert scheduled email: %w", err)
	}
	return nil
}

// GetByID возвращает письмо по ID.
func (r *EmailRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ScheduledEmail, error) {
	query := `SELECT ` + emailColumns + ` FROM scheduled_emails WHERE id = $1`
	return scanEmail(r.pool.QueryRow(ctx, query, id))
}

// List возвращает письма с фильтрацией, новые первыми.
func (r *EmailRepo) List(ctx context.Context, filter EmailFilter) ([]domain.ScheduledEmail, error) {
	query := `SELECT ` + emailColumns + ` FROM scheduled_emails WHERE 1=1`
	args := []any{}
	argNum := 1

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, string(*filter.Status))
		argNum++
	}

	query += " ORDER BY send_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, filter.Limit)
		argNum++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argNum)
		args = append(args, filter.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list scheduled emails: %w", err)
	}
	defer rows.Close()

	return scanEmails(rows)
}

// ListDue возвращает письма PENDING, у которых наступил send_at.
func (r *EmailRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]domain.ScheduledEmail, error) {
	query := `SELECT ` + emailColumns + `
		FROM scheduled_emails
		WHERE status = 'PENDING'
		  AND send_at <= $1
		ORDER BY send_at ASC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("list due emails: %w", err)
	}
	defer rows.Close()

	return scanEmails(rows)
}

// MarkQueued переводит PENDING → QUEUED.
// Возвращает ErrInvalidState, если письмо уже забрано.
func (r *EmailRepo) MarkQueued(ctx context.Context, id uuid.UUID) error {
	return r.transition(ctx, `
		UPDATE scheduled_emails
		SET status = 'QUEUED'
		WHERE id = $1 AND status = 'PENDING'
	`, id)
}

// Requeue возвращает QUEUED → PENDING (публикация не удалась).
func (r *EmailRepo) Requeue(ctx context.Context, id uuid.UUID) error {
	return r.transition(ctx, `
		UPDATE scheduled_emails
		SET status = 'PENDING'
		WHERE id = $1 AND status = 'QUEUED'
	`, id)
}

// MarkSent фиксирует успешную доставку.
func (r *EmailRepo) MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error {
	return r.transition(ctx, `
		UPDATE scheduled_emails
		SET status = 'SENT', sent_at = $2, attempts = attempts + 1, error = NULL
		WHERE id = $1 AND status = 'QUEUED'
	`, id, sentAt)
}

// MarkFailed фиксирует окончательный отказ доставки.
func (r *EmailRepo) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	return r.transition(ctx, `
		UPDATE scheduled_emails
		SET status = 'FAILED', attempts = attempts + 1, error = $2
		WHERE id = $1 AND status = 'QUEUED'
	`, id, errMsg)
}

// Retry возвращает письмо в PENDING с новым send_at после неудачной попытки.
func (r *EmailRepo) Retry(ctx context.Context, id uuid.UUID, errMsg string, nextAt time.Time) error {
	return r.transition(ctx, `
		UPDATE scheduled_emails
		SET status = 'PENDING', attempts = attempts + 1, error = $2, send_at = $3
		WHERE id = $1 AND status = 'QUEUED'
	`, id, errMsg, nextAt)
}

// transition выполняет условный UPDATE статуса.
// Ноль затронутых строк: письма нет (ErrNotFound) или статус другой (ErrInvalidState).
func (r *EmailRepo) transition(ctx context.Context, query string, id uuid.UUID, args ...any) error {
	result, err := r.pool.Exec(ctx, query, append([]any{id}, args...)...)
	if err != nil {
		return fmt.Errorf("update scheduled email: %w", err)
	}
	if result.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM scheduled_emails WHERE id = $1)`, id,
	).Scan(&exists); err != nil {
		return fmt.Errorf("check scheduled email: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	return ErrInvalidState
}

func scanEmail(row pgx.Row) (*domain.ScheduledEmail, error) {
	var e domain.ScheduledEmail
	var status string
	var errMsg *string

	err := row.Scan(
		&e.ID,
		&e.Email,
		&e.Subject,
		&e.Body,
		&e.SendAt,
		&status,
		&e.Attempts,
		&errMsg,
		&e.SentAt,
		&e.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan scheduled email: %w", err)
	}

	e.Status = domain.ParseEmailStatus(status)
	if errMsg != nil {
		e.Error = *errMsg
	}
	return &e, nil
}

func scanEmails(rows pgx.Rows) ([]domain.ScheduledEmail, error) {
	emails := make([]domain.ScheduledEmail, 0)
	for rows.Next() {
		e, err := scanEmail(rows)
		if err != nil {
			return nil, err
		}
		emails = append(emails, *e)
	}
	return emails, rows.Err()
}
