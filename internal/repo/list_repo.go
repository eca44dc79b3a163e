package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/Outreach/internal/domain"
)

// ListRepo — репозиторий списков лидов.
type ListRepo struct {
	pool *pgxpool.Pool
}

// NewListRepo создаёт новый ListRepo.
func NewListRepo(pool *pgxpool.Pool) *ListRepo {
	return &ListRepo{pool: pool}
}

// Create создаёт список. Возвращает ErrAlreadyExists, если имя занято.
func (r *ListRepo) Create(ctx context.Context, list *domain.LeadList) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO lead_lists (id, name, created_at)
		VALUES ($1, $2, $3)
	`, list.ID, list.Name, list.CreatedAt)
	if isUniqueViolation(err) {
		return ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("insert lead list: %w", err)
	}
	return nil
}

// List возвращает все списки в порядке создания.
func (r *ListRepo) List(ctx context.Context) ([]domain.LeadList, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, created_at
		FROM lead_lists
		ORDER BY created_at, name
	`)
	if err != nil {
		return nil, fmt.Errorf("list lead lists: %w", err)
	}
	defer rows.Close()

	lists := make([]domain.LeadList, 0)
	for rows.Next() {
		var list domain.LeadList
		if err := rows.Scan(&list.ID, &list.Name, &list.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan lead list: %w", err)
		}
		lists = append(lists, list)
	}
	return lists, rows.Err()
}
