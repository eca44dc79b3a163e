package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Leader — удерживаемая advisory-блокировка Postgres.
//
// Блокировка сессионная, поэтому живёт на выделенном соединении
// до Release: вернуть соединение в пул значит потерять лидерство.
type Leader struct {
	conn *pgxpool.Conn
	key  int64
}

// TryLead пытается стать лидером по ключу key.
// Возвращает nil без ошибки, если блокировку держит другой экземпляр.
func TryLead(ctx context.Context, pool *pgxpool.Pool, key int64) (*Leader, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire conn: %w", err)
	}

	var ok bool
	if err := conn.QueryRow(ctx, `SELECT pg_try_advisory_lock($1)`, key).Scan(&ok); err != nil {
		conn.Release()
		return nil, fmt.Errorf("try advisory lock: %w", err)
	}
	if !ok {
		conn.Release()
		return nil, nil
	}

	return &Leader{conn: conn, key: key}, nil
}

// Release снимает блокировку и возвращает соединение в пул.
func (l *Leader) Release(ctx context.Context) error {
	defer l.conn.Release()
	if _, err := l.conn.Exec(ctx, `SELECT pg_advisory_unlock($1)`, l.key); err != nil {
		return fmt.Errorf("advisory unlock: %w", err)
	}
	return nil
}
