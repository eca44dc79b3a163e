package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schemaSQL — таблицы Outreach. Все операторы идемпотентны.
//
// Порядок узлов и рёбер хранится явно (position): от порядка рёбер
// зависит выбор override при планировании.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS flows (
    id         TEXT PRIMARY KEY,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS flow_nodes (
    flow_id    TEXT NOT NULL REFERENCES flows(id) ON DELETE CASCADE,
    position   INT  NOT NULL,
    id         TEXT NOT NULL,
    type       TEXT NOT NULL,
    pos_x      DOUBLE PRECISION NOT NULL DEFAULT 0,
    pos_y      DOUBLE PRECISION NOT NULL DEFAULT 0,
    data       JSONB NOT NULL DEFAULT '{}',
    PRIMARY KEY (flow_id, id)
);

CREATE TABLE IF NOT EXISTS flow_edges (
    flow_id       TEXT NOT NULL REFERENCES flows(id) ON DELETE CASCADE,
    position      INT  NOT NULL,
    id            TEXT NOT NULL DEFAULT '',
    source        TEXT NOT NULL,
    target        TEXT NOT NULL,
    source_handle TEXT NOT NULL DEFAULT '',
    target_handle TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (flow_id, position)
);

CREATE TABLE IF NOT EXISTS lead_lists (
    id         UUID PRIMARY KEY,
    name       TEXT NOT NULL UNIQUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS scheduled_emails (
    id         UUID PRIMARY KEY,
    email      TEXT NOT NULL,
    subject    TEXT NOT NULL,
    body       TEXT NOT NULL,
    send_at    TIMESTAMPTZ NOT NULL,
    status     TEXT NOT NULL DEFAULT 'PENDING',
    attempts   INT  NOT NULL DEFAULT 0,
    error      TEXT,
    sent_at    TIMESTAMPTZ,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_scheduled_emails_due ON scheduled_emails(status, send_at);
`

// CreateSchema создаёт таблицы, если их ещё нет.
func CreateSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// DropSchema удаляет все таблицы Outreach.
func DropSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx,
		`DROP TABLE IF EXISTS scheduled_emails, lead_lists, flow_edges, flow_nodes, flows CASCADE`)
	if err != nil {
		return fmt.Errorf("drop schema: %w", err)
	}
	return nil
}
