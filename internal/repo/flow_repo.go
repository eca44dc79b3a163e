package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/Outreach/internal/domain"
)

// FlowRepo — репозиторий сохранённых графов кампаний.
type FlowRepo struct {
	pool *pgxpool.Pool
}

// NewFlowRepo создаёт новый FlowRepo.
func NewFlowRepo(pool *pgxpool.Pool) *FlowRepo {
	return &FlowRepo{pool: pool}
}

// Save сохраняет снимок графа, полностью заменяя предыдущий.
//
// Узлы и рёбра пишутся в одной транзакции вместе с порядком,
// в котором их прислал редактор.
func (r *FlowRepo) Save(ctx context.Context, flow *domain.Flow) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO flows (id, updated_at)
		VALUES ($1, NOW())
		ON CONFLICT (id) DO UPDATE SET updated_at = NOW()
		RETURNING updated_at
	`, flow.ID).Scan(&flow.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert flow: %w", err)
	}

	// Replace semantics: старый снимок удаляется целиком
	if _, err := tx.Exec(ctx, `DELETE FROM flow_edges WHERE flow_id = $1`, flow.ID); err != nil {
		return fmt.Errorf("delete edges: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM flow_nodes WHERE flow_id = $1`, flow.ID); err != nil {
		return fmt.Errorf("delete nodes: %w", err)
	}

	for i, n := range flow.Graph.Nodes {
		dataJSON, err := json.Marshal(n.Data)
		if err != nil {
			return fmt.Errorf("marshal node %s data: %w", n.ID, err)
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO flow_nodes (flow_id, position, id, type, pos_x, pos_y, data)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, flow.ID, i, n.ID, string(n.Kind), n.Position.X, n.Position.Y, dataJSON); err != nil {
			return fmt.Errorf("insert node %s: %w", n.ID, err)
		}
	}

	for i, e := range flow.Graph.Edges {
		if _, err := tx.Exec(ctx, `
			INSERT INTO flow_edges (flow_id, position, id, source, target, source_handle, target_handle)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, flow.ID, i, e.ID, e.Source, e.Target, e.SourceHandle, e.TargetHandle); err != nil {
			return fmt.Errorf("insert edge %d: %w", i, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Get возвращает сохранённый граф по ID.
func (r *FlowRepo) Get(ctx context.Context, id string) (*domain.Flow, error) {
	flow := &domain.Flow{ID: id}

	err := r.pool.QueryRow(ctx, `SELECT updated_at FROM flows WHERE id = $1`, id).Scan(&flow.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get flow: %w", err)
	}

	nodes, err := r.listNodes(ctx, id)
	if err != nil {
		return nil, err
	}
	edges, err := r.listEdges(ctx, id)
	if err != nil {
		return nil, err
	}

	flow.Graph = domain.Graph{Nodes: nodes, Edges: edges}
	return flow, nil
}

func (r *FlowRepo) listNodes(ctx context.Context, flowID string) ([]domain.Node, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, type, pos_x, pos_y, data
		FROM flow_nodes
		WHERE flow_id = $1
		ORDER BY position
	`, flowID)
	if err != nil {
		return nil, fmt.Errorf("list nodes: %w", err)
	}
	defer rows.Close()

	nodes := make([]domain.Node, 0)
	for rows.Next() {
		var n domain.Node
		var kind string
		var dataJSON []byte
		if err := rows.Scan(&n.ID, &kind, &n.Position.X, &n.Position.Y, &dataJSON); err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		n.Kind = domain.NodeKind(kind)
		if err := json.Unmarshal(dataJSON, &n.Data); err != nil {
			return nil, fmt.Errorf("unmarshal node %s data: %w", n.ID, err)
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

func (r *FlowRepo) listEdges(ctx context.Context, flowID string) ([]domain.Edge, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, source, target, source_handle, target_handle
		FROM flow_edges
		WHERE flow_id = $1
		ORDER BY position
	`, flowID)
	if err != nil {
		return nil, fmt.Errorf("list edges: %w", err)
	}
	defer rows.Close()

	edges := make([]domain.Edge, 0)
	for rows.Next() {
		var e domain.Edge
		if err := rows.Scan(&e.ID, &e.Source, &e.Target, &e.SourceHandle, &e.TargetHandle); err != nil {
			return nil, fmt.Errorf("scan edge: %w", err)
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}
