package repo

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/Outreach/internal/domain"
)

// newTestPool подключается к OUTREACH_TEST_DB_URL и пересоздаёт схему.
// Без переменной тест пропускается.
func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	url := os.Getenv("OUTREACH_TEST_DB_URL")
	if url == "" {
		t.Skip("OUTREACH_TEST_DB_URL not set, skipping PostgreSQL integration test")
	}
	t.Setenv("DB_URL", url)

	ctx := context.Background()
	pool, err := NewPool(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := DropSchema(ctx, pool); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := CreateSchema(ctx, pool); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return pool
}

func TestFlowRepo_SaveReplacesSnapshot(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	flows := NewFlowRepo(pool)

	first := &domain.Flow{ID: domain.DefaultFlowID, Graph: domain.Graph{
		Nodes: []domain.Node{
			{ID: "wait", Kind: domain.KindWait, Data: domain.NodeData{WaitType: domain.WaitTypeDays, Delay: 3}},
			{ID: "mail", Kind: domain.KindColdEmail, Data: domain.NodeData{Subject: "Hi"}},
		},
		Edges: []domain.Edge{{ID: "e1", Source: "wait", Target: "mail"}},
	}}
	if err := flows.Save(ctx, first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second := &domain.Flow{ID: domain.DefaultFlowID, Graph: domain.Graph{
		Nodes: []domain.Node{{ID: "only", Kind: domain.KindLeadSource}},
	}}
	if err := flows.Save(ctx, second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := flows.Get(ctx, domain.DefaultFlowID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Graph.Nodes) != 1 || got.Graph.Nodes[0].ID != "only" || len(got.Graph.Edges) != 0 {
		t.Errorf("expected snapshot replaced, got %+v", got.Graph)
	}

	if _, err := flows.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFlowRepo_PreservesOrderAndData(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	flows := NewFlowRepo(pool)

	flow := &domain.Flow{ID: "ordered", Graph: domain.Graph{
		Nodes: []domain.Node{
			{ID: "z", Kind: domain.KindWait, Data: domain.NodeData{WaitType: domain.WaitTypeSpecific, SpecificDate: "2026-11-01", SpecificTime: "09:30"}},
			{ID: "a", Kind: domain.KindColdEmail, Data: domain.NodeData{RecipientEmail: "lead@example.com"}},
		},
		Edges: []domain.Edge{
			{ID: "e2", Source: "z", Target: "a"},
			{ID: "e1", Source: "z", Target: "a"},
		},
	}}
	if err := flows.Save(ctx, flow); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := flows.Get(ctx, "ordered")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Graph.Nodes[0].ID != "z" || got.Graph.Edges[0].ID != "e2" {
		t.Errorf("editor order lost: %+v", got.Graph)
	}
	if got.Graph.Nodes[0].Data.SpecificTime != "09:30" {
		t.Errorf("node data lost: %+v", got.Graph.Nodes[0].Data)
	}
}

func TestListRepo(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	lists := NewListRepo(pool)

	if err := lists.Create(ctx, domain.NewLeadList("q4")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := lists.Create(ctx, domain.NewLeadList("q4")); !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}

	all, err := lists.List(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 1 || all[0].Name != "q4" {
		t.Errorf("unexpected lists: %+v", all)
	}
}

func TestEmailRepo_Lifecycle(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	emails := NewEmailRepo(pool)
	now := time.Now().UTC().Truncate(time.Millisecond)

	due := domain.NewScheduledEmail("due@example.com", "Hi", "Hello", now.Add(-time.Minute))
	later := domain.NewScheduledEmail("later@example.com", "Hi", "Hello", now.Add(time.Hour))
	for _, e := range []*domain.ScheduledEmail{due, later} {
		if err := emails.Create(ctx, e); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	list, err := emails.ListDue(ctx, now, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 1 || list[0].ID != due.ID {
		t.Fatalf("expected only due email, got %+v", list)
	}

	if err := emails.MarkQueued(ctx, due.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Второй захват того же письма отклоняется
	if err := emails.MarkQueued(ctx, due.ID); !errors.Is(err, ErrInvalidState) {
		t.Errorf("expected ErrInvalidState, got %v", err)
	}

	retryAt := now.Add(time.Minute)
	if err := emails.Retry(ctx, due.ID, "timeout", retryAt); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := emails.GetByID(ctx, due.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != domain.EmailStatusPending || got.Attempts != 1 || got.Error != "timeout" {
		t.Errorf("unexpected after retry: %+v", got)
	}

	if err := emails.MarkQueued(ctx, due.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := emails.MarkSent(ctx, due.ID, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ = emails.GetByID(ctx, due.ID)
	if got.Status != domain.EmailStatusSent || got.SentAt == nil || got.Error != "" || got.Attempts != 2 {
		t.Errorf("unexpected after send: %+v", got)
	}

	sent := domain.EmailStatusSent
	filtered, err := emails.List(ctx, EmailFilter{Status: &sent})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(filtered) != 1 {
		t.Errorf("expected 1 sent email, got %d", len(filtered))
	}

	if err := emails.MarkFailed(ctx, uuid.New(), "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
