package domain

import (
	"testing"
	"time"
)

func sampleGraph() Graph {
	return Graph{
		Nodes: []Node{
			{ID: "lead", Kind: KindLeadSource},
			{ID: "wait", Kind: KindWait},
			{ID: "email", Kind: KindColdEmail},
		},
		Edges: []Edge{
			{ID: "e1", Source: "lead", Target: "wait"},
			{ID: "e2", Source: "wait", Target: "email"},
			{ID: "e3", Source: "lead", Target: "email"},
		},
	}
}

func TestGraph_Incoming(t *testing.T) {
	g := sampleGraph()

	in := g.Incoming("email")
	if len(in) != 2 {
		t.Fatalf("expected 2 incoming edges, got %d", len(in))
	}
	if in[0].ID != "e2" || in[1].ID != "e3" {
		t.Errorf("incoming edges out of order: %v", in)
	}

	if len(g.Incoming("lead")) != 0 {
		t.Error("root should have no incoming edges")
	}
}

func TestGraph_EmailNodes(t *testing.T) {
	g := sampleGraph().WithNode(Node{ID: "second", Kind: KindColdEmail})

	emails := g.EmailNodes()
	if len(emails) != 2 || emails[0].ID != "email" || emails[1].ID != "second" {
		t.Errorf("unexpected email nodes: %v", emails)
	}
}

func TestGraph_WithNodeDoesNotMutate(t *testing.T) {
	g := sampleGraph()

	updated := g.WithNode(Node{ID: "wait", Kind: KindWait, Data: NodeData{Delay: 3}})

	orig, _ := g.Node("wait")
	if orig.Data.Delay != 0 {
		t.Error("original graph was mutated")
	}
	got, _ := updated.Node("wait")
	if got.Data.DelayDays() != 3 {
		t.Errorf("expected delay 3, got %d", got.Data.DelayDays())
	}
	if len(updated.Nodes) != len(g.Nodes) {
		t.Errorf("replace should keep node count, got %d", len(updated.Nodes))
	}

	updated.Edges[0].Source = "changed"
	if g.Edges[0].Source != "lead" {
		t.Error("edges are shared between snapshots")
	}
}

func TestGraph_WithoutNode(t *testing.T) {
	g := sampleGraph().WithoutNode("wait")

	if _, ok := g.Node("wait"); ok {
		t.Error("node should be removed")
	}
	if len(g.Edges) != 1 || g.Edges[0].ID != "e3" {
		t.Errorf("expected only e3 to remain, got %v", g.Edges)
	}
}

func TestGraph_WithEdge(t *testing.T) {
	g := sampleGraph()
	updated := g.WithEdge(Edge{ID: "e4", Source: "wait", Target: "email"})

	if len(g.Edges) != 3 {
		t.Error("original graph was mutated")
	}
	if len(updated.Incoming("email")) != 3 {
		t.Errorf("expected 3 incoming edges, got %d", len(updated.Incoming("email")))
	}
}

func TestNewEmailRequest_Defaults(t *testing.T) {
	at := time.Date(2026, 10, 19, 15, 4, 5, 0, time.FixedZone("UTC+2", 2*60*60))

	req := NewEmailRequest(Node{ID: "email", Kind: KindColdEmail}, at)

	if req.Email != DefaultRecipient {
		t.Errorf("expected default recipient, got %s", req.Email)
	}
	if req.Subject != DefaultSubject {
		t.Errorf("expected default subject, got %s", req.Subject)
	}
	if req.Body != DefaultBody {
		t.Errorf("expected default body, got %s", req.Body)
	}
	if req.Time != "2026-10-19T13:04:05.000Z" {
		t.Errorf("unexpected time: %s", req.Time)
	}
}

func TestNewEmailRequest_UsesNodeData(t *testing.T) {
	n := Node{ID: "email", Kind: KindColdEmail, Data: NodeData{
		RecipientEmail: "lead@example.com",
		Subject:        "Hi",
		EmailContent:   "Content",
	}}

	req := NewEmailRequest(n, time.Now())
	if req.Email != "lead@example.com" || req.Subject != "Hi" || req.Body != "Content" {
		t.Errorf("unexpected request: %+v", req)
	}
}

func TestScheduledEmail_Lifecycle(t *testing.T) {
	sendAt := time.Now().Add(time.Hour)
	e := NewScheduledEmail("a@b.co", "s", "b", sendAt)

	if e.Status != EmailStatusPending {
		t.Fatalf("expected PENDING, got %s", e.Status)
	}
	if e.IsDue(time.Now()) {
		t.Error("should not be due before send_at")
	}
	if !e.IsDue(sendAt) {
		t.Error("should be due at send_at")
	}

	e.MarkQueued()
	if e.IsDue(sendAt) {
		t.Error("queued email should not be due again")
	}

	e.MarkFailed("smtp down")
	if e.Status != EmailStatusFailed || e.Attempts != 1 || e.Error != "smtp down" {
		t.Errorf("unexpected state after failure: %+v", e)
	}

	e.MarkSent()
	if e.Status != EmailStatusSent || e.SentAt == nil || e.Error != "" || e.Attempts != 2 {
		t.Errorf("unexpected state after send: %+v", e)
	}
	if !e.Status.IsTerminal() {
		t.Error("SENT should be terminal")
	}
}
