package engine

import (
	"errors"
	"testing"

	"github.com/shaiso/Outreach/internal/domain"
)

func TestValidateGraph_Empty(t *testing.T) {
	if err := ValidateGraph(domain.Graph{}); !errors.Is(err, ErrEmptyGraph) {
		t.Errorf("expected ErrEmptyGraph, got %v", err)
	}
}

func TestValidateGraph_Errors(t *testing.T) {
	tests := []struct {
		name     string
		graph    domain.Graph
		expected error
		field    string
	}{
		{
			name:     "empty node id",
			graph:    domain.Graph{Nodes: []domain.Node{{Kind: domain.KindWait}}},
			expected: ErrEmptyNodeID,
			field:    "id",
		},
		{
			name:     "duplicate node id",
			graph:    domain.Graph{Nodes: []domain.Node{coldEmail("a"), waitDays("a", 1)}},
			expected: ErrDuplicateNodeID,
			field:    "id",
		},
		{
			name:     "unknown kind",
			graph:    domain.Graph{Nodes: []domain.Node{{ID: "a", Kind: "sms"}}},
			expected: ErrUnknownNodeKind,
			field:    "type",
		},
		{
			name: "unknown edge source",
			graph: domain.Graph{
				Nodes: []domain.Node{coldEmail("a")},
				Edges: []domain.Edge{edge("ghost", "a")},
			},
			expected: ErrDanglingEdge,
			field:    "source",
		},
		{
			name: "unknown edge target",
			graph: domain.Graph{
				Nodes: []domain.Node{coldEmail("a")},
				Edges: []domain.Edge{{Source: "a", Target: "ghost"}},
			},
			expected: ErrDanglingEdge,
			field:    "target",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateGraph(tt.graph)
			if !errors.Is(err, tt.expected) {
				t.Fatalf("expected %v, got %v", tt.expected, err)
			}

			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %T", err)
			}
			if vErr.Field != tt.field {
				t.Errorf("expected field %s, got %s", tt.field, vErr.Field)
			}
		})
	}
}

func TestValidateGraph_CycleIsStructurallyValid(t *testing.T) {
	g := domain.Graph{
		Nodes: []domain.Node{waitDays("a", 1), waitDays("b", 1)},
		Edges: []domain.Edge{edge("a", "b"), edge("b", "a")},
	}

	if err := ValidateGraph(g); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestParseGraph_EditorDocument(t *testing.T) {
	doc := []byte(`{
		"nodes": [
			{"id": "node-1", "type": "leadSource", "position": {"x": 250, "y": 100},
			 "data": {"label": "leadSource Node", "source": "q4", "selectedList": "q4"}},
			{"id": "node-2", "type": "wait", "position": {"x": 250, "y": 250},
			 "data": {"label": "wait Node", "delay": "2", "waitType": "days", "specificDate": "", "specificTime": ""}},
			{"id": "node-3", "type": "coldEmail", "position": {"x": 250, "y": 400},
			 "data": {"label": "coldEmail Node", "emailContent": "Hi", "subject": "Intro", "recipientEmail": "a@b.co"}}
		],
		"edges": [
			{"id": "reactflow__edge-node-1-node-2", "source": "node-1", "target": "node-2"},
			{"id": "reactflow__edge-node-2-node-3", "source": "node-2", "target": "node-3"}
		]
	}`)

	g, err := ParseGraph(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(g.Nodes) != 3 || len(g.Edges) != 2 {
		t.Fatalf("expected 3 nodes and 2 edges, got %d/%d", len(g.Nodes), len(g.Edges))
	}

	wait, ok := g.Node("node-2")
	if !ok {
		t.Fatal("node-2 not found")
	}
	if wait.Data.DelayDays() != 2 {
		t.Errorf("expected delay 2, got %d", wait.Data.DelayDays())
	}

	email, _ := g.Node("node-3")
	if email.Data.EmailBody() != "Hi" {
		t.Errorf("expected body Hi, got %q", email.Data.EmailBody())
	}
}

func TestParseGraph_InvalidJSON(t *testing.T) {
	if _, err := ParseGraph([]byte(`{"nodes": [`)); err == nil {
		t.Error("expected error for invalid JSON")
	}
}
