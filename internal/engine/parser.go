package engine

import (
	"encoding/json"
	"fmt"

	"github.com/shaiso/Outreach/internal/domain"
)

// ParseGraph декодирует документ {nodes, edges} и валидирует его структуру.
//
// Циклы здесь не проверяются: планировщик обязан переживать циклический
// граф сам. Для строгой проверки используйте ValidateAcyclic.
func ParseGraph(data []byte) (domain.Graph, error) {
	var g domain.Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return domain.Graph{}, fmt.Errorf("decode graph: %w", err)
	}
	if err := ValidateGraph(g); err != nil {
		return domain.Graph{}, err
	}
	return g, nil
}

// ValidateGraph выполняет структурную валидацию графа.
//
// Проверяет:
// - Наличие узлов
// - Непустые и уникальные ID узлов
// - Корректность типов узлов
// - Что рёбра ссылаются на существующие узлы
func ValidateGraph(g domain.Graph) error {
	if len(g.Nodes) == 0 {
		return ErrEmptyGraph
	}

	nodeIDs := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		if err := ValidateNode(n, nodeIDs); err != nil {
			return err
		}
	}

	for i, e := range g.Edges {
		if err := validateEdge(i, e, nodeIDs); err != nil {
			return err
		}
	}

	return nil
}

// ValidateNode валидирует один узел.
// nodeIDs — уже встреченные ID (для проверки уникальности).
func ValidateNode(n domain.Node, nodeIDs map[string]bool) error {
	if n.ID == "" {
		return NewValidationError("", "id", "node has empty ID", ErrEmptyNodeID)
	}

	if nodeIDs[n.ID] {
		return NewValidationError(n.ID, "id",
			fmt.Sprintf("duplicate node ID: %s", n.ID), ErrDuplicateNodeID)
	}
	nodeIDs[n.ID] = true

	if !n.Kind.IsValid() {
		return NewValidationError(n.ID, "type",
			fmt.Sprintf("unknown node type: %q", n.Kind), ErrUnknownNodeKind)
	}

	return nil
}

// validateEdge проверяет, что ребро ссылается на существующие узлы.
func validateEdge(i int, e domain.Edge, nodeIDs map[string]bool) error {
	ref := e.ID
	if ref == "" {
		ref = fmt.Sprintf("edges[%d]", i)
	}

	if !nodeIDs[e.Source] {
		return NewValidationError(ref, "source",
			fmt.Sprintf("edge source references unknown node: %q", e.Source), ErrDanglingEdge)
	}
	if !nodeIDs[e.Target] {
		return NewValidationError(ref, "target",
			fmt.Sprintf("edge target references unknown node: %q", e.Target), ErrDanglingEdge)
	}
	return nil
}
