package engine

import (
	"github.com/shaiso/Outreach/internal/domain"
)

// Node — узел в DAG.
type Node struct {
	// ID — идентификатор узла графа.
	ID string

	// Kind — тип узла.
	Kind domain.NodeKind

	// InDegree — количество различных предков.
	InDegree int

	// DependsOn — узлы, которые питают этот узел.
	DependsOn []*Node

	// Dependents — узлы, которые питает этот узел.
	Dependents []*Node
}

// DAG — граф кампании с топологическим порядком.
type DAG struct {
	// Nodes — все узлы графа (ID → Node).
	Nodes map[string]*Node

	// RootNodes — узлы без входящих рёбер, в порядке снимка.
	RootNodes []*Node

	// Order — топологически отсортированный список узлов.
	Order []*Node
}

// BuildDAG строит DAG из графа.
//
// Рёбра на несуществующие узлы пропускаются (их ловит ValidateGraph).
// Возвращает ErrCyclicGraph, если граф содержит цикл.
func BuildDAG(g domain.Graph) (*DAG, error) {
	dag := &DAG{
		Nodes:     make(map[string]*Node, len(g.Nodes)),
		RootNodes: make([]*Node, 0),
	}

	// Первый проход: создаём узлы в порядке снимка
	ordered := make([]*Node, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		if _, exists := dag.Nodes[n.ID]; exists {
			continue
		}
		node := &Node{
			ID:         n.ID,
			Kind:       n.Kind,
			DependsOn:  make([]*Node, 0),
			Dependents: make([]*Node, 0),
		}
		dag.Nodes[n.ID] = node
		ordered = append(ordered, node)
	}

	// Второй проход: связываем узлы по рёбрам
	for _, e := range g.Edges {
		from, ok := dag.Nodes[e.Source]
		if !ok {
			continue
		}
		to, ok := dag.Nodes[e.Target]
		if !ok {
			continue
		}
		dag.addEdge(from, to)
	}

	for _, node := range ordered {
		if node.InDegree == 0 {
			dag.RootNodes = append(dag.RootNodes, node)
		}
	}

	order, err := dag.topologicalSort()
	if err != nil {
		return nil, err
	}
	dag.Order = order

	return dag, nil
}

// ValidateAcyclic проверяет граф на циклы.
func ValidateAcyclic(g domain.Graph) error {
	_, err := BuildDAG(g)
	return err
}

// addEdge добавляет ребро между узлами.
// Кратные рёбра схлопываются, чтобы не учитывать InDegree дважды.
func (d *DAG) addEdge(from, to *Node) {
	for _, dep := range to.DependsOn {
		if dep.ID == from.ID {
			return // уже связаны
		}
	}
	from.Dependents = append(from.Dependents, to)
	to.DependsOn = append(to.DependsOn, from)
	to.InDegree++
}

// topologicalSort выполняет топологическую сортировку (алгоритм Кана).
// Возвращает ошибку, если обнаружен цикл.
func (d *DAG) topologicalSort() ([]*Node, error) {
	// Копируем inDegree, чтобы не модифицировать оригинал
	inDegree := make(map[string]int, len(d.Nodes))
	for id, node := range d.Nodes {
		inDegree[id] = node.InDegree
	}

	queue := make([]*Node, len(d.RootNodes))
	copy(queue, d.RootNodes)

	order := make([]*Node, 0, len(d.Nodes))

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		order = append(order, node)

		for _, dependent := range node.Dependents {
			inDegree[dependent.ID]--
			if inDegree[dependent.ID] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	// Если не все узлы обработаны — есть цикл
	if len(order) != len(d.Nodes) {
		return nil, ErrCyclicGraph
	}

	return order, nil
}

// GetNode возвращает узел по ID.
func (d *DAG) GetNode(id string) *Node {
	return d.Nodes[id]
}

// Size возвращает количество узлов в DAG.
func (d *DAG) Size() int {
	return len(d.Nodes)
}

// Unreachable возвращает узлы ColdEmail, до которых нельзя дойти
// ни от одного LeadSource. Такие письма всё равно планируются,
// но backend логирует предупреждение.
func (d *DAG) Unreachable() []*Node {
	reached := make(map[string]bool, len(d.Nodes))
	var walk func(n *Node)
	walk = func(n *Node) {
		if reached[n.ID] {
			return
		}
		reached[n.ID] = true
		for _, next := range n.Dependents {
			walk(next)
		}
	}

	for _, node := range d.Order {
		if node.Kind == domain.KindLeadSource {
			walk(node)
		}
	}

	result := make([]*Node, 0)
	for _, node := range d.Order {
		if node.Kind == domain.KindColdEmail && !reached[node.ID] {
			result = append(result, node)
		}
	}
	return result
}
