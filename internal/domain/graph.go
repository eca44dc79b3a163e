package domain

// Graph — снимок графа кампании, собранный редактором.
//
// Graph — значение: ядро никогда не мутирует снимок на месте.
// Изменения выполняются функциями With*/Without*, которые возвращают новый Graph.
type Graph struct {
	// Nodes — узлы в порядке редактора (snapshot order).
	Nodes []Node `json:"nodes"`

	// Edges — рёбра в порядке добавления. Порядок важен для override.
	Edges []Edge `json:"edges"`
}

// Edge — направленное ребро: Source питает Target.
//
// Допускаются кратные рёбра между одной парой узлов.
type Edge struct {
	ID           string `json:"id,omitempty"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty"`
}

// Node возвращает первый узел с указанным ID.
func (g Graph) Node(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Incoming возвращает входящие рёбра узла в порядке хранения.
func (g Graph) Incoming(id string) []Edge {
	edges := make([]Edge, 0)
	for _, e := range g.Edges {
		if e.Target == id {
			edges = append(edges, e)
		}
	}
	return edges
}

// EmailNodes возвращает узлы ColdEmail в порядке снимка.
func (g Graph) EmailNodes() []Node {
	nodes := make([]Node, 0)
	for _, n := range g.Nodes {
		if n.Kind == KindColdEmail {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// WithNode возвращает граф, в котором узел с n.ID заменён на n
// (или n добавлен в конец, если такого узла не было).
func (g Graph) WithNode(n Node) Graph {
	nodes := make([]Node, 0, len(g.Nodes)+1)
	replaced := false
	for _, existing := range g.Nodes {
		if existing.ID == n.ID && !replaced {
			nodes = append(nodes, n)
			replaced = true
			continue
		}
		nodes = append(nodes, existing)
	}
	if !replaced {
		nodes = append(nodes, n)
	}
	return Graph{Nodes: nodes, Edges: cloneEdges(g.Edges)}
}

// WithoutNode возвращает граф без узла id и без всех его рёбер.
func (g Graph) WithoutNode(id string) Graph {
	nodes := make([]Node, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		if n.ID != id {
			nodes = append(nodes, n)
		}
	}
	edges := make([]Edge, 0, len(g.Edges))
	for _, e := range g.Edges {
		if e.Source != id && e.Target != id {
			edges = append(edges, e)
		}
	}
	return Graph{Nodes: nodes, Edges: edges}
}

// WithEdge возвращает граф с добавленным в конец ребром.
func (g Graph) WithEdge(e Edge) Graph {
	edges := make([]Edge, 0, len(g.Edges)+1)
	edges = append(edges, g.Edges...)
	edges = append(edges, e)
	nodes := make([]Node, len(g.Nodes))
	copy(nodes, g.Nodes)
	return Graph{Nodes: nodes, Edges: edges}
}

func cloneEdges(edges []Edge) []Edge {
	out := make([]Edge, len(edges))
	copy(out, edges)
	return out
}
