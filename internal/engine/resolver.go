package engine

import (
	"math"
	"time"

	"github.com/shaiso/Outreach/internal/domain"
)

// day — длительность одного дня ожидания.
const day = 24 * time.Hour

// MaxDelay — потолок задержки. time.Duration хранит наносекунды в int64
// (около 292 лет), большие значения насыщаются до MaxDelay.
const MaxDelay = time.Duration(math.MaxInt64)

// addDelay складывает неотрицательные задержки с насыщением.
func addDelay(a, b time.Duration) time.Duration {
	if a > MaxDelay-b {
		return MaxDelay
	}
	return a + b
}

// graphIndex — индекс графа для обхода назад.
type graphIndex struct {
	// nodes — узлы по ID (при дубликатах побеждает первый).
	nodes map[string]domain.Node

	// incoming — входящие рёбра по ID цели в порядке хранения.
	incoming map[string][]domain.Edge
}

func newGraphIndex(g domain.Graph) *graphIndex {
	idx := &graphIndex{
		nodes:    make(map[string]domain.Node, len(g.Nodes)),
		incoming: make(map[string][]domain.Edge),
	}
	for _, n := range g.Nodes {
		if _, exists := idx.nodes[n.ID]; !exists {
			idx.nodes[n.ID] = n
		}
	}
	for _, e := range g.Edges {
		idx.incoming[e.Target] = append(idx.incoming[e.Target], e)
	}
	return idx
}

// resolution — состояние одного вызова ResolveDelay верхнего уровня.
//
// now фиксируется один раз и не меняется на всём дереве рекурсии.
type resolution struct {
	idx *graphIndex
	now time.Time
	loc *time.Location

	// path — текущий путь рекурсии; onPath — он же в виде множества.
	path   []string
	onPath map[string]bool

	// memo — уже вычисленные задержки. При фиксированном now результат
	// для узла детерминирован, поэтому повторное использование значения
	// сохраняет суммирование по каждому пути.
	memo map[string]time.Duration
}

func newResolution(idx *graphIndex, now time.Time, loc *time.Location) *resolution {
	return &resolution{
		idx:    idx,
		now:    now,
		loc:    loc,
		onPath: make(map[string]bool),
		memo:   make(map[string]time.Duration),
	}
}

// resolve суммирует задержку по всем входящим путям узла id.
//
// Для каждого входящего ребра:
//   - если источник — Wait, добавляется его собственный вклад;
//   - независимо от типа источника добавляется resolve(источник).
//
// Два параллельных пути складываются (а не берётся максимум),
// общий предок ромба учитывается один раз на каждый путь.
func (r *resolution) resolve(id string) (time.Duration, error) {
	if d, ok := r.memo[id]; ok {
		return d, nil
	}
	if r.onPath[id] {
		cycle := make([]string, 0, len(r.path)+1)
		cycle = append(cycle, r.path...)
		return 0, &CycleError{Path: append(cycle, id)}
	}

	r.onPath[id] = true
	r.path = append(r.path, id)
	defer func() {
		r.onPath[id] = false
		r.path = r.path[:len(r.path)-1]
	}()

	var total time.Duration
	for _, e := range r.idx.incoming[id] {
		src, ok := r.idx.nodes[e.Source]
		if !ok {
			// Ребро из несуществующего узла ничего не добавляет
			continue
		}

		total = addDelay(total, r.waitContribution(src))

		upstream, err := r.resolve(src.ID)
		if err != nil {
			return 0, err
		}
		total = addDelay(total, upstream)
	}

	r.memo[id] = total
	return total, nil
}

// waitContribution — собственный вклад узла-источника.
func (r *resolution) waitContribution(src domain.Node) time.Duration {
	if src.Kind != domain.KindWait {
		return 0
	}

	switch src.Data.EffectiveWaitType() {
	case domain.WaitTypeDays:
		days := int64(src.Data.DelayDays())
		if days > int64(MaxDelay/day) {
			return MaxDelay
		}
		return time.Duration(days) * day
	case domain.WaitTypeSpecific:
		at, ok := src.Data.SpecificInstant(r.loc)
		if ok && at.After(r.now) {
			return at.Sub(r.now)
		}
	}
	return 0
}
