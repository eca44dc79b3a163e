package engine

import (
	"fmt"
	"time"

	"github.com/shaiso/Outreach/internal/domain"
)

// DefaultBuffer — фиксированный запас на обработку отправки.
const DefaultBuffer = 5 * time.Minute

// Planner вычисляет задержки и моменты отправки писем.
//
// Planner не хранит состояния между вызовами и безопасен
// для конкурентного использования.
type Planner struct {
	clock  func() time.Time
	loc    *time.Location
	buffer time.Duration
}

// Option настраивает Planner.
type Option func(*Planner)

// WithClock задаёт источник текущего времени (для тестов).
func WithClock(clock func() time.Time) Option {
	return func(p *Planner) {
		if clock != nil {
			p.clock = clock
		}
	}
}

// WithLocation задаёт зону, в которой читаются specificDate/specificTime.
func WithLocation(loc *time.Location) Option {
	return func(p *Planner) {
		if loc != nil {
			p.loc = loc
		}
	}
}

// WithBuffer переопределяет запас на обработку отправки.
func WithBuffer(d time.Duration) Option {
	return func(p *Planner) {
		if d >= 0 {
			p.buffer = d
		}
	}
}

// NewPlanner создаёт Planner. По умолчанию: time.Now, time.Local, 5 минут.
func NewPlanner(opts ...Option) *Planner {
	p := &Planner{
		clock:  time.Now,
		loc:    time.Local,
		buffer: DefaultBuffer,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Now возвращает текущее время по часам планировщика.
func (p *Planner) Now() time.Time {
	return p.clock()
}

// Dispatch — вычисленная отправка одного письма.
type Dispatch struct {
	NodeID string
	SendAt time.Time

	// Overridden — true, если время взято из прямого предка Wait(specific).
	Overridden bool

	// Request — тело запроса на планирование с подставленными значениями по умолчанию.
	Request domain.EmailRequest
}

// ResolveDelay возвращает суммарную задержку по всем путям, ведущим в nodeID.
//
// Узел без входящих рёбер (или отсутствующий в графе) даёт 0.
// Цикл на пути обхода возвращает *CycleError (errors.Is(err, ErrCyclicGraph)).
func (p *Planner) ResolveDelay(nodeID string, g domain.Graph) (time.Duration, error) {
	r := newResolution(newGraphIndex(g), p.clock(), p.loc)
	return r.resolve(nodeID)
}

// PlanDispatch возвращает момент отправки для узла ColdEmail.
func (p *Planner) PlanDispatch(emailNodeID string, g domain.Graph) (time.Time, error) {
	d, err := p.planNode(newGraphIndex(g), emailNodeID)
	if err != nil {
		return time.Time{}, err
	}
	return d.SendAt, nil
}

// Plan планирует все узлы ColdEmail в порядке снимка.
// Останавливается на первой ошибке.
func (p *Planner) Plan(g domain.Graph) ([]Dispatch, error) {
	idx := newGraphIndex(g)
	emails := g.EmailNodes()

	dispatches := make([]Dispatch, 0, len(emails))
	for _, n := range emails {
		d, err := p.planNode(idx, n.ID)
		if err != nil {
			return dispatches, err
		}
		dispatches = append(dispatches, d)
	}
	return dispatches, nil
}

// planNode вычисляет отправку для одного узла.
//
//  1. baseline = now + ResolveDelay + buffer
//  2. первый прямой предок Wait(specific) с моментом позже текущего
//     времени заменяет baseline этим моментом
func (p *Planner) planNode(idx *graphIndex, id string) (Dispatch, error) {
	node, ok := idx.nodes[id]
	if !ok {
		return Dispatch{}, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	if node.Kind != domain.KindColdEmail {
		return Dispatch{}, fmt.Errorf("%w: %s (%s)", ErrNotEmailNode, id, node.Kind)
	}

	now := p.clock()
	delay, err := newResolution(idx, now, p.loc).resolve(id)
	if err != nil {
		return Dispatch{}, err
	}

	d := Dispatch{
		NodeID: id,
		SendAt: now.Add(delay).Add(p.buffer),
	}

	if at, ok := p.directOverride(idx, id); ok {
		d.SendAt = at
		d.Overridden = true
	}

	d.Request = domain.NewEmailRequest(node, d.SendAt)
	return d, nil
}

// directOverride ищет среди прямых предков первый Wait(specific)
// с моментом в будущем. Каждая проверка читает часы заново.
func (p *Planner) directOverride(idx *graphIndex, id string) (time.Time, bool) {
	for _, e := range idx.incoming[id] {
		src, ok := idx.nodes[e.Source]
		if !ok || src.Kind != domain.KindWait {
			continue
		}
		if src.Data.EffectiveWaitType() != domain.WaitTypeSpecific {
			continue
		}

		at, ok := src.Data.SpecificInstant(p.loc)
		if ok && at.After(p.clock()) {
			return at, true
		}
	}
	return time.Time{}, false
}
