package orchestrator

import (
	"context"
	"log/slog"
	"sync"

	"github.com/shaiso/Outreach/internal/domain"
	"github.com/shaiso/Outreach/internal/engine"
	"github.com/shaiso/Outreach/internal/telemetry"
)

// FlowSaver сохраняет снимок графа на backend.
type FlowSaver interface {
	SaveFlow(ctx context.Context, g domain.Graph) error
}

// EmailScheduler передаёт backend'у одно письмо на планирование.
type EmailScheduler interface {
	ScheduleEmail(ctx context.Context, req domain.EmailRequest) error
}

// Outcome — итог одного запуска RunSave.
type Outcome struct {
	// State — финальное состояние запуска.
	State domain.SaveState

	// Persisted — граф был сохранён.
	Persisted bool

	// EmailsScheduled — сколько писем backend принял до остановки.
	EmailsScheduled int

	// Err — первая ошибка (nil при COMPLETED).
	Err error
}

// Orchestrator сохраняет граф и планирует письма.
//
// Шаги выполняются строго последовательно:
//   - сохранение графа
//   - по одному запросу на каждый ColdEmail в порядке снимка
//
// Первый отказ останавливает запуск. Уже принятые запросы не откатываются,
// повторов нет.
type Orchestrator struct {
	saver     FlowSaver
	scheduler EmailScheduler
	planner   *engine.Planner

	onTransition func(from, to domain.SaveState)
	logger       *slog.Logger

	// current — активный запуск (nil, если запуска нет).
	current *RunState
	mu      sync.Mutex
}

// Config — конфигурация Orchestrator.
type Config struct {
	Saver     FlowSaver
	Scheduler EmailScheduler

	// Planner — планировщик моментов отправки (default: engine.NewPlanner()).
	Planner *engine.Planner

	// OnTransition вызывается на каждом переходе состояния.
	OnTransition func(from, to domain.SaveState)

	Logger *slog.Logger
}

// New создаёт новый Orchestrator.
func New(cfg Config) *Orchestrator {
	planner := cfg.Planner
	if planner == nil {
		planner = engine.NewPlanner()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Orchestrator{
		saver:        cfg.Saver,
		scheduler:    cfg.Scheduler,
		planner:      planner,
		onTransition: cfg.OnTransition,
		logger:       telemetry.WithComponent(logger, "orchestrator"),
	}
}

// RunSave сохраняет граф и планирует все письма.
//
// Если запуск уже идёт, сразу возвращает Outcome{State: IDLE, Err: ErrRunInProgress}
// и ничего не отправляет.
func (o *Orchestrator) RunSave(ctx context.Context, g domain.Graph) Outcome {
	state, err := o.begin()
	if err != nil {
		return Outcome{State: domain.SaveStateIdle, Err: err}
	}
	defer o.finish()

	outcome := o.run(ctx, g, state)

	telemetry.SaveRunsTotal.WithLabelValues(string(outcome.State)).Inc()
	if outcome.Err != nil {
		o.logger.Warn("save run failed",
			"state", outcome.State,
			"persisted", outcome.Persisted,
			"emails_scheduled", outcome.EmailsScheduled,
			"error", outcome.Err,
		)
	} else {
		o.logger.Info("save run completed", "emails_scheduled", outcome.EmailsScheduled)
	}

	return outcome
}

// run выполняет шаги запуска.
func (o *Orchestrator) run(ctx context.Context, g domain.Graph, state *RunState) Outcome {
	if err := o.handleSave(ctx, g, state); err != nil {
		return state.Outcome(err)
	}
	if err := o.handleSchedule(ctx, g, state); err != nil {
		return state.Outcome(err)
	}
	return state.Outcome(nil)
}

// Running проверяет, идёт ли запуск.
func (o *Orchestrator) Running() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current != nil
}

// begin захватывает единственный слот запуска.
func (o *Orchestrator) begin() (*RunState, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.current != nil {
		return nil, ErrRunInProgress
	}
	o.current = NewRunState(o.onTransition)
	return o.current, nil
}

// finish освобождает слот запуска.
func (o *Orchestrator) finish() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.current = nil
}
