package orchestrator

import (
	"fmt"
	"sync"

	"github.com/shaiso/Outreach/internal/domain"
)

// transitions — допустимые переходы состояния запуска.
var transitions = map[domain.SaveState][]domain.SaveState{
	domain.SaveStateIdle:       {domain.SaveStateSaving},
	domain.SaveStateSaving:     {domain.SaveStatePersisted, domain.SaveStateSaveFailed},
	domain.SaveStatePersisted:  {domain.SaveStateScheduling},
	domain.SaveStateScheduling: {domain.SaveStateCompleted, domain.SaveStateScheduleFailed},
}

// RunState — состояние одного запуска сохранения в памяти.
//
// RunState создаётся на каждый вызов RunSave и живёт до его завершения.
// Читать его можно конкурентно (например, из HTTP-обработчика статуса).
type RunState struct {
	state     domain.SaveState
	persisted bool
	scheduled int
	history   []domain.SaveState

	onTransition func(from, to domain.SaveState)

	mu sync.RWMutex
}

// NewRunState создаёт RunState в состоянии IDLE.
func NewRunState(onTransition func(from, to domain.SaveState)) *RunState {
	return &RunState{
		state:        domain.SaveStateIdle,
		history:      []domain.SaveState{domain.SaveStateIdle},
		onTransition: onTransition,
	}
}

// Transition переводит запуск в состояние to.
func (s *RunState) Transition(to domain.SaveState) error {
	s.mu.Lock()
	from := s.state
	if !canTransition(from, to) {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	s.state = to
	s.history = append(s.history, to)
	if to == domain.SaveStatePersisted {
		s.persisted = true
	}
	s.mu.Unlock()

	if s.onTransition != nil {
		s.onTransition(from, to)
	}
	return nil
}

func canTransition(from, to domain.SaveState) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// MarkScheduled увеличивает счётчик запланированных писем.
func (s *RunState) MarkScheduled() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduled++
}

// State возвращает текущее состояние.
func (s *RunState) State() domain.SaveState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Persisted возвращает true, если граф был сохранён.
func (s *RunState) Persisted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.persisted
}

// Scheduled возвращает количество принятых backend'ом писем.
func (s *RunState) Scheduled() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scheduled
}

// History возвращает пройденные состояния, начиная с IDLE.
func (s *RunState) History() []domain.SaveState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.SaveState, len(s.history))
	copy(out, s.history)
	return out
}

// Outcome собирает итог запуска.
func (s *RunState) Outcome(err error) Outcome {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Outcome{
		State:           s.state,
		Persisted:       s.persisted,
		EmailsScheduled: s.scheduled,
		Err:             err,
	}
}
