package orchestrator

import "errors"

// Ошибки оркестратора.
var (
	// ErrPersistenceFailure — backend отклонил сохранение графа.
	ErrPersistenceFailure = errors.New("persistence failure")

	// ErrSchedulingFailure — backend отклонил планирование письма.
	ErrSchedulingFailure = errors.New("scheduling failure")

	// ErrRunInProgress — сохранение уже выполняется.
	ErrRunInProgress = errors.New("save already in progress")

	// ErrInvalidTransition — недопустимый переход между состояниями.
	ErrInvalidTransition = errors.New("invalid state transition")
)

// PersistenceError — отказ на шаге сохранения.
//
// Error() возвращает сообщение backend'а без изменений.
type PersistenceError struct {
	Message string
	Err     error
}

func newPersistenceError(err error) *PersistenceError {
	return &PersistenceError{Message: err.Error(), Err: err}
}

// Error реализует интерфейс error.
func (e *PersistenceError) Error() string {
	return e.Message
}

// Unwrap позволяет проверять и ErrPersistenceFailure, и исходную причину.
func (e *PersistenceError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrPersistenceFailure}
	}
	return []error{ErrPersistenceFailure, e.Err}
}

// SchedulingError — отказ при планировании письма.
type SchedulingError struct {
	// NodeID — узел ColdEmail, на котором остановился запуск.
	NodeID string

	// Index — позиция узла среди писем в порядке снимка.
	Index int

	Message string
	Err     error
}

func newSchedulingError(nodeID string, index int, err error) *SchedulingError {
	return &SchedulingError{
		NodeID:  nodeID,
		Index:   index,
		Message: err.Error(),
		Err:     err,
	}
}

// Error реализует интерфейс error.
func (e *SchedulingError) Error() string {
	return e.Message
}

// Unwrap позволяет проверять и ErrSchedulingFailure, и исходную причину.
func (e *SchedulingError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrSchedulingFailure}
	}
	return []error{ErrSchedulingFailure, e.Err}
}
