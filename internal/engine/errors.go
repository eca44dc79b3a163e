package engine

import (
	"errors"
	"strings"
)

// Ошибки валидации графа.
var (
	// ErrEmptyGraph — граф не содержит узлов.
	ErrEmptyGraph = errors.New("graph has no nodes")

	// ErrEmptyNodeID — узел не имеет ID.
	ErrEmptyNodeID = errors.New("node has empty ID")

	// ErrDuplicateNodeID — несколько узлов с одинаковым ID.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownNodeKind — неизвестный тип узла.
	ErrUnknownNodeKind = errors.New("unknown node type")

	// ErrDanglingEdge — ребро ссылается на несуществующий узел.
	ErrDanglingEdge = errors.New("edge references unknown node")

	// ErrCyclicGraph — граф содержит цикл.
	ErrCyclicGraph = errors.New("cyclic graph")
)

// Ошибки планирования.
var (
	// ErrNodeNotFound — узел отсутствует в графе.
	ErrNodeNotFound = errors.New("node not found")

	// ErrNotEmailNode — планировать можно только узлы ColdEmail.
	ErrNotEmailNode = errors.New("node is not a cold email")
)

// ValidationError — ошибка валидации с контекстом.
type ValidationError struct {
	NodeID  string // ID узла (или ребра), где произошла ошибка
	Field   string // поле, вызвавшее ошибку
	Message string // описание ошибки
	Err     error  // базовая ошибка
}

// Error реализует интерфейс error.
func (e *ValidationError) Error() string {
	if e.NodeID != "" {
		return "node " + e.NodeID + ": " + e.Message
	}
	return e.Message
}

// Unwrap возвращает базовую ошибку.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError создаёт новую ошибку валидации.
func NewValidationError(nodeID, field, message string, err error) *ValidationError {
	return &ValidationError{
		NodeID:  nodeID,
		Field:   field,
		Message: message,
		Err:     err,
	}
}

// CycleError — цикл, найденный при обходе графа назад от узла.
// Path заканчивается повторно встреченным узлом.
type CycleError struct {
	Path []string
}

// Error реализует интерфейс error.
func (e *CycleError) Error() string {
	if len(e.Path) == 0 {
		return ErrCyclicGraph.Error()
	}
	return ErrCyclicGraph.Error() + ": " + strings.Join(e.Path, " <- ")
}

// Unwrap возвращает ErrCyclicGraph.
func (e *CycleError) Unwrap() error {
	return ErrCyclicGraph
}
