package domain

import (
	"time"

	"github.com/google/uuid"
)

// DefaultFlowID — ID flow, если редактор не передал свой.
// Редактор работает с одним графом, поэтому сохранение заменяет его целиком.
const DefaultFlowID = "default"

// Flow — сохранённый граф кампании.
type Flow struct {
	// ID — идентификатор flow.
	ID string `json:"id"`

	// Graph — последний сохранённый снимок графа.
	Graph Graph `json:"graph"`

	// UpdatedAt — время последнего сохранения.
	UpdatedAt time.Time `json:"updated_at"`
}

// LeadList — список лидов, на который ссылается LeadSource.selectedList.
type LeadList struct {
	// ID — уникальный идентификатор списка.
	ID uuid.UUID `json:"id"`

	// Name — уникальное имя списка.
	Name string `json:"name"`

	// CreatedAt — время создания списка.
	CreatedAt time.Time `json:"created_at"`
}

// NewLeadList создаёт список с новым ID.
func NewLeadList(name string) *LeadList {
	return &LeadList{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
}
