package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shaiso/Outreach/internal/domain"
	"github.com/shaiso/Outreach/internal/engine"
)

// maxBodyBytes — предел тела запроса. Граф редактора укладывается с большим запасом.
const maxBodyBytes = 1 << 20

// decodeJSON читает тело запроса в v. При ошибке сам отвечает 400.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		BadRequest(w, "invalid request body")
		return false
	}
	return true
}

// Flow DTOs

// SaveFlowResponse — ответ POST /save-flow.
type SaveFlowResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
	Nodes   int    `json:"nodes"`
	Edges   int    `json:"edges"`

	// Unreachable — письма, не связанные ни с одним LeadSource.
	// Они всё равно планируются.
	Unreachable []string `json:"unreachable,omitempty"`
}

// FlowResponse — сохранённый граф.
type FlowResponse struct {
	ID        string       `json:"id"`
	Graph     domain.Graph `json:"graph"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// FlowFromDomain конвертирует domain.Flow в FlowResponse.
func FlowFromDomain(f *domain.Flow) FlowResponse {
	return FlowResponse{
		ID:        f.ID,
		Graph:     f.Graph,
		UpdatedAt: f.UpdatedAt,
	}
}

// DispatchResponse — одна строка плана отправки.
type DispatchResponse struct {
	NodeID     string `json:"node_id"`
	Email      string `json:"email"`
	Subject    string `json:"subject"`
	Time       string `json:"time"`
	Overridden bool   `json:"overridden"`
}

// DispatchFromEngine конвертирует engine.Dispatch в DispatchResponse.
func DispatchFromEngine(d engine.Dispatch) DispatchResponse {
	return DispatchResponse{
		NodeID:     d.NodeID,
		Email:      d.Request.Email,
		Subject:    d.Request.Subject,
		Time:       d.Request.Time,
		Overridden: d.Overridden,
	}
}

// Email DTOs

// ScheduleEmailResponse — ответ POST /schedule-email.
type ScheduleEmailResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
	SendAt  string `json:"send_at"`
}

// EmailResponse — запланированное письмо.
type EmailResponse struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Subject   string     `json:"subject"`
	SendAt    time.Time  `json:"send_at"`
	Status    string     `json:"status"`
	Attempts  int        `json:"attempts"`
	Error     string     `json:"error,omitempty"`
	SentAt    *time.Time `json:"sent_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// EmailFromDomain конвертирует domain.ScheduledEmail в EmailResponse.
func EmailFromDomain(e domain.ScheduledEmail) EmailResponse {
	return EmailResponse{
		ID:        e.ID.String(),
		Email:     e.Email,
		Subject:   e.Subject,
		SendAt:    e.SendAt,
		Status:    string(e.Status),
		Attempts:  e.Attempts,
		Error:     e.Error,
		SentAt:    e.SentAt,
		CreatedAt: e.CreatedAt,
	}
}

// List DTOs

// CreateListRequest — запрос на создание списка лидов.
type CreateListRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}
