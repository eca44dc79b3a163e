package api

import (
	"net/http"

	"github.com/shaiso/Outreach/internal/domain"
	"github.com/shaiso/Outreach/internal/engine"
	"github.com/shaiso/Outreach/internal/telemetry"
)

// SaveFlow сохраняет снимок графа редактора.
// POST /api/save-flow[?id=...]
//
// Снимок целиком заменяет предыдущий. Циклический граф отклоняется
// до записи: планировать по нему всё равно невозможно.
func (h *Handler) SaveFlow(w http.ResponseWriter, r *http.Request) {
	var g domain.Graph
	if !decodeJSON(w, r, &g) {
		return
	}

	if !h.checkGraph(w, g) {
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		id = domain.DefaultFlowID
	}

	flow := &domain.Flow{ID: id, Graph: g}
	if err := h.flows.Save(r.Context(), flow); err != nil {
		InternalError(w, h.logger, err)
		return
	}

	logger := telemetry.WithFlowID(h.logger, id)
	telemetry.FlowsSavedTotal.Inc()
	logger.Info("flow saved",
		"nodes", len(g.Nodes),
		"edges", len(g.Edges),
	)

	orphans := unreachableEmails(g)
	if len(orphans) > 0 {
		logger.Warn("emails not connected to any lead source", "nodes", orphans)
	}

	JSON(w, http.StatusOK, SaveFlowResponse{
		Message:     "Flow saved successfully",
		ID:          id,
		Nodes:       len(g.Nodes),
		Edges:       len(g.Edges),
		Unreachable: orphans,
	})
}

// GetFlow возвращает сохранённый граф.
// GET /api/flows/{id}
func (h *Handler) GetFlow(w http.ResponseWriter, r *http.Request) {
	flow, err := h.flows.Get(r.Context(), r.PathValue("id"))
	if HandleRepoError(w, h.logger, err, "flow not found") {
		return
	}

	Success(w, FlowFromDomain(flow))
}

// Plan возвращает план отправки для графа без планирования писем.
// POST /api/plan
func (h *Handler) Plan(w http.ResponseWriter, r *http.Request) {
	var g domain.Graph
	if !decodeJSON(w, r, &g) {
		return
	}

	if !h.checkGraph(w, g) {
		return
	}

	dispatches, err := h.planner.Plan(g)
	if err != nil {
		Unprocessable(w, ErrCodeInvalidGraph, err.Error())
		return
	}

	result := make([]DispatchResponse, len(dispatches))
	for i, d := range dispatches {
		result[i] = DispatchFromEngine(d)
	}

	List(w, result, len(result))
}

// checkGraph проверяет структуру и ацикличность. При ошибке сам отвечает 422.
// Пустой холст допустим: сохранять и планировать в нём нечего.
func (h *Handler) checkGraph(w http.ResponseWriter, g domain.Graph) bool {
	if len(g.Nodes) == 0 {
		return true
	}

	err := engine.ValidateGraph(g)
	if err == nil {
		err = engine.ValidateAcyclic(g)
	}
	if err != nil {
		h.logger.Debug("graph rejected", "error", err)
		Unprocessable(w, ErrCodeInvalidGraph, err.Error())
		return false
	}
	return true
}

// unreachableEmails — ID писем без пути от LeadSource. Граф уже проверен.
func unreachableEmails(g domain.Graph) []string {
	dag, err := engine.BuildDAG(g)
	if err != nil {
		return nil
	}

	var ids []string
	for _, n := range dag.Unreachable() {
		ids = append(ids, n.ID)
	}
	return ids
}
