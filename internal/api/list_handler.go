package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/shaiso/Outreach/internal/domain"
	"github.com/shaiso/Outreach/internal/repo"
)

// ListLists возвращает списки лидов.
// GET /api/lists
//
// Ответ — голый массив: так его читает выпадающий список LeadSource.
func (h *Handler) ListLists(w http.ResponseWriter, r *http.Request) {
	lists, err := h.lists.List(r.Context())
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	JSON(w, http.StatusOK, lists)
}

// CreateList создаёт список лидов.
// POST /api/lists
func (h *Handler) CreateList(w http.ResponseWriter, r *http.Request) {
	var req CreateListRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if err := h.validate.Struct(req); err != nil {
		Unprocessable(w, ErrCodeValidation, validationMessage(err))
		return
	}

	list := domain.NewLeadList(req.Name)
	if err := h.lists.Create(r.Context(), list); err != nil {
		if errors.Is(err, repo.ErrAlreadyExists) {
			Conflict(w, "List with this name already exists")
			return
		}
		InternalError(w, h.logger, err)
		return
	}

	h.logger.Info("lead list created", "list_id", list.ID, "name", list.Name)
	JSON(w, http.StatusCreated, list)
}
