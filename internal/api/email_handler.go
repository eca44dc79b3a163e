package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/shaiso/Outreach/internal/domain"
	"github.com/shaiso/Outreach/internal/repo"
	"github.com/shaiso/Outreach/internal/telemetry"
)

// ScheduleEmail принимает письмо на отправку.
// POST /api/schedule-email
//
// Письмо сохраняется в PENDING; scheduler поставит его в очередь,
// когда наступит time. Время в прошлом допустимо: письмо уйдёт
// на ближайшем тике.
func (h *Handler) ScheduleEmail(w http.ResponseWriter, r *http.Request) {
	var req domain.EmailRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.validate.Struct(req); err != nil {
		Unprocessable(w, ErrCodeValidation, validationMessage(err))
		return
	}

	sendAt, err := time.Parse(time.RFC3339, req.Time)
	if err != nil {
		Unprocessable(w, ErrCodeValidation, "time must be an ISO 8601 timestamp")
		return
	}

	email := domain.NewScheduledEmail(req.Email, req.Subject, req.Body, sendAt)
	if err := h.emails.Create(r.Context(), email); err != nil {
		InternalError(w, h.logger, err)
		return
	}

	telemetry.WithEmailID(h.logger, email.ID.String()).Info("email scheduled",
		"send_at", email.SendAt,
	)

	JSON(w, http.StatusCreated, ScheduleEmailResponse{
		Message: "Email scheduled successfully",
		ID:      email.ID.String(),
		SendAt:  domain.FormatISO(email.SendAt),
	})
}

// ListEmails возвращает запланированные письма.
// GET /api/emails?status=PENDING&limit=50&offset=0
func (h *Handler) ListEmails(w http.ResponseWriter, r *http.Request) {
	filter := repo.EmailFilter{Limit: 50}

	q := r.URL.Query()
	if status := q.Get("status"); status != "" {
		s := domain.EmailStatus(status)
		if domain.ParseEmailStatus(status) != s {
			BadRequest(w, "invalid status")
			return
		}
		filter.Status = &s
	}
	if limit := q.Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n <= 0 || n > 500 {
			BadRequest(w, "invalid limit")
			return
		}
		filter.Limit = n
	}
	if offset := q.Get("offset"); offset != "" {
		n, err := strconv.Atoi(offset)
		if err != nil || n < 0 {
			BadRequest(w, "invalid offset")
			return
		}
		filter.Offset = n
	}

	emails, err := h.emails.List(r.Context(), filter)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]EmailResponse, len(emails))
	for i, e := range emails {
		result[i] = EmailFromDomain(e)
	}

	List(w, result, len(result))
}
