package api

import (
	"net/http"
)

// RegisterRoutes регистрирует все маршруты API.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	chain := Chain(
		Recovery(h.logger),
		CORS(h.origins),
		Metrics(),
		Logging(h.logger),
	)

	// Контракты редактора
	mux.Handle("POST /api/save-flow", chain(http.HandlerFunc(h.SaveFlow)))
	mux.Handle("POST /api/schedule-email", chain(http.HandlerFunc(h.ScheduleEmail)))
	mux.Handle("GET /api/lists", chain(http.HandlerFunc(h.ListLists)))
	mux.Handle("POST /api/lists", chain(http.HandlerFunc(h.CreateList)))

	// Служебные
	mux.Handle("GET /api/flows/{id}", chain(http.HandlerFunc(h.GetFlow)))
	mux.Handle("POST /api/plan", chain(http.HandlerFunc(h.Plan)))
	mux.Handle("GET /api/emails", chain(http.HandlerFunc(h.ListEmails)))

	// Preflight для браузерного редактора
	mux.Handle("OPTIONS /api/", chain(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		NoContent(w)
	})))
}
