// Package client — HTTP-клиент backend'а Outreach.
//
// Покрывает контракты редактора (/save-flow, /schedule-email, /lists)
// и служебные эндпоинты (/flows/{id}, /plan, /emails).
//
//	c := client.NewClient("http://localhost:5000/api")
//	err := c.SaveFlow(ctx, graph)
//
// Ответ с кодом >= 400 возвращается как *APIError, у которого Error()
// равен полю message из тела ответа.
package client
