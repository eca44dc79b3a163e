// Package api реализует HTTP API backend'а Outreach.
//
// Контракты редактора отвечают голыми JSON-объектами, как их читает UI;
// служебные эндпоинты оборачивают ответ в {data} или {data, total}.
// Любая ошибка — {"message": ..., "code": ...}.
package api
