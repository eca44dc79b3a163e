// Package orchestrator выполняет сохранение кампании.
//
// Orchestrator отвечает за:
//   - Сохранение снимка графа на backend
//   - Вычисление момента отправки каждого письма (engine.Planner)
//   - Последовательную отправку запросов на планирование
//   - Остановку на первом отказе с сообщением backend'а как есть
//
// Жизненный цикл запуска описан в domain.SaveState.
package orchestrator
