// Package engine содержит ядро планирования кампании.
//
// Включает:
//   - parser.go   — разбор и структурная валидация графа редактора
//   - dag.go      — построение DAG, топологический порядок, проверка циклов
//   - resolver.go — суммирование задержек по всем входящим путям
//   - planner.go  — вычисление момента отправки каждого письма
//
// Engine не ходит в сеть и не хранит состояния: на вход подаётся
// снимок графа, на выходе — задержки и моменты отправки.
package engine
