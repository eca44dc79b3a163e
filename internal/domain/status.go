package domain

// SaveState — состояние одного запуска сохранения/планирования.
//
// Жизненный цикл:
//
//	IDLE → SAVING → PERSISTED → SCHEDULING → COMPLETED
//	              ↘ SAVE_FAILED             ↘ SCHEDULE_FAILED
type SaveState string

const (
	// SaveStateIdle — запуск ещё не начат.
	SaveStateIdle SaveState = "IDLE"

	// SaveStateSaving — граф отправлен на сохранение.
	SaveStateSaving SaveState = "SAVING"

	// SaveStatePersisted — граф сохранён, письма ещё не планировались.
	SaveStatePersisted SaveState = "PERSISTED"

	// SaveStateSaveFailed — сохранение отклонено, планирование не выполнялось.
	SaveStateSaveFailed SaveState = "SAVE_FAILED"

	// SaveStateScheduling — идёт отправка запросов на планирование писем.
	SaveStateScheduling SaveState = "SCHEDULING"

	// SaveStateCompleted — все письма запланированы.
	SaveStateCompleted SaveState = "COMPLETED"

	// SaveStateScheduleFailed — планирование прервано на первом отказе.
	SaveStateScheduleFailed SaveState = "SCHEDULE_FAILED"
)

// IsTerminal возвращает true, если запуск завершён.
func (s SaveState) IsTerminal() bool {
	switch s {
	case SaveStateSaveFailed, SaveStateCompleted, SaveStateScheduleFailed:
		return true
	default:
		return false
	}
}

// EmailStatus — статус запланированного письма на стороне backend.
//
// Жизненный цикл:
//
//	PENDING → QUEUED → SENT
//	                 ↘ FAILED
type EmailStatus string

const (
	// EmailStatusPending — письмо ждёт наступления send_at.
	EmailStatusPending EmailStatus = "PENDING"

	// EmailStatusQueued — scheduler опубликовал письмо в очередь.
	EmailStatusQueued EmailStatus = "QUEUED"

	// EmailStatusSent — письмо доставлено отправителю.
	EmailStatusSent EmailStatus = "SENT"

	// EmailStatusFailed — доставка завершилась ошибкой.
	EmailStatusFailed EmailStatus = "FAILED"
)

// IsTerminal возвращает true, если статус финальный.
func (s EmailStatus) IsTerminal() bool {
	switch s {
	case EmailStatusSent, EmailStatusFailed:
		return true
	default:
		return false
	}
}

// ParseEmailStatus парсит строку в EmailStatus. Неизвестные значения → PENDING.
func ParseEmailStatus(s string) EmailStatus {
	switch s {
	case "QUEUED":
		return EmailStatusQueued
	case "SENT":
		return EmailStatusSent
	case "FAILED":
		return EmailStatusFailed
	default:
		return EmailStatusPending
	}
}
