package mailer

import "errors"

// Ошибки mailer'а.
var (
	// ErrEmailNotFound — письма нет в БД.
	ErrEmailNotFound = errors.New("email not found")

	// ErrEmailNotQueued — письмо не в статусе QUEUED (уже обработано).
	ErrEmailNotQueued = errors.New("email is not in QUEUED status")

	// ErrSend — отправитель не смог доставить письмо, повтор возможен.
	ErrSend = errors.New("send failed")

	// ErrRejected — отправитель отверг письмо, повтор бессмысленен.
	ErrRejected = errors.New("email rejected")
)
