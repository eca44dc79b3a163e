// Package mailer доставляет запланированные письма.
//
// Mailer читает email.due из очереди emails.due, перечитывает письмо
// из БД и передаёт его Sender'у:
//
//   - HTTPSender — внешний почтовый API (MAILER_WEBHOOK_URL)
//   - SMTPSender — SMTP-relay (SMTP_ADDR, SMTP_FROM, SMTP_USER, SMTP_PASSWORD)
//   - LogSender  — только лог, для разработки
//
// Успех переводит письмо в SENT. Временная ошибка возвращает его
// в PENDING с отложенным send_at согласно RetryPolicy, после чего
// scheduler снова ставит его в очередь. Окончательный отказ (ErrRejected
// или исчерпанные попытки) переводит письмо в FAILED.
//
//	m := mailer.New(mailer.Config{
//	    Emails: emailRepo,
//	    Sender: mailer.NewSenderFromEnv(logger),
//	    Conn:   mqConn,
//	    Logger: logger,
//	})
//	if err := m.Start(ctx); err != nil { ... }
//	defer m.Stop()
package mailer
