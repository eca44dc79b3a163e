// Package mq — RabbitMQ-инфраструктура доставки писем.
//
// Scheduler публикует email.due в outreach.emails, Mailer читает
// очередь emails.due. Сообщения, которые не удалось обработать
// (ErrPermanent или повторный сбой), уходят в dlq.emails.
//
//	conn, err := mq.NewConnection(mq.DefaultURL(), logger)
//	if err := mq.SetupTopology(ctx, conn); err != nil { ... }
//	pub := mq.NewPublisher(conn, logger)
//	err = pub.PublishEmailDue(ctx, emailID, 0)
package mq
