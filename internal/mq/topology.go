package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — имя обменника.
type Exchange string

// Queue — имя очереди.
type Queue string

// RoutingKey — ключ маршрутизации.
type RoutingKey string

const (
	ExchangeEmails Exchange = "outreach.emails"
	ExchangeDLQ    Exchange = "outreach.dlq"
)

const (
	QueueEmailsDue Queue = "emails.due"
	QueueDLQEmails Queue = "dlq.emails"
)

const (
	RoutingKeyDue       RoutingKey = "due"
	RoutingKeyDLQEmails RoutingKey = "emails"
)

// binding — очередь, её аргументы и привязка к обменнику.
type binding struct {
	queue      Queue
	args       amqp.Table
	exchange   Exchange
	routingKey RoutingKey
}

// bindings описывает всю топологию доставки писем.
// emails.due отправляет отвергнутые сообщения в dlq.emails.
func bindings() []binding {
	return []binding{
		{
			queue: QueueEmailsDue,
			args: amqp.Table{
				"x-dead-letter-exchange":    string(ExchangeDLQ),
				"x-dead-letter-routing-key": string(RoutingKeyDLQEmails),
			},
			exchange:   ExchangeEmails,
			routingKey: RoutingKeyDue,
		},
		{
			queue:      QueueDLQEmails,
			exchange:   ExchangeDLQ,
			routingKey: RoutingKeyDLQEmails,
		},
	}
}

// SetupTopology объявляет обменники, очереди и привязки. Идемпотентна.
func SetupTopology(ctx context.Context, conn *Connection) error {
	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		for _, ex := range []Exchange{ExchangeEmails, ExchangeDLQ} {
			err := ch.ExchangeDeclare(
				string(ex), // name
				"direct",   // type
				true,       // durable
				false,      // auto-deleted
				false,      // internal
				false,      // no-wait
				nil,        // arguments
			)
			if err != nil {
				return fmt.Errorf("declare exchange %s: %w", ex, err)
			}
		}

		for _, b := range bindings() {
			if _, err := ch.QueueDeclare(
				string(b.queue), // name
				true,            // durable
				false,           // delete when unused
				false,           // exclusive
				false,           // no-wait
				b.args,          // arguments
			); err != nil {
				return fmt.Errorf("declare queue %s: %w", b.queue, err)
			}

			if err := ch.QueueBind(
				string(b.queue),
				string(b.routingKey),
				string(b.exchange),
				false,
				nil,
			); err != nil {
				return fmt.Errorf("bind queue %s to %s: %w", b.queue, b.exchange, err)
			}
		}

		return nil
	})
}

// TopologyInfo возвращает описание топологии для логирования.
func TopologyInfo() string {
	return `
  Outreach RabbitMQ Topology:

    outreach.emails (direct)
    └── emails.due [routing: due]
            Producer: Scheduler
            Consumer: Mailer
            DLQ: dlq.emails

    outreach.dlq (direct)
    └── dlq.emails [routing: emails]
            Manual processing
  `
}
