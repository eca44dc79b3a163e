package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// MessageType — тип сообщения в очереди.
type MessageType string

// MessageTypeEmailDue — письмо пора отправлять.
const MessageTypeEmailDue MessageType = "email.due"

// Message — конверт любого сообщения.
type Message struct {
	ID        string      `json:"id"`
	Type      MessageType `json:"type"`
	Payload   any         `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// EmailDuePayload — payload для email.due.
// Само письмо mailer перечитывает из БД по EmailID.
type EmailDuePayload struct {
	EmailID uuid.UUID `json:"email_id"`
	Attempt int       `json:"attempt"`
}

// Publisher публикует сообщения в RabbitMQ.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		logger: logger,
	}
}

// Publish публикует сообщение и ждёт подтверждения брокера.
func (p *Publisher) Publish(ctx context.Context, exchange Exchange, routingKey RoutingKey, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	return p.conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		confirm, err := ch.PublishWithDeferredConfirmWithContext(
			ctx,
			string(exchange),
			string(routingKey),
			false,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				MessageId:    msg.ID,
				Type:         string(msg.Type),
				Timestamp:    msg.Timestamp,
				Body:         body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish to %s/%s: %w", exchange, routingKey, err)
		}

		if confirm != nil {
			acked, err := confirm.WaitContext(ctx)
			if err != nil {
				return fmt.Errorf("wait confirm: %w", err)
			}
			if !acked {
				return fmt.Errorf("publish to %s/%s: nacked by broker", exchange, routingKey)
			}
		}

		p.logger.Debug("published message",
			"exchange", exchange,
			"routing_key", routingKey,
			"message_id", msg.ID,
			"type", msg.Type,
		)
		return nil
	})
}

// PublishJSON публикует произвольный payload в конверте Message.
func (p *Publisher) PublishJSON(ctx context.Context, exchange Exchange, routingKey RoutingKey, msgType MessageType, payload any) error {
	return p.Publish(ctx, exchange, routingKey, NewMessage(msgType, payload))
}

// PublishEmailDue ставит письмо в очередь на отправку.
// Потребитель: Mailer.
func (p *Publisher) PublishEmailDue(ctx context.Context, emailID uuid.UUID, attempt int) error {
	return p.PublishJSON(ctx, ExchangeEmails, RoutingKeyDue, MessageTypeEmailDue, EmailDuePayload{
		EmailID: emailID,
		Attempt: attempt,
	})
}

// NewMessage создаёт конверт с новым ID и текущим временем.
func NewMessage(msgType MessageType, payload any) *Message {
	return &Message{
		ID:        uuid.New().String(),
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}
