package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ErrPermanent помечает ошибку, повтор которой бессмысленен.
// Такое сообщение уходит в DLQ, а не возвращается в очередь.
var ErrPermanent = errors.New("permanent failure")

// Permanent оборачивает err в ErrPermanent.
func Permanent(err error) error {
	return fmt.Errorf("%w: %w", ErrPermanent, err)
}

// Handler обрабатывает одно сообщение.
// Ошибка означает nack; см. Consumer о том, куда уходит сообщение.
type Handler func(ctx context.Context, msg *Delivery) error

// Delivery — доставленное сообщение вместе с сырым AMQP-конвертом.
type Delivery struct {
	Message Message
	Raw     amqp.Delivery
}

// ConsumerConfig — конфигурация consumer.
type ConsumerConfig struct {
	Queue    string
	Handler  Handler
	Prefetch int // по умолчанию 1
}

// Consumer читает очередь и подтверждает сообщения по результату Handler.
//
//   - успех: ack;
//   - ErrPermanent или повторная доставка: nack без requeue (DLQ);
//   - прочие ошибки: nack с requeue, одна вторая попытка.
//
// После обрыва соединения Consumer ждёт переподключения Connection
// и подписывается заново.
type Consumer struct {
	conn     *Connection
	logger   *slog.Logger
	cfg      ConsumerConfig
	tag      string
	stopFunc context.CancelFunc
}

// NewConsumer создаёт новый Consumer.
func NewConsumer(conn *Connection, logger *slog.Logger, cfg ConsumerConfig) *Consumer {
	if cfg.Prefetch <= 0 {
		cfg.Prefetch = 1
	}

	host, _ := os.Hostname()
	return &Consumer{
		conn:   conn,
		logger: logger.With("queue", cfg.Queue),
		cfg:    cfg,
		tag:    fmt.Sprintf("%s@%s-%d", cfg.Queue, host, os.Getpid()),
	}
}

// Start блокируется до отмены ctx или вызова Stop.
func (c *Consumer) Start(ctx context.Context) error {
	ctx, c.stopFunc = context.WithCancel(ctx)

	for {
		deliveries, err := c.subscribe()
		if err != nil {
			c.logger.Error("subscribe failed, waiting for reconnect", "error", err)
		} else {
			c.logger.Info("consumer subscribed", "tag", c.tag, "prefetch", c.cfg.Prefetch)
			c.drain(ctx, deliveries)
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.conn.ReconnectNotify():
			c.logger.Info("reconnected, resubscribing")
		}
	}
}

// Stop останавливает consumer.
func (c *Consumer) Stop() {
	if c.stopFunc != nil {
		c.stopFunc()
	}
}

func (c *Consumer) subscribe() (<-chan amqp.Delivery, error) {
	ch := c.conn.Channel()
	if ch == nil {
		return nil, ErrNoChannel
	}
	if err := ch.Qos(c.cfg.Prefetch, 0, false); err != nil {
		return nil, fmt.Errorf("set qos: %w", err)
	}

	// autoAck=false: подтверждаем сами после обработки
	deliveries, err := ch.Consume(c.cfg.Queue, c.tag, false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("consume %s: %w", c.cfg.Queue, err)
	}
	return deliveries, nil
}

// drain обрабатывает сообщения, пока канал доставки открыт.
func (c *Consumer) drain(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-deliveries:
			if !ok {
				c.logger.Warn("delivery channel closed")
				return
			}
			c.settle(raw, c.handle(ctx, raw))
		}
	}
}

func (c *Consumer) handle(ctx context.Context, raw amqp.Delivery) error {
	var msg Message
	if err := json.Unmarshal(raw.Body, &msg); err != nil {
		return Permanent(fmt.Errorf("decode message: %w", err))
	}

	c.logger.Debug("received message", "message_id", msg.ID, "type", msg.Type)
	return c.cfg.Handler(ctx, &Delivery{Message: msg, Raw: raw})
}

// settle подтверждает сообщение по результату обработки.
func (c *Consumer) settle(raw amqp.Delivery, err error) {
	if err == nil {
		if ackErr := raw.Ack(false); ackErr != nil {
			c.logger.Warn("ack failed", "delivery_tag", raw.DeliveryTag, "error", ackErr)
		}
		return
	}

	requeue := !errors.Is(err, ErrPermanent) && !raw.Redelivered
	c.logger.Error("message handling failed",
		"message_id", raw.MessageId,
		"redelivered", raw.Redelivered,
		"requeue", requeue,
		"error", err,
	)
	if nackErr := raw.Nack(false, requeue); nackErr != nil {
		c.logger.Warn("nack failed", "delivery_tag", raw.DeliveryTag, "error", nackErr)
	}
}

// ParsePayload декодирует payload сообщения в T.
//
// После Unmarshal конверта Payload — map[string]any, поэтому
// значение перекодируется через JSON.
func ParsePayload[T any](msg *Message) (T, error) {
	var result T

	raw, err := json.Marshal(msg.Payload)
	if err != nil {
		return result, fmt.Errorf("marshal payload: %w", err)
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return result, fmt.Errorf("unmarshal payload: %w", err)
	}
	return result, nil
}
