package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Consume delivers JSON messages from queue to handler, reconnecting with backoff
// until ctx is done. Failed messages are rejected without requeue.
func Consume[T any](ctx context.Context, url, queue string, log *zap.Logger, handler func(context.Context, T) error) error {
	log = log.With(zap.String("component", "rabbitmq-consumer"), zap.String("queue", queue))
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err == nil {
			backoff = time.Second
			err = consumeLoop(ctx, conn, queue, log, handler)
			_ = conn.Close()
		}
		if ctx.Err() != nil {
			return nil
		}
		log.Warn("consumer disconnected, retrying", zap.Duration("backoff", backoff), zap.Error(err))

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}

func consumeLoop[T any](ctx context.Context, conn *amqp.Connection, queue string, log *zap.Logger, handler func(context.Context, T) error) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Warn("set qos failed", zap.Error(err))
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.ConsumeWithContext(ctx, queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		var v T
		if err := json.Unmarshal(d.Body, &v); err != nil {
			log.Warn("rejecting undecodable message", zap.Error(err))
			_ = d.Nack(false, false)
			continue
		}
		if err := handler(ctx, v); err != nil {
			log.Warn("handle message failed", zap.Error(err))
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}
