package helpers

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitQueue owns one AMQP connection/channel bound to a durable queue.
// The API process publishes on it; cmd/email_worker consumes from it.
type RabbitQueue struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	Queue string
}

func DialRabbitQueue(url, queue string) (*RabbitQueue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	return &RabbitQueue{conn: conn, ch: ch, Queue: queue}, nil
}

func (q *RabbitQueue) Close() {
	if q == nil {
		return
	}
	if q.ch != nil {
		_ = q.ch.Close()
	}
	if q.conn != nil {
		_ = q.conn.Close()
	}
}

// PublishJSON publishes a persistent JSON message to the queue via the default exchange.
func (q *RabbitQueue) PublishJSON(ctx context.Context, body any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	return q.ch.PublishWithContext(ctx, "", q.Queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         b,
	})
}

// AttemptHeader counts how many times a message has been redelivered by
// Republish.
const AttemptHeader = "x-attempt"

// Republish puts body back at the tail of the queue stamped with attempt.
func (q *RabbitQueue) Republish(ctx context.Context, body []byte, attempt int) error {
	return q.ch.PublishWithContext(ctx, "", q.Queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Headers:      amqp.Table{AttemptHeader: int32(attempt)},
		Body:         body,
	})
}

// Consume starts a manual-ack consumer with the given prefetch.
func (q *RabbitQueue) Consume(prefetch int) (<-chan amqp.Delivery, error) {
	if err := q.ch.Qos(prefetch, 0, false); err != nil {
		return nil, err
	}
	return q.ch.Consume(q.Queue, "", false, false, false, false, nil)
}
