// Package publish forwards finished session results to RabbitMQ for
// downstream analytics.
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/abhisek/quizarena/internal/session"
)

// DefaultQueue receives session results unless configured otherwise.
const DefaultQueue = "quizarena.session.results"

// MessageType is set on every published result.
const MessageType = "session.result"

// Channel is the subset of *amqp.Channel the recorder uses.
type Channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPRecorder publishes each session.Result as a persistent JSON message
// on a durable queue. It implements session.Recorder.
type AMQPRecorder struct {
	ch    Channel
	conn  *amqp.Connection
	queue string

	mu sync.Mutex // amqp channels are not safe for concurrent publishes
}

var _ session.Recorder = (*AMQPRecorder)(nil)

// Dial connects to url and declares queue.
func Dial(url, queue string) (*AMQPRecorder, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	r, err := NewAMQPRecorder(ch, queue)
	if err != nil {
		conn.Close()
		return nil, err
	}
	r.conn = conn
	return r, nil
}

// NewAMQPRecorder declares queue on ch. An empty queue means DefaultQueue.
func NewAMQPRecorder(ch Channel, queue string) (*AMQPRecorder, error) {
	if queue == "" {
		queue = DefaultQueue
	}
	if _, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		return nil, fmt.Errorf("declare queue %s: %w", queue, err)
	}
	return &AMQPRecorder{ch: ch, queue: queue}, nil
}

func (r *AMQPRecorder) Record(ctx context.Context, res session.Result) error {
	body, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode session result: %w", err)
	}
	ts := res.CompletedAt
	if ts.IsZero() {
		ts = time.Now()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	err = r.ch.PublishWithContext(ctx,
		"",      // default exchange
		r.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    res.SessionID,
			Type:         MessageType,
			Timestamp:    ts,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish session %s: %w", res.SessionID, err)
	}
	return nil
}

// Queue returns the queue results are published to.
func (r *AMQPRecorder) Queue() string { return r.queue }

func (r *AMQPRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	err := r.ch.Close()
	if r.conn != nil {
		if cerr := r.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
