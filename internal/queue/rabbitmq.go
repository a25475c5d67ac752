package queue

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	reconnectBackoff = time.Second
	maxBackoff       = 30 * time.Second
	dialTimeout      = 15 * time.Second
)

// RabbitMQ owns the broker connection and declares the build notification
// queues, each with a dead-letter queue for failed publishes.
type RabbitMQ struct {
	url    string
	queues []string
	dial   func(url string) (*amqp.Connection, error)

	mu          sync.RWMutex
	reconnectMu sync.Mutex
	conn        *amqp.Connection
}

// NewRabbitMQ connects and declares each queue with its dead-letter queue.
func NewRabbitMQ(url string, queues ...string) (*RabbitMQ, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("rabbitmq url is required")
	}
	if len(queues) == 0 {
		queues = []string{BuildNotificationsQueue}
	}

	r := &RabbitMQ{url: url, queues: queues, dial: amqp.Dial}

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()

	if _, err := r.connection(ctx); err != nil {
		return nil, err
	}

	return r, nil
}

func (r *RabbitMQ) Close() error {
	r.mu.Lock()
	conn := r.conn
	r.conn = nil
	r.mu.Unlock()

	if conn == nil || conn.IsClosed() {
		return nil
	}

	return conn.Close()
}

// Ping reports whether the broker connection is open.
func (r *RabbitMQ) Ping(ctx context.Context) error {
	if r == nil {
		return fmt.Errorf("rabbitmq is not initialized")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if conn := r.openConn(); conn == nil {
		return fmt.Errorf("rabbitmq connection is closed")
	}
	return nil
}

// channel opens a channel with the topology declared. A failed open is
// retried once on a fresh connection.
func (r *RabbitMQ) channel(ctx context.Context) (*amqp.Channel, error) {
	conn, err := r.connection(ctx)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		r.dropConn(conn)
		if conn, err = r.connection(ctx); err != nil {
			return nil, err
		}
		if ch, err = conn.Channel(); err != nil {
			return nil, fmt.Errorf("failed to create rabbitmq channel after reconnect: %w", err)
		}
	}

	if err := declareTopology(ch, r.queues); err != nil {
		_ = ch.Close()
		return nil, err
	}

	return ch, nil
}

// connection returns the open connection, dialing with backoff until ctx ends.
func (r *RabbitMQ) connection(ctx context.Context) (*amqp.Connection, error) {
	if conn := r.openConn(); conn != nil {
		return conn, nil
	}

	r.reconnectMu.Lock()
	defer r.reconnectMu.Unlock()

	wait := reconnectBackoff
	for {
		if conn := r.openConn(); conn != nil {
			return conn, nil
		}

		conn, err := r.dial(r.url)
		if err == nil {
			r.mu.Lock()
			r.conn = conn
			r.mu.Unlock()
			return conn, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("rabbitmq reconnect canceled after %v: %w", err, ctx.Err())
		case <-time.After(wait):
		}
		wait = nextBackoff(wait)
	}
}

func (r *RabbitMQ) openConn() *amqp.Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.conn == nil || r.conn.IsClosed() {
		return nil
	}
	return r.conn
}

// dropConn forgets conn so the next connection call dials again.
func (r *RabbitMQ) dropConn(conn *amqp.Connection) {
	r.mu.Lock()
	if r.conn == conn {
		r.conn = nil
	}
	r.mu.Unlock()

	if conn != nil && !conn.IsClosed() {
		_ = conn.Close()
	}
}

func nextBackoff(wait time.Duration) time.Duration {
	wait *= 2
	if wait > maxBackoff {
		return maxBackoff
	}
	return wait
}

func declareTopology(ch *amqp.Channel, queues []string) error {
	if err := ch.ExchangeDeclare(
		dlxExchangeName,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return fmt.Errorf("failed to declare dlx exchange: %w", err)
	}

	for _, queueName := range queues {
		dlqName := DLQName(queueName)

		if _, err := ch.QueueDeclare(
			dlqName,
			true,
			false,
			false,
			false,
			nil,
		); err != nil {
			return fmt.Errorf("failed to declare dlq %q: %w", dlqName, err)
		}

		if err := ch.QueueBind(dlqName, queueName, dlxExchangeName, false, nil); err != nil {
			return fmt.Errorf("failed to bind dlq %q: %w", dlqName, err)
		}

		if _, err := ch.QueueDeclare(
			queueName,
			true,
			false,
			false,
			false,
			deadLetterArgs(queueName),
		); err != nil {
			return fmt.Errorf("failed to declare queue %q: %w", queueName, err)
		}
	}

	return nil
}

// deadLetterArgs routes rejected deliveries to the queue's DLQ.
func deadLetterArgs(queueName string) amqp.Table {
	return amqp.Table{
		"x-dead-letter-exchange":    dlxExchangeName,
		"x-dead-letter-routing-key": queueName,
	}
}
