package queue

import (
	"context"
	"fmt"
)

// MessageHandler handles a consumed build notification.
type MessageHandler func(ctx context.Context, msg BuildNotificationMessage) error

// Consumer consumes build notification messages from a queue.
type Consumer interface {
	Consume(ctx context.Context, queue string, handler MessageHandler) error
	Close() error
}

const (
	// BuildNotificationsQueue receives one message per notification a build wants sent.
	BuildNotificationsQueue = "build.notifications"

	dlxExchangeName = "hipchat.dlx"
)

// DLQName returns the dead-letter queue of a work queue, e.g. dlq.build.notifications.
func DLQName(queue string) string {
	return fmt.Sprintf("dlq.%s", queue)
}
