package notifier

import (
	"context"
	"time"

	"github.com/kursadbilgin/hipchat-notifier/internal/destination"
	"github.com/kursadbilgin/hipchat-notifier/internal/domain"
	"github.com/kursadbilgin/hipchat-notifier/internal/observability"
)

// Publisher fans one notification out to every configured destination.
// One implementation exists per chat API version.
type Publisher interface {
	Publish(ctx context.Context, req domain.NotificationRequest) error
	Destinations() destination.Set
}

const (
	ResultSent            = "sent"
	ResultInvalidResponse = "invalid_response"
	ResultTransportError  = "transport_error"
	ResultError           = "error"
)

// PublishResult maps a Publish error onto its metric label.
func PublishResult(err error) string {
	switch KindOf(err) {
	case KindNone:
		return ResultSent
	case KindInvalidResponse:
		return ResultInvalidResponse
	case KindTransport:
		return ResultTransportError
	default:
		return ResultError
	}
}

// Outcome is the result of a single destination attempt.
type Outcome struct {
	Destination domain.Destination
	StatusCode  int
	Duration    time.Duration
	Err         error
}

// Result is never ResultError: every attempt failure is typed.
func (o Outcome) Result() string {
	if result := PublishResult(o.Err); result != ResultError {
		return result
	}
	return ResultTransportError
}

// Observer receives every Outcome as soon as the attempt completes.
type Observer interface {
	ObserveOutcome(outcome Outcome)
}

type nopObserver struct{}

func (nopObserver) ObserveOutcome(Outcome) {}

type metricsObserver struct {
	metrics *observability.Metrics
}

func (o metricsObserver) ObserveOutcome(outcome Outcome) {
	o.metrics.ObserveDestinationSend(outcome.Destination.Kind, outcome.Result(), outcome.Duration)
}
