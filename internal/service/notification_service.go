package service

import (
	"context"
	"fmt"

	"github.com/kursadbilgin/hipchat-notifier/internal/destination"
	"github.com/kursadbilgin/hipchat-notifier/internal/domain"
	"github.com/kursadbilgin/hipchat-notifier/internal/identity"
	"github.com/kursadbilgin/hipchat-notifier/internal/notifier"
	"github.com/kursadbilgin/hipchat-notifier/internal/observability"
	"go.uber.org/zap"
)

// PublisherFactory builds a dispatcher for the given raw user list. Rooms,
// server and token are fixed by the factory.
type PublisherFactory func(users string) (notifier.Publisher, error)

type Options struct {
	Users                string
	NotifyTriggeringUser bool
}

type NotificationService struct {
	publisher            notifier.Publisher
	newPublisher         PublisherFactory
	users                string
	notifyTriggeringUser bool
	logger               *zap.Logger
	metrics              *observability.Metrics
}

func NewNotificationService(opts Options, factory PublisherFactory, logger *zap.Logger) (*NotificationService, error) {
	if factory == nil {
		return nil, fmt.Errorf("publisher factory is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	publisher, err := factory(opts.Users)
	if err != nil {
		return nil, fmt.Errorf("failed to build publisher: %w", err)
	}

	return &NotificationService{
		publisher:            publisher,
		newPublisher:         factory,
		users:                opts.Users,
		notifyTriggeringUser: opts.NotifyTriggeringUser,
		logger:               logger,
	}, nil
}

func (s *NotificationService) SetMetrics(metrics *observability.Metrics) {
	if s == nil {
		return
	}
	s.metrics = metrics
}

// Destinations reports where a notification goes when no triggering user is added.
func (s *NotificationService) Destinations() destination.Set {
	return s.publisher.Destinations()
}

// Notify publishes req once to every destination. src may be nil when the
// caller knows nothing about who started the build.
func (s *NotificationService) Notify(ctx context.Context, req domain.NotificationRequest, src identity.Source) error {
	if req.Color == "" {
		req.Color = domain.DefaultColor
	}
	if err := req.Validate(); err != nil {
		return err
	}

	logger := observability.WithContextLogger(s.logger, ctx)

	publisher, err := s.publisherFor(src)
	if err != nil {
		return err
	}

	err = publisher.Publish(ctx, req)
	s.metrics.IncPublish(notifier.PublishResult(err))
	if err != nil {
		logger.Error("notification publish failed",
			zap.String("kind", string(notifier.KindOf(err))),
			zap.Bool("transient", notifier.IsTransient(err)),
			zap.Error(err),
		)
		return err
	}

	logger.Info("notification published", observability.RequestFields(req)...)
	return nil
}

// publisherFor returns a dispatcher whose user list includes the triggering
// user. Dispatchers are immutable, so a changed list means a fresh one.
func (s *NotificationService) publisherFor(src identity.Source) (notifier.Publisher, error) {
	if !s.notifyTriggeringUser {
		return s.publisher, nil
	}

	users := identity.AppendCurrentUser(s.users, src)
	if users == s.users {
		return s.publisher, nil
	}

	publisher, err := s.newPublisher(users)
	if err != nil {
		return nil, fmt.Errorf("failed to build publisher for %q: %w", users, err)
	}
	return publisher, nil
}
