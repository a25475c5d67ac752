package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/kursadbilgin/hipchat-notifier/internal/config"
	"github.com/kursadbilgin/hipchat-notifier/internal/handler"
	"github.com/kursadbilgin/hipchat-notifier/internal/notifier"
	"github.com/kursadbilgin/hipchat-notifier/internal/observability"
	"github.com/kursadbilgin/hipchat-notifier/internal/queue"
	"github.com/kursadbilgin/hipchat-notifier/internal/service"
	"github.com/kursadbilgin/hipchat-notifier/internal/transport"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config: ", err)
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal("failed to initialize logger: ", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, cfg.TracingEndpoint, logger)
	if err != nil {
		logger.Fatal("tracing initialization failed", zap.Error(err))
	}

	metrics := observability.NewMetrics()
	client := notifier.NewHTTPClient(cfg.HTTPTimeout, logger)

	factory := func(users string) (notifier.Publisher, error) {
		return notifier.NewHipChatV2(notifier.V2Config{
			Server: cfg.HipChatServer,
			Token:  cfg.HipChatToken,
			Rooms:  cfg.HipChatRooms,
			Users:  users,
		}, client, notifier.WithLogger(logger), notifier.WithMetrics(metrics))
	}

	svc, err := service.NewNotificationService(service.Options{
		Users:                cfg.HipChatUsers,
		NotifyTriggeringUser: cfg.NotifyTriggeringUser,
	}, factory, logger)
	if err != nil {
		logger.Fatal("notification service initialization failed", zap.Error(err))
	}
	svc.SetMetrics(metrics)

	destinations := svc.Destinations()
	if destinations.IsEmpty() && !cfg.NotifyTriggeringUser {
		logger.Warn("no rooms or users configured, notifications will not be delivered")
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          transport.ErrorHandler(logger),
		DisableStartupMessage: true,
	})
	app.Use(metrics.HTTPMiddleware())
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	if err := handler.RegisterNotificationRoutes(app, svc); err != nil {
		logger.Fatal("route registration failed", zap.Error(err))
	}

	checks := map[string]handler.ReadinessCheck{}
	g, groupCtx := errgroup.WithContext(ctx)

	if cfg.RabbitMQURL != "" {
		rmq, err := queue.NewRabbitMQ(cfg.RabbitMQURL, queue.BuildNotificationsQueue)
		if err != nil {
			logger.Fatal("rabbitmq initialization failed", zap.Error(err))
		}
		defer rmq.Close() //nolint:errcheck
		checks["rabbitmq"] = rmq.Ping

		consumer := queue.NewRabbitMQConsumer(rmq, cfg.RabbitMQPrefetch, logger)
		g.Go(func() error {
			return consumer.Consume(groupCtx, queue.BuildNotificationsQueue, func(ctx context.Context, msg queue.BuildNotificationMessage) error {
				return svc.Notify(ctx, msg.Request(), msg.Source())
			})
		})
	}

	handler.RegisterHealthRoutes(app, checks)

	g.Go(func() error {
		return app.Listen(fmt.Sprintf(":%d", cfg.APIPort))
	})
	g.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return app.ShutdownWithContext(shutdownCtx)
	})

	logger.Info("hipchat-notifier api started",
		zap.Int("port", cfg.APIPort),
		zap.String("server", cfg.HipChatServer),
		zap.Int("rooms", len(destinations.Rooms())),
		zap.Int("users", len(destinations.Users())),
		zap.Bool("consumer", cfg.RabbitMQURL != ""),
	)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("hipchat-notifier stopped with error", zap.Error(err))
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := shutdownTracing(flushCtx); err != nil {
		logger.Warn("tracing shutdown failed", zap.Error(err))
	}
}
