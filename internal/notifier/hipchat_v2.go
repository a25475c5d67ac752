package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/kursadbilgin/hipchat-notifier/internal/destination"
	"github.com/kursadbilgin/hipchat-notifier/internal/domain"
	"github.com/kursadbilgin/hipchat-notifier/internal/observability"
	"go.uber.org/zap"
)

var _ Publisher = (*HipChatV2)(nil)

// V2Config is the immutable configuration of a v2 dispatcher.
type V2Config struct {
	Server string
	Token  string
	Rooms  string
	Users  string
}

type roomNotification struct {
	Message       string `json:"message"`
	MessageFormat string `json:"message_format"`
	Color         string `json:"color"`
	Notify        bool   `json:"notify"`
}

type userMessage struct {
	Message       string `json:"message"`
	MessageFormat string `json:"message_format"`
	Notify        bool   `json:"notify"`
}

// HipChatV2 posts notifications through the v2 REST API.
// It is safe for concurrent use; the resty client is shared, never mutated.
type HipChatV2 struct {
	client       *resty.Client
	server       string
	token        string
	destinations destination.Set
	logger       *zap.Logger
	observer     Observer
	now          func() time.Time
}

type Option func(*HipChatV2)

func WithLogger(logger *zap.Logger) Option {
	return func(d *HipChatV2) {
		if logger != nil {
			d.logger = logger
		}
	}
}

func WithObserver(observer Observer) Option {
	return func(d *HipChatV2) {
		if observer != nil {
			d.observer = observer
		}
	}
}

// WithMetrics records every destination attempt in the Prometheus collectors.
func WithMetrics(metrics *observability.Metrics) Option {
	return func(d *HipChatV2) {
		if metrics != nil {
			d.observer = metricsObserver{metrics: metrics}
		}
	}
}

func NewHipChatV2(cfg V2Config, client *resty.Client, opts ...Option) (*HipChatV2, error) {
	server := strings.TrimRight(strings.TrimSpace(cfg.Server), "/")
	if server == "" {
		return nil, fmt.Errorf("hipchat server is required")
	}
	if strings.Contains(server, "://") {
		return nil, fmt.Errorf("hipchat server must be a host, got %q", cfg.Server)
	}
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, fmt.Errorf("hipchat token is required")
	}
	if client == nil {
		return nil, fmt.Errorf("resty client is required")
	}

	d := &HipChatV2{
		client:       client,
		server:       server,
		token:        cfg.Token,
		destinations: destination.NewSet(cfg.Rooms, cfg.Users),
		logger:       zap.NewNop(),
		observer:     nopObserver{},
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}

	return d, nil
}

func (d *HipChatV2) Destinations() destination.Set { return d.destinations }

// Publish posts to every room, then every user. The first failure stops the
// remaining sends, so earlier destinations may already have been notified.
func (d *HipChatV2) Publish(ctx context.Context, req domain.NotificationRequest) error {
	if d == nil || d.client == nil {
		return fmt.Errorf("dispatcher is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	format := req.Format().String()
	logger := observability.WithContextLogger(d.logger, ctx)

	for _, dest := range d.destinations.Destinations() {
		var (
			endpoint string
			payload  any
		)

		destLogger := observability.WithDestination(logger, dest)
		switch dest.Kind {
		case domain.DestinationRoom:
			destLogger.Debug("posting room notification", zap.String("color", req.Color.String()))
			endpoint = d.roomURL(dest.ID)
			payload = roomNotification{
				Message:       req.Message,
				MessageFormat: format,
				Color:         req.Color.String(),
				Notify:        req.Notify,
			}
		case domain.DestinationUser:
			destLogger.Debug("sending user message")
			endpoint = d.userURL(dest.ID)
			payload = userMessage{
				Message:       req.Message,
				MessageFormat: format,
				Notify:        req.Notify,
			}
		default:
			return fmt.Errorf("unsupported destination kind %q", dest.Kind)
		}

		if err := d.send(ctx, destLogger, dest, endpoint, payload); err != nil {
			return err
		}
	}

	return nil
}

// send performs one POST. resty reads the body to the end and closes it on
// every path, which hands the connection back to the pool.
func (d *HipChatV2) send(ctx context.Context, logger *zap.Logger, dest domain.Destination, endpoint string, payload any) error {
	body, err := encodeJSON(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", dest.Kind, err)
	}

	start := d.now()
	response, err := d.client.R().
		SetContext(ctx).
		SetAuthToken(d.token).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(endpoint)

	outcome := Outcome{Destination: dest, Duration: d.now().Sub(start)}

	switch {
	case err != nil:
		logger.Warn("an IO error occurred while posting notification", zap.Error(err))
		outcome.Err = &TransportError{Destination: dest, Cause: err}
	case response == nil:
		outcome.Err = &TransportError{Destination: dest, Cause: fmt.Errorf("empty response")}
	default:
		outcome.StatusCode = response.StatusCode()
		if outcome.StatusCode != http.StatusNoContent {
			responseBody := response.String()
			logger.Warn("notification post may have failed",
				zap.Int("responseCode", outcome.StatusCode),
				zap.String("response", responseBody),
			)
			outcome.Err = &InvalidResponseError{
				Destination: dest,
				StatusCode:  outcome.StatusCode,
				Body:        responseBody,
			}
		}
	}

	d.observer.ObserveOutcome(outcome)
	return outcome.Err
}

func (d *HipChatV2) roomURL(roomID string) string {
	return fmt.Sprintf("https://%s/v2/room/%s/notification", d.server, url.PathEscape(roomID))
}

func (d *HipChatV2) userURL(userID string) string {
	return fmt.Sprintf("https://%s/v2/user/%s/message", d.server, url.PathEscape(userID))
}

// encodeJSON keeps html markup unescaped in the message.
func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
