package notifier

import (
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const defaultHTTPTimeout = 10 * time.Second

// NewHTTPClient builds the pooled client shared by every dispatcher.
// Outbound requests are traced and never retried.
func NewHTTPClient(timeout time.Duration, logger *zap.Logger) *resty.Client {
	client := resty.NewWithClient(&http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	})
	return configureClient(client, timeout, logger)
}

func configureClient(client *resty.Client, timeout time.Duration, logger *zap.Logger) *resty.Client {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client.SetTimeout(timeout)
	client.SetRetryCount(0)
	client.SetLogger(logger.Sugar())

	return client
}
