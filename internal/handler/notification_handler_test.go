package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/kursadbilgin/hipchat-notifier/internal/domain"
	"github.com/kursadbilgin/hipchat-notifier/internal/identity"
	"github.com/kursadbilgin/hipchat-notifier/internal/notifier"
	"github.com/kursadbilgin/hipchat-notifier/internal/observability"
	"github.com/kursadbilgin/hipchat-notifier/internal/transport"
	"go.uber.org/zap"
)

type stubNotificationService struct {
	notifyFn func(ctx context.Context, req domain.NotificationRequest, src identity.Source) error
}

func (s *stubNotificationService) Notify(ctx context.Context, req domain.NotificationRequest, src identity.Source) error {
	if s.notifyFn == nil {
		return nil
	}
	return s.notifyFn(ctx, req, src)
}

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestPublishNotification_Success(t *testing.T) {
	t.Parallel()

	var (
		gotReq           domain.NotificationRequest
		gotSrc           identity.Source
		gotCorrelationID string
	)
	svc := &stubNotificationService{
		notifyFn: func(ctx context.Context, req domain.NotificationRequest, src identity.Source) error {
			gotReq = req
			gotSrc = src
			gotCorrelationID, _ = observability.CorrelationIDFromContext(ctx)
			return nil
		},
	}

	app := newNotificationTestApp(t, svc)

	body := `{"message":"Build #9 failed","color":"RED","notify":true,"textFormat":true,"triggeredBy":"Jane Doe"}`
	resp, respBody := performRequest(t, app, http.MethodPost, "/v1/notifications", body, "build-9")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", resp.StatusCode, string(respBody))
	}

	want := domain.NotificationRequest{Message: "Build #9 failed", Color: domain.ColorRed, Notify: true, TextFormat: true}
	if gotReq != want {
		t.Fatalf("request = %+v, want %+v", gotReq, want)
	}
	if mention, ok := identity.CurrentUser(gotSrc); !ok || mention != "@JaneDoe" {
		t.Fatalf("source mention = %q (ok=%v), want @JaneDoe", mention, ok)
	}
	if gotCorrelationID != "build-9" {
		t.Fatalf("correlation id = %q, want build-9", gotCorrelationID)
	}

	var parsed map[string]any
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		t.Fatalf("json unmarshal error = %v", err)
	}
	if parsed["status"] != "sent" || parsed["correlationId"] != "build-9" {
		t.Fatalf("response = %v", parsed)
	}
}

func TestPublishNotification_GeneratesCorrelationID(t *testing.T) {
	t.Parallel()

	var gotSrc identity.Source = identity.Run{TriggeredBy: "sentinel"}
	svc := &stubNotificationService{
		notifyFn: func(ctx context.Context, req domain.NotificationRequest, src identity.Source) error {
			gotSrc = src
			if req.Color != domain.ColorYellow {
				t.Errorf("color = %s, want yellow", req.Color)
			}
			return nil
		},
	}

	app := newNotificationTestApp(t, svc)
	resp, _ := performRequest(t, app, http.MethodPost, "/v1/notifications", `{"message":"hi"}`, "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if resp.Header.Get(fiber.HeaderXRequestID) == "" {
		t.Fatal("expected generated X-Request-ID header")
	}
	if gotSrc != nil {
		t.Fatalf("source = %v, want nil without triggeredBy", gotSrc)
	}
}

func TestPublishNotification_ErrorMapping(t *testing.T) {
	t.Parallel()

	room := domain.Destination{Kind: domain.DestinationRoom, ID: "100"}

	testCases := []struct {
		name       string
		body       string
		err        error
		wantStatus int
	}{
		{name: "invalid json", body: `{`, wantStatus: fiber.StatusBadRequest},
		{name: "unknown color", body: `{"message":"hi","color":"blue"}`, wantStatus: fiber.StatusBadRequest},
		{name: "validation from service", body: `{"message":""}`, err: domain.ErrValidation, wantStatus: fiber.StatusBadRequest},
		{
			name:       "upstream rejected",
			body:       `{"message":"hi"}`,
			err:        &notifier.InvalidResponseError{Destination: room, StatusCode: 400, Body: `{"error":"bad request"}`},
			wantStatus: fiber.StatusBadGateway,
		},
		{
			name:       "upstream timeout",
			body:       `{"message":"hi"}`,
			err:        &notifier.TransportError{Destination: room, Cause: timeoutError{}},
			wantStatus: fiber.StatusGatewayTimeout,
		},
		{
			name:       "upstream refused",
			body:       `{"message":"hi"}`,
			err:        &notifier.TransportError{Destination: room, Cause: errors.New("connection refused")},
			wantStatus: fiber.StatusBadGateway,
		},
		{name: "unexpected", body: `{"message":"hi"}`, err: errors.New("boom"), wantStatus: fiber.StatusInternalServerError},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			svc := &stubNotificationService{
				notifyFn: func(ctx context.Context, req domain.NotificationRequest, src identity.Source) error {
					return tc.err
				},
			}
			app := newNotificationTestApp(t, svc)

			resp, body := performRequest(t, app, http.MethodPost, "/v1/notifications", tc.body, "")
			if resp.StatusCode != tc.wantStatus {
				t.Fatalf("status = %d, want %d, body=%s", resp.StatusCode, tc.wantStatus, string(body))
			}
		})
	}
}

func TestNewNotificationHandler_NilService(t *testing.T) {
	t.Parallel()

	if _, err := NewNotificationHandler(nil); err == nil {
		t.Fatal("expected error for nil service")
	}
}

func TestHealthRoutes(t *testing.T) {
	t.Parallel()

	app := fiber.New()
	RegisterHealthRoutes(app, map[string]ReadinessCheck{
		"rabbitmq": func(ctx context.Context) error { return errors.New("closed") },
		"dispatcher": func(ctx context.Context) error {
			return nil
		},
	})

	resp, _ := performRequest(t, app, http.MethodGet, "/livez", "", "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("livez status = %d, want 200", resp.StatusCode)
	}

	resp, body := performRequest(t, app, http.MethodGet, "/readyz", "", "")
	if resp.StatusCode != fiber.StatusServiceUnavailable {
		t.Fatalf("readyz status = %d, want 503", resp.StatusCode)
	}
	var parsed struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		t.Fatalf("json unmarshal error = %v", err)
	}
	if parsed.Status != "not_ready" || parsed.Checks["rabbitmq"] != "down" || parsed.Checks["dispatcher"] != "ok" {
		t.Fatalf("readyz = %+v", parsed)
	}
}

func newNotificationTestApp(t *testing.T, svc NotificationService) *fiber.App {
	t.Helper()

	app := fiber.New(fiber.Config{
		ErrorHandler: transport.ErrorHandler(zap.NewNop()),
	})

	if err := RegisterNotificationRoutes(app, svc); err != nil {
		t.Fatalf("RegisterNotificationRoutes() error = %v", err)
	}

	return app
}

func performRequest(t *testing.T, app *fiber.App, method string, path string, body string, requestID string) (*http.Response, []byte) {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if requestID != "" {
		req.Header.Set(fiber.HeaderXRequestID, requestID)
	}

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	_ = resp.Body.Close()

	return resp, respBody
}
