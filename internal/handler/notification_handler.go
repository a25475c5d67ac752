package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/kursadbilgin/hipchat-notifier/internal/domain"
	"github.com/kursadbilgin/hipchat-notifier/internal/identity"
	"github.com/kursadbilgin/hipchat-notifier/internal/notifier"
	"github.com/kursadbilgin/hipchat-notifier/internal/observability"
)

type NotificationService interface {
	Notify(ctx context.Context, req domain.NotificationRequest, src identity.Source) error
}

type NotificationHandler struct {
	service NotificationService
}

func NewNotificationHandler(service NotificationService) (*NotificationHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("notification service is required")
	}
	return &NotificationHandler{service: service}, nil
}

func RegisterNotificationRoutes(router fiber.Router, service NotificationService) error {
	h, err := NewNotificationHandler(service)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Post("/notifications", h.PublishNotification)

	return nil
}

type publishNotificationRequest struct {
	Message     string `json:"message"`
	Color       string `json:"color"`
	Notify      bool   `json:"notify"`
	TextFormat  bool   `json:"textFormat"`
	TriggeredBy string `json:"triggeredBy"`
}

type publishNotificationResponse struct {
	Status        string `json:"status"`
	CorrelationID string `json:"correlationId"`
}

func (h *NotificationHandler) PublishNotification(c *fiber.Ctx) error {
	var req publishNotificationRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	color, err := domain.ParseColorFromString(req.Color)
	if err != nil {
		return toHTTPError(err)
	}

	correlationID := requestCorrelationID(c)
	if correlationID == "" {
		correlationID = uuid.NewString()
	}
	c.Set(fiber.HeaderXRequestID, correlationID)
	ctx := observability.WithCorrelationID(c.UserContext(), correlationID)

	notification := domain.NotificationRequest{
		Message:    req.Message,
		Color:      color,
		Notify:     req.Notify,
		TextFormat: req.TextFormat,
	}

	var src identity.Source
	if triggeredBy := strings.TrimSpace(req.TriggeredBy); triggeredBy != "" {
		src = identity.Run{TriggeredBy: triggeredBy}
	}

	if err := h.service.Notify(ctx, notification, src); err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(publishNotificationResponse{
		Status:        "sent",
		CorrelationID: correlationID,
	})
}

func requestCorrelationID(c *fiber.Ctx) string {
	if value := strings.TrimSpace(c.Get(fiber.HeaderXRequestID)); value != "" {
		return value
	}
	if value, ok := c.Locals("requestid").(string); ok {
		return strings.TrimSpace(value)
	}
	return ""
}

func toHTTPError(err error) error {
	if errors.Is(err, domain.ErrValidation) {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	switch notifier.KindOf(err) {
	case notifier.KindInvalidResponse:
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	case notifier.KindTransport:
		if notifier.IsTransient(err) {
			return fiber.NewError(fiber.StatusGatewayTimeout, err.Error())
		}
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	default:
		return err
	}
}
