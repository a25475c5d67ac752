package queue

import (
	"fmt"
	"strings"

	"github.com/kursadbilgin/hipchat-notifier/internal/domain"
	"github.com/kursadbilgin/hipchat-notifier/internal/identity"
)

// BuildNotificationMessage is the broker payload published by build steps.
type BuildNotificationMessage struct {
	CorrelationID string `json:"correlationId,omitempty"`
	Message       string `json:"message"`
	Color         string `json:"color,omitempty"`
	Notify        bool   `json:"notify"`
	TextFormat    bool   `json:"textFormat"`
	TriggeredBy   string `json:"triggeredBy,omitempty"`
	CurrentUser   string `json:"currentUser,omitempty"`
}

func (m BuildNotificationMessage) Validate() error {
	if strings.TrimSpace(m.Message) == "" {
		return fmt.Errorf("%w: message is required", domain.ErrValidation)
	}
	if _, err := domain.ParseColorFromString(m.Color); err != nil {
		return err
	}
	return nil
}

// Request converts the payload; call Validate first.
func (m BuildNotificationMessage) Request() domain.NotificationRequest {
	color, err := domain.ParseColorFromString(m.Color)
	if err != nil {
		color = domain.DefaultColor
	}

	return domain.NotificationRequest{
		Message:    m.Message,
		Color:      color,
		Notify:     m.Notify,
		TextFormat: m.TextFormat,
	}
}

// Source is nil when the message names nobody.
func (m BuildNotificationMessage) Source() identity.Source {
	if strings.TrimSpace(m.TriggeredBy) == "" && strings.TrimSpace(m.CurrentUser) == "" {
		return nil
	}
	return identity.Run{TriggeredBy: m.TriggeredBy, CurrentUser: m.CurrentUser}
}
