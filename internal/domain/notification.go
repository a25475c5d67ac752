package domain

import (
	"fmt"
	"strings"
)

// Color is the background color of a room notification.
type Color string

const (
	ColorYellow Color = "yellow"
	ColorGreen  Color = "green"
	ColorRed    Color = "red"
	ColorPurple Color = "purple"
	ColorGray   Color = "gray"
	ColorRandom Color = "random"
)

// DefaultColor is applied when a request leaves the color empty.
const DefaultColor = ColorYellow

func (c Color) String() string { return string(c) }

func (c Color) IsValid() bool {
	switch c {
	case ColorYellow, ColorGreen, ColorRed, ColorPurple, ColorGray, ColorRandom:
		return true
	}
	return false
}

func ParseColorFromString(s string) (Color, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	if normalized == "" {
		return DefaultColor, nil
	}
	c := Color(normalized)
	if !c.IsValid() {
		return "", fmt.Errorf("%w: invalid color %q", ErrValidation, s)
	}
	return c, nil
}

// MessageFormat is the wire value of message_format.
type MessageFormat string

const (
	MessageFormatText MessageFormat = "text"
	MessageFormatHTML MessageFormat = "html"
)

func (f MessageFormat) String() string { return string(f) }

// DestinationKind tells rooms and users apart. Both are opaque identifiers.
type DestinationKind string

const (
	DestinationRoom DestinationKind = "room"
	DestinationUser DestinationKind = "user"
)

func (k DestinationKind) String() string { return string(k) }

// Destination is one room or user a notification is posted to.
type Destination struct {
	Kind DestinationKind
	ID   string
}

func (d Destination) String() string {
	return fmt.Sprintf("%s:%s", d.Kind, d.ID)
}

// NotificationRequest is one logical message fanned out to every destination.
type NotificationRequest struct {
	Message    string
	Color      Color
	Notify     bool
	TextFormat bool
}

// Format maps TextFormat onto the wire value.
func (r NotificationRequest) Format() MessageFormat {
	if r.TextFormat {
		return MessageFormatText
	}
	return MessageFormatHTML
}

func (r NotificationRequest) Validate() error {
	if strings.TrimSpace(r.Message) == "" {
		return fmt.Errorf("%w: message is required", ErrValidation)
	}
	if !r.Color.IsValid() {
		return fmt.Errorf("%w: invalid color %q", ErrValidation, r.Color)
	}
	return nil
}
