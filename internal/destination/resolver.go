package destination

import (
	"strings"

	"github.com/kursadbilgin/hipchat-notifier/internal/domain"
)

// Resolve splits a comma separated list into trimmed, non-empty tokens.
// Order is preserved and duplicates are kept.
func Resolve(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}

	parts := strings.Split(raw, ",")
	tokens := make([]string, 0, len(parts))
	for _, part := range parts {
		if token := strings.TrimSpace(part); token != "" {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

// Set holds the rooms and users resolved once for a dispatcher.
type Set struct {
	rooms []string
	users []string
}

func NewSet(rawRooms string, rawUsers string) Set {
	return Set{
		rooms: Resolve(rawRooms),
		users: Resolve(rawUsers),
	}
}

// Rooms returns a copy so callers cannot mutate the set.
func (s Set) Rooms() []string { return append([]string(nil), s.rooms...) }

func (s Set) Users() []string { return append([]string(nil), s.users...) }

func (s Set) Len() int { return len(s.rooms) + len(s.users) }

func (s Set) IsEmpty() bool { return s.Len() == 0 }

// Destinations lists rooms first, then users, each in resolution order.
func (s Set) Destinations() []domain.Destination {
	out := make([]domain.Destination, 0, s.Len())
	for _, room := range s.rooms {
		out = append(out, domain.Destination{Kind: domain.DestinationRoom, ID: room})
	}
	for _, user := range s.users {
		out = append(out, domain.Destination{Kind: domain.DestinationUser, ID: user})
	}
	return out
}
