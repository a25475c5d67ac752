package identity

import "strings"

// Source exposes who started a build. Empty strings mean unknown.
type Source interface {
	// TriggeringUserName is the user recorded on the run's user cause.
	TriggeringUserName() string
	// CurrentUserFullName is the fallback when the run carries no user cause.
	CurrentUserFullName() string
}

// Run is a static Source, used when the trigger arrives over the API or queue.
type Run struct {
	TriggeredBy string
	CurrentUser string
}

func (r Run) TriggeringUserName() string { return r.TriggeredBy }

func (r Run) CurrentUserFullName() string { return r.CurrentUser }

// CurrentUser returns the @mention of whoever started the build.
func CurrentUser(src Source) (string, bool) {
	if src == nil {
		return "", false
	}

	name := strings.TrimSpace(src.TriggeringUserName())
	if name == "" {
		name = strings.TrimSpace(src.CurrentUserFullName())
	}
	if name == "" {
		return "", false
	}

	handle := strings.ReplaceAll(name, " ", "")
	return "@" + handle, true
}

// AppendCurrentUser adds the current user's mention to a raw user list.
// The list is returned unmodified when no identity can be found.
func AppendCurrentUser(users string, src Source) string {
	mention, ok := CurrentUser(src)
	if !ok {
		return users
	}
	if strings.TrimSpace(users) == "" {
		return mention
	}
	return users + "," + mention
}
