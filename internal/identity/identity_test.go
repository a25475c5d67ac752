package identity

import "testing"

func TestCurrentUser(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		src    Source
		want   string
		wantOK bool
	}{
		{name: "triggering user wins", src: Run{TriggeredBy: "Jane Doe", CurrentUser: "Admin User"}, want: "@JaneDoe", wantOK: true},
		{name: "falls back to current user", src: Run{CurrentUser: "Admin User"}, want: "@AdminUser", wantOK: true},
		{name: "blank cause falls back", src: Run{TriggeredBy: "  ", CurrentUser: "ops"}, want: "@ops", wantOK: true},
		{name: "no identity", src: Run{}, wantOK: false},
		{name: "nil source", src: nil, wantOK: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := CurrentUser(tt.src)
			if ok != tt.wantOK {
				t.Fatalf("CurrentUser() ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Fatalf("CurrentUser() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAppendCurrentUser(t *testing.T) {
	t.Parallel()

	jane := Run{TriggeredBy: "Jane Doe"}

	tests := []struct {
		name  string
		users string
		src   Source
		want  string
	}{
		{name: "empty list", users: "", src: jane, want: "@JaneDoe"},
		{name: "blank list", users: "   ", src: jane, want: "@JaneDoe"},
		{name: "existing list", users: "@bob", src: jane, want: "@bob,@JaneDoe"},
		{name: "no identity keeps list", users: "@bob", src: Run{}, want: "@bob"},
		{name: "no identity and empty list", users: "", src: Run{}, want: ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := AppendCurrentUser(tt.users, tt.src); got != tt.want {
				t.Fatalf("AppendCurrentUser(%q) = %q, want %q", tt.users, got, tt.want)
			}
		})
	}
}
