package view

import "fmt"

// Session supplies the credentials of the signed in user. Backends that
// authenticate read the token on every request, so a Session may rotate it.
type Session interface {
	Token() string
	User() string
}

// StaticSession is a Session with fixed values, e.g. from config.
type StaticSession struct {
	token string
	user  string
}

// NewStaticSession creates a Session that always returns token and user.
func NewStaticSession(token, user string) StaticSession {
	return StaticSession{token: token, user: user}
}

// Token returns the bearer token.
func (s StaticSession) Token() string { return s.token }

// User returns the display name of the signed in user.
func (s StaticSession) User() string { return s.user }

// Theme is the display preference handed to the UI.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// ParseTheme converts a config value to a Theme.
func ParseTheme(s string) (Theme, error) {
	switch Theme(s) {
	case ThemeDark, ThemeLight:
		return Theme(s), nil
	case "":
		return ThemeDark, nil
	}
	return ThemeDark, fmt.Errorf("unknown theme %q", s)
}
