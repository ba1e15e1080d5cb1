// Package identity carries the caller's self-chosen display name. Nothing is
// verified: the name only labels who added, completed or purchased an item.
package identity

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

const (
	HeaderName = "X-Liste-User"
	CookieName = "liste_nom"
)

type contextKey struct{}

func WithUser(ctx context.Context, user string) context.Context {
	return context.WithValue(ctx, contextKey{}, user)
}

func FromContext(ctx context.Context) (string, bool) {
	user, ok := ctx.Value(contextKey{}).(string)
	return user, ok && user != ""
}

// User returns the display name in ctx, or "".
func User(ctx context.Context) string {
	user, _ := FromContext(ctx)
	return user
}

// FromRequest reads the display name from the header, then the cookie.
// Values may be percent-encoded so accented names survive cookie transport.
// A literal "+" is kept.
func FromRequest(r *http.Request) string {
	if v := r.Header.Get(HeaderName); v != "" {
		return clean(v)
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return clean(c.Value)
	}
	return ""
}

func clean(v string) string {
	if decoded, err := url.PathUnescape(v); err == nil {
		v = decoded
	}
	return strings.TrimSpace(v)
}

// Cookie builds the cookie that remembers a display name for a year.
func Cookie(user string) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    url.PathEscape(user),
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		HttpOnly: false,
		SameSite: http.SameSiteLaxMode,
	}
}
