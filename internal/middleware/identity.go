package middleware

import (
	"net/http"

	"github.com/dukerupert/liste/internal/identity"
)

// Identify stores the request's display name, if any, in the context.
func Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user := identity.FromRequest(r); user != "" {
			r = r.WithContext(identity.WithUser(r.Context(), user))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireUser rejects requests that carry no display name. Names are not
// checked against anything.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := identity.FromContext(r.Context()); !ok {
			writeError(w, http.StatusUnauthorized, "display name required ("+identity.HeaderName+" header or "+identity.CookieName+" cookie)")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":` + quote(msg) + `}`))
}
