// Package auth implements the operator session: an HMAC-signed cookie
// carrying the last observed activity time. Sessions move through
// anonymous -> authenticated -> expired -> anonymous; expiry is purely a
// function of time since last activity versus the configured idle
// threshold, and every authenticated request slides the window forward.
package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

type ctxKey string

const (
	sessionCookieName = "session"
	operatorCtxKey    = ctxKey("operator")

	defaultIdleTimeout = 30 * time.Minute
)

// Secret returns SESSION_SECRET or a dev default.
func Secret() string {
	if s := os.Getenv("SESSION_SECRET"); s != "" {
		return s
	}
	return "devsessionsecret"
}

// IdleTimeout returns the configured idle threshold (SESSION_IDLE_MINUTES).
func IdleTimeout() time.Duration {
	if v := os.Getenv("SESSION_IDLE_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Minute
		}
	}
	return defaultIdleTimeout
}

func sign(payload string) string {
	mac := hmac.New(sha256.New, []byte(Secret()))
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// CreateSession sets a signed cookie stamped with the current time.
func CreateSession(w http.ResponseWriter) {
	setCookie(w, time.Now())
}

func setCookie(w http.ResponseWriter, activity time.Time) {
	stamp := strconv.FormatInt(activity.Unix(), 10)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    stamp + "." + sign(stamp),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSession deletes the session cookie.
func ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: sessionCookieName, Value: "", Path: "/", Expires: time.Unix(0, 0), HttpOnly: true, SameSite: http.SameSiteLaxMode})
}

// ParseSession validates the cookie signature and idle window.
func ParseSession(r *http.Request) bool {
	return parseSessionAt(r, time.Now())
}

func parseSessionAt(r *http.Request, now time.Time) bool {
	c, err := r.Cookie(sessionCookieName)
	if err != nil || c.Value == "" {
		return false
	}
	parts := strings.Split(c.Value, ".")
	if len(parts) != 2 {
		return false
	}
	stamp, sig := parts[0], parts[1]
	if !hmac.Equal([]byte(sig), []byte(sign(stamp))) {
		return false
	}
	unix, err := strconv.ParseInt(stamp, 10, 64)
	if err != nil {
		return false
	}
	last := time.Unix(unix, 0)
	if last.After(now) {
		return false
	}
	return now.Sub(last) <= IdleTimeout()
}

// WithOperator marks the context authenticated.
func WithOperator(ctx context.Context) context.Context {
	return context.WithValue(ctx, operatorCtxKey, true)
}

// IsAuthenticated reports whether the request context carries a session.
func IsAuthenticated(ctx context.Context) bool {
	v, _ := ctx.Value(operatorCtxKey).(bool)
	return v
}

// Middleware validates the session cookie, attaches the operator marker,
// and slides the idle window forward on every authenticated request. An
// expired or invalid cookie is cleared so the session returns cleanly to
// the anonymous state.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := r.Cookie(sessionCookieName); err == nil {
			if ParseSession(r) {
				setCookie(w, time.Now())
				r = r.WithContext(WithOperator(r.Context()))
			} else {
				ClearSession(w)
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuth rejects anonymous requests: 401 for JSON clients, a login
// redirect for browsers.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IsAuthenticated(r.Context()) {
			accept := r.Header.Get("Accept")
			if strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html") {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
				return
			}
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
