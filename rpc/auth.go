package rpc

import (
	"context"
	"crypto/subtle"
	"net/http"
)

type callerContextKey struct{}

// WithCaller stores authenticated caller name in ctx.
func WithCaller(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, callerContextKey{}, name)
}

// Caller returns the name stored by WithCaller, if any.
func Caller(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(callerContextKey{}).(string)
	return name, ok
}

type BasicAuth struct {
	Username string
	Password string
}

// Enabled reports whether both credentials are set.
func (b *BasicAuth) Enabled() bool {
	return len(b.Username) > 0 && len(b.Password) > 0
}

func (b *BasicAuth) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		if !ok {
			w.Header().Set("WWW-Authenticate", `Basic realm="rpc"`)
			http.Error(w, "credentials not provided", http.StatusUnauthorized)
			return
		}

		userMatch := subtle.ConstantTimeCompare([]byte(username), []byte(b.Username)) == 1
		passMatch := subtle.ConstantTimeCompare([]byte(password), []byte(b.Password)) == 1
		if !userMatch || !passMatch {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), username)))
	})
}
