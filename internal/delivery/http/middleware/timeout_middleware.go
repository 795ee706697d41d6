package middleware

import (
	"context"
	"net/http"
	"time"
)

// RequestTimeout puts a deadline on the request context. Usecases pass the
// context down to the database, Redis and the payment gateway, so a slow
// dependency fails the request instead of holding the slot lock.
func RequestTimeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if timeout <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
