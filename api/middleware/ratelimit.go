package middleware

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/storely/storefront/api/web"
	"github.com/storely/storefront/api/weberr"
	"github.com/storely/storefront/rate"
)

// RateLimit throttles mutating cart traffic. Requests are keyed by the
// cartId query parameter when present, falling back to the client address,
// so one runaway tab cannot starve other shoppers.
func RateLimit(lim *rate.Limiter) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

			key := web.Query(r, "cartId")
			if key == "" {
				host, _, err := net.SplitHostPort(r.RemoteAddr)
				if err != nil {
					host = r.RemoteAddr
				}
				key = host
			}

			if !lim.Check(key) {
				return weberr.TooManyRequests(errors.New("rate limit exceeded"))
			}

			return handler(ctx, w, r)
		}
		return h
	}
	return m
}
