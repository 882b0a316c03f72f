package middleware

import (
	"context"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/storely/storefront/api/web"
)

// LoadAndSave adapts the scs middleware to the web.Handler chain. The
// session only carries the pending checkout state used by reconciliation.
func LoadAndSave(session *scs.SessionManager) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

			var err error
			wrapped := session.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				err = handler(r.Context(), w, r)
			}))

			wrapped.ServeHTTP(w, r.WithContext(ctx))
			return err
		}
		return h
	}
	return m
}
