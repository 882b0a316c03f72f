package api

import (
	"context"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/plutov/paypal/v4"
	"github.com/sirupsen/logrus"
	"github.com/storely/storefront/api/middleware"
	"github.com/storely/storefront/api/web"
	"github.com/storely/storefront/config"
	"github.com/storely/storefront/core/cart"
	"github.com/storely/storefront/core/checkout"
	"github.com/storely/storefront/core/product"
	"github.com/storely/storefront/database"
	"github.com/storely/storefront/rate"
	stripecl "github.com/stripe/stripe-go/v74/client"
)

type APIConfig struct {
	CorsOrigin string
	Log        logrus.FieldLogger
	DB         *sqlx.DB
	Session    *scs.SessionManager
	Carts      cart.Store
	Catalog    product.Catalog
	Stripe     *stripecl.API
	StripeCfg  config.Stripe
	Paypal     *paypal.Client
	Limiter    *rate.Limiter
}

type api struct {
	*mux.Router
	mw  []web.Middleware
	log logrus.FieldLogger
}

func APIMux(cfg APIConfig) http.Handler {
	a := &api{
		Router: mux.NewRouter(),
		log:    cfg.Log,
	}

	a.mw = append(a.mw, middleware.LoadAndSave(cfg.Session))
	a.mw = append(a.mw, middleware.RequestID())
	a.mw = append(a.mw, middleware.Logger(cfg.Log))
	a.mw = append(a.mw, middleware.Errors(cfg.Log))
	a.mw = append(a.mw, middleware.Panics())

	if cfg.CorsOrigin != "" {
		a.mw = append(a.mw, middleware.Cors(cfg.CorsOrigin))

		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			w.WriteHeader(http.StatusNoContent)
			return nil
		}

		a.Handle(http.MethodOptions, "/{path:.*}", h)
	}

	var limit web.Middleware
	if cfg.Limiter != nil {
		limit = middleware.RateLimit(cfg.Limiter)
	}

	rc := checkout.NewReconciler(cfg.Carts, cfg.Session, cfg.Log)
	stripeGW := checkout.NewStripeGateway(cfg.Stripe, cfg.StripeCfg)
	stripeBuilder := checkout.NewBuilder(cfg.Carts, cfg.Catalog, stripeGW, cfg.Log)

	a.Handle(http.MethodGet, "/health", handleHealth(cfg.DB))

	a.Handle(http.MethodGet, "/products", product.HandleList(cfg.Catalog))
	a.Handle(http.MethodGet, "/products/{id}", product.HandleShow(cfg.Catalog))

	a.Handle(http.MethodGet, "/cart", cart.HandleShow(cfg.Carts))
	a.Handle(http.MethodPost, "/cart/id", cart.HandleNewID())
	a.Handle(http.MethodPost, "/cart", cart.HandleAddLine(cfg.Carts), limit)
	a.Handle(http.MethodPost, "/cart/update", cart.HandleUpdateLine(cfg.Carts), limit)
	a.Handle(http.MethodPost, "/cart/delete", cart.HandleDeleteLine(cfg.Carts), limit)
	a.Handle(http.MethodPost, "/cart/empty", cart.HandleEmpty(cfg.Carts), limit)

	a.Handle(http.MethodPost, "/checkout", checkout.HandleCheckout(stripeBuilder, rc), limit)
	a.Handle(http.MethodGet, "/checkout/redirect", checkout.HandleRedirect(rc))

	if cfg.Paypal != nil {
		paypalGW := checkout.NewPaypalGateway(cfg.Paypal)
		paypalBuilder := checkout.NewBuilder(cfg.Carts, cfg.Catalog, paypalGW, cfg.Log)

		a.Handle(http.MethodPost, "/checkout/paypal", checkout.HandleCheckout(paypalBuilder, rc), limit)
		a.Handle(http.MethodPost, "/checkout/paypal/{id}/capture", checkout.HandleCapture(cfg.Carts, paypalGW))
	}

	return a.Router
}

func handleHealth(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		if err := database.StatusCheck(ctx, db); err != nil {
			return err
		}

		status := struct {
			Status string `json:"status"`
		}{
			Status: "ok",
		}
		return web.Respond(ctx, w, status, http.StatusOK)
	}
}

func (a *api) Handle(method string, path string, handler web.Handler, mw ...web.Middleware) {

	handler = web.WrapMiddleware(mw, handler)

	handler = web.WrapMiddleware(a.mw, handler)

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		ctx := r.Context()

		if err := handler(ctx, w, r); err != nil {

			a.log.WithFields(logrus.Fields{
				"req_id":  middleware.ContextRequestID(ctx),
				"message": err,
			}).Error("ERROR")
		}
	})

	a.Router.Handle(path, h).Methods(method)
}
