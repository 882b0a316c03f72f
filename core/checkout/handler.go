package checkout

import (
	"context"
	"errors"
	"net/http"

	"github.com/storely/storefront/api/web"
	"github.com/storely/storefront/api/weberr"
	"github.com/storely/storefront/core/cart"
	"github.com/storely/storefront/validate"
)

type checkoutNew struct {
	CartID string `json:"cartId" validate:"required"`
}

// HandleCheckout builds a hosted payment session for the cart and returns
// its id. Works for any gateway the builder was constructed with.
func HandleCheckout(b *Builder, rc *Reconciler) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var body checkoutNew
		if err := web.Decode(w, r, &body); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(body); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}
		if err := validate.CheckID(body.CartID); err != nil {
			return weberr.NewError(err, "cartId is not in its proper form", http.StatusBadRequest)
		}

		s, err := b.BuildSession(ctx, body.CartID)
		if err != nil {
			if errors.Is(err, ErrEmptyCart) {
				return weberr.NewError(err, "Cart is empty", http.StatusBadRequest)
			}

			var gf *GatewayFailure
			if errors.As(err, &gf) {
				return weberr.Unavailable(err, "payment provider is unavailable, try again")
			}

			return err
		}

		rc.Track(ctx, s.ID)

		return web.Respond(ctx, w, s, http.StatusOK)
	}
}

// HandleRedirect is the reconciliation endpoint the redirect targets point
// at. The outcome travels in the success/canceled query parameters.
func HandleRedirect(rc *Reconciler) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		cartID := web.Query(r, "cartId")
		if cartID == "" {
			err := errors.New("cartId is required")
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}
		if err := validate.CheckID(cartID); err != nil {
			return weberr.NewError(err, "cartId is not in its proper form", http.StatusBadRequest)
		}

		out := ParseOutcome(r.URL.Query())
		if out == OutcomeNone {
			err := errors.New("missing checkout outcome")
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		res, err := rc.Observe(ctx, cartID, out)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, res, http.StatusOK)
	}
}

// HandleCapture settles a paypal order. Unlike the redirect flow, the
// outcome is verified against the provider before the cart is touched.
func HandleCapture(store cart.Store, gateway *PaypalGateway) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		providerID := web.Param(r, "id")
		if providerID == "" {
			err := errors.New("order id is required")
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		var body checkoutNew
		if err := web.Decode(w, r, &body); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(body); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}
		if err := validate.CheckID(body.CartID); err != nil {
			return weberr.NewError(err, "cartId is not in its proper form", http.StatusBadRequest)
		}

		if err := gateway.Capture(ctx, providerID); err != nil {
			var gf *GatewayFailure
			if errors.As(err, &gf) {
				return weberr.Unavailable(err, "payment provider is unavailable, try again")
			}
			return err
		}

		if err := store.Empty(ctx, body.CartID); err != nil {
			return err
		}

		return web.Respond(ctx, w, Result{Status: "paid"}, http.StatusOK)
	}
}
