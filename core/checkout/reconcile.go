package checkout

import (
	"context"
	"net/url"

	"github.com/alexedwards/scs/v2"
	"github.com/sirupsen/logrus"
	"github.com/storely/storefront/core/cart"
)

// Outcome is the redirect-time payment signal. The gateway never pushes a
// result to us; the shopper's browser carries it back as a query
// parameter. A shopper who closes the payment page produces no outcome at
// all and the cart stays as it was.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeSuccess
	OutcomeCanceled
)

// ParseOutcome reads the redirect query parameters. Success wins if a
// confused client manages to send both.
func ParseOutcome(q url.Values) Outcome {
	switch {
	case q.Get("success") == "true":
		return OutcomeSuccess
	case q.Get("canceled") == "true":
		return OutcomeCanceled
	}
	return OutcomeNone
}

// Result is what the shopper's client learns from reconciliation.
type Result struct {
	Status    string `json:"status"`
	Retryable bool   `json:"retryable"`
}

const pendingKey = "pending_checkout"

// Reconciler interprets the shopper's return from the hosted payment
// page. It trusts the redirect signal, matching the reference behavior;
// the paypal capture flow is the gateway-verified alternative. Emptying
// the cart is the only success side effect, and it is idempotent, so a
// replayed success redirect is harmless.
type Reconciler struct {
	store   cart.Store
	session *scs.SessionManager
	log     logrus.FieldLogger
}

func NewReconciler(store cart.Store, session *scs.SessionManager, log logrus.FieldLogger) *Reconciler {
	return &Reconciler{
		store:   store,
		session: session,
		log:     log,
	}
}

// Track records the provider session id in the device session when a
// checkout begins. Its presence distinguishes the first success
// observation from a replay.
func (rc *Reconciler) Track(ctx context.Context, providerID string) {
	rc.session.Put(ctx, pendingKey, providerID)
}

// Observe applies a redirect outcome to the cart. On success the cart is
// emptied; on cancel it is left untouched and the shopper may retry.
func (rc *Reconciler) Observe(ctx context.Context, cartID string, out Outcome) (Result, error) {
	switch out {
	case OutcomeSuccess:
		if err := rc.store.Empty(ctx, cartID); err != nil {
			return Result{}, err
		}

		// Only the first observation of a session settles it; replays
		// (page reloads) re-empty an already empty cart and do nothing
		// else.
		if pending := rc.session.PopString(ctx, pendingKey); pending != "" {
			rc.log.WithFields(logrus.Fields{
				"cart_id":    cartID,
				"session_id": pending,
			}).Info("checkout settled")
		}

		return Result{Status: "paid"}, nil

	case OutcomeCanceled:
		rc.session.Remove(ctx, pendingKey)
		return Result{Status: "canceled", Retryable: true}, nil
	}

	return Result{}, nil
}
