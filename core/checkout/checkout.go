package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/storely/storefront/core/cart"
	"github.com/storely/storefront/core/product"
)

// ErrEmptyCart reports a checkout attempt with nothing to pay for.
var ErrEmptyCart = errors.New("cart is empty")

// GatewayFailure wraps payment provider errors so the handler can report
// them as a retry-later condition. Session creation is never retried
// automatically; retrying could mint duplicate sessions.
type GatewayFailure struct {
	Err error
}

func (g *GatewayFailure) Error() string { return g.Err.Error() }

func (g *GatewayFailure) Unwrap() error { return g.Err }

// Builder turns the authoritative cart state into a hosted payment
// session. Building a session never mutates the cart: a failure anywhere
// in the sequence leaves the store untouched.
type Builder struct {
	store   cart.Store
	catalog product.Catalog
	gateway Gateway
	log     logrus.FieldLogger
}

func NewBuilder(store cart.Store, catalog product.Catalog, gateway Gateway, log logrus.FieldLogger) *Builder {
	return &Builder{
		store:   store,
		catalog: catalog,
		gateway: gateway,
		log:     log,
	}
}

// BuildSession reads the aggregated cart, prices every line from the
// catalog and requests a session from the gateway. Lines whose product no
// longer resolves are skipped and logged; they must not block payment for
// the rest of the cart.
func (b *Builder) BuildSession(ctx context.Context, cartID string) (Session, error) {
	lines, err := b.store.Lines(ctx, cartID)
	if err != nil {
		return Session{}, fmt.Errorf("reading cart[%s]: %w", cartID, err)
	}

	if len(lines) == 0 {
		return Session{}, ErrEmptyCart
	}

	items := make([]LineItem, 0, len(lines))
	for _, ln := range lines {
		p, err := b.catalog.Fetch(ctx, ln.ProductID)
		if err != nil {
			if errors.Is(err, product.ErrNotFound) {
				b.log.WithFields(logrus.Fields{
					"cart_id":    cartID,
					"product_id": ln.ProductID,
				}).Warn("skipping cart line with orphaned product")
				continue
			}
			return Session{}, fmt.Errorf("fetching product[%s]: %w", ln.ProductID, err)
		}

		items = append(items, LineItem{
			Name:       p.Name,
			UnitAmount: MinorUnits(p.Price),
			Quantity:   int64(ln.Quantity),
		})
	}

	// Every line was orphaned: nothing left to pay for.
	if len(items) == 0 {
		return Session{}, ErrEmptyCart
	}

	s, err := b.gateway.CreateSession(ctx, items)
	if err != nil {
		return Session{}, &GatewayFailure{Err: err}
	}

	return s, nil
}

// MinorUnits converts a decimal price into integer minor currency units,
// rounding half up: 19.99 -> 1999, 0.005 -> 1.
func MinorUnits(price decimal.Decimal) int64 {
	return price.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
