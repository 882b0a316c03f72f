package checkout

import (
	"context"
	"fmt"
	"strconv"

	"github.com/plutov/paypal/v4"
	"github.com/shopspring/decimal"
	"github.com/storely/storefront/config"
	"github.com/stripe/stripe-go/v74"
	stripecl "github.com/stripe/stripe-go/v74/client"
)

// LineItem is one priced entry of a checkout session, in integer minor
// currency units. Prices come from the catalog at build time, never from
// the client.
type LineItem struct {
	Name       string
	UnitAmount int64
	Quantity   int64
}

// Session identifies a hosted payment page at the provider. It is not
// persisted: it only lives long enough to redirect the shopper.
type Session struct {
	ID  string `json:"sessionId"`
	URL string `json:"url,omitempty"`
}

// Gateway creates a hosted payment session from priced line items.
type Gateway interface {
	CreateSession(ctx context.Context, items []LineItem) (Session, error)
}

type StripeGateway struct {
	client *stripecl.API
	cfg    config.Stripe
}

func NewStripeGateway(client *stripecl.API, cfg config.Stripe) *StripeGateway {
	return &StripeGateway{client: client, cfg: cfg}
}

func (g *StripeGateway) CreateSession(ctx context.Context, items []LineItem) (Session, error) {
	li := make([]*stripe.CheckoutSessionLineItemParams, 0, len(items))
	for _, it := range items {
		li = append(li, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(it.Quantity),

			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String("usd"),
				UnitAmount: stripe.Int64(it.UnitAmount),

				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(it.Name),
				},
			},
		})
	}

	params := &stripe.CheckoutSessionParams{
		SuccessURL: stripe.String(g.cfg.SuccessURL),
		CancelURL:  stripe.String(g.cfg.CancelURL),
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:  li,
	}
	params.Context = ctx

	s, err := g.client.CheckoutSessions.New(params)
	if err != nil {
		return Session{}, fmt.Errorf("creating stripe session: %w", err)
	}

	return Session{ID: s.ID, URL: s.URL}, nil
}

type PaypalGateway struct {
	client *paypal.Client
}

func NewPaypalGateway(client *paypal.Client) *PaypalGateway {
	return &PaypalGateway{client: client}
}

func (g *PaypalGateway) CreateSession(ctx context.Context, items []LineItem) (Session, error) {
	var tot int64
	ppItems := make([]paypal.Item, 0, len(items))
	for _, it := range items {
		ppItems = append(ppItems, paypal.Item{
			Name:     it.Name,
			Quantity: strconv.FormatInt(it.Quantity, 10),

			UnitAmount: &paypal.Money{
				Currency: "USD",
				Value:    dollars(it.UnitAmount),
			},
		})

		tot += it.UnitAmount * it.Quantity
	}

	units := []paypal.PurchaseUnitRequest{{
		Items: ppItems,

		Amount: &paypal.PurchaseUnitAmount{
			Currency: "USD",
			Value:    dollars(tot),

			Breakdown: &paypal.PurchaseUnitAmountBreakdown{ItemTotal: &paypal.Money{
				Currency: "USD",
				Value:    dollars(tot),
			}},
		},
	}}

	ord, err := g.client.CreateOrder(ctx, paypal.OrderIntentCapture, units, nil, nil)
	if err != nil {
		return Session{}, fmt.Errorf("creating paypal order: %w", err)
	}

	var approve string
	for _, l := range ord.Links {
		if l.Rel == "approve" {
			approve = l.Href
		}
	}

	return Session{ID: ord.ID, URL: approve}, nil
}

// Capture settles a previously approved paypal order and reports whether
// the provider confirmed completion. This is the pull-based outcome check.
func (g *PaypalGateway) Capture(ctx context.Context, providerID string) error {
	resp, err := g.client.CaptureOrder(ctx, providerID, paypal.CaptureOrderRequest{})
	if err != nil {
		return &GatewayFailure{Err: fmt.Errorf("capturing paypal order[%s]: %w", providerID, err)}
	}

	if resp.Status != "COMPLETED" {
		return fmt.Errorf("captured order[%s] with status[%s] different from 'COMPLETED'", providerID, resp.Status)
	}

	return nil
}

// dollars renders minor units as a decimal dollar string, e.g. 1999 -> "19.99".
func dollars(minor int64) string {
	return decimal.New(minor, -2).StringFixed(2)
}
