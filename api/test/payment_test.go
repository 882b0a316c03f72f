package test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/mux"
	"github.com/storely/storefront/api/web"
	"github.com/storely/storefront/random"
	mock "github.com/stripe/stripe-mock/param"
)

// StripeItem is one line item as the mock provider received it.
type StripeItem struct {
	Name       string
	UnitAmount int64
	Quantity   int64
}

type mockStripe struct {
	mu       sync.Mutex
	Sessions int
	Items    []StripeItem
}

func (m *mockStripe) handle() http.Handler {
	checkout := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		params, err := mock.ParseParams(r)
		if err != nil {
			web.Respond(context.Background(), w, nil, 400)
			return
		}

		lines, ok := params["line_items"].(map[string]any)
		if !ok {
			web.Respond(context.Background(), w, nil, 400)
			return
		}

		items := make([]StripeItem, 0, len(lines))
		for _, li := range lines {
			it, ok := li.(map[string]any)
			if !ok {
				web.Respond(context.Background(), w, nil, 400)
				return
			}

			qty, err := strconv.ParseInt(it["quantity"].(string), 10, 64)
			if err != nil {
				web.Respond(context.Background(), w, nil, 400)
				return
			}

			pd := it["price_data"].(map[string]any)
			amount, err := strconv.ParseInt(pd["unit_amount"].(string), 10, 64)
			if err != nil {
				web.Respond(context.Background(), w, nil, 400)
				return
			}

			name := ""
			if prod, ok := pd["product_data"].(map[string]any); ok {
				name, _ = prod["name"].(string)
			}

			items = append(items, StripeItem{Name: name, UnitAmount: amount, Quantity: qty})
		}

		m.mu.Lock()
		m.Sessions++
		m.Items = items
		m.mu.Unlock()

		id := "cs_test_" + random.String(14)
		session := map[string]any{
			"id":     id,
			"object": "checkout.session",
			"url":    "https://checkout.stripe.example/pay/" + id,
		}
		web.Respond(context.Background(), w, session, 200)
	})

	r := mux.NewRouter()
	r.Handle("/v1/checkout/sessions", checkout).Methods("POST")
	return r
}

// Received returns a copy of the last session's line items keyed by name.
func (m *mockStripe) Received() map[string]StripeItem {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]StripeItem, len(m.Items))
	for _, it := range m.Items {
		out[it.Name] = it
	}
	return out
}

func (m *mockStripe) SessionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Sessions
}

type mockPaypal struct {
	mu       sync.Mutex
	Orders   int
	Captured []string
}

func (m *mockPaypal) handle() http.Handler {
	token := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := map[string]any{
			"access_token": "test-token-" + random.String(8),
			"token_type":   "Bearer",
			"expires_in":   3600,
		}
		web.Respond(context.Background(), w, body, 200)
	})

	checkout := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var pu struct {
			Units []json.RawMessage `json:"purchase_units"`
		}
		if err := json.NewDecoder(r.Body).Decode(&pu); err != nil || len(pu.Units) != 1 {
			web.Respond(context.Background(), w, nil, 400)
			return
		}

		m.mu.Lock()
		m.Orders++
		m.mu.Unlock()

		id := fmt.Sprintf("PP-%s", random.String(10))
		ord := map[string]any{
			"id":     id,
			"status": "CREATED",
			"links": []map[string]any{
				{"href": "https://paypal.example/approve/" + id, "rel": "approve"},
			},
		}
		web.Respond(context.Background(), w, ord, 201)
	})

	capture := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := web.Param(r, "id")

		m.mu.Lock()
		m.Captured = append(m.Captured, id)
		m.mu.Unlock()

		ord := map[string]any{"id": id, "status": "COMPLETED"}
		web.Respond(context.Background(), w, ord, 200)
	})

	r := mux.NewRouter()
	r.Handle("/v1/oauth2/token", token).Methods("POST")
	r.Handle("/v2/checkout/orders", checkout).Methods("POST")
	r.Handle("/v2/checkout/orders/{id}/capture", capture).Methods("POST")
	return r
}
