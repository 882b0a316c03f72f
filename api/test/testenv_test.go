package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/jmoiron/sqlx"
	"github.com/ory/dockertest/v3"
	"github.com/plutov/paypal/v4"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/storely/storefront/api"
	"github.com/storely/storefront/config"
	"github.com/storely/storefront/core/cart"
	"github.com/storely/storefront/core/product"
	"github.com/storely/storefront/database"
	"github.com/storely/storefront/validate"
	"github.com/stripe/stripe-go/v74"
	stripecl "github.com/stripe/stripe-go/v74/client"
)

// TestEnv is a full storefront wired against a throwaway Postgres and
// http-level mock payment providers.
type TestEnv struct {
	t      *testing.T
	DB     *sqlx.DB
	URL    string
	Server *httptest.Server
	Stripe *mockStripe
	Paypal *mockPaypal

	client *http.Client
}

func NewTestEnv(t *testing.T, name string) (*TestEnv, error) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("skipping, docker not available: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("skipping, docker not reachable: %v", err)
	}

	res, err := pool.Run("postgres", "15-alpine", []string{
		"POSTGRES_USER=postgres",
		"POSTGRES_PASSWORD=postgres",
		"POSTGRES_DB=" + name,
	})
	if err != nil {
		return nil, fmt.Errorf("starting postgres container: %w", err)
	}
	t.Cleanup(func() {
		if err := pool.Purge(res); err != nil {
			t.Logf("purging postgres container: %v", err)
		}
	})

	cfgDB := config.DB{
		User:       "postgres",
		Password:   "postgres",
		Host:       "localhost:" + res.GetPort("5432/tcp"),
		Name:       name,
		DisableTLS: true,
	}

	var db *sqlx.DB
	pool.MaxWait = time.Minute
	if err := pool.Retry(func() error {
		var err error
		db, err = database.Open(cfgDB)
		return err
	}); err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("migrating test database: %w", err)
	}

	log := logrus.New()
	log.SetOutput(io.Discard)

	ms := &mockStripe{}
	stripeSrv := httptest.NewServer(ms.handle())
	t.Cleanup(stripeSrv.Close)

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:           stripe.String(stripeSrv.URL),
		LeveledLogger: &stripe.LeveledLogger{Level: stripe.LevelError},
	})
	strp := &stripecl.API{}
	strp.Init("sk_test_storefront", &stripe.Backends{API: backend, Connect: backend, Uploads: backend})

	mp := &mockPaypal{}
	paypalSrv := httptest.NewServer(mp.handle())
	t.Cleanup(paypalSrv.Close)

	pp, err := paypal.NewClient("test-client", "test-secret", paypalSrv.URL)
	if err != nil {
		return nil, fmt.Errorf("building paypal client: %w", err)
	}
	if _, err := pp.GetAccessToken(context.Background()); err != nil {
		return nil, fmt.Errorf("fetching paypal token: %w", err)
	}

	sessionManager := scs.New()
	sessionManager.Lifetime = time.Hour

	mux := api.APIMux(api.APIConfig{
		Log:     log,
		DB:      db,
		Session: sessionManager,
		Carts:   cart.NewPostgresStore(db),
		Catalog: product.NewPostgresCatalog(db),
		Stripe:  strp,
		StripeCfg: config.Stripe{
			APISecret:  "sk_test_storefront",
			SuccessURL: "http://localhost:3000/checkout?success=true",
			CancelURL:  "http://localhost:3000/checkout?canceled=true",
		},
		Paypal: pp,
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("building cookie jar: %w", err)
	}

	return &TestEnv{
		t:      t,
		DB:     db,
		URL:    server.URL,
		Server: server,
		Stripe: ms,
		Paypal: mp,
		client: &http.Client{Jar: jar},
	}, nil
}

// Client returns an http client holding the device session cookie across
// requests, like a browser would.
func (env *TestEnv) Client() *http.Client {
	return env.client
}

// CreateProduct inserts a catalog row directly and returns it.
func (env *TestEnv) CreateProduct(t *testing.T, name string, price string) product.Product {
	t.Helper()

	d, err := decimal.NewFromString(price)
	if err != nil {
		t.Fatal(err)
	}

	now := time.Now().UTC()
	p := product.Product{
		ID:        validate.GenerateID(),
		Name:      name,
		Price:     d,
		CreatedAt: now,
		UpdatedAt: now,
	}

	const q = `
	INSERT INTO products (product_id, name, price, image_url, category, created_at, updated_at)
	VALUES ($1, $2, $3, '', '', $4, $5)`

	if _, err := env.DB.Exec(q, p.ID, p.Name, p.Price, p.CreatedAt, p.UpdatedAt); err != nil {
		t.Fatalf("inserting test product: %v", err)
	}

	return p
}

// PostJSON sends body as JSON and returns the response.
func (env *TestEnv) PostJSON(t *testing.T, path string, body interface{}) *http.Response {
	t.Helper()

	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}

	r, err := http.NewRequest(http.MethodPost, env.URL+path, bytes.NewReader(raw))
	if err != nil {
		t.Fatal(err)
	}
	r.Header.Set("Content-Type", "application/json")

	w, err := env.Client().Do(r)
	if err != nil {
		t.Fatal(err)
	}

	return w
}

// Get sends a GET and returns the response.
func (env *TestEnv) Get(t *testing.T, path string) *http.Response {
	t.Helper()

	w, err := env.Client().Get(env.URL + path)
	if err != nil {
		t.Fatal(err)
	}

	return w
}

// FetchCart reads the aggregated cart through the HTTP surface.
func (env *TestEnv) FetchCart(t *testing.T, cartID string) []cart.Line {
	t.Helper()

	w := env.Get(t, "/cart?cartId="+cartID)
	defer w.Body.Close()

	if w.StatusCode != http.StatusOK {
		t.Fatalf("fetching cart: status code %s", w.Status)
	}

	var body struct {
		Cart []cart.Line `json:"cart"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decoding cart: %v", err)
	}

	return body.Cart
}

func decodeJSON(t *testing.T, w *http.Response, val interface{}) {
	t.Helper()

	defer w.Body.Close()
	if err := json.NewDecoder(w.Body).Decode(val); err != nil {
		t.Fatalf("decoding response body: %v", err)
	}
}

func decodeError(t *testing.T, w *http.Response) string {
	t.Helper()

	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decoding error body: %v", err)
	}

	return body.Error
}
