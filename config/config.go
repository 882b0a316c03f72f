package config

import "time"

// Config collects every runtime setting of the storefront. It is parsed
// from the environment with the STOREFRONT prefix by cmd/server.
type Config struct {
	Web    Web
	Cors   Cors
	DB     DB
	Redis  Redis
	Stripe Stripe
	Paypal Paypal
	Rate   Rate
}

type Web struct {
	Address         string        `conf:"default:0.0.0.0:8000"`
	ReadTimeout     time.Duration `conf:"default:5s"`
	WriteTimeout    time.Duration `conf:"default:10s"`
	IdleTimeout     time.Duration `conf:"default:120s"`
	ShutdownTimeout time.Duration `conf:"default:20s"`
}

type Cors struct {
	Origin string
}

type DB struct {
	User       string `conf:"default:postgres"`
	Password   string `conf:"default:postgres,mask"`
	Host       string `conf:"default:localhost:5432"`
	Name       string `conf:"default:storefront"`
	DisableTLS bool   `conf:"default:true"`
}

// Redis is optional: an empty Addr disables the catalog cache.
type Redis struct {
	Addr string
	TTL  time.Duration `conf:"default:5m"`
}

type Stripe struct {
	APISecret  string `conf:"mask"`
	SuccessURL string `conf:"default:http://localhost:3000/checkout?success=true"`
	CancelURL  string `conf:"default:http://localhost:3000/checkout?canceled=true"`
}

// Paypal is optional: empty credentials disable the paypal checkout routes.
type Paypal struct {
	ClientID string
	Secret   string `conf:"mask"`
	URL      string `conf:"default:https://api.sandbox.paypal.com"`
}

type Rate struct {
	Burst       int           `conf:"default:20"`
	Interval    time.Duration `conf:"default:100ms"`
	ExpiryHours int           `conf:"default:1"`
}
