package product

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

const (
	productKeyPrefix = "product:"
	listKey          = "products"
)

// Cached is a read-through cache in front of another Catalog. Redis is
// treated as an accelerator only: any cache failure falls open to the
// wrapped catalog, and a circuit breaker keeps a sick Redis from adding
// latency to every lookup.
type Cached struct {
	next Catalog
	rdb  *redis.Client
	cb   *gobreaker.CircuitBreaker
	ttl  time.Duration
	log  logrus.FieldLogger
}

func NewCached(next Catalog, rdb *redis.Client, ttl time.Duration, log logrus.FieldLogger) *Cached {
	st := gobreaker.Settings{
		Name:        "catalog-cache",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("catalog cache breaker state change")
		},
	}

	return &Cached{
		next: next,
		rdb:  rdb,
		cb:   gobreaker.NewCircuitBreaker(st),
		ttl:  ttl,
		log:  log,
	}
}

func (c *Cached) Fetch(ctx context.Context, id string) (Product, error) {
	if raw, err := c.get(ctx, productKeyPrefix+id); err == nil {
		var p Product
		if err := json.Unmarshal(raw, &p); err == nil {
			return p, nil
		}
	}

	p, err := c.next.Fetch(ctx, id)
	if err != nil {
		return Product{}, err
	}

	c.put(ctx, productKeyPrefix+id, p)
	return p, nil
}

func (c *Cached) List(ctx context.Context) ([]Product, error) {
	if raw, err := c.get(ctx, listKey); err == nil {
		var products []Product
		if err := json.Unmarshal(raw, &products); err == nil {
			return products, nil
		}
	}

	products, err := c.next.List(ctx)
	if err != nil {
		return nil, err
	}

	c.put(ctx, listKey, products)
	return products, nil
}

func (c *Cached) get(ctx context.Context, key string) ([]byte, error) {
	v, err := c.cb.Execute(func() (interface{}, error) {
		return c.rdb.Get(ctx, key).Bytes()
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (c *Cached) put(ctx context.Context, key string, val interface{}) {
	raw, err := json.Marshal(val)
	if err != nil {
		return
	}

	if _, err := c.cb.Execute(func() (interface{}, error) {
		return nil, c.rdb.Set(ctx, key, raw, c.ttl).Err()
	}); err != nil {
		c.log.WithFields(logrus.Fields{
			"key":     key,
			"message": err,
		}).Debug("catalog cache write skipped")
	}
}
