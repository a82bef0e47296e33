package service

import (
	"context"
	"time"

	"github.com/najmulislamnajim/expire-product-api/internal/shared/packsize"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// priceTTL bounds staleness of cached unit prices; material master
// prices change rarely, and a day-old price is acceptable for the list
// screens.
const priceTTL = 24 * time.Hour

// PriceCache memoizes per-unit prices derived from the material
// master's pack-size descriptor. The cache is best effort: a nil or
// unreachable redis client degrades to computing every time.
type PriceCache struct {
	rdb *redis.Client
}

func NewPriceCache(rdb *redis.Client) *PriceCache {
	return &PriceCache{rdb: rdb}
}

// UnitPrice returns (unitTP+unitVAT)/units for the material's pack
// descriptor, consulting redis first when available.
func (c *PriceCache) UnitPrice(ctx context.Context, matnr, descriptor string, unitTP, unitVAT decimal.Decimal) (decimal.Decimal, error) {
	if c.rdb == nil {
		return packsize.UnitPrice(descriptor, unitTP, unitVAT)
	}

	key := "expr:unit_price:" + matnr
	if cached, err := c.rdb.Get(ctx, key).Result(); err == nil {
		if price, perr := decimal.NewFromString(cached); perr == nil {
			return price, nil
		}
	}

	price, err := packsize.UnitPrice(descriptor, unitTP, unitVAT)
	if err != nil {
		return decimal.Decimal{}, err
	}
	c.rdb.Set(ctx, key, price.String(), priceTTL)
	return price, nil
}
