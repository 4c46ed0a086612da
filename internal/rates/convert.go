package rates

import (
	"context"
	"log"
	"strings"

	"github.com/shopspring/decimal"
)

// PivotCurrency is the fixed reference currency through which cross-currency
// conversions are composed.
const PivotCurrency = "USD"

// internalScale keeps intermediate division well above the 2 decimals of the
// final rounded amount.
const internalScale = 8

// Conversion is the result of one currency conversion. Amount carries the
// converted value rounded to 2 decimals; Rate is the effective to-per-from
// rate that was applied.
type Conversion struct {
	Amount     decimal.Decimal
	Rate       decimal.Decimal
	Provenance Provenance
}

// Converter converts amounts between currencies by expressing both sides
// against the pivot currency via the rate cache.
type Converter struct {
	cache  *Cache
	logger *log.Logger
}

func NewConverter(cache *Cache, logger *log.Logger) *Converter {
	if logger == nil {
		logger = log.Default()
	}
	return &Converter{cache: cache, logger: logger}
}

// Convert returns amount expressed in the target currency. Conversions never
// fail hard: a zero or unknown source rate returns the original amount with
// ProvenanceUnknown so the caller can flag it.
func (c *Converter) Convert(ctx context.Context, amount decimal.Decimal, from, to string) Conversion {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))

	if from == to {
		return Conversion{
			Amount:     amount.Round(2),
			Rate:       decimal.NewFromInt(1),
			Provenance: ProvenanceLive,
		}
	}

	fromRate, fromProv := c.cache.GetRate(ctx, PivotCurrency, from)
	toRate, toProv := c.cache.GetRate(ctx, PivotCurrency, to)

	if fromProv == ProvenanceUnknown || toProv == ProvenanceUnknown || fromRate.IsZero() {
		c.logger.Printf("WARN: cannot convert %s to %s, returning original amount", from, to)
		return Conversion{
			Amount:     amount.Round(2),
			Rate:       decimal.NewFromInt(1),
			Provenance: ProvenanceUnknown,
		}
	}

	rate := toRate.DivRound(fromRate, internalScale)
	converted := amount.DivRound(fromRate, internalScale).Mul(toRate)

	return Conversion{
		Amount:     converted.Round(2),
		Rate:       rate,
		Provenance: weakest(fromProv, toProv),
	}
}
