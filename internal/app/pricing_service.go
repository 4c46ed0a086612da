package app

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vardarauto/marketplace-api/internal/domain"
	"github.com/vardarauto/marketplace-api/internal/geo"
	"github.com/vardarauto/marketplace-api/internal/rates"
)

// taxRate is the flat VAT applied in price quotes. Tax is display-only:
// checkout always stores native prices without it.
var taxRate = decimal.NewFromFloat(0.18)

// PriceQuote is the read-only pricing breakdown returned to buyers browsing
// in a different currency. Nothing here is ever persisted.
type PriceQuote struct {
	OriginalPrice  decimal.Decimal
	FromCurrency   string
	ExchangeRate   decimal.Decimal
	ConvertedPrice decimal.Decimal
	TaxAmount      decimal.Decimal
	TotalWithTax   decimal.Decimal
	Currency       string
	RateSource     rates.Provenance
}

// PricingService answers "what would this price look like in my currency,
// taxes included". It is independent of checkout and mutates nothing.
type PricingService struct {
	converter *rates.Converter
	locator   geo.Locator
}

func NewPricingService(converter *rates.Converter, locator geo.Locator) *PricingService {
	return &PricingService{
		converter: converter,
		locator:   locator,
	}
}

// TransformPrice converts amount from one currency to another and applies the
// flat tax on top of the converted value. When the target currency is empty it
// is derived from the client's IP, defaulting to MKD.
func (s *PricingService) TransformPrice(ctx context.Context, amount decimal.Decimal, from, to, clientIP string) (PriceQuote, error) {
	if amount.IsNegative() {
		return PriceQuote{}, domain.ErrInvalidPrice
	}

	from = strings.ToUpper(strings.TrimSpace(from))
	if from == "" {
		from = rates.PivotCurrency
	}
	to = strings.ToUpper(strings.TrimSpace(to))
	if to == "" {
		to = s.locator.CurrencyCode(ctx, clientIP)
	}

	conv := s.converter.Convert(ctx, amount, from, to)

	tax := conv.Amount.Mul(taxRate).Round(2)
	return PriceQuote{
		OriginalPrice:  amount,
		FromCurrency:   from,
		ExchangeRate:   conv.Rate,
		ConvertedPrice: conv.Amount,
		TaxAmount:      tax,
		TotalWithTax:   conv.Amount.Add(tax),
		Currency:       to,
		RateSource:     conv.Provenance,
	}, nil
}
