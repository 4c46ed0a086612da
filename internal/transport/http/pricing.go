package http

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vardarauto/marketplace-api/internal/app"
)

// PriceTransformer is the minimal interface the pricing handler needs.
type PriceTransformer interface {
	TransformPrice(ctx context.Context, amount decimal.Decimal, from, to, clientIP string) (app.PriceQuote, error)
}

type priceQuoteResponse struct {
	OriginalPrice  string `json:"original_price"`
	FromCurrency   string `json:"from_currency"`
	ExchangeRate   string `json:"exchange_rate"`
	ConvertedPrice string `json:"converted_price"`
	TaxAmount      string `json:"tax_amount"`
	TotalWithTax   string `json:"total_with_tax"`
	Currency       string `json:"currency"`
	RateSource     string `json:"rate_source"`
}

// HandleTransformPrice serves the read-only pricing query: original amount,
// applied rate, converted amount, flat tax and total. No state is touched.
func HandleTransformPrice(svc PriceTransformer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rawAmount := r.URL.Query().Get("amount")
		if rawAmount == "" {
			writeError(w, http.StatusBadRequest, codeInvalidAmount, "amount query parameter required")
			return
		}
		amount, err := decimal.NewFromString(rawAmount)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidAmount, "amount must be a decimal string")
			return
		}

		quote, err := svc.TransformPrice(
			r.Context(),
			amount,
			r.URL.Query().Get("from"),
			r.URL.Query().Get("to"),
			clientIP(r),
		)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(priceQuoteResponse{
			OriginalPrice:  quote.OriginalPrice.StringFixed(2),
			FromCurrency:   quote.FromCurrency,
			ExchangeRate:   quote.ExchangeRate.String(),
			ConvertedPrice: quote.ConvertedPrice.StringFixed(2),
			TaxAmount:      quote.TaxAmount.StringFixed(2),
			TotalWithTax:   quote.TotalWithTax.StringFixed(2),
			Currency:       quote.Currency,
			RateSource:     string(quote.RateSource),
		})
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first, _, ok := strings.Cut(fwd, ","); ok {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
