package rates

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vardarauto/marketplace-api/internal/clock"
)

func newTestConverter(provider Provider) *Converter {
	cache := NewCache(provider, clock.NewFixed(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)))
	return NewConverter(cache, nil)
}

func TestConverter_Convert(t *testing.T) {
	t.Parallel()

	t.Run("same currency is identity and skips the cache", func(t *testing.T) {
		provider := &stubProvider{table: usdTable()}
		conv := newTestConverter(provider)

		res := conv.Convert(context.Background(), decimal.NewFromFloat(123.45), "eur", "EUR")
		assert.True(t, res.Amount.Equal(decimal.NewFromFloat(123.45)))
		assert.True(t, res.Rate.Equal(decimal.NewFromInt(1)))
		assert.Equal(t, ProvenanceLive, res.Provenance)
		assert.Equal(t, int64(0), provider.calls.Load(), "identity conversion must not touch the cache")
	})

	t.Run("cross currency pivots through USD", func(t *testing.T) {
		provider := &stubProvider{table: usdTable()}
		conv := newTestConverter(provider)

		// 100 EUR -> USD -> MKD: (100 / 0.9) * 61 = 6777.78 after rounding.
		res := conv.Convert(context.Background(), decimal.NewFromInt(100), "EUR", "MKD")
		require.Equal(t, ProvenanceLive, res.Provenance)
		assert.Equal(t, "6777.78", res.Amount.StringFixed(2))
	})

	t.Run("from pivot currency multiplies directly", func(t *testing.T) {
		provider := &stubProvider{table: usdTable()}
		conv := newTestConverter(provider)

		res := conv.Convert(context.Background(), decimal.NewFromInt(100), "USD", "MKD")
		assert.Equal(t, "6100.00", res.Amount.StringFixed(2))
		assert.Equal(t, "61", res.Rate.String())
	})

	t.Run("fallback table drives conversion when upstream is down", func(t *testing.T) {
		provider := &stubProvider{err: errors.New("unreachable")}
		conv := newTestConverter(provider)

		res := conv.Convert(context.Background(), decimal.NewFromInt(100), "USD", "MKD")
		assert.Equal(t, ProvenanceFallback, res.Provenance)
		assert.Equal(t, "5700.00", res.Amount.StringFixed(2))
	})

	t.Run("unknown source currency returns original amount", func(t *testing.T) {
		provider := &stubProvider{err: errors.New("unreachable")}
		conv := newTestConverter(provider)

		res := conv.Convert(context.Background(), decimal.NewFromInt(250), "XXX", "MKD")
		assert.Equal(t, ProvenanceUnknown, res.Provenance)
		assert.Equal(t, "250.00", res.Amount.StringFixed(2))
		assert.True(t, res.Rate.Equal(decimal.NewFromInt(1)))
	})

	t.Run("zero source rate returns original amount without fault", func(t *testing.T) {
		provider := &stubProvider{table: map[string]decimal.Decimal{"ZWL": decimal.Zero, "MKD": decimal.NewFromInt(61)}}
		conv := newTestConverter(provider)

		res := conv.Convert(context.Background(), decimal.NewFromInt(40), "ZWL", "MKD")
		assert.Equal(t, ProvenanceUnknown, res.Provenance)
		assert.Equal(t, "40.00", res.Amount.StringFixed(2))
	})

	t.Run("half rounds away from zero", func(t *testing.T) {
		provider := &stubProvider{table: map[string]decimal.Decimal{"ABC": decimal.NewFromInt(2)}}
		conv := newTestConverter(provider)

		// 1.2345 USD * 2 = 2.469 -> 2.47
		res := conv.Convert(context.Background(), decimal.NewFromFloat(1.2345), "USD", "ABC")
		assert.Equal(t, "2.47", res.Amount.StringFixed(2))
	})
}
