package rates

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/vardarauto/marketplace-api/internal/clock"
)

// Provenance tags where a rate came from, so callers can flag degraded
// conversions without treating them as failures.
type Provenance string

const (
	ProvenanceLive     Provenance = "live"
	ProvenanceFallback Provenance = "fallback"
	ProvenanceUnknown  Provenance = "unknown"
)

// weakest orders provenance from most to least trustworthy.
func weakest(a, b Provenance) Provenance {
	rank := func(p Provenance) int {
		switch p {
		case ProvenanceLive:
			return 0
		case ProvenanceFallback:
			return 1
		default:
			return 2
		}
	}
	if rank(a) >= rank(b) {
		return a
	}
	return b
}

type snapshot struct {
	base      string
	rates     map[string]decimal.Decimal
	fetchedAt time.Time
	expiresAt time.Time
}

const defaultTTL = time.Hour

// Cache holds at most one live rate snapshot per base currency. Misses and
// expiries trigger a single upstream fetch shared by all concurrent callers;
// fetch failures degrade to the static fallback table and are never cached,
// so the next call retries upstream.
type Cache struct {
	provider Provider
	clock    clock.Clock
	ttl      time.Duration
	logger   *log.Logger

	group     singleflight.Group
	mu        sync.RWMutex
	snapshots map[string]*snapshot
}

type CacheOption func(*Cache)

// WithTTL overrides the default one-hour snapshot lifetime.
func WithTTL(d time.Duration) CacheOption {
	return func(c *Cache) {
		if d > 0 {
			c.ttl = d
		}
	}
}

func WithLogger(l *log.Logger) CacheOption {
	return func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	}
}

func NewCache(provider Provider, clk clock.Clock, opts ...CacheOption) *Cache {
	c := &Cache{
		provider:  provider,
		clock:     clk,
		ttl:       defaultTTL,
		logger:    log.Default(),
		snapshots: make(map[string]*snapshot),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetRate returns the rate of quote expressed against base. It never fails:
// an unreachable upstream yields the fallback table, and a currency unknown to
// both yields rate 1 with ProvenanceUnknown so amounts are not corrupted.
func (c *Cache) GetRate(ctx context.Context, base, quote string) (decimal.Decimal, Provenance) {
	base = strings.ToUpper(strings.TrimSpace(base))
	quote = strings.ToUpper(strings.TrimSpace(quote))

	if base == quote {
		return decimal.NewFromInt(1), ProvenanceLive
	}

	if snap := c.liveSnapshot(base); snap != nil {
		return c.lookup(snap, base, quote)
	}

	snap, err := c.refresh(ctx, base)
	if err != nil {
		c.logger.Printf("WARN: rate fetch for base=%s failed, using fallback table: %v", base, err)
		return c.fallback(base, quote)
	}
	return c.lookup(snap, base, quote)
}

func (c *Cache) liveSnapshot(base string) *snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snap, ok := c.snapshots[base]
	if !ok || !c.clock.Now().Before(snap.expiresAt) {
		return nil
	}
	return snap
}

// refresh performs one upstream fetch per concurrent wave of callers.
func (c *Cache) refresh(ctx context.Context, base string) (*snapshot, error) {
	v, err, _ := c.group.Do(base, func() (any, error) {
		// Another caller may have completed a refresh while this one queued.
		if snap := c.liveSnapshot(base); snap != nil {
			return snap, nil
		}

		table, err := c.provider.FetchRates(ctx, base)
		if err != nil {
			return nil, err
		}

		now := c.clock.Now()
		snap := &snapshot{
			base:      base,
			rates:     table,
			fetchedAt: now,
			expiresAt: now.Add(c.ttl),
		}
		c.mu.Lock()
		c.snapshots[base] = snap
		c.mu.Unlock()
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*snapshot), nil
}

func (c *Cache) lookup(snap *snapshot, base, quote string) (decimal.Decimal, Provenance) {
	if rate, ok := snap.rates[quote]; ok {
		return rate, ProvenanceLive
	}
	// Live table is missing this currency; the static table may still know it.
	return c.fallback(base, quote)
}

// fallback derives a rate from the static vs-USD table. Non-USD bases are
// crossed through USD. A currency absent from the table degrades to identity
// with ProvenanceUnknown.
func (c *Cache) fallback(base, quote string) (decimal.Decimal, Provenance) {
	one := decimal.NewFromInt(1)

	baseVsUSD := one
	if base != "USD" {
		fb, ok := fallbackVsUSD[base]
		if !ok || fb.IsZero() {
			c.logger.Printf("WARN: no rate for currency %s, conversion degrades to identity", base)
			return one, ProvenanceUnknown
		}
		baseVsUSD = fb
	}

	quoteVsUSD := one
	if quote != "USD" {
		fb, ok := fallbackVsUSD[quote]
		if !ok {
			c.logger.Printf("WARN: no rate for currency %s, conversion degrades to identity", quote)
			return one, ProvenanceUnknown
		}
		quoteVsUSD = fb
	}

	return quoteVsUSD.DivRound(baseVsUSD, 8), ProvenanceFallback
}
