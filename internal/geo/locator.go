// Package geo resolves a requester's country and display currency from their
// IP address. Lookups are best-effort: any failure degrades to documented
// defaults rather than an error, so pricing never depends on the geo provider
// being up.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
)

const (
	DefaultCountryCode  = "US"
	DefaultCurrencyCode = "MKD"
)

// Locator resolves location-derived defaults for a client IP.
type Locator interface {
	CountryCode(ctx context.Context, ip string) string
	CurrencyCode(ctx context.Context, ip string) string
}

// HTTPLocator queries an ip-api style JSON endpoint. Providers disagree on
// field names, so decoding tries a fixed priority order per concept:
// countryCode then country_code2, and currency (plain string) then
// currency.code (nested object).
type HTTPLocator struct {
	client  *http.Client
	baseURL string
	logger  *log.Logger
}

func NewHTTPLocator(client *http.Client, baseURL string, logger *log.Logger) *HTTPLocator {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = log.Default()
	}
	return &HTTPLocator{client: client, baseURL: baseURL, logger: logger}
}

type currencyField struct {
	plain  string
	nested string
}

func (c *currencyField) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		c.plain = s
		return nil
	}
	var obj struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		c.nested = obj.Code
		return nil
	}
	// Unrecognized shape; leave both empty and let the default apply.
	return nil
}

func (c currencyField) value() string {
	if c.plain != "" {
		return c.plain
	}
	return c.nested
}

type geoResponse struct {
	CountryCode  string        `json:"countryCode"`
	CountryCode2 string        `json:"country_code2"`
	Currency     currencyField `json:"currency"`
}

func (l *HTTPLocator) CountryCode(ctx context.Context, ip string) string {
	resp, err := l.lookup(ctx, ip)
	if err != nil {
		l.logger.Printf("WARN: geolocation lookup failed for ip=%s: %v", ip, err)
		return DefaultCountryCode
	}
	if resp.CountryCode != "" {
		return resp.CountryCode
	}
	if resp.CountryCode2 != "" {
		return resp.CountryCode2
	}
	return DefaultCountryCode
}

func (l *HTTPLocator) CurrencyCode(ctx context.Context, ip string) string {
	resp, err := l.lookup(ctx, ip)
	if err != nil {
		l.logger.Printf("WARN: geolocation lookup failed for ip=%s: %v", ip, err)
		return DefaultCurrencyCode
	}
	if code := resp.Currency.value(); code != "" {
		return strings.ToUpper(code)
	}
	return DefaultCurrencyCode
}

func (l *HTTPLocator) lookup(ctx context.Context, ip string) (*geoResponse, error) {
	url := l.baseURL
	// Loopback addresses carry no location; query the provider for the
	// caller-side address instead.
	if ip != "" && ip != "::1" && ip != "127.0.0.1" {
		url = strings.TrimRight(l.baseURL, "/") + "/" + ip
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build geolocation request: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geolocation request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geolocation request: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read geolocation response: %w", err)
	}

	var parsed geoResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode geolocation response: %w", err)
	}
	return &parsed, nil
}

// Static returns fixed codes; used when no geo provider is configured.
type Static struct {
	Country  string
	Currency string
}

func (s Static) CountryCode(context.Context, string) string {
	if s.Country == "" {
		return DefaultCountryCode
	}
	return s.Country
}

func (s Static) CurrencyCode(context.Context, string) string {
	if s.Currency == "" {
		return DefaultCurrencyCode
	}
	return s.Currency
}
