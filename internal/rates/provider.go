package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

// Provider fetches the full rate table for one base currency from an upstream
// source. A failed or unreachable provider is a recoverable condition; callers
// fall back to the static table.
type Provider interface {
	FetchRates(ctx context.Context, base string) (map[string]decimal.Decimal, error)
}

// HTTPProvider talks to a JSON rate API. Known upstreams disagree on the shape
// of the payload: freecurrencyapi nests the table under "data", while
// exchangerate-api uses "rates". The decoder tries those keys in that fixed
// order and fails only when neither is present.
type HTTPProvider struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

func NewHTTPProvider(client *http.Client, baseURL, apiKey string) *HTTPProvider {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPProvider{client: client, baseURL: baseURL, apiKey: apiKey}
}

type rateResponse struct {
	Data  map[string]decimal.Decimal `json:"data"`
	Rates map[string]decimal.Decimal `json:"rates"`
}

func (p *HTTPProvider) FetchRates(ctx context.Context, base string) (map[string]decimal.Decimal, error) {
	u, err := url.Parse(p.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse rates url: %w", err)
	}
	q := u.Query()
	q.Set("base_currency", strings.ToUpper(base))
	if p.apiKey != "" {
		q.Set("apikey", p.apiKey)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build rates request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch rates: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read rates response: %w", err)
	}

	var parsed rateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode rates response: %w", err)
	}

	table := parsed.Data
	if len(table) == 0 {
		table = parsed.Rates
	}
	if len(table) == 0 {
		return nil, fmt.Errorf("decode rates response: no rate table in payload")
	}

	normalized := make(map[string]decimal.Decimal, len(table))
	for code, rate := range table {
		normalized[strings.ToUpper(code)] = rate
	}
	return normalized, nil
}
