package rates

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultBaseURL is the public exchange-rate service.
const DefaultBaseURL = "https://open.er-api.com"

// listBase is the base currency whose table lists every supported code.
const listBase = "USD"

type cachedTable struct {
	table   Table
	fetched time.Time
}

// HTTPProvider fetches rate tables from an open.er-api.com compatible
// service and caches them per base currency.
type HTTPProvider struct {
	baseURL string
	client  *http.Client
	ttl     time.Duration
	now     func() time.Time

	mu    sync.Mutex
	cache map[string]cachedTable
}

// HTTPOption configures an HTTPProvider.
type HTTPOption func(*HTTPProvider)

// WithHTTPClient replaces the default instrumented client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(p *HTTPProvider) { p.client = c }
}

// WithCacheTTL sets how long a fetched table is reused. Zero disables
// caching.
func WithCacheTTL(ttl time.Duration) HTTPOption {
	return func(p *HTTPProvider) { p.ttl = ttl }
}

// WithTimeout bounds each request made by the default client.
func WithTimeout(d time.Duration) HTTPOption {
	return func(p *HTTPProvider) { p.client.Timeout = d }
}

// NewHTTPProvider returns a provider for the service at baseURL.
func NewHTTPProvider(baseURL string, opts ...HTTPOption) *HTTPProvider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	p := &HTTPProvider{
		baseURL: baseURL,
		client: &http.Client{
			Timeout:   5 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		ttl:   10 * time.Minute,
		now:   time.Now,
		cache: make(map[string]cachedTable),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

func (p *HTTPProvider) Rate(ctx context.Context, from, to string) (float64, error) {
	from, to, err := pair(from, to)
	if err != nil {
		return 0, err
	}

	if from == to {
		return 1, nil
	}

	table, err := p.latest(ctx, from)
	if err != nil {
		return 0, err
	}

	rate, err := table.lookup(to)
	if err != nil {
		return 0, fmt.Errorf("%s -> %s: %w", from, to, err)
	}
	return rate, nil
}

func (p *HTTPProvider) Currencies(ctx context.Context) ([]string, error) {
	table, err := p.latest(ctx, listBase)
	if err != nil {
		return nil, err
	}
	return table.Codes(), nil
}

// latest returns the table for base, from cache when still fresh.
func (p *HTTPProvider) latest(ctx context.Context, base string) (Table, error) {
	p.mu.Lock()
	cached, ok := p.cache[base]
	p.mu.Unlock()

	if ok && p.ttl > 0 && p.now().Sub(cached.fetched) < p.ttl {
		return cached.table, nil
	}

	table, err := p.fetch(ctx, base)
	if err != nil {
		return Table{}, err
	}

	p.mu.Lock()
	p.cache[base] = cachedTable{table: table, fetched: p.now()}
	p.mu.Unlock()

	return table, nil
}

func (p *HTTPProvider) fetch(ctx context.Context, base string) (Table, error) {
	ctx, span := tracer.Start(ctx, "rates.fetch",
		trace.WithAttributes(attribute.String("rates.base", base)),
	)
	defer span.End()

	endpoint, err := url.JoinPath(p.baseURL, "v6", "latest", base)
	if err != nil {
		return Table{}, fmt.Errorf("building rates URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Table{}, fmt.Errorf("building rates request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return Table{}, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := fmt.Errorf("%w: status %d for %s", ErrUpstream, resp.StatusCode, base)
		span.SetStatus(codes.Error, err.Error())
		return Table{}, err
	}

	table, err := decodeTable(resp.Body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid rate table")
		return Table{}, err
	}

	span.SetAttributes(attribute.Int("rates.count", len(table.Rates)))
	span.SetStatus(codes.Ok, "")

	return table, nil
}
