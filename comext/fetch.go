package comext

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/timberlens-org/timberlens/domain"
)

// ============================================================================
// FETCHER — Retrieves the raw csvdata extract from the Comext endpoint
// ============================================================================
// Every request parameter is fixed by configuration, never by user input.
// The query string enumerates reporters, partners, products, indicators and
// the month window; the endpoint returns delimited text (csvdata v2).
// No retries: a failed fetch surfaces as FetchError and the caller decides.
// ============================================================================

// DefaultEndpoint is the Eurostat Comext SDMX 3.0 dissemination API for
// dataflow ds-045409 (international trade in goods, detailed).
const DefaultEndpoint = "https://ec.europa.eu/eurostat/api/comext/dissemination/sdmx/3.0/data/dataflow/ESTAT/ds-045409/1.0/*.*.*.*.*.*"

// DefaultTimeout bounds a single fetch.
const DefaultTimeout = 30 * time.Second

// FetchError reports a failed source fetch: network failure, non-success
// status, or an empty payload.
type FetchError struct {
	URL        string
	StatusCode int // 0 when the request never completed
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("comext fetch: endpoint returned %d", e.StatusCode)
	}
	return fmt.Sprintf("comext fetch: %v", e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Fetcher retrieves the raw extract from the statistics endpoint.
type Fetcher struct {
	endpoint string
	client   *http.Client
	log      *zap.SugaredLogger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithEndpoint overrides the Comext endpoint (tests point this at a local
// server).
func WithEndpoint(endpoint string) FetcherOption {
	return func(f *Fetcher) {
		if endpoint != "" {
			f.endpoint = endpoint
		}
	}
}

// WithTimeout overrides the fetch timeout.
func WithTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		if d > 0 {
			f.client.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) FetcherOption {
	return func(f *Fetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// NewFetcher creates a Fetcher with the fixed Comext defaults.
func NewFetcher(log *zap.SugaredLogger, opts ...FetcherOption) *Fetcher {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	f := &Fetcher{
		endpoint: DefaultEndpoint,
		client:   &http.Client{Timeout: DefaultTimeout},
		log:      log,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// URL builds the fully-parameterized request URL.
func (f *Fetcher) URL() string {
	params := []string{
		"c[freq]=M",
		"c[reporter]=" + strings.Join(domain.SortedCodes(domain.Reporters), ","),
		"c[partner]=" + strings.Join(domain.SortedCodes(domain.Partners), ","),
		"c[product]=" + strings.Join(domain.SortedCodes(domain.Products), ","),
		"c[flow]=2",
		"c[indicators]=" + domain.IndicatorQuantity + "," + domain.IndicatorValue,
		"c[TIME_PERIOD]=" + strings.Join(domain.Months(), ","),
		"compress=false",
		"format=csvdata",
		"formatVersion=2.0",
	}
	return f.endpoint + "?" + strings.Join(params, "&")
}

// Fetch retrieves the raw delimited payload. It returns *FetchError on
// network failure, non-2xx status, or an empty body.
func (f *Fetcher) Fetch(ctx context.Context) ([]byte, error) {
	url := f.URL()
	f.log.Infow("fetching source extract", "endpoint", f.endpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("empty payload")}
	}

	f.log.Infow("source extract fetched", "bytes", len(body))
	return body, nil
}
