// Package geo wraps the public Nominatim, Open-Meteo and Overpass APIs.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	appErrors "github.com/noah-isme/ego-calendar-api/pkg/errors"
	"github.com/noah-isme/ego-calendar-api/pkg/tracing"
)

const (
	DefaultNominatimURL = "https://nominatim.openstreetmap.org"
	DefaultOpenMeteoURL = "https://api.open-meteo.com/v1/forecast"
	DefaultOverpassURL  = "https://overpass-api.de/api/interpreter"
	DefaultUserAgent    = "ego-ai-bot/1.0"
	DefaultTimeout      = 10 * time.Second

	maxBodyBytes = 8 << 20
)

// Observer receives the outcome of every upstream call.
type Observer func(provider, operation string, duration time.Duration, err error)

// Config configures a Client.
type Config struct {
	NominatimURL string
	OpenMeteoURL string
	OverpassURL  string
	UserAgent    string
	Timeout      time.Duration
	HTTPClient   *http.Client
	Observer     Observer
}

// Client is safe for concurrent use.
type Client struct {
	nominatimURL string
	openMeteoURL string
	overpassURL  string
	userAgent    string
	httpClient   *http.Client
	observe      Observer
}

// NewClient builds a Client with defaults for unset fields.
func NewClient(cfg Config) *Client {
	if cfg.NominatimURL == "" {
		cfg.NominatimURL = DefaultNominatimURL
	}
	if cfg.OpenMeteoURL == "" {
		cfg.OpenMeteoURL = DefaultOpenMeteoURL
	}
	if cfg.OverpassURL == "" {
		cfg.OverpassURL = DefaultOverpassURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	observe := cfg.Observer
	if observe == nil {
		observe = func(string, string, time.Duration, error) {}
	}
	return &Client{
		nominatimURL: strings.TrimRight(cfg.NominatimURL, "/"),
		openMeteoURL: cfg.OpenMeteoURL,
		overpassURL:  cfg.OverpassURL,
		userAgent:    cfg.UserAgent,
		httpClient:   httpClient,
		observe:      observe,
	}
}

// do executes req and decodes a JSON body into out.
func (c *Client) do(ctx context.Context, provider, operation string, req *http.Request, out interface{}) (err error) {
	ctx, span := tracing.StartSpan(ctx, "geo."+operation,
		attribute.String(tracing.AttrProvider, provider),
		attribute.String(tracing.AttrOperation, operation),
	)
	start := time.Now()
	defer func() {
		c.observe(provider, operation, time.Since(start), err)
		tracing.End(span, err)
	}()

	req = req.WithContext(ctx)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrUpstreamDown.Code, appErrors.ErrUpstreamDown.Status, provider+" unavailable")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrUpstreamDown.Code, appErrors.ErrUpstreamDown.Status, "read "+provider+" response")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return appErrors.Upstream(resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, fmt.Sprintf("decode %s response", provider))
	}
	return nil
}

func (c *Client) get(ctx context.Context, provider, operation, base string, params url.Values, out interface{}) error {
	req, err := http.NewRequest(http.MethodGet, base+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build %s request: %w", provider, err)
	}
	return c.do(ctx, provider, operation, req, out)
}
