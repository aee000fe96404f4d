// Package shopify is a minimal client for the Shopify Admin REST API.
//
// The client is stateless and safe for concurrent use; construct it once and
// share it between requests.
package shopify

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/xenking/shop-graphql/internal/domain/order"
	"github.com/xenking/shop-graphql/internal/domain/product"
)

// DefaultAPIVersion is the Admin API version used when none is configured.
const DefaultAPIVersion = "2020-01"

const (
	ordersResource   = "orders.json"
	productsResource = "products.json"
)

var (
	_ order.Source   = (*Client)(nil)
	_ product.Source = (*Client)(nil)
)

// Config describes the upstream shop and its credentials.
type Config struct {
	// Domain is the shop host, e.g. "example.myshopify.com".
	Domain string
	// APIVersion is the Admin API version path segment.
	APIVersion string
	// BaseURL overrides the URL derived from Domain and APIVersion.
	BaseURL string

	// AuthToken is a pre-encoded base64 "key:password" token. It takes
	// precedence over APIKey and Password.
	AuthToken string
	APIKey    string
	Password  string
}

// baseURL returns the resource root, always ending with a slash.
func (c Config) baseURL() (*url.URL, error) {
	raw := c.BaseURL
	if raw == "" {
		if c.Domain == "" {
			return nil, errors.New("shop domain or base URL is required")
		}
		version := c.APIVersion
		if version == "" {
			version = DefaultAPIVersion
		}
		raw = "https://" + c.Domain + "/admin/api/" + version + "/"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, errors.Wrap(err, "parse base URL")
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errors.Errorf("base URL %q must be absolute", raw)
	}
	if u.User != nil {
		return nil, errors.New("credentials in base URL are not supported")
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u, nil
}

// authorization returns the Authorization header value.
func (c Config) authorization() (string, error) {
	if c.AuthToken != "" {
		return "Basic " + c.AuthToken, nil
	}
	if c.APIKey == "" || c.Password == "" {
		return "", ErrNoCredentials
	}
	token := base64.StdEncoding.EncodeToString([]byte(c.APIKey + ":" + c.Password))
	return "Basic " + token, nil
}

// Options holds optional Client dependencies.
type Options struct {
	// HTTPClient defaults to a client with an otelhttp transport.
	HTTPClient     *http.Client
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
}

func (o *Options) setDefaults() {
	if o.TracerProvider == nil {
		o.TracerProvider = tracenoop.NewTracerProvider()
	}
	if o.MeterProvider == nil {
		o.MeterProvider = metricnoop.NewMeterProvider()
	}
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport,
				otelhttp.WithTracerProvider(o.TracerProvider),
				otelhttp.WithMeterProvider(o.MeterProvider),
			),
		}
	}
}

// Client fetches orders and products from the Admin REST API.
type Client struct {
	http *http.Client
	base *url.URL
	auth string

	tracer   trace.Tracer
	requests metric.Int64Counter
	duration metric.Float64Histogram
}

// NewClient validates cfg and returns a Client.
func NewClient(cfg Config, opts Options) (*Client, error) {
	opts.setDefaults()

	base, err := cfg.baseURL()
	if err != nil {
		return nil, err
	}
	auth, err := cfg.authorization()
	if err != nil {
		return nil, err
	}

	const scope = "github.com/xenking/shop-graphql/internal/shopify"
	meter := opts.MeterProvider.Meter(scope)
	requests, err := meter.Int64Counter("shopify.client.requests",
		metric.WithDescription("Upstream Admin API requests"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "requests counter")
	}
	duration, err := meter.Float64Histogram("shopify.client.duration",
		metric.WithDescription("Upstream Admin API request duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "duration histogram")
	}

	return &Client{
		http:     opts.HTTPClient,
		base:     base,
		auth:     auth,
		tracer:   opts.TracerProvider.Tracer(scope),
		requests: requests,
		duration: duration,
	}, nil
}

// FetchOrders returns the raw body of GET orders.json.
func (c *Client) FetchOrders(ctx context.Context) ([]byte, error) {
	return c.get(ctx, ordersResource)
}

// FetchProducts returns the raw body of GET products.json.
func (c *Client) FetchProducts(ctx context.Context) ([]byte, error) {
	return c.get(ctx, productsResource)
}

func (c *Client) get(ctx context.Context, resource string) (_ []byte, rerr error) {
	ctx, span := c.tracer.Start(ctx, "shopify."+resource,
		trace.WithSpanKind(trace.SpanKindClient),
	)
	var (
		start  = time.Now()
		status int
	)
	defer func() {
		attrs := metric.WithAttributes(
			attribute.String("shopify.resource", resource),
			attribute.Int("http.response.status_code", status),
		)
		c.requests.Add(ctx, 1, attrs)
		c.duration.Record(ctx, time.Since(start).Seconds(), attrs)
		if rerr != nil {
			span.RecordError(rerr)
			span.SetStatus(codes.Error, rerr.Error())
		}
		span.End()
	}()

	u := c.base.ResolveReference(&url.URL{Path: resource})
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	req.Header.Set("Authorization", c.auth)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Resource: resource, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()
	status = resp.StatusCode

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Resource: resource, StatusCode: status, Err: err}
	}
	if status < 200 || status > 299 {
		return nil, &TransportError{
			Resource:   resource,
			StatusCode: status,
			Body:       snippet(body),
		}
	}

	zctx.From(ctx).Debug("Upstream request",
		zap.String("resource", resource),
		zap.Int("status", status),
		zap.Int("bytes", len(body)),
		zap.Duration("duration", time.Since(start)),
	)
	return body, nil
}
