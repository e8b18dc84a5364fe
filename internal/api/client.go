package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/lsx-cli/lsx/internal/debug"
)

const (
	// Host is the vendor domain every store subdomain lives under.
	Host = "vendhq.com"

	DefaultTimeout = 30 * time.Second
)

// Client is the Lightspeed Retail X-Series API client.
//
// A Client owns one connection resource that is reused by every call. The
// credential is held as an immutable authorization snapshot; each request
// reads the snapshot once when it is built, so replacing the token never
// affects a request that is already in flight.
type Client struct {
	domainPrefix string
	debug        bool
	endpoint     string
	userAgent    string
	timeout      time.Duration
	diagnostics  io.Writer

	auth atomic.Pointer[authorization]
	http *resty.Client
}

// authorization is never mutated after it is stored.
type authorization struct {
	token  string
	header string
}

func newAuthorization(token string) *authorization {
	return &authorization{token: token, header: "Bearer " + token}
}

// Option configures a Client.
type Option func(*Client)

// WithDebug enables printing of resolved request URLs to the diagnostics writer.
func WithDebug(enabled bool) Option {
	return func(c *Client) { c.debug = enabled }
}

// WithHTTPClient replaces the underlying HTTP client (transport, timeout, TLS).
// hc is copied; WithTimeout never changes the caller's client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			cp := *hc
			c.http = newConnection(&cp)
		}
	}
}

// WithTimeout overrides the transport timeout. Zero keeps the default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithDiagnostics sets where debug URLs and deprecation warnings are written.
func WithDiagnostics(w io.Writer) Option {
	return func(c *Client) {
		if w != nil {
			c.diagnostics = w
		}
	}
}

// WithEndpoint replaces the https://{prefix}.vendhq.com root, e.g. for a
// local proxy. The /api/{version}{path} suffix is still appended.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) { c.endpoint = strings.TrimSuffix(strings.TrimSpace(endpoint), "/") }
}

// New creates a client for the store identified by domainPrefix.
func New(token, domainPrefix string, opts ...Option) *Client {
	c := &Client{
		domainPrefix: domainPrefix,
		diagnostics:  os.Stderr,
		http:         newConnection(defaultHTTPClient()),
	}
	c.auth.Store(newAuthorization(token))
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		c.http.SetTimeout(c.timeout)
	}
	return c
}

func defaultHTTPClient() *http.Client {
	baseTransport, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		baseTransport = &http.Transport{}
	}
	transport := baseTransport.Clone()
	if transport.TLSClientConfig == nil {
		transport.TLSClientConfig = &tls.Config{}
	} else {
		transport.TLSClientConfig = transport.TLSClientConfig.Clone()
	}
	transport.TLSClientConfig.MinVersion = tls.VersionTLS12

	return &http.Client{
		Timeout:   DefaultTimeout,
		Transport: transport,
	}
}

func newConnection(hc *http.Client) *resty.Client {
	conn := resty.NewWithClient(hc)
	conn.SetLogger(slogLogger{})
	// Bodies are forwarded for every verb, GET included.
	conn.SetAllowGetMethodPayload(true)
	conn.SetHeader("Accept", "application/json")
	return conn
}

// Token returns the current credential.
func (c *Client) Token() string {
	return c.auth.Load().token
}

// SetToken replaces the credential. Requests built after SetToken returns
// use the new value.
func (c *Client) SetToken(token string) {
	c.auth.Store(newAuthorization(token))
}

// AuthorizationHeader returns the Authorization header value the next request will carry.
func (c *Client) AuthorizationHeader() string {
	return c.auth.Load().header
}

// DomainPrefix returns the store subdomain.
func (c *Client) DomainPrefix() string {
	return c.domainPrefix
}

// Debug reports whether request URLs are echoed to diagnostics.
func (c *Client) Debug() bool {
	return c.debug
}

func (c *Client) String() string {
	return fmt.Sprintf("Lightspeed(domain_prefix=%s)", c.domainPrefix)
}

func (c *Client) root() string {
	if c.endpoint != "" {
		return c.endpoint
	}
	return fmt.Sprintf("https://%s.%s", c.domainPrefix, Host)
}

// URL builds the versioned URL for path. A missing leading slash is added.
func (c *Client) URL(path, version string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if version == "" {
		version = DefaultVersion
	}
	return fmt.Sprintf("%s/api/%s%s", c.root(), version, path)
}

// RequestURL is URL for the descriptor's version with its params appended in
// order. A query already on path is kept and comes before the params.
func (c *Client) RequestURL(path string, opts *RequestOptions) string {
	path, query, _ := strings.Cut(path, "?")
	reqURL := c.URL(path, opts.version())

	var params Query
	if opts != nil {
		params = opts.Params
	}
	if encoded := params.Encode(); encoded != "" {
		if query != "" {
			query += "&"
		}
		query += encoded
	}
	if query != "" {
		reqURL += "?" + query
	}
	return reqURL
}

// Request performs method against path and returns the decoded JSON body.
func (c *Client) Request(ctx context.Context, method, path string, opts *RequestOptions) (any, error) {
	if opts == nil {
		opts = &RequestOptions{}
	}
	version := opts.version()
	if IsDeprecated(version) {
		c.warnDeprecated(version)
	} else if !IsKnownVersion(version) {
		slog.Debug("unknown api version sent as-is", "version", version, "known", KnownVersions())
	}
	reqURL := c.RequestURL(path, opts)

	auth := c.auth.Load()
	req := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", auth.header)
	if c.userAgent != "" {
		req.SetHeader("User-Agent", c.userAgent)
	}
	if opts.HasBody() {
		payload, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		req.SetHeader("Content-Type", "application/json").SetBody(payload)
	}

	start := time.Now()
	resp, err := req.Execute(method, reqURL)
	if err != nil {
		if debug.IsEnabled(ctx) {
			slog.Debug("request failed", "method", method, "url", reqURL, "error", err)
		}
		return nil, err
	}

	if c.debug {
		_, _ = fmt.Fprintf(c.diagnostics, "Request URL: %s\n", resolvedURL(resp, reqURL))
	}
	if debug.IsEnabled(ctx) {
		slog.Debug("request complete", "method", method, "url", reqURL, "status", resp.StatusCode(), "duration", time.Since(start))
	}

	body := resp.Body()
	if !resp.IsSuccess() {
		return nil, &HTTPStatusError{
			StatusCode: resp.StatusCode(),
			Body:       body,
			Method:     method,
			URL:        reqURL,
		}
	}
	return decodeJSON(body)
}

func resolvedURL(resp *resty.Response, fallback string) string {
	if resp != nil && resp.Request != nil && resp.Request.RawRequest != nil && resp.Request.RawRequest.URL != nil {
		return resp.Request.RawRequest.URL.String()
	}
	return fallback
}

func decodeJSON(body []byte) (any, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("unexpected API response format (JSON decode failed): %w", err)
	}
	return out, nil
}

func (c *Client) warnDeprecated(version string) {
	msg := fmt.Sprintf("Warning: API version %s is deprecated; use %s", version, DefaultVersion)
	_, _ = fmt.Fprintln(c.diagnostics, msg)
	slog.Debug("deprecated api version", "version", version, "domain_prefix", c.domainPrefix)
}

// Get performs a GET request
func (c *Client) Get(ctx context.Context, path string, opts *RequestOptions) (any, error) {
	return c.Request(ctx, http.MethodGet, path, opts)
}

// Post performs a POST request
func (c *Client) Post(ctx context.Context, path string, opts *RequestOptions) (any, error) {
	return c.Request(ctx, http.MethodPost, path, opts)
}

// Put performs a PUT request
func (c *Client) Put(ctx context.Context, path string, opts *RequestOptions) (any, error) {
	return c.Request(ctx, http.MethodPut, path, opts)
}

// Delete performs a DELETE request
func (c *Client) Delete(ctx context.Context, path string, opts *RequestOptions) (any, error) {
	return c.Request(ctx, http.MethodDelete, path, opts)
}

// slogLogger routes resty's internal logging through slog.
type slogLogger struct{}

func (slogLogger) Errorf(format string, v ...any) { slog.Error(fmt.Sprintf(format, v...)) }
func (slogLogger) Warnf(format string, v ...any)  { slog.Warn(fmt.Sprintf(format, v...)) }
func (slogLogger) Debugf(format string, v ...any) { slog.Debug(fmt.Sprintf(format, v...)) }
