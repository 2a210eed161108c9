package hubapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/dnscache"

	"github.com/packagehub/hub-web/internal/safego"
	"github.com/packagehub/hub-web/internal/telemetry"
)

// SessionCookieName is the cookie the hub API uses for its own session.
const SessionCookieName = "sid"

// maxBodySize bounds how much of a response body is read into memory.
const maxBodySize = 10 << 20

// Request describes a single hub API call. Path is relative to the API root
// (e.g. "/packages/stats").
type Request struct {
	Op     string
	Method string
	Path   string
	Query  url.Values
	Body   any
}

// Response carries the parts of a successful response callers need beyond
// the decoded body: pagination totals and cookies set by login. Text holds
// a successful body that is not JSON.
type Response struct {
	Status int
	Header http.Header
	Text   string
}

// Fetcher performs hub API requests and translates their outcome into either
// a decoded body or an *APIError. It makes exactly one attempt per call.
type Fetcher struct {
	baseURL   string
	client    *http.Client
	resolver  *dnscache.Resolver
	userAgent string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient replaces the default DNS-caching client. Used by tests with
// httptest servers.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

// WithUserAgent sets the User-Agent sent on every request.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// NewFetcher creates a fetcher for the API rooted at baseURL
// (e.g. "https://hub.example.com/api/v1").
func NewFetcher(baseURL string, opts ...Option) *Fetcher {
	resolver := &dnscache.Resolver{}
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	f := &Fetcher{
		baseURL:  strings.TrimRight(baseURL, "/"),
		resolver: resolver,
		client: &http.Client{
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
					host, port, err := net.SplitHostPort(addr)
					if err != nil {
						return nil, err
					}
					ips, err := resolver.LookupHost(ctx, host)
					if err != nil {
						return nil, err
					}
					for _, ip := range ips {
						conn, err := dialer.DialContext(ctx, network, net.JoinHostPort(ip, port))
						if err == nil {
							return conn, nil
						}
					}
					return nil, fmt.Errorf("failed to dial any resolved IP for %s", host)
				},
				MaxIdleConns:          100,
				MaxIdleConnsPerHost:   20,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
			},
			// Redirects are surfaced to the caller rather than followed.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		userAgent: "hub-web",
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// StartDNSRefresh refreshes the resolver cache every interval until ctx is done.
func (f *Fetcher) StartDNSRefresh(ctx context.Context, interval time.Duration) {
	safego.Every(ctx, "dnscache-refresh", interval, func(context.Context) {
		f.resolver.Refresh(true)
	})
}

// BaseURL returns the API root the fetcher targets.
func (f *Fetcher) BaseURL() string {
	return f.baseURL
}

// Do performs r. On 2xx the body is decoded into out: a *string receives the
// raw text, anything else is JSON-decoded, and an empty body leaves out
// untouched. On any other outcome an *APIError is returned.
func (f *Fetcher) Do(ctx context.Context, r Request, out any) (*Response, error) {
	start := time.Now()
	resp, err := f.do(ctx, r, out)

	kind := "ok"
	if err != nil {
		kind = KindOf(err).String()
	}
	telemetry.HubAPIRequestsTotal.WithLabelValues(r.Op, kind).Inc()
	telemetry.HubAPIRequestDuration.WithLabelValues(r.Op).Observe(time.Since(start).Seconds())

	if err != nil {
		slog.DebugContext(ctx, "hub api call failed",
			"op", r.Op, "method", r.Method, "path", r.Path, "kind", kind, "error", err)
	}
	return resp, err
}

func (f *Fetcher) do(ctx context.Context, r Request, out any) (*Response, error) {
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	target := f.baseURL + r.Path
	if len(r.Query) > 0 {
		target += "?" + r.Query.Encode()
	}

	var body io.Reader
	if r.Body != nil {
		data, err := json.Marshal(r.Body)
		if err != nil {
			return nil, &APIError{Kind: KindOther, Message: "failed to encode request body", Err: err}
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, &APIError{Kind: KindOther, Message: "failed to create request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	applyCredentials(ctx, req)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, newTransportError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, newTransportError(err)
	}

	result := &Response{Status: resp.StatusCode, Header: resp.Header}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return result, newStatusError(resp.StatusCode, errorMessage(data))
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return result, nil
	}
	if s, ok := out.(*string); ok {
		*s = string(data)
		return result, nil
	}
	if !isJSON(resp.Header.Get("Content-Type"), data) {
		result.Text = string(data)
		return result, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return result, &APIError{
			Kind:    KindOther,
			Status:  resp.StatusCode,
			Message: "invalid response body",
			Err:     err,
		}
	}
	return result, nil
}

// isJSON reports whether a response body should be decoded as JSON: either
// the server says so or the body opens an object or array.
func isJSON(contentType string, data []byte) bool {
	if strings.Contains(strings.ToLower(contentType), "json") {
		return true
	}
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[')
}

// errorMessage extracts the "message" field from a JSON error body.
func errorMessage(data []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return ""
	}
	return payload.Message
}

type credentialsKey struct{}

type credentials struct {
	sessionID string
	keyID     string
	keySecret string
	csrfToken string
}

func credentialsFrom(ctx context.Context) credentials {
	c, _ := ctx.Value(credentialsKey{}).(credentials)
	return c
}

// WithSession returns a context whose hub API calls carry the hub session cookie.
func WithSession(ctx context.Context, sessionID string) context.Context {
	c := credentialsFrom(ctx)
	c.sessionID = sessionID
	return context.WithValue(ctx, credentialsKey{}, c)
}

// WithAPIKey returns a context whose hub API calls authenticate with an API key.
func WithAPIKey(ctx context.Context, id, secret string) context.Context {
	c := credentialsFrom(ctx)
	c.keyID = id
	c.keySecret = secret
	return context.WithValue(ctx, credentialsKey{}, c)
}

// WithCSRFToken returns a context whose mutating hub API calls send token.
func WithCSRFToken(ctx context.Context, token string) context.Context {
	c := credentialsFrom(ctx)
	c.csrfToken = token
	return context.WithValue(ctx, credentialsKey{}, c)
}

func applyCredentials(ctx context.Context, req *http.Request) {
	c := credentialsFrom(ctx)
	if c.sessionID != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: c.sessionID})
	}
	if c.keyID != "" {
		req.Header.Set("X-API-Key-ID", c.keyID)
		req.Header.Set("X-API-Key-Secret", c.keySecret)
	}
	if c.csrfToken != "" && isMutating(req.Method) {
		req.Header.Set("X-CSRF-Token", c.csrfToken)
	}
}

func isMutating(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	}
	return true
}
