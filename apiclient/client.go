// Package apiclient is the single gateway to the remote EcoLink HTTP API. Every
// request goes through Call, which joins the path onto the configured base URL
// and attaches the bearer token of the bound TokenSource when there is one.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jrsteele09/ecolink/internal/metrics"
	"golang.org/x/oauth2"
)

const maxResponseBytes = 10 << 20

// TokenSource yields the credential attached to outgoing calls. A nil token means
// the call is sent unauthenticated.
type TokenSource interface {
	Token() (*oauth2.Token, error)
}

type httpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Client struct {
	baseURL *url.URL
	tokens  TokenSource
	http    httpClient
	metrics *metrics.Metrics
}

type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient. Timeouts belong on this client.
func WithHTTPClient(hc httpClient) Option {
	return func(c *Client) {
		c.http = hc
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

func New(baseURL string, tokens TokenSource, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("[apiclient New] invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("[apiclient New] base URL must use http or https: %q", baseURL)
	}

	c := &Client{
		baseURL: u,
		tokens:  tokens,
		http:    http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// WithTokens returns a copy of the client bound to another token source
func (c *Client) WithTokens(tokens TokenSource) *Client {
	clone := *c
	clone.tokens = tokens
	return &clone
}

// BaseURL returns the configured API root
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte

	method string
	path   string
}

// Decode unmarshals the JSON body into v
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return &Error{Kind: KindDecode, Method: r.method, Path: r.path, StatusCode: r.StatusCode, Body: r.Body, Err: err}
	}
	return nil
}

// Call sends one request. body, when non-nil, is JSON encoded. headers are copied
// onto the request as given. Transport failures and non-2xx statuses come back as *Error.
// No retries are attempted.
func (c *Client) Call(ctx context.Context, method, path string, body any, headers http.Header) (*Response, error) {
	target, err := c.resolve(path)
	if err != nil {
		return nil, &Error{Kind: KindRequest, Method: method, Path: path, Err: err}
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, &Error{Kind: KindRequest, Method: method, Path: path, Err: err}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return nil, &Error{Kind: KindRequest, Method: method, Path: path, Err: err}
	}
	for name, values := range headers {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}
	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}

	if c.tokens != nil {
		tok, err := c.tokens.Token()
		if err != nil {
			return nil, &Error{Kind: KindRequest, Method: method, Path: path, Err: fmt.Errorf("token source: %w", err)}
		}
		if tok != nil && tok.AccessToken != "" {
			tok.SetAuthHeader(req)
		}
	}

	operation := method + " " + target.Path
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.ObserveAPICall(operation, 0, time.Since(start))
		return nil, &Error{Kind: KindTransport, Method: method, Path: path, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	c.metrics.ObserveAPICall(operation, resp.StatusCode, time.Since(start))
	if err != nil {
		return nil, &Error{Kind: KindTransport, Method: method, Path: path, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Kind: KindStatus, Method: method, Path: path, StatusCode: resp.StatusCode, Body: data}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
		method:     method,
		path:       path,
	}, nil
}

// resolve joins path (which may carry a query string) onto the base URL
func (c *Client) resolve(path string) (*url.URL, error) {
	rel, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path %q: %w", path, err)
	}
	if rel.IsAbs() || rel.Host != "" {
		return nil, fmt.Errorf("path must be relative to the base URL: %q", path)
	}
	target := c.baseURL.JoinPath(rel.Path)
	target.RawQuery = rel.RawQuery
	return target, nil
}
