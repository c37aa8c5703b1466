// Package http implements the transport the connection layer delegates to:
// HTTP Basic authenticated calls against the resolved base URL, with
// response-driven error classification and optional retry.
package http

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/casperdev-io/jss-client/pkg/jss"
)

const defaultUserAgent = "jss-client-go"

// Client is an HTTP client bound to one server and one set of credentials.
type Client struct {
	baseURL     string
	user        string
	password    string
	userAgent   string
	logger      jss.Logger
	debug       bool
	verifyTLS   bool
	retry       *retryablehttp.Client
	transport   *http.Transport
	openTimeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for debug logging.
func WithLogger(logger jss.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request/response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent overrides the default User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithRetryConfig enables transparent retries on 5xx and connection errors.
func WithRetryConfig(maxRetries int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.retry.RetryMax = maxRetries
		c.retry.RetryWaitMin = waitMin
		c.retry.RetryWaitMax = waitMax
	}
}

// WithTLSVerification controls certificate verification.
func WithTLSVerification(verify bool) Option {
	return func(c *Client) {
		c.verifyTLS = verify
	}
}

// WithTimeouts sets the connection-establishment and total request timeouts.
func WithTimeouts(open, total time.Duration) Option {
	return func(c *Client) {
		c.openTimeout = open
		c.retry.HTTPClient.Timeout = total
	}
}

// NewClient creates a client for baseURL authenticating with HTTP Basic.
// Retries are disabled unless WithRetryConfig enables them: a timeout or
// transient failure surfaces to the caller, who decides whether to retry.
func NewClient(baseURL, user, password string, opts ...Option) *Client {
	retry := retryablehttp.NewClient()
	retry.RetryMax = 0
	retry.Logger = nil

	client := &Client{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		user:      user,
		password:  password,
		userAgent: defaultUserAgent,
		verifyTLS: true,
		retry:     retry,
	}

	for _, opt := range opts {
		opt(client)
	}

	client.transport = &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: client.openTimeout,
		}).DialContext,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: !client.verifyTLS, //nolint:gosec // caller opted out explicitly
		},
	}
	client.retry.HTTPClient.Transport = client.transport

	return client
}

// SetTimeout changes the total request timeout for subsequent calls.
func (c *Client) SetTimeout(d time.Duration) {
	c.retry.HTTPClient.Timeout = d
}

// SetOpenTimeout changes the connection-establishment timeout for
// subsequent calls.
func (c *Client) SetOpenTimeout(d time.Duration) {
	c.openTimeout = d
	c.transport.DialContext = (&net.Dialer{Timeout: d}).DialContext
}

// Request describes one HTTP call below the base URL.
type Request struct {
	Method      string
	Path        string
	Query       url.Values
	Body        []byte
	ContentType string
	Accept      string
}

// Do executes the request. Non-2xx responses are classified into the typed
// error taxonomy; the raw response is returned alongside the error so
// callers can retain it for inspection.
func (c *Client) Do(ctx context.Context, req *Request) (*jss.Response, error) {
	fullURL := c.baseURL + "/" + strings.TrimPrefix(req.Path, "/")
	if len(req.Query) > 0 {
		fullURL += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	httpReq.SetBasicAuth(c.user, c.password)
	httpReq.Header.Set("User-Agent", c.userAgent)

	if req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}

	if req.Accept != "" {
		httpReq.Header.Set("Accept", req.Accept)
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method": req.Method,
			"url":    fullURL,
		})
	}

	httpResp, err := c.retry.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.Path, err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	resp := &jss.Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       respBody,
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"status": resp.StatusCode,
			"bytes":  len(respBody),
		})
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp, jss.ClassifyResponse(req.Method, req.Path, resp.StatusCode, respBody)
	}

	return resp, nil
}

// Get performs a GET with the given Accept header.
func (c *Client) Get(ctx context.Context, path, accept string) (*jss.Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Accept: accept})
}

// Post performs a POST with an XML payload. Bare carriage returns are
// replaced with their numeric character reference: the server's markup
// parser rejects literal CR bytes.
func (c *Client) Post(ctx context.Context, path, payload string) (*jss.Response, error) {
	return c.Do(ctx, &Request{
		Method:      http.MethodPost,
		Path:        path,
		Body:        []byte(EscapeCR(payload)),
		ContentType: "text/xml",
		Accept:      "text/xml",
	})
}

// Put performs a PUT with an XML payload; CR handling as for Post.
func (c *Client) Put(ctx context.Context, path, payload string) (*jss.Response, error) {
	return c.Do(ctx, &Request{
		Method:      http.MethodPut,
		Path:        path,
		Body:        []byte(EscapeCR(payload)),
		ContentType: "text/xml",
		Accept:      "text/xml",
	})
}

// Delete performs a DELETE.
func (c *Client) Delete(ctx context.Context, path string) (*jss.Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path, Accept: "text/xml"})
}

// EscapeCR replaces literal carriage returns with the XML numeric character
// reference.
func EscapeCR(payload string) string {
	return strings.ReplaceAll(payload, "\r", "&#13;")
}
