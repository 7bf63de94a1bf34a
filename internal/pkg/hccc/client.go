// Package hccc is the typed client for the HCCC Gameroom REST API.
package hccc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
	"golang.org/x/sync/singleflight"
)

const (
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 4096
)

// Observer receives one call per upstream attempt sequence.
type Observer func(method, route string, status int, took time.Duration)

// Options configures a Client.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	// Retries bounds how often an idempotent GET is retried on transport
	// errors and 502/503/504. Writes are never retried.
	Retries int
	// RequestID extracts the console request id to forward as X-Request-ID.
	RequestID func(ctx context.Context) string
	Observer  Observer
}

// Client talks to the HCCC API. A Client without a token can only call
// public endpoints; use WithToken to bind an operator or customer session.
type Client struct {
	baseURL   string
	ua        string
	token     string
	http      *http.Client
	executor  failsafe.Executor[*rawResponse]
	sf        *singleflight.Group
	requestID func(ctx context.Context) string
	observe   Observer
}

type rawResponse struct {
	status int
	body   []byte
}

// NewClient creates a new HCCC API client.
func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	retries := opts.Retries
	if retries < 0 {
		retries = 0
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   20,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	retry := retrypolicy.NewBuilder[*rawResponse]().
		HandleIf(func(resp *rawResponse, err error) bool {
			if err != nil {
				return true
			}
			switch resp.status {
			case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
				return true
			}
			return false
		}).
		WithBackoff(100*time.Millisecond, 2*time.Second).
		WithJitterFactor(0.1).
		WithMaxRetries(retries).
		ReturnLastFailure().
		Build()

	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		ua:      opts.UserAgent,
		http: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		executor:  failsafe.With[*rawResponse](retry),
		sf:        &singleflight.Group{},
		requestID: opts.RequestID,
		observe:   opts.Observer,
	}
}

// WithToken returns a copy of the client bound to a bearer token. The
// transport, retry policy and GET coalescing are shared with the parent.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// call describes one upstream request. route is the path template used
// for metrics labels.
type call struct {
	method string
	path   string
	route  string
	query  url.Values
	body   interface{}
	auth   bool
}

// envelope is the HCCC response wrapper: {success, data, message}.
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func (c *Client) do(ctx context.Context, req call, out interface{}) error {
	if c == nil || c.http == nil {
		return &TransportError{Kind: "request", Err: fmt.Errorf("client is nil")}
	}
	if c.baseURL == "" {
		return ErrNoBase
	}
	if req.auth && strings.TrimSpace(c.token) == "" {
		return ErrNoToken
	}

	var payload []byte
	if req.body != nil {
		var err error
		payload, err = json.Marshal(req.body)
		if err != nil {
			return &TransportError{Kind: "request", Err: err}
		}
	}

	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	start := time.Now()
	var (
		raw *rawResponse
		err error
	)
	if req.method == http.MethodGet {
		raw, err = c.getCoalesced(ctx, target, req)
	} else {
		raw, err = c.send(ctx, target, req, payload)
	}

	if c.observe != nil {
		status := 0
		if raw != nil {
			status = raw.status
		}
		c.observe(req.method, req.route, status, time.Since(start))
	}
	if err != nil {
		return err
	}

	return decode(raw, req, out)
}

// getCoalesced runs a GET through the retry policy and shares the result
// with concurrent identical GETs made with the same token. The shared call
// is detached from any single caller's cancellation and bounded by the
// client timeout; each caller stops waiting when its own ctx is done.
func (c *Client) getCoalesced(ctx context.Context, target string, req call) (*rawResponse, error) {
	key := c.token + " " + target
	shared := context.WithoutCancel(ctx)
	ch := c.sf.DoChan(key, func() (interface{}, error) {
		return c.executor.WithContext(shared).Get(func() (*rawResponse, error) {
			return c.send(shared, target, req, nil)
		})
	})

	select {
	case <-ctx.Done():
		return nil, classifyRequestError(ctx, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*rawResponse), nil
	}
}

func (c *Client) send(ctx context.Context, target string, req call, payload []byte) (*rawResponse, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return nil, &TransportError{Kind: "request", Err: err}
	}

	httpReq.Header.Set("Accept", "application/json")
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.ua != "" {
		httpReq.Header.Set("User-Agent", c.ua)
	}
	if c.requestID != nil {
		if id := c.requestID(ctx); id != "" {
			httpReq.Header.Set("X-Request-ID", id)
		}
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, classifyRequestError(ctx, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyRequestError(ctx, err)
	}
	return &rawResponse{status: resp.StatusCode, body: data}, nil
}

func decode(raw *rawResponse, req call, out interface{}) error {
	if raw.status < 200 || raw.status > 299 {
		return &APIError{
			Status:  raw.status,
			Message: errorMessage(raw.body, raw.status),
			Method:  req.method,
			Path:    req.path,
		}
	}
	if len(bytes.TrimSpace(raw.body)) == 0 {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(raw.body, &env); err != nil {
		return &APIError{Status: raw.status, Message: "malformed response body", Method: req.method, Path: req.path}
	}
	if env.Success != nil && !*env.Success {
		msg := env.Message
		if msg == "" {
			msg = "request was not successful"
		}
		return &APIError{Status: raw.status, Message: msg, Method: req.method, Path: req.path}
	}
	if out == nil {
		return nil
	}

	data := env.Data
	if len(data) == 0 || string(data) == "null" {
		// Some endpoints answer with the bare resource.
		if env.Success != nil {
			return nil
		}
		data = raw.body
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("hccc %s %s: decode: %w", req.method, req.path, err)
	}
	return nil
}

func errorMessage(body []byte, status int) string {
	var payload struct {
		Message string `json:"message"`
		Error   *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != nil && payload.Error.Message != "" {
			return payload.Error.Message
		}
	}
	text := strings.TrimSpace(string(body))
	if text == "" {
		return http.StatusText(status)
	}
	if len(text) > maxErrorBody {
		text = text[:maxErrorBody]
	}
	return text
}

func escape(id string) string {
	return url.PathEscape(id)
}
