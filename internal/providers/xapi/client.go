package xapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dghubble/oauth1"
	"github.com/sandevgo/rtbot/internal/config"
	"github.com/sandevgo/rtbot/internal/core"
	"github.com/sandevgo/rtbot/pkg/log"
	"github.com/sandevgo/rtbot/pkg/retry"
	"golang.org/x/oauth2"
)

const (
	requestTimeout = 30 * time.Second
	// used when a 429 carries no reset header
	defaultRateLimitWait = time.Minute
)

// Client talks to the X API v2 with user-context auth.
type Client struct {
	client  *http.Client
	baseURL string
	retrier *retry.Retrier
	now     func() time.Time
}

// NewClient builds an authenticated client. OAuth 1.0a is preferred when
// all four values are present, otherwise the bearer token is used.
// A base *http.Client can be supplied through ctx with oauth1.HTTPClient
// or oauth2.HTTPClient.
func NewClient(ctx context.Context, cfg config.XConfig) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var hc *http.Client
	switch {
	case cfg.HasOAuth1():
		oc := oauth1.NewConfig(cfg.APIKey, cfg.APISecret)
		hc = oc.Client(ctx, oauth1.NewToken(cfg.AccessToken, cfg.AccessTokenSecret))
	default:
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.BearerToken, TokenType: "Bearer"})
		hc = oauth2.NewClient(ctx, ts)
	}
	hc.Timeout = requestTimeout

	return &Client{
		client:  hc,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		retrier: retry.NewDefaultRetrier(),
		now:     time.Now,
	}, nil
}

func (c *Client) WithRetrier(r *retry.Retrier) *Client {
	c.retrier = r
	return c
}

// APIError is a non-2xx answer from the API.
type APIError struct {
	StatusCode int
	Title      string
	Detail     string
}

func (e *APIError) Error() string {
	msg := e.Detail
	if msg == "" {
		msg = e.Title
	}
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("x api: http %d: %s", e.StatusCode, msg)
}

func (e *APIError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

func isUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Unauthorized()
}

// do sends one request with retries and decodes a 2xx body into out.
// 429 waits for the rate limit window, 5xx and transport errors back off,
// any other status fails at once.
func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	return c.send(ctx, method, path, body, out, true)
}

// doOnce is do for calls that change state: only a 429 is retried.
func (c *Client) doOnce(ctx context.Context, method, path string, body any, out any) error {
	return c.send(ctx, method, path, body, out, false)
}

func (c *Client) send(ctx context.Context, method, path string, body any, out any, retryFailures bool) error {
	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal: %w", err)
		}
		payload = data
	}

	logger := log.FromCtx(ctx)
	return c.retrier.Do(ctx, func() error {
		var bodyReader io.Reader
		if payload != nil {
			bodyReader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
		if err != nil {
			return retry.Permanent(fmt.Errorf("create request: %w", err))
		}
		req.Header.Set("User-Agent", core.BotUserAgent)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return retry.Permanent(ctx.Err())
			}
			if !retryFailures {
				return retry.Permanent(fmt.Errorf("request: %w", err))
			}
			logger.Warn().Err(err).Str("path", path).Msg("request failed, retrying")
			return fmt.Errorf("request: %w", err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			if !retryFailures {
				return retry.Permanent(fmt.Errorf("read body: %w", err))
			}
			return fmt.Errorf("read body: %w", err)
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			wait := c.rateLimitWait(resp.Header)
			logger.Warn().Str("path", path).Dur("wait", wait).Msg("rate limited, waiting for reset")
			return retry.After(decodeError(resp.StatusCode, data), wait)
		case resp.StatusCode >= 500 && !retryFailures:
			return retry.Permanent(decodeError(resp.StatusCode, data))
		case resp.StatusCode >= 500:
			logger.Warn().Int("status", resp.StatusCode).Str("path", path).Msg("server error, retrying")
			return decodeError(resp.StatusCode, data)
		case resp.StatusCode < 200 || resp.StatusCode > 299:
			return retry.Permanent(decodeError(resp.StatusCode, data))
		}

		if out == nil {
			return nil
		}
		if err := json.Unmarshal(data, out); err != nil {
			return retry.Permanent(fmt.Errorf("decode: %w", err))
		}
		return nil
	})
}

func (c *Client) rateLimitWait(h http.Header) time.Duration {
	reset, err := strconv.ParseInt(h.Get("x-rate-limit-reset"), 10, 64)
	if err != nil {
		return defaultRateLimitWait
	}
	wait := time.Unix(reset, 0).Sub(c.now()) + time.Second
	if wait < 0 {
		return 0
	}
	return wait
}

func decodeError(status int, data []byte) error {
	apiErr := &APIError{StatusCode: status}
	var body struct {
		Title  string `json:"title"`
		Detail string `json:"detail"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if json.Unmarshal(data, &body) == nil {
		apiErr.Title = body.Title
		apiErr.Detail = body.Detail
		if apiErr.Detail == "" && len(body.Errors) > 0 {
			apiErr.Detail = body.Errors[0].Message
		}
	}
	return apiErr
}
