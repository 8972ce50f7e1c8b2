package rest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"storefront-console/internal/domain"
	"storefront-console/pkg/logger"

	"github.com/goccy/go-json"
)

const maxErrorBody = 64 << 10

// Client talks to the remote REST backend on behalf of the caller whose
// session is in the request context.
type Client struct {
	baseURL     string
	http        *http.Client
	maxRetries  int
	baseBackoff time.Duration
	maxBackoff  time.Duration
}

func NewClient(baseURL string, timeout time.Duration, maxRetries int) *Client {
	return &Client{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		http:        &http.Client{Timeout: timeout},
		maxRetries:  maxRetries,
		baseBackoff: 100 * time.Millisecond,
		maxBackoff:  2 * time.Second,
	}
}

// errorBody covers the error shapes the backend answers with.
type errorBody struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields"`
	Errors  map[string]string `json:"errors"`
}

type envelope struct {
	Data json.RawMessage `json:"data"`
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, out)
}

// do sends one request. GETs are retried with exponential backoff on
// transport errors and 5xx answers; writes are sent once.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	retries := 0
	if method == http.MethodGet {
		retries = c.maxRetries
	}

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			if err := c.wait(ctx, attempt); err != nil {
				return err
			}
		}

		retryable, err := c.once(ctx, method, target, payload, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}
	return lastErr
}

func (c *Client) wait(ctx context.Context, attempt int) error {
	backoff := c.baseBackoff << (attempt - 1)
	if backoff > c.maxBackoff || backoff <= 0 {
		backoff = c.maxBackoff
	}
	t := time.NewTimer(backoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (c *Client) once(ctx context.Context, method, target string, payload []byte, out any) (retryable bool, err error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return false, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s := domain.SessionFromContext(ctx); s != nil && s.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}
	if id := logger.RequestID(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		logger.Upstream(ctx, method, target, 0, time.Since(start), err)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, fmt.Errorf("%s %s: %w", method, target, ctxErr)
		}
		return true, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		apiErr := decodeError(resp)
		logger.Upstream(ctx, method, target, resp.StatusCode, time.Since(start), apiErr)
		return resp.StatusCode >= 500, apiErr
	}
	logger.Upstream(ctx, method, target, resp.StatusCode, time.Since(start), nil)

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return false, nil
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return true, fmt.Errorf("%w: read body: %v", domain.ErrUpstream, err)
	}
	if err := decodeBody(raw, out); err != nil {
		return false, fmt.Errorf("%w: decode body: %v", domain.ErrUpstream, err)
	}
	return false, nil
}

// decodeBody accepts both bare payloads and {"data": ...} envelopes.
func decodeBody(raw []byte, out any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	var env envelope
	if bytes.HasPrefix(bytes.TrimSpace(raw), []byte("{")) && json.Unmarshal(raw, &env) == nil && len(env.Data) > 0 && string(env.Data) != "null" {
		return json.Unmarshal(env.Data, out)
	}
	return json.Unmarshal(raw, out)
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var body errorBody
	_ = json.Unmarshal(raw, &body)
	msg := body.Message
	if msg == "" {
		msg = body.Error
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	fields := body.Fields
	if len(fields) == 0 {
		fields = body.Errors
	}

	switch {
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		return &domain.ValidationError{Message: msg, Fields: domain.FormErrors(fields)}
	case resp.StatusCode == http.StatusUnauthorized:
		return &domain.APIError{Status: resp.StatusCode, Message: msg, Err: domain.ErrUnauthorized}
	case resp.StatusCode == http.StatusForbidden:
		return &domain.APIError{Status: resp.StatusCode, Message: msg, Err: domain.ErrForbidden}
	case resp.StatusCode == http.StatusNotFound:
		return &domain.APIError{Status: resp.StatusCode, Message: msg, Err: domain.ErrNotFound}
	case resp.StatusCode == http.StatusConflict:
		return &domain.APIError{Status: resp.StatusCode, Message: msg, Err: domain.ErrConflict}
	default:
		return &domain.APIError{Status: resp.StatusCode, Message: msg, Err: domain.ErrUpstream}
	}
}

func escape(id string) string {
	return url.PathEscape(id)
}
