package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds every outbound call unless configured otherwise.
const DefaultTimeout = 10 * time.Second

// maxErrorBody caps how much of a failed response is kept for logging.
const maxErrorBody = 512

// request describes one bounded call.
type request struct {
	Op     string
	Method string
	Path   string
	Token  string
	Body   any
}

// call performs req against the client's base URL and decodes a 2xx JSON
// answer into T. The call is cancelled after the client timeout; it is
// never retried.
func call[T any](ctx context.Context, c *Client, req request) (*T, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("%s: encoding request: %w", req.Op, errors.Join(ErrServer, err))
		}
		body = bytes.NewReader(b)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.baseURL+req.Path, body)
	if err != nil {
		return nil, fmt.Errorf("%s: building request: %w", req.Op, errors.Join(ErrNetwork, err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if req.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Token)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, transportError(ctx, req.Op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{
			Op:     req.Op,
			Status: resp.StatusCode,
			Body:   strings.TrimSpace(string(excerpt)),
		}
	}

	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		if ctx.Err() != nil {
			return nil, transportError(ctx, req.Op, err)
		}
		return nil, fmt.Errorf("%s: decoding response: %w", req.Op, errors.Join(ErrServer, err))
	}
	return &out, nil
}

// transportError classifies a failure that happened before a full response
// was read.
func transportError(ctx context.Context, op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, errors.Join(ErrTimeout, err))
	}
	return fmt.Errorf("%s: %w", op, errors.Join(ErrNetwork, err))
}
