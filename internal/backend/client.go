package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"whatbeatsrock/internal/types"
)

// Paths of the scoring service.
const (
	PathLogin          = "/api/auth/login"
	PathCurrentSession = "/api/session/current/"
	PathPlay           = "/api/play"
	PathEndSession     = "/api/sessions/%s/end"
)

// Client talks to the live scoring service over HTTP.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
}

// NewClient returns a Client for baseURL. A zero timeout means
// DefaultTimeout; a nil httpClient means a fresh http.Client.
func NewClient(baseURL string, timeout time.Duration, httpClient *http.Client) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		http:    httpClient,
	}
}

func (c *Client) Name() string { return "live" }

func (c *Client) Login(ctx context.Context, phone string) (*types.AuthResponse, error) {
	return call[types.AuthResponse](ctx, c, request{
		Op:     "login",
		Method: http.MethodPost,
		Path:   PathLogin,
		Body:   types.AuthRequest{Username: phone},
	})
}

func (c *Client) CurrentSession(ctx context.Context, token string) (*types.SessionData, error) {
	return call[types.SessionData](ctx, c, request{
		Op:     "current session",
		Method: http.MethodGet,
		Path:   PathCurrentSession,
		Token:  token,
	})
}

func (c *Client) Play(ctx context.Context, token string, req types.PlayRequest) (*types.PlayResponse, error) {
	return call[types.PlayResponse](ctx, c, request{
		Op:     "play",
		Method: http.MethodPost,
		Path:   PathPlay,
		Token:  token,
		Body:   req,
	})
}

func (c *Client) EndSession(ctx context.Context, token, sessionID string) (*types.EndSessionResponse, error) {
	return call[types.EndSessionResponse](ctx, c, request{
		Op:     "end session",
		Method: http.MethodPost,
		Path:   fmt.Sprintf(PathEndSession, url.PathEscape(sessionID)),
		Token:  token,
	})
}
