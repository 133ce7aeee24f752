// Package backend is the scoring service as seen from the game screens:
// a small interface with a live HTTP implementation and an in-process mock,
// sharing one error taxonomy.
package backend

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"whatbeatsrock/internal/types"
)

// Backend is the pluggable scoring capability the screens depend on.
type Backend interface {
	Name() string
	Login(ctx context.Context, phone string) (*types.AuthResponse, error)
	CurrentSession(ctx context.Context, token string) (*types.SessionData, error)
	Play(ctx context.Context, token string, req types.PlayRequest) (*types.PlayResponse, error)
	EndSession(ctx context.Context, token, sessionID string) (*types.EndSessionResponse, error)
}

// Modes accepted by New.
const (
	ModeLive = "live"
	ModeMock = "mock"
)

// Settings selects and configures a Backend.
type Settings struct {
	Mode         string
	BaseURL      string
	Timeout      time.Duration
	MockSecret   string
	MockTokenTTL time.Duration
}

// New builds the Backend named by s.Mode.
func New(s Settings) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(s.Mode)) {
	case "", ModeLive:
		if s.BaseURL == "" {
			return nil, fmt.Errorf("live backend requires a base URL")
		}
		return NewClient(s.BaseURL, s.Timeout, &http.Client{}), nil
	case ModeMock:
		return NewMock(MockOptions{Secret: s.MockSecret, TokenTTL: s.MockTokenTTL}), nil
	default:
		return nil, fmt.Errorf("unknown scoring backend %q", s.Mode)
	}
}
