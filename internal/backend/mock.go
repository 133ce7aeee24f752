package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"whatbeatsrock/internal/game"
	"whatbeatsrock/internal/types"
)

// Answers the mock refuses to let beat anything.
var defaultWeakAnswers = []string{"nothing", "scissors", "air", "feather", "tissue"}

var mockQuotes = []string{
	"%[1]s beats %[2]s. Bold move.",
	"Nobody saw %[1]s coming. %[2]s certainly didn't.",
	"%[1]s over %[2]s? The judges allow it.",
	"Sure, %[1]s. Why not.",
}

// MockOptions configures a Mock. Zero values pick development defaults.
type MockOptions struct {
	Secret      string
	TokenTTL    time.Duration
	WeakAnswers []string
	Blocked     []string // phones refused at login
	Now         func() time.Time
}

type mockUser struct {
	Phone  string
	Best   int
	Active string
}

type mockSession struct {
	ID    string
	Phone string
	Chain game.Chain
	Ended bool
	Final int
}

// Mock is an in-process scoring service used for development and tests.
// It follows the same contract and error taxonomy as the live service.
type Mock struct {
	mu       sync.Mutex
	secret   []byte
	ttl      time.Duration
	weak     map[string]struct{}
	blocked  map[string]struct{}
	now      func() time.Time
	users    map[string]*mockUser
	sessions map[string]*mockSession
}

func NewMock(opts MockOptions) *Mock {
	if opts.Secret == "" {
		opts.Secret = "dev-secret"
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	if opts.WeakAnswers == nil {
		opts.WeakAnswers = defaultWeakAnswers
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Mock{
		secret:   []byte(opts.Secret),
		ttl:      opts.TokenTTL,
		weak:     foldedSet(opts.WeakAnswers),
		blocked:  foldedSet(opts.Blocked),
		now:      opts.Now,
		users:    make(map[string]*mockUser),
		sessions: make(map[string]*mockSession),
	}
}

func (m *Mock) Name() string { return "mock" }

func (m *Mock) Login(ctx context.Context, phone string) (*types.AuthResponse, error) {
	if err := ctxError(ctx, "login"); err != nil {
		return nil, err
	}
	phone = strings.TrimSpace(phone)
	if !game.ValidatePhone(phone) {
		return nil, &StatusError{Op: "login", Status: http.StatusBadRequest, Body: "invalid username"}
	}
	if _, ok := m.blocked[strings.ToLower(phone)]; ok {
		return nil, &StatusError{Op: "login", Status: http.StatusUnauthorized, Body: "user blocked"}
	}

	now := m.now()
	claims := jwt.RegisteredClaims{
		Subject:   phone,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		ID:        uuid.NewString(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return nil, fmt.Errorf("login: signing token: %w", errors.Join(ErrServer, err))
	}

	m.mu.Lock()
	m.userLocked(phone)
	m.mu.Unlock()

	return &types.AuthResponse{
		AccessToken:  signed,
		RefreshToken: uuid.NewString(),
		ExpiresIn:    int(m.ttl.Seconds()),
	}, nil
}

func (m *Mock) CurrentSession(ctx context.Context, token string) (*types.SessionData, error) {
	phone, err := m.authenticate(ctx, "current session", token)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.userLocked(phone)
	s, ok := m.sessions[u.Active]
	if !ok || s.Ended {
		s = m.startSessionLocked(u, nil)
	}
	return &types.SessionData{
		Score:     s.Chain.Score(),
		SessionID: types.StringPtr(s.ID),
		Chain:     s.Chain.Clone(),
		BestScore: u.Best,
	}, nil
}

func (m *Mock) Play(ctx context.Context, token string, req types.PlayRequest) (*types.PlayResponse, error) {
	phone, err := m.authenticate(ctx, "play", token)
	if err != nil {
		return nil, err
	}
	move := game.Normalize(req.Move)
	if move == "" {
		return nil, &StatusError{Op: "play", Status: http.StatusBadRequest, Body: "move is required"}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.userLocked(phone)
	s, ok := m.sessions[types.StringValue(req.SessionID)]
	if !ok || s.Phone != phone || s.Ended {
		s = m.startSessionLocked(u, req.Chain)
	}

	previous := s.Chain.Current()
	if s.Chain.IsDuplicate(move) {
		return m.rejectLocked(s, u, fmt.Sprintf("%s again? You already said that.", move)), nil
	}
	if _, weak := m.weak[strings.ToLower(move)]; weak {
		return m.rejectLocked(s, u, fmt.Sprintf("%s does not beat %s.", move, previous)), nil
	}

	s.Chain = s.Chain.Append(move)
	quote := fmt.Sprintf(mockQuotes[len(s.Chain)%len(mockQuotes)], move, previous)
	return &types.PlayResponse{
		Accepted:  true,
		Score:     s.Chain.Score(),
		Quote:     quote,
		SessionID: types.StringPtr(s.ID),
	}, nil
}

func (m *Mock) EndSession(ctx context.Context, token, sessionID string) (*types.EndSessionResponse, error) {
	phone, err := m.authenticate(ctx, "end session", token)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok || s.Phone != phone {
		return nil, &StatusError{Op: "end session", Status: http.StatusNotFound, Body: "session not found"}
	}
	u := m.userLocked(phone)
	if !s.Ended {
		m.endLocked(s, u)
	}
	return &types.EndSessionResponse{FinalScore: s.Final, BestScore: u.Best}, nil
}

// authenticate resolves a bearer token to the phone it was issued for.
func (m *Mock) authenticate(ctx context.Context, op, token string) (string, error) {
	if err := ctxError(ctx, op); err != nil {
		return "", err
	}
	if token == "" {
		return "", &StatusError{Op: op, Status: http.StatusUnauthorized, Body: "missing token"}
	}
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now))
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return "", &StatusError{Op: op, Status: http.StatusUnauthorized, Body: "invalid token"}
	}
	return claims.Subject, nil
}

func (m *Mock) userLocked(phone string) *mockUser {
	u, ok := m.users[phone]
	if !ok {
		u = &mockUser{Phone: phone}
		m.users[phone] = u
	}
	return u
}

func (m *Mock) startSessionLocked(u *mockUser, chain []string) *mockSession {
	s := &mockSession{
		ID:    uuid.NewString(),
		Phone: u.Phone,
		Chain: game.FromServer(chain),
	}
	m.sessions[s.ID] = s
	u.Active = s.ID
	return s
}

func (m *Mock) endLocked(s *mockSession, u *mockUser) {
	s.Ended = true
	s.Final = s.Chain.Score()
	u.Best = game.UpdateBest(u.Best, s.Final)
	if u.Active == s.ID {
		u.Active = ""
	}
}

func (m *Mock) rejectLocked(s *mockSession, u *mockUser, quote string) *types.PlayResponse {
	m.endLocked(s, u)
	return &types.PlayResponse{
		Accepted:  false,
		Score:     s.Final,
		Quote:     quote,
		SessionID: types.StringPtr(s.ID),
	}
}

func foldedSet(items []string) map[string]struct{} {
	return lo.SliceToMap(items, func(s string) (string, struct{}) {
		return strings.ToLower(strings.TrimSpace(s)), struct{}{}
	})
}

func ctxError(ctx context.Context, op string) error {
	err := ctx.Err()
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w", op, errors.Join(ErrTimeout, err))
	default:
		return fmt.Errorf("%s: %w", op, errors.Join(ErrNetwork, err))
	}
}
