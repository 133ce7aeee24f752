package backend

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"whatbeatsrock/internal/types"
)

func loginMock(t *testing.T, m *Mock, phone string) string {
	t.Helper()
	auth, err := m.Login(context.Background(), phone)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	return auth.AccessToken
}

func TestMockLogin(t *testing.T) {
	m := NewMock(MockOptions{Secret: "s", TokenTTL: time.Hour, Blocked: []string{"000000"}})
	ctx := context.Background()

	auth, err := m.Login(ctx, " +1 234 567 8900 ")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if auth.AccessToken == "" || auth.RefreshToken == "" || auth.ExpiresIn != 3600 {
		t.Errorf("unexpected auth response %+v", auth)
	}

	if _, err := m.Login(ctx, "000000"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("blocked phone: got %v, want ErrUnauthorized", err)
	}
	if _, err := m.Login(ctx, "12"); !errors.Is(err, ErrServer) {
		t.Errorf("invalid phone: got %v, want ErrServer", err)
	}
}

func TestMockTokenExpiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMock(MockOptions{Secret: "s", TokenTTL: time.Minute, Now: func() time.Time { return now }})
	token := loginMock(t, m, "123456")

	if _, err := m.CurrentSession(context.Background(), token); err != nil {
		t.Fatalf("fresh token rejected: %v", err)
	}
	now = now.Add(2 * time.Minute)
	if _, err := m.CurrentSession(context.Background(), token); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expired token: got %v, want ErrUnauthorized", err)
	}

	other := NewMock(MockOptions{Secret: "different"})
	if _, err := other.CurrentSession(context.Background(), token); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("foreign token: got %v, want ErrUnauthorized", err)
	}
}

func TestMockPlayRules(t *testing.T) {
	m := NewMock(MockOptions{WeakAnswers: []string{"Nothing"}})
	ctx := context.Background()
	token := loginMock(t, m, "123456")

	sess, err := m.CurrentSession(ctx, token)
	if err != nil {
		t.Fatalf("current session: %v", err)
	}

	resp, err := m.Play(ctx, token, types.PlayRequest{Move: " Paper ", Chain: sess.Chain, SessionID: sess.SessionID})
	if err != nil || !resp.Accepted || resp.Score != 1 {
		t.Fatalf("first move: %+v, %v", resp, err)
	}
	if types.StringValue(resp.SessionID) != types.StringValue(sess.SessionID) {
		t.Errorf("session id changed: %v -> %v", *sess.SessionID, types.StringValue(resp.SessionID))
	}

	again, err := m.CurrentSession(ctx, token)
	if err != nil || len(again.Chain) != 2 || again.Chain[1] != "Paper" {
		t.Fatalf("session after move: %+v, %v", again, err)
	}

	resp, err = m.Play(ctx, token, types.PlayRequest{Move: "paper", SessionID: sess.SessionID})
	if err != nil || resp.Accepted || resp.Score != 1 {
		t.Fatalf("duplicate move: %+v, %v", resp, err)
	}

	end, err := m.EndSession(ctx, token, *sess.SessionID)
	if err != nil || end.FinalScore != 1 || end.BestScore != 1 {
		t.Fatalf("end: %+v, %v", end, err)
	}

	fresh, _ := m.CurrentSession(ctx, token)
	if *fresh.SessionID == *sess.SessionID || fresh.BestScore != 1 || len(fresh.Chain) != 1 {
		t.Errorf("expected a fresh session after rejection, got %+v", fresh)
	}

	resp, _ = m.Play(ctx, token, types.PlayRequest{Move: "NOTHING", SessionID: fresh.SessionID})
	if resp.Accepted {
		t.Error("weak answer accepted")
	}
}

func TestMockEndSessionOwnership(t *testing.T) {
	m := NewMock(MockOptions{})
	ctx := context.Background()
	alice := loginMock(t, m, "111111")
	bob := loginMock(t, m, "222222")

	sess, _ := m.CurrentSession(ctx, alice)
	_, err := m.EndSession(ctx, bob, *sess.SessionID)
	var se *StatusError
	if !errors.As(err, &se) || se.Status != http.StatusNotFound {
		t.Fatalf("foreign end: got %v, want 404", err)
	}
	if !errors.Is(err, ErrServer) {
		t.Errorf("404 should classify as server error, got %v", Classify(err))
	}
}

func TestMockHonoursContext(t *testing.T) {
	m := NewMock(MockOptions{})
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()
	if _, err := m.Login(ctx, "123456"); !errors.Is(err, ErrTimeout) {
		t.Errorf("expired context: got %v, want ErrTimeout", err)
	}

	cctx, ccancel := context.WithCancel(context.Background())
	ccancel()
	if _, err := m.Login(cctx, "123456"); !errors.Is(err, ErrNetwork) {
		t.Errorf("cancelled context: got %v, want ErrNetwork", err)
	}
}

func TestNewSelectsBackend(t *testing.T) {
	b, err := New(Settings{Mode: "mock"})
	if err != nil || b.Name() != "mock" {
		t.Fatalf("mock: %v, %v", b, err)
	}
	b, err = New(Settings{Mode: "LIVE", BaseURL: "http://localhost:8000"})
	if err != nil || b.Name() != "live" {
		t.Fatalf("live: %v, %v", b, err)
	}
	if _, err := New(Settings{Mode: "live"}); err == nil {
		t.Error("live without base URL should fail")
	}
	if _, err := New(Settings{Mode: "carrier-pigeon"}); err == nil {
		t.Error("unknown mode should fail")
	}
}
