package mockapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"whatbeatsrock/internal/backend"
	"whatbeatsrock/internal/types"
)

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(backend.NewMock(backend.MockOptions{Secret: "test"})).Register(r)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLoginRequiresUsername(t *testing.T) {
	r := setupRouter()
	w := doJSON(t, r, http.MethodPost, "/api/auth/login", "", map[string]string{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAuthenticatedRoutesRejectMissingToken(t *testing.T) {
	r := setupRouter()
	cases := []struct {
		method, path string
		body         any
	}{
		{http.MethodGet, "/api/session/current/", nil},
		{http.MethodPost, "/api/play", types.PlayRequest{Move: "Paper", Chain: []string{"Rock"}}},
		{http.MethodPost, "/api/sessions/abc/end", nil},
	}
	for _, c := range cases {
		t.Run(c.path, func(t *testing.T) {
			w := doJSON(t, r, c.method, c.path, "", c.body)
			if w.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestFullRound(t *testing.T) {
	r := setupRouter()

	w := doJSON(t, r, http.MethodPost, "/api/auth/login", "", types.AuthRequest{Username: "+1 234 567 8900"})
	if w.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var auth types.AuthResponse
	json.NewDecoder(w.Body).Decode(&auth)
	if auth.AccessToken == "" {
		t.Fatal("login: expected an access token")
	}

	w = doJSON(t, r, http.MethodGet, "/api/session/current/", auth.AccessToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("session: expected 200, got %d", w.Code)
	}
	var sess types.SessionData
	json.NewDecoder(w.Body).Decode(&sess)
	if sess.SessionID == nil || len(sess.Chain) != 1 || sess.Chain[0] != "Rock" {
		t.Fatalf("session: unexpected payload %+v", sess)
	}

	w = doJSON(t, r, http.MethodPost, "/api/play", auth.AccessToken, types.PlayRequest{
		Move: "Paper", Chain: sess.Chain, SessionID: sess.SessionID,
	})
	var play types.PlayResponse
	json.NewDecoder(w.Body).Decode(&play)
	if !play.Accepted || play.Score != 1 {
		t.Fatalf("play: expected accepted with score 1, got %+v", play)
	}

	w = doJSON(t, r, http.MethodPost, "/api/play", auth.AccessToken, types.PlayRequest{
		Move: "nothing", Chain: []string{"Rock", "Paper"}, SessionID: play.SessionID,
	})
	json.NewDecoder(w.Body).Decode(&play)
	if play.Accepted || play.Score != 1 {
		t.Fatalf("play: expected rejection with score 1, got %+v", play)
	}

	w = doJSON(t, r, http.MethodPost, "/api/sessions/"+*play.SessionID+"/end", auth.AccessToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("end: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var end types.EndSessionResponse
	json.NewDecoder(w.Body).Decode(&end)
	if end.FinalScore != 1 || end.BestScore != 1 {
		t.Errorf("end: got %+v, want final 1 best 1", end)
	}

	w = doJSON(t, r, http.MethodPost, "/api/sessions/unknown/end", auth.AccessToken, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("end unknown: expected 404, got %d", w.Code)
	}
}
