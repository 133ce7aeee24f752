package types

import (
	"encoding/json"
	"time"
)

type AuthRequest struct {
	Username string `json:"username"`
}

type AuthResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int    `json:"expires_in,omitempty"`

	// Raw holds the payload as received when decoded from JSON.
	Raw json.RawMessage `json:"-"`
}

func (r *AuthResponse) UnmarshalJSON(data []byte) error {
	type plain AuthResponse
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = AuthResponse(p)
	r.Raw = append(json.RawMessage(nil), data...)
	return nil
}

type SessionData struct {
	Score     int      `json:"score"`
	SessionID *string  `json:"session_id"`
	Chain     []string `json:"chain"`
	BestScore int      `json:"best_score"`
}

type PlayRequest struct {
	Move      string   `json:"move"`
	Chain     []string `json:"chain"`
	SessionID *string  `json:"session_id"`
}

type PlayResponse struct {
	Accepted  bool    `json:"accepted"`
	Score     int     `json:"score"`
	Quote     string  `json:"quote"`
	SessionID *string `json:"session_id,omitempty"`
}

type EndSessionResponse struct {
	FinalScore int `json:"final_score"`
	BestScore  int `json:"best_score"`
}

// UserSession is the signed-in user as kept in the client state.
// Token aliases AccessToken for readers that only know the short name.
type UserSession struct {
	Phone        string          `json:"phone"`
	AccessToken  string          `json:"access_token"`
	RefreshToken *string         `json:"refresh_token"`
	ExpiresIn    *int            `json:"expires_in"`
	Token        string          `json:"token"`
	CreatedAt    string          `json:"createdAt"`
	Raw          json.RawMessage `json:"raw,omitempty"`
}

// NewUserSession builds the session stored after a successful login. When
// resp was decoded from the wire its payload is kept verbatim, and the
// optional fields are null only if the backend omitted them or sent null.
func NewUserSession(phone string, resp AuthResponse, now time.Time) *UserSession {
	u := &UserSession{
		Phone:       phone,
		AccessToken: resp.AccessToken,
		Token:       resp.AccessToken,
		CreatedAt:   now.UTC().Format(time.RFC3339),
	}
	if len(resp.Raw) > 0 {
		var optional struct {
			RefreshToken *string `json:"refresh_token"`
			ExpiresIn    *int    `json:"expires_in"`
		}
		if err := json.Unmarshal(resp.Raw, &optional); err == nil {
			u.RefreshToken = optional.RefreshToken
			u.ExpiresIn = optional.ExpiresIn
			u.Raw = resp.Raw
			return u
		}
	}
	if resp.RefreshToken != "" {
		rt := resp.RefreshToken
		u.RefreshToken = &rt
	}
	if resp.ExpiresIn != 0 {
		exp := resp.ExpiresIn
		u.ExpiresIn = &exp
	}
	if raw, err := json.Marshal(resp); err == nil {
		u.Raw = raw
	}
	return u
}

// BearerToken returns the token to send on authenticated calls, or "".
func (u *UserSession) BearerToken() string {
	if u == nil {
		return ""
	}
	if u.Token != "" {
		return u.Token
	}
	return u.AccessToken
}

// StringPtr returns nil for the empty string.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// StringValue dereferences p, treating nil as "".
func StringValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
