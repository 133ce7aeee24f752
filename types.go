package main

import (
	"sync"
	"time"

	"whatbeatsrock/internal/backend"
	"whatbeatsrock/internal/game"
	"whatbeatsrock/internal/types"
)

// App holds configuration and the per-browser state of the front end.
type App struct {
	Backend backend.Backend

	IsProduction    bool
	PersistSessions bool
	CookieMaxAge    time.Duration
	SessionTimeout  time.Duration
	StaticCacheAge  time.Duration
	RateLimitRPS    int
	RateLimitBurst  int
	StartTime       time.Time

	States     map[string]*ClientState // keyed by browser cookie
	StateMutex sync.RWMutex

	InFlight sync.Map // browser cookie -> struct{} while a play request runs

	LimiterMap   map[string]*clientLimiter
	LimiterMutex sync.Mutex

	Now func() time.Time
}

// ClientState is what a browser would keep in local storage, plus the
// state of the game screen it is looking at.
type ClientState struct {
	CurrentUser    *types.UserSession `json:"currentUser,omitempty"`
	BestScore      int                `json:"bestScore,string"`
	PlaySessionID  string             `json:"play_session_id,omitempty"`
	Chain          game.Chain         `json:"chain"`
	Quote          string             `json:"quote,omitempty"`
	SubmittedUntil time.Time          `json:"submittedUntil"`
	LastAccessTime time.Time          `json:"lastAccessTime"`
}

// newClientState returns the state of a browser that has never signed in.
func newClientState() *ClientState {
	return &ClientState{Chain: game.NewChain()}
}

// clone returns a copy that can be modified without holding StateMutex.
func (s *ClientState) clone() *ClientState {
	c := *s
	c.Chain = s.Chain.Clone()
	if s.CurrentUser != nil {
		u := *s.CurrentUser
		c.CurrentUser = &u
	}
	return &c
}

// signOut drops everything tied to the user but keeps the best score.
func (s *ClientState) signOut() {
	s.CurrentUser = nil
	s.PlaySessionID = ""
	s.resetScreen()
}

// resetScreen puts the game screen back to a fresh chain.
func (s *ClientState) resetScreen() {
	s.Chain = game.NewChain()
	s.Quote = ""
	s.SubmittedUntil = time.Time{}
}

// GameView is what the game screen templates render.
type GameView struct {
	Chain      game.Chain
	Current    string
	ChainScore int
	Quote      string
	Answer     string
	Duplicate  bool
	Submitted  bool
	Error      string
}

// GameOverView is what the game-over template renders.
type GameOverView struct {
	FinalScore    int
	Quote         string
	BestScore     int // best before this game
	NewBest       bool
	ShowBest      bool
	Frames        []int
	FrameInterval int // milliseconds
}
