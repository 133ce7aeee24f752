package main

import (
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// getOrCreateSession retrieves the browser ID from the cookie or creates a new one.
func (app *App) getOrCreateSession(c *gin.Context) string {
	sessionID, err := c.Cookie(SessionCookieName)
	if err != nil || uuid.Validate(sessionID) != nil {
		sessionID = uuid.NewString()
		c.SetSameSite(http.SameSiteStrictMode)
		secure := app.IsProduction
		c.SetCookie(SessionCookieName, sessionID, int(app.CookieMaxAge.Seconds()), "/", "", secure, true)
		logInfo("Created new session: %s", sessionID)
	}
	return sessionID
}

// getClientState returns a copy of the stored state for a browser. A browser
// the server has never seen, or whose stored state cannot be read, starts
// from an empty state.
func (app *App) getClientState(sessionID string) *ClientState {
	app.StateMutex.Lock()
	defer app.StateMutex.Unlock()

	if state, ok := app.States[sessionID]; ok {
		state.LastAccessTime = app.now()
		return state.clone()
	}

	state := newClientState()
	if app.PersistSessions {
		loaded, err := loadClientStateFromFile(sessionID, app.CookieMaxAge)
		switch {
		case err == nil:
			state = loaded
			logInfo("Restored client state for session %s from disk", sessionID)
		case !errors.Is(err, os.ErrNotExist):
			logWarn("Failed to load client state for session %s: %v", sessionID, err)
		}
	}
	state.LastAccessTime = app.now()
	app.States[sessionID] = state
	return state.clone()
}

// saveClientState stores the state for a browser and writes it through to disk.
func (app *App) saveClientState(sessionID string, state *ClientState) {
	state.LastAccessTime = app.now()
	stored := state.clone()

	app.StateMutex.Lock()
	app.States[sessionID] = stored
	app.StateMutex.Unlock()

	if app.PersistSessions {
		if err := saveClientStateToFile(sessionID, stored); err != nil {
			logWarn("Failed to persist client state for session %s: %v", sessionID, err)
		}
	}
}

// clearCurrentUser signs the browser out and persists the result.
func (app *App) clearCurrentUser(sessionID string, state *ClientState) {
	state.signOut()
	app.saveClientState(sessionID, state)
	logInfo("Cleared current user for session: %s", sessionID)
}

// beginSubmission marks a play request as running for the browser. It
// returns false when one is already running.
func (app *App) beginSubmission(sessionID string) bool {
	_, running := app.InFlight.LoadOrStore(sessionID, struct{}{})
	return !running
}

// endSubmission clears the mark set by beginSubmission.
func (app *App) endSubmission(sessionID string) {
	app.InFlight.Delete(sessionID)
}

// pruneIdleStates drops in-memory states not touched within maxIdle.
func (app *App) pruneIdleStates(maxIdle time.Duration) int {
	cutoff := app.now().Add(-maxIdle)
	app.StateMutex.Lock()
	defer app.StateMutex.Unlock()

	removed := 0
	for id, state := range app.States {
		if state.LastAccessTime.Before(cutoff) {
			delete(app.States, id)
			removed++
		}
	}
	return removed
}

func (app *App) now() time.Time {
	if app.Now != nil {
		return app.Now()
	}
	return time.Now()
}
