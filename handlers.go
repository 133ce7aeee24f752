package main

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"whatbeatsrock/internal/backend"
	"whatbeatsrock/internal/game"
	"whatbeatsrock/internal/types"
)

// authPageHandler renders the sign-in screen, or sends signed-in browsers to the game.
func (app *App) authPageHandler(c *gin.Context) {
	sessionID := app.getOrCreateSession(c)
	state := app.getClientState(sessionID)
	if state.CurrentUser != nil {
		c.Redirect(http.StatusSeeOther, RouteHome)
		return
	}
	app.renderAuth(c, "", "")
}

// loginHandler validates the phone number locally and exchanges it for tokens.
func (app *App) loginHandler(c *gin.Context) {
	ctx := c.Request.Context()
	sessionID := app.getOrCreateSession(c)
	state := app.getClientState(sessionID)
	phone := strings.TrimSpace(c.PostForm("phone"))

	if !game.ValidatePhone(phone) {
		app.renderAuth(c, phone, ErrorInvalidPhone)
		return
	}

	resp, err := app.Backend.Login(ctx, phone)
	if err != nil {
		logWarn("Login failed for session %s [%s]: %v", sessionID, requestID(c), err)
		app.renderAuth(c, phone, authErrorMessage(err))
		return
	}

	state.CurrentUser = types.NewUserSession(phone, *resp, app.now())
	state.PlaySessionID = ""
	state.resetScreen()
	app.saveClientState(sessionID, state)
	logInfo("Signed in session %s", sessionID)

	redirect(c, RouteHome)
}

// homeHandler bootstraps the game screen from the backend's current session.
func (app *App) homeHandler(c *gin.Context) {
	ctx := c.Request.Context()
	sessionID := app.getOrCreateSession(c)
	state := app.getClientState(sessionID)

	if state.CurrentUser == nil {
		c.Redirect(http.StatusSeeOther, RouteAuth)
		return
	}
	token := state.CurrentUser.BearerToken()
	if token == "" {
		app.clearCurrentUser(sessionID, state)
		c.Redirect(http.StatusSeeOther, RouteAuth)
		return
	}

	state.resetScreen()
	state.PlaySessionID = ""

	current, err := app.Backend.CurrentSession(ctx, token)
	switch {
	case errors.Is(err, backend.ErrUnauthorized):
		app.clearCurrentUser(sessionID, state)
		c.Redirect(http.StatusSeeOther, RouteAuth)
		return
	case err != nil:
		logWarn("Current session unavailable for %s [%s], starting fresh: %v", sessionID, requestID(c), err)
	default:
		state.PlaySessionID = types.StringValue(current.SessionID)
		if len(current.Chain) > 0 {
			state.Chain = game.FromServer(current.Chain)
		}
		state.BestScore = game.UpdateBest(state.BestScore, current.BestScore)
	}
	app.saveClientState(sessionID, state)

	c.HTML(http.StatusOK, "index.html", gin.H{
		"title": "What Beats " + state.Chain.Current() + "?",
		"user":  state.CurrentUser,
		"game":  app.gameView(state),
	})
}

// playHandler submits the next answer of the chain. The browser's
// submission guard is held from the state read until the state is saved.
func (app *App) playHandler(c *gin.Context) {
	ctx := c.Request.Context()
	sessionID := app.getOrCreateSession(c)
	answer := game.Normalize(c.PostForm("answer"))

	if !app.beginSubmission(sessionID) {
		state := app.getClientState(sessionID)
		if state.CurrentUser.BearerToken() == "" {
			redirect(c, RouteAuth)
			return
		}
		view := app.gameView(state)
		view.Answer = answer
		view.Error = ErrorSubmitInFlight
		app.renderGame(c, view)
		return
	}
	defer app.endSubmission(sessionID)

	state := app.getClientState(sessionID)
	token := state.CurrentUser.BearerToken()
	if token == "" {
		if state.CurrentUser != nil {
			app.clearCurrentUser(sessionID, state)
		}
		redirect(c, RouteAuth)
		return
	}

	view := app.gameView(state)
	if answer == "" {
		app.renderGame(c, view)
		return
	}
	view.Answer = answer

	if state.Chain.IsDuplicate(answer) {
		view.Duplicate = true
		app.renderGame(c, view)
		return
	}

	resp, err := app.Backend.Play(ctx, token, types.PlayRequest{
		Move:      answer,
		Chain:     state.Chain,
		SessionID: types.StringPtr(state.PlaySessionID),
	})
	if err != nil {
		if errors.Is(err, backend.ErrUnauthorized) {
			app.clearCurrentUser(sessionID, state)
			redirect(c, RouteAuth)
			return
		}
		logWarn("Play failed for session %s [%s]: %v", sessionID, requestID(c), err)
		view.Error = playErrorMessage(err)
		app.renderGame(c, view)
		return
	}

	if id := types.StringValue(resp.SessionID); id != "" {
		state.PlaySessionID = id
	}

	if !resp.Accepted {
		app.saveClientState(sessionID, state)
		logInfo("Answer %q rejected for session %s with score %d", answer, sessionID, resp.Score)
		q := url.Values{}
		q.Set("score", strconv.Itoa(resp.Score))
		q.Set("quote", resp.Quote)
		redirect(c, RouteGameOver+"?"+q.Encode())
		return
	}

	state.Chain = state.Chain.Append(answer)
	state.Quote = resp.Quote
	state.SubmittedUntil = app.now().Add(SubmittedIndicatorTTL)
	app.saveClientState(sessionID, state)

	app.renderGame(c, app.gameView(state))
}

// duplicateCheckHandler renders the live duplicate warning for the answer being typed.
func (app *App) duplicateCheckHandler(c *gin.Context) {
	sessionID := app.getOrCreateSession(c)
	state := app.getClientState(sessionID)
	answer := c.Query("answer")

	c.HTML(http.StatusOK, "duplicate-warning", gin.H{
		"game": GameView{
			Answer:    answer,
			Duplicate: state.Chain.IsDuplicate(answer),
		},
	})
}

// gameOverHandler settles the play session and renders the final score.
func (app *App) gameOverHandler(c *gin.Context) {
	ctx := c.Request.Context()
	sessionID := app.getOrCreateSession(c)
	state := app.getClientState(sessionID)

	finalScore := game.ParseScore(c.Query("score"))
	quote := c.Query("quote")
	if quote == "" {
		quote = DefaultGameOverQuote
	}
	previousBest := state.BestScore
	candidate := finalScore

	if state.PlaySessionID != "" {
		if token := state.CurrentUser.BearerToken(); token != "" {
			end, err := app.Backend.EndSession(ctx, token, state.PlaySessionID)
			switch {
			case errors.Is(err, backend.ErrUnauthorized):
				app.clearCurrentUser(sessionID, state)
				c.Redirect(http.StatusSeeOther, RouteAuth)
				return
			case err != nil:
				logWarn("Ending play session %s failed [%s], using query score: %v", state.PlaySessionID, requestID(c), err)
			default:
				logInfo("Ended play session %s with final score %d", state.PlaySessionID, end.FinalScore)
				state.PlaySessionID = ""
				finalScore = end.FinalScore
				candidate = max(end.FinalScore, end.BestScore)
			}
		}
	}

	state.BestScore = game.UpdateBest(state.BestScore, candidate)
	state.resetScreen()
	app.saveClientState(sessionID, state)

	c.HTML(http.StatusOK, "game-over.html", gin.H{
		"title": "Game Over",
		"result": GameOverView{
			FinalScore:    finalScore,
			Quote:         quote,
			BestScore:     previousBest,
			NewBest:       finalScore > previousBest,
			ShowBest:      previousBest > 0 && finalScore != previousBest,
			Frames:        game.ScoreFrames(finalScore, game.ScoreAnimationSteps),
			FrameInterval: int(game.ScoreFrameInterval / time.Millisecond),
		},
	})
}

// logoutHandler forgets the signed-in user but keeps the best score.
func (app *App) logoutHandler(c *gin.Context) {
	sessionID := app.getOrCreateSession(c)
	state := app.getClientState(sessionID)
	app.clearCurrentUser(sessionID, state)
	redirect(c, RouteAuth)
}

// healthHandler reports liveness and a few runtime facts.
func (app *App) healthHandler(c *gin.Context) {
	app.StateMutex.RLock()
	sessions := len(app.States)
	app.StateMutex.RUnlock()

	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"env":       envName(app.IsProduction),
		"backend":   app.Backend.Name(),
		"sessions":  sessions,
		"uptime":    formatUptime(time.Since(app.StartTime)),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// gameView builds the game screen model from a client state.
func (app *App) gameView(state *ClientState) GameView {
	return GameView{
		Chain:      state.Chain,
		Current:    state.Chain.Current(),
		ChainScore: state.Chain.Score(),
		Quote:      state.Quote,
		Submitted:  app.now().Before(state.SubmittedUntil),
	}
}

// renderGame renders the game content fragment for htmx, or the full page otherwise.
func (app *App) renderGame(c *gin.Context, view GameView) {
	if view.Duplicate {
		view.Error = ErrorDuplicateAnswer
	}
	if isHTMX(c) {
		c.HTML(http.StatusOK, "game-content", gin.H{"game": view})
		return
	}
	c.HTML(http.StatusOK, "index.html", gin.H{
		"title": "What Beats " + view.Current + "?",
		"game":  view,
	})
}

func (app *App) renderAuth(c *gin.Context, phone, errMsg string) {
	c.HTML(http.StatusOK, "auth.html", gin.H{
		"title": "Sign in",
		"phone": phone,
		"error": errMsg,
	})
}

func authErrorMessage(err error) string {
	switch backend.Classify(err) {
	case backend.ErrUnauthorized:
		return ErrorAuthUnauthorized
	case backend.ErrTimeout:
		return ErrorAuthTimeout
	case backend.ErrNetwork:
		return ErrorNetwork
	default:
		return ErrorAuthServer
	}
}

func playErrorMessage(err error) string {
	switch backend.Classify(err) {
	case backend.ErrTimeout:
		return ErrorPlayTimeout
	case backend.ErrNetwork:
		return ErrorNetwork
	default:
		return ErrorPlayServer
	}
}
