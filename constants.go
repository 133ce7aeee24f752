package main

import "time"

// Session configuration constants
const (
	SessionCookieName = "wbr_client"
	SessionDir        = "data/sessions"
)

// Route constants
const (
	RouteHome           = "/"
	RouteAuth           = "/auth"
	RoutePlay           = "/play"
	RouteGameOver       = "/game-over"
	RouteDuplicateCheck = "/duplicate-check"
	RouteLogout         = "/logout"
	RouteHealthz        = "/healthz"
)

// Auth screen messages
const (
	ErrorInvalidPhone     = "Please enter a valid phone number"
	ErrorAuthUnauthorized = "Unauthorized. Please check the phone number or contact support."
	ErrorAuthServer       = "Server error during authentication. Try again later."
	ErrorAuthTimeout      = "Request timed out. Check your network and try again."
)

// Game screen messages
const (
	ErrorDuplicateAnswer = "You already used that word!"
	ErrorPlayServer      = "Server error. Please try again."
	ErrorPlayTimeout     = "Request timed out. Please try again."
	ErrorSubmitInFlight  = "A submission is already in progress."
	ErrorNetwork         = "Network error: request failed. Check your connection and try again."
	MessageSubmitted     = "Answer submitted! Chain continues..."
	DefaultGameOverQuote = "Better luck next time!"
)

// SubmittedIndicatorTTL is how long the "submitted" banner stays visible.
const SubmittedIndicatorTTL = 2 * time.Second

// Context key constants
type contextKey string

const (
	requestIDKey contextKey = "request_id"
)
