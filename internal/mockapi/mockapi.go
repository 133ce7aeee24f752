// Package mockapi serves a backend.Backend over the scoring service's HTTP
// contract so the front end can run against it in live mode.
package mockapi

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"whatbeatsrock/internal/backend"
	"whatbeatsrock/internal/types"
)

type Handler struct {
	backend backend.Backend
}

func NewHandler(b backend.Backend) *Handler {
	return &Handler{backend: b}
}

// Register installs the scoring routes on r.
func (h *Handler) Register(r gin.IRouter) {
	r.POST(backend.PathLogin, h.login)
	r.GET(backend.PathCurrentSession, h.currentSession)
	r.POST(backend.PathPlay, h.play)
	r.POST("/api/sessions/:id/end", h.endSession)
}

func (h *Handler) login(c *gin.Context) {
	var req types.AuthRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Username) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "username is required"})
		return
	}
	resp, err := h.backend.Login(c.Request.Context(), req.Username)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) currentSession(c *gin.Context) {
	resp, err := h.backend.CurrentSession(c.Request.Context(), bearerToken(c.Request))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) play(c *gin.Context) {
	var req types.PlayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request body"})
		return
	}
	resp, err := h.backend.Play(c.Request.Context(), bearerToken(c.Request), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) endSession(c *gin.Context) {
	resp, err := h.backend.EndSession(c.Request.Context(), bearerToken(c.Request), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func bearerToken(r *http.Request) string {
	a := r.Header.Get("Authorization")
	if len(a) > 7 && strings.EqualFold(a[:7], "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	return ""
}

func writeError(c *gin.Context, err error) {
	var se *backend.StatusError
	if errors.As(err, &se) {
		c.JSON(se.Status, gin.H{"detail": se.Body})
		return
	}
	log.Printf("[WARN] mockapi %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
}
