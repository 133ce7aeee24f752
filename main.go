package main

import (
	"context"
	"html/template"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	ginGzip "github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	cachecontrol "go.eigsys.de/gin-cachecontrol/v2"

	"whatbeatsrock/internal/backend"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		logFatal("Failed to load configuration: %v", err)
	}
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	scoring, err := backend.New(backend.Settings{
		Mode:         cfg.ScoringBackend,
		BaseURL:      cfg.APIBase,
		Timeout:      cfg.RequestTimeout,
		MockSecret:   cfg.MockJWTSecret,
		MockTokenTTL: cfg.MockTokenTTL,
	})
	if err != nil {
		logFatal("Failed to configure scoring backend: %v", err)
	}

	app := newApp(cfg, scoring)
	logInfo("Starting What Beats Rock in %s mode with the %s scoring backend", envName(app.IsProduction), scoring.Name())

	router := app.newRouter()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go app.runCleanup(ctx, cfg.CleanupInterval)

	startServer(ctx, router, cfg.Port)
}

// newApp builds the application state from configuration.
func newApp(cfg *Config, scoring backend.Backend) *App {
	return &App{
		Backend:         scoring,
		IsProduction:    cfg.IsProduction(),
		PersistSessions: cfg.PersistSessions,
		CookieMaxAge:    cfg.CookieMaxAge,
		SessionTimeout:  cfg.SessionTimeout,
		StaticCacheAge:  cfg.StaticCacheAge,
		RateLimitRPS:    cfg.RateLimitRPS,
		RateLimitBurst:  cfg.RateLimitBurst,
		StartTime:       time.Now(),
		States:          make(map[string]*ClientState),
		LimiterMap:      make(map[string]*clientLimiter),
	}
}

// newRouter wires middleware, templates, static assets and routes.
func (app *App) newRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), requestIDMiddleware())

	router.Use(ginGzip.Gzip(ginGzip.DefaultCompression,
		ginGzip.WithExcludedExtensions([]string{".svg", ".ico", ".png", ".jpg", ".jpeg", ".gif"})))

	if err := router.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logWarn("Failed to set trusted proxies: %v", err)
	}

	router.Use(func(c *gin.Context) {
		app.applyCacheHeaders(c)
	})

	router.SetFuncMap(template.FuncMap{
		"add": func(a, b int) int { return a + b },
	})

	if app.IsProduction && dirExists("dist") {
		logInfo("Serving assets from dist/ directory")
		router.LoadHTMLGlob("dist/templates/*.html")
		router.Static("/static", "./dist/static")
	} else {
		logInfo("Serving development assets from source directories")
		router.LoadHTMLGlob("templates/*.html")
		router.Static("/static", "./static")
	}

	limited := app.rateLimitMiddleware()

	router.GET(RouteHome, app.homeHandler)
	router.GET(RouteAuth, app.authPageHandler)
	router.POST(RouteAuth, limited, app.loginHandler)
	router.POST(RoutePlay, limited, app.playHandler)
	router.GET(RouteDuplicateCheck, app.duplicateCheckHandler)
	router.GET(RouteGameOver, app.gameOverHandler)
	router.POST(RouteLogout, app.logoutHandler)
	router.GET(RouteHealthz, app.healthHandler)

	return router
}

func startServer(ctx context.Context, router http.Handler, port string) {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	go func() {
		<-ctx.Done()
		logInfo("Shutdown signal received, shutting down server gracefully...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logWarn("HTTP server Shutdown: %v", err)
		}
		close(idleConnsClosed)
	}()

	logInfo("Server starting on http://localhost:%s", port)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		logFatal("Server failed to start: %v", err)
	}
	<-idleConnsClosed
	logInfo("Server shutdown complete")
}

// runCleanup periodically drops idle client states, limiters and stale session files.
func (app *App) runCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			app.cleanup()
		}
	}
}

func (app *App) cleanup() {
	states := app.pruneIdleStates(app.SessionTimeout)
	limiters := app.pruneLimiters(app.SessionTimeout)
	logInfo("Pruned %d idle client state%s and %d rate limiter%s", states, plural(states), limiters, plural(limiters))
	if app.PersistSessions {
		if err := cleanupOldSessions(app.CookieMaxAge); err != nil {
			logWarn("Session file cleanup failed: %v", err)
		}
	}
}

func (app *App) applyCacheHeaders(c *gin.Context) {
	if app.IsProduction && strings.HasPrefix(c.Request.URL.Path, "/static/") {
		cachecontrol.New(cachecontrol.Config{
			Public: true,
			MaxAge: cachecontrol.Duration(app.StaticCacheAge),
		})(c)
		c.Header("Vary", "Accept-Encoding")
		return
	}
	cachecontrol.New(cachecontrol.Config{
		NoStore:        true,
		NoCache:        true,
		MustRevalidate: true,
	})(c)
}
