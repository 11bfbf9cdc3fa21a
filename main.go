package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ginGzip "github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"

	"multidle/internal/session"
	"multidle/internal/store"
	"multidle/internal/words"
)

func main() {
	_ = godotenv.Load()

	isProduction := os.Getenv("GIN_MODE") == "release" || os.Getenv("ENV") == "production"
	setupLogging(os.Getenv("LOG_LEVEL"), isProduction)
	logInfo("Starting multidle in %s mode", map[bool]string{true: "production", false: "development"}[isProduction])

	source, dict, err := loadWordSource(os.Getenv("WORDS_FILE"), os.Getenv("SCHEDULE_FILE"), os.Getenv("WORD_SALT"))
	if err != nil {
		logFatal("Failed to load words: %v", err)
	}
	logInfo("Loaded %d words from dictionary", dict.Len())

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	kv, err := openStore(ctx, storeConfigFromEnv())
	if err != nil {
		logFatal("Failed to open store: %v", err)
	}

	app := newApp(isProduction, kv, source, dict)
	app.startSessionCleanup(ctx, defaultCleanupEvery)

	startServer(app.setupRouter())
	stop()
	app.closeSessions()
	if err := kv.Close(); err != nil {
		logWarn("Failed to close store: %v", err)
	}
}

// newApp builds an App from the environment and its collaborators.
func newApp(isProduction bool, kv store.KV, source words.Source, dict words.Set) *App {
	return &App{
		IsProduction:   isProduction,
		StartTime:      time.Now(),
		Store:          kv,
		Words:          source,
		Dict:           dict,
		WordCount:      dict.Len(),
		ClearDelay:     getEnvDuration("INVALID_CLEAR_DELAY", session.DefaultClearDelay),
		SessionTimeout: getEnvDuration("SESSION_TIMEOUT", defaultSessionTimeout),
		CookieMaxAge:   getEnvDuration("COOKIE_MAX_AGE", defaultCookieMaxAge),
		RateLimitRPS:   getEnvInt("RATE_LIMIT_RPS", defaultRateLimitRPS),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", defaultRateLimitBurst),
		Sessions:       make(map[string]*playerSession),
		LimiterMap:     make(map[string]*rate.Limiter),
	}
}

// setupRouter wires middleware and routes.
func (app *App) setupRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), requestIDMiddleware())
	router.Use(ginGzip.Gzip(ginGzip.DefaultCompression,
		ginGzip.WithExcludedPaths([]string{RouteEvents})))

	if err := router.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logWarn("Failed to set trusted proxies: %v", err)
	}

	router.GET(RouteHealthz, app.healthzHandler)

	api := router.Group("/", noStoreMiddleware())
	api.GET(RouteState, app.stateHandler)
	api.POST(RouteKey, app.rateLimitMiddleware(), app.keyHandler)
	api.POST(RouteClearInvalid, app.rateLimitMiddleware(), app.clearInvalidHandler)
	api.POST(RouteMode, app.rateLimitMiddleware(), app.modeHandler)
	api.GET(RouteResults, app.resultsHandler)
	api.GET(RouteStreak, app.streakHandler)
	api.GET(RouteEvents, app.eventsHandler)
	return router
}

// closeSessions cancels every pending timer before the store goes away.
func (app *App) closeSessions() {
	app.SessionMutex.Lock()
	defer app.SessionMutex.Unlock()
	for id, ps := range app.Sessions {
		ps.svc.Close()
		delete(app.Sessions, id)
	}
}

func startServer(router *gin.Engine) {
	port := getEnv("PORT", defaultPort)
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
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, syscall.SIGINT, syscall.SIGTERM)
		<-sigint
		logInfo("Shutdown signal received, shutting down server gracefully...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
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
