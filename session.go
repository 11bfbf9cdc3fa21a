package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"multidle/internal/session"
)

// isValidSessionID accepts only canonical UUIDs so IDs are safe to use as
// storage keys.
func isValidSessionID(id string) bool {
	parsed, err := uuid.Parse(id)
	return err == nil && parsed.String() == id
}

// getOrCreateSession retrieves the session ID from the cookie or creates a new one.
func (app *App) getOrCreateSession(c *gin.Context) string {
	sessionID, err := c.Cookie(SessionCookieName)
	if err != nil || !isValidSessionID(sessionID) {
		sessionID = uuid.NewString()
		c.SetSameSite(http.SameSiteStrictMode)
		secure := app.IsProduction
		c.SetCookie(SessionCookieName, sessionID, int(app.CookieMaxAge.Seconds()), "/", "", secure, true)
		logInfo("Created new session: %s", sessionID)
	}
	return sessionID
}

func (app *App) now() time.Time {
	if app.Clock != nil {
		return app.Clock()
	}
	return time.Now()
}

// getSession returns the live service for sessionID, loading it from the
// store on first use.
func (app *App) getSession(ctx context.Context, sessionID string) (*session.Service, error) {
	app.SessionMutex.Lock()
	defer app.SessionMutex.Unlock()
	if ps, ok := app.Sessions[sessionID]; ok {
		ps.lastAccess = app.now()
		return ps.svc, nil
	}

	svc, err := session.New(ctx, session.Options{
		Namespace:  sessionID,
		Store:      app.Store,
		Words:      app.Words,
		Dict:       app.Dict,
		Clock:      app.Clock,
		ClearDelay: app.ClearDelay,
	})
	if err != nil {
		return nil, err
	}
	app.Sessions[sessionID] = &playerSession{svc: svc, lastAccess: app.now()}
	logInfo("Loaded session: %s", sessionID)
	return svc, nil
}

// cleanupIdleSessions drops sessions not used within SessionTimeout. Their
// snapshots stay in the store, so a returning cookie picks up where it left.
func (app *App) cleanupIdleSessions() int {
	now := app.now()
	app.SessionMutex.Lock()
	defer app.SessionMutex.Unlock()
	removed := 0
	for id, ps := range app.Sessions {
		if ps.lastAccess.IsZero() || now.Sub(ps.lastAccess) > app.SessionTimeout {
			ps.svc.Close()
			delete(app.Sessions, id)
			removed++
		}
	}
	return removed
}

// startSessionCleanup runs cleanupIdleSessions until ctx is done.
func (app *App) startSessionCleanup(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := app.cleanupIdleSessions(); n > 0 {
					logInfo("Dropped %d idle sessions", n)
				}
				app.cleanupSnapshots()
			}
		}
	}()
}
