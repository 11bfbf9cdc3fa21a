package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"multidle/internal/game"
	"multidle/internal/key"
	"multidle/internal/session"
	"multidle/internal/streak"
	"multidle/internal/words"
)

func requestID(c *gin.Context) string {
	id, _ := c.Request.Context().Value(requestIDKey).(string)
	return id
}

// sessionFor resolves the cookie's session or writes a 503.
func (app *App) sessionFor(c *gin.Context) (*session.Service, bool) {
	sessionID := app.getOrCreateSession(c)
	svc, err := app.getSession(c.Request.Context(), sessionID)
	if err != nil {
		logWarn("[request_id=%v] Failed to load session %s: %v", requestID(c), sessionID, err)
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": ErrorUnavailable})
		return nil, false
	}
	return svc, true
}

func (app *App) respondState(c *gin.Context, svc *session.Service) {
	mode, cur, err := svc.Current(c.Request.Context())
	if err != nil {
		logWarn("Failed to read state: %v", err)
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": ErrorUnavailable})
		return
	}
	c.JSON(http.StatusOK, newStateResponse(mode, cur))
}

// healthzHandler reports liveness and a few counters.
func (app *App) healthzHandler(c *gin.Context) {
	app.SessionMutex.RLock()
	sessions := len(app.Sessions)
	app.SessionMutex.RUnlock()

	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"env":          map[bool]string{true: "production", false: "development"}[app.IsProduction],
		"words_loaded": app.WordCount,
		"sessions":     sessions,
		"uptime":       game.FormatDuration(app.now().Sub(app.StartTime)),
		"timestamp":    app.now().UTC().Format(time.RFC3339),
	})
}

// stateHandler returns the active mode's game.
func (app *App) stateHandler(c *gin.Context) {
	svc, ok := app.sessionFor(c)
	if !ok {
		return
	}
	app.respondState(c, svc)
}

// keyHandler applies one keystroke. Names follow keyboard events: a letter,
// "Enter" or "Backspace".
func (app *App) keyHandler(c *gin.Context) {
	var req keyRequest
	if err := c.ShouldBind(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": ErrorUnknownKey})
		return
	}
	k, known := key.FromKeyCode(req.Key)
	if !known {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": ErrorUnknownKey})
		return
	}

	svc, ok := app.sessionFor(c)
	if !ok {
		return
	}
	mode, cur, err := svc.Press(c.Request.Context(), k)
	if err != nil {
		logWarn("[request_id=%v] Key press failed: %v", requestID(c), err)
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": ErrorUnavailable})
		return
	}
	c.JSON(http.StatusOK, newStateResponse(mode, cur))
}

// clearInvalidHandler wipes rejected rows without waiting for the timer.
func (app *App) clearInvalidHandler(c *gin.Context) {
	svc, ok := app.sessionFor(c)
	if !ok {
		return
	}
	mode, cur, err := svc.ClearInvalid(c.Request.Context())
	if err != nil {
		logWarn("Clear invalid failed: %v", err)
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": ErrorUnavailable})
		return
	}
	c.JSON(http.StatusOK, newStateResponse(mode, cur))
}

// modeHandler switches the active game.
func (app *App) modeHandler(c *gin.Context) {
	var req modeRequest
	if err := c.ShouldBind(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": ErrorUnknownMode})
		return
	}
	mode, err := game.ParseMode(req.Mode)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": ErrorUnknownMode})
		return
	}

	svc, ok := app.sessionFor(c)
	if !ok {
		return
	}
	if err := svc.SetMode(c.Request.Context(), mode); err != nil {
		status := http.StatusServiceUnavailable
		msg := ErrorUnavailable
		if errors.Is(err, game.ErrUnknownMode) {
			status, msg = http.StatusBadRequest, ErrorUnknownMode
		}
		c.AbortWithStatusJSON(status, gin.H{"error": msg})
		return
	}
	app.respondState(c, svc)
}

// resultsHandler returns today's result for every mode.
func (app *App) resultsHandler(c *gin.Context) {
	svc, ok := app.sessionFor(c)
	if !ok {
		return
	}
	results, err := svc.Results(c.Request.Context())
	if err != nil {
		logWarn("Results failed: %v", err)
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": ErrorUnavailable})
		return
	}
	c.JSON(http.StatusOK, results)
}

// streakHandler returns the record, the merged stats and the modes not yet
// finished today.
func (app *App) streakHandler(c *gin.Context) {
	svc, ok := app.sessionFor(c)
	if !ok {
		return
	}
	st := svc.Streak()
	c.JSON(http.StatusOK, streakResponse{
		Streak:         st,
		Overall:        streak.OverallStats(st),
		ModesRemaining: streak.ModesRemaining(st, words.DayNumber(app.now())),
	})
}
