package main

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"multidle/internal/board"
	"multidle/internal/game"
	"multidle/internal/session"
	"multidle/internal/store"
	"multidle/internal/streak"
	"multidle/internal/words"
)

type contextKey string

// App holds the server's shared dependencies and per-player sessions.
type App struct {
	IsProduction   bool
	StartTime      time.Time
	Store          store.KV
	Words          words.Source
	Dict           board.Dictionary
	WordCount      int
	Clock          func() time.Time
	ClearDelay     time.Duration
	SessionTimeout time.Duration
	CookieMaxAge   time.Duration
	RateLimitRPS   int
	RateLimitBurst int

	Sessions     map[string]*playerSession
	SessionMutex sync.RWMutex

	LimiterMap   map[string]*rate.Limiter
	LimiterMutex sync.Mutex
}

// playerSession is one cookie's live service.
type playerSession struct {
	svc        *session.Service
	lastAccess time.Time
}

// keyRequest is the body of POST /key.
type keyRequest struct {
	Key string `json:"key" form:"key"`
}

// modeRequest is the body of POST /mode.
type modeRequest struct {
	Mode string `json:"mode" form:"mode"`
}

// stateResponse is returned by GET /state and the mutating routes.
type stateResponse struct {
	Mode              game.Mode  `json:"mode"`
	PuzzleNumber      int        `json:"puzzleNumber"`
	State             game.State `json:"state"`
	HasInvalidEntries bool       `json:"hasInvalidEntries"`
	SolvedCount       int        `json:"solvedCount"`
}

// streakResponse is returned by GET /streak.
type streakResponse struct {
	Streak         streak.Streak    `json:"streak"`
	Overall        streak.GameStats `json:"overall"`
	ModesRemaining []game.Mode      `json:"modesRemaining"`
}

func newStateResponse(mode game.Mode, s game.State) stateResponse {
	return stateResponse{
		Mode:              mode,
		PuzzleNumber:      s.PuzzleNumber,
		State:             s,
		HasInvalidEntries: game.HasInvalidEntries(s),
		SolvedCount:       game.SolvedCount(s),
	}
}
