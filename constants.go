package main

import "time"

// Session configuration constants
const (
	SessionCookieName = "session_id"
)

// Route constants
const (
	RouteHealthz      = "/healthz"
	RouteState        = "/state"
	RouteKey          = "/key"
	RouteClearInvalid = "/clear-invalid"
	RouteMode         = "/mode"
	RouteResults      = "/results"
	RouteStreak       = "/streak"
	RouteEvents       = "/events"
)

// Error message constants
const (
	ErrorUnknownKey  = "Unknown key."
	ErrorUnknownMode = "Unknown mode. Use two, three or four."
	ErrorUnavailable = "Game is unavailable, try again later."
)

// Context key constants
const (
	requestIDKey contextKey = "request_id"
)

// Configuration defaults
const (
	defaultPort           = "8080"
	defaultSessionTimeout = 2 * time.Hour
	defaultCookieMaxAge   = 400 * 24 * time.Hour
	defaultCleanupEvery   = 10 * time.Minute
	defaultRateLimitRPS   = 10
	defaultRateLimitBurst = 20
)
