package main

import "time"

// Device configuration constants
const (
	DeviceCookieName = "device_id"
)

// Route constants
const (
	RouteState  = "/api/state"
	RouteGuess  = "/api/guess"
	RouteShare  = "/api/share"
	RouteStats  = "/api/stats"
	RouteWords  = "/api/words"
	RouteHealth = "/healthz"
)

// Error codes returned in {"error": ...} bodies
const (
	ErrorTooShort        = "too_short"
	ErrorNotInDictionary = "not_in_dictionary"
	ErrorRoundOver       = "round_over"
	ErrorRoundActive     = "round_active"
	ErrorBadRequest      = "bad_request"
	ErrorStorage         = "storage_unavailable"
	ErrorRateLimited     = "too_many_requests"
)

// Store backends selectable with STORE_BACKEND
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Defaults for the environment configuration
const (
	DefaultPort            = "8080"
	DefaultWordsFile       = "data/words.json"
	DefaultDataDir         = "data"
	DefaultDeviceTimeout   = 365 * 24 * time.Hour
	DefaultCookieMaxAge    = 365 * 24 * time.Hour
	DefaultSessionTimeout  = 2 * time.Hour
	DefaultStaticCacheAge  = 5 * time.Minute
	DefaultJanitorInterval = time.Minute
)

// Context key constants
const (
	requestIDKey contextKey = "request_id"
)
