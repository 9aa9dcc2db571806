package main

import (
	"sync"
	"time"

	"memaheret/internal/game"
)

type contextKey string

// guessRequest is the body of POST /api/guess, as a form or JSON.
type guessRequest struct {
	Guess string `form:"guess" json:"guess"`
}

// deviceSession is a cached game session for one device cookie.
type deviceSession struct {
	game       *game.Session
	lastAccess time.Time
}

// DailyWord tracks which day the server currently considers "today"
type DailyWord struct {
	Date  string
	Index int
	mu    sync.RWMutex // Protects concurrent access to Date and Index
}

// DailyWordJSON is used for JSON serialization (excludes mutex)
type DailyWordJSON struct {
	Date  string `json:"date"`
	Index int    `json:"index"`
}

// ToJSON safely converts DailyWord to a JSON-serializable struct
func (dw *DailyWord) ToJSON() DailyWordJSON {
	dw.mu.RLock()
	defer dw.mu.RUnlock()
	return DailyWordJSON{
		Date:  dw.Date,
		Index: dw.Index,
	}
}

// Advance records date as today and reports whether the day changed.
func (dw *DailyWord) Advance(date string, index int) bool {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	if dw.Date == date {
		return false
	}
	dw.Date = date
	dw.Index = index
	return true
}

// GetDate returns the current date with read lock
func (dw *DailyWord) GetDate() string {
	dw.mu.RLock()
	defer dw.mu.RUnlock()
	return dw.Date
}
