package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"memaheret/internal/game"
	"memaheret/internal/round"
	"memaheret/internal/store"
	"memaheret/internal/types"
)

// sessionFor resolves the device cookie to its game session, writing a 500
// response when the store cannot be opened.
func (app *App) sessionFor(c *gin.Context) (*game.Session, string, bool) {
	deviceID := app.getOrCreateDevice(c)
	s, err := app.getSession(c.Request.Context(), deviceID)
	if err != nil {
		logWarn("Failed to open session for device %s: %v", deviceID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": ErrorStorage})
		return nil, deviceID, false
	}
	return s, deviceID, true
}

// stateHandler returns the device's round for today.
func (app *App) stateHandler(c *gin.Context) {
	s, _, ok := app.sessionFor(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.View(c.Request.Context()))
}

// guessHandler submits an attempt. Rejected input leaves the round untouched
// and is answered with 422.
func (app *App) guessHandler(c *gin.Context) {
	ctx := c.Request.Context()
	s, deviceID, ok := app.sessionFor(c)
	if !ok {
		return
	}

	var req guessRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrorBadRequest})
		return
	}

	res, err := s.Submit(ctx, req.Guess)
	if err != nil {
		code := rejectionCode(err)
		logInfoCtx(ctx, "Device %s guess %q rejected: %s", deviceID, req.Guess, code)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": code})
		return
	}
	logInfoCtx(ctx, "Device %s guessed %s (attempt %d/%d)", deviceID, res.Attempt.Word, res.Number, round.MaxAttempts)
	if res.Finished {
		logInfoCtx(ctx, "Device %s finished the round: %s", deviceID, res.Outcome)
	}

	view := s.View(ctx)
	if res.Finished {
		view.RevealAfterMs = res.RevealAfter.Milliseconds()
	}
	c.JSON(http.StatusOK, view)
}

func rejectionCode(err error) string {
	switch {
	case errors.Is(err, round.ErrTooShort):
		return ErrorTooShort
	case errors.Is(err, round.ErrNotInDictionary):
		return ErrorNotInDictionary
	case errors.Is(err, round.ErrRoundOver):
		return ErrorRoundOver
	default:
		return ErrorBadRequest
	}
}

// shareHandler returns the emoji grid of a finished round.
func (app *App) shareHandler(c *gin.Context) {
	s, _, ok := app.sessionFor(c)
	if !ok {
		return
	}
	text, err := s.Share()
	if errors.Is(err, game.ErrRoundActive) {
		c.JSON(http.StatusConflict, gin.H{"error": ErrorRoundActive})
		return
	}
	c.JSON(http.StatusOK, gin.H{"text": text})
}

// statsHandler returns the device's history log and derived statistics.
func (app *App) statsHandler(c *gin.Context) {
	s, deviceID, ok := app.sessionFor(c)
	if !ok {
		return
	}
	history, stats, err := s.History(c.Request.Context())
	if err != nil {
		logWarn("Failed to load history for device %s: %v", deviceID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": ErrorStorage})
		return
	}
	c.JSON(http.StatusOK, types.PlayerStats{
		Results:           lo.Map(history, func(o store.Outcome, _ int) any { return o }),
		GamesPlayed:       stats.Played,
		GamesWon:          stats.Won,
		WinPercent:        stats.WinPercent,
		CurrentStreak:     stats.CurrentStreak,
		MaxStreak:         stats.MaxStreak,
		GuessDistribution: stats.Distribution,
	})
}

// wordsHandler serves the word list verbatim.
func (app *App) wordsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, types.WordList{Words: app.Words.Words()})
}

// healthzHandler returns a JSON health check with server stats.
func (app *App) healthzHandler(c *gin.Context) {
	uptime := time.Since(app.StartTime)
	app.SessionMutex.RLock()
	sessions := len(app.Sessions)
	app.SessionMutex.RUnlock()
	c.JSON(http.StatusOK, gin.H{
		"status":          "ok",
		"env":             envName(app.IsProduction),
		"words_loaded":    app.Words.Len(),
		"daily":           app.Daily.ToJSON(),
		"active_sessions": sessions,
		"uptime":          formatUptime(uptime),
		"timestamp":       time.Now().UTC().Format(time.RFC3339),
	})
}
