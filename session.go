package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"memaheret/internal/game"
	"memaheret/internal/store"
)

// getOrCreateDevice retrieves the device ID from the cookie or issues a new one.
func (app *App) getOrCreateDevice(c *gin.Context) string {
	deviceID, err := c.Cookie(DeviceCookieName)
	if err != nil || uuid.Validate(deviceID) != nil || len(deviceID) != 36 {
		deviceID = uuid.NewString()
		logInfoCtx(c.Request.Context(), "Issued new device: %s", deviceID)
	}
	// Refresh on every request so an active device never expires.
	c.SetSameSite(http.SameSiteStrictMode)
	secure := app.IsProduction
	c.SetCookie(DeviceCookieName, deviceID, int(app.CookieMaxAge.Seconds()), "/", "", secure, true)
	return deviceID
}

// getSession returns the cached game session for a device, opening it from
// the store on first use.
func (app *App) getSession(ctx context.Context, deviceID string) (*game.Session, error) {
	app.SessionMutex.RLock()
	ds, exists := app.Sessions[deviceID]
	app.SessionMutex.RUnlock()
	if exists {
		app.SessionMutex.Lock()
		ds.lastAccess = time.Now()
		app.SessionMutex.Unlock()
		return ds.game, nil
	}

	kv, err := app.Backend.Device(deviceID)
	if err != nil {
		return nil, err
	}
	s := game.Open(ctx, game.Deps{
		Words: app.Words,
		Store: store.NewAdapter(kv),
		Clock: app.Clock,
		OnStoreError: func(op string, err error) {
			logWarn("Device %s: %s failed: %v", deviceID, op, err)
		},
	})

	app.SessionMutex.Lock()
	defer app.SessionMutex.Unlock()
	if ds, exists := app.Sessions[deviceID]; exists {
		// Another request opened it first; keep a single session per device.
		ds.lastAccess = time.Now()
		return ds.game, nil
	}
	app.Sessions[deviceID] = &deviceSession{game: s, lastAccess: time.Now()}
	logInfoCtx(ctx, "Opened session for device: %s", deviceID)
	return s, nil
}

// pruneSessions drops cached sessions idle for longer than maxIdle. Their
// state stays in the store and is reloaded on the next request.
func (app *App) pruneSessions(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)
	app.SessionMutex.Lock()
	defer app.SessionMutex.Unlock()
	removed := 0
	for id, ds := range app.Sessions {
		if ds.lastAccess.Before(cutoff) {
			delete(app.Sessions, id)
			removed++
		}
	}
	return removed
}
