package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	ginGzip "github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"memaheret/internal/daily"
	"memaheret/internal/store"
	"memaheret/internal/wordlist"
)

// App holds the server's dependencies and per-device state.
type App struct {
	IsProduction bool
	StartTime    time.Time

	Words   *wordlist.List
	Backend store.Backend
	Clock   daily.Clock
	Daily   DailyWord

	Sessions     map[string]*deviceSession
	SessionMutex sync.RWMutex

	LimiterMap   map[string]*rate.Limiter
	LimiterMutex sync.Mutex

	CookieMaxAge    time.Duration
	SessionTimeout  time.Duration
	DeviceTimeout   time.Duration
	StaticCacheAge  time.Duration
	JanitorInterval time.Duration
	RateLimitRPS    int
	RateLimitBurst  int
}

// cleaner is implemented by backends that can drop abandoned devices.
type cleaner interface {
	Cleanup(maxAge time.Duration) (int, error)
}

func main() {
	_ = godotenv.Load()

	isProduction := os.Getenv("GIN_MODE") == "release" || os.Getenv("ENV") == "production"
	if err := setupLogger(isProduction); err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	logInfo("Starting Memaheret in %s mode", envName(isProduction))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	wordsFile := getEnvString("WORDS_FILE", DefaultWordsFile)
	words, err := wordlist.Load(wordsFile)
	if err != nil {
		logFatal("Failed to load words from %s: %v", wordsFile, err)
	}
	logInfo("Loaded %d words from dictionary", words.Len())
	for _, w := range words.Skipped() {
		logWarn("Skipping word %q: malformed or duplicate", w)
	}

	deviceTimeout := getEnvDuration("DEVICE_TIMEOUT", DefaultDeviceTimeout)
	backendKind := getEnvString("STORE_BACKEND", BackendFile)
	backend, err := openBackend(ctx, backendKind, getEnvString("DATA_DIR", DefaultDataDir), deviceTimeout)
	if err != nil {
		logFatal("Failed to open %s store: %v", backendKind, err)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logWarn("Failed to close store: %v", err)
		}
	}()
	logInfo("Using %s device store", backendKind)

	app := &App{
		IsProduction:    isProduction,
		StartTime:       time.Now(),
		Words:           words,
		Backend:         backend,
		Clock:           daily.SystemClock{},
		Sessions:        make(map[string]*deviceSession),
		LimiterMap:      make(map[string]*rate.Limiter),
		CookieMaxAge:    getEnvDuration("COOKIE_MAX_AGE", DefaultCookieMaxAge),
		SessionTimeout:  getEnvDuration("SESSION_TIMEOUT", DefaultSessionTimeout),
		DeviceTimeout:   deviceTimeout,
		StaticCacheAge:  getEnvDuration("STATIC_CACHE_AGE", DefaultStaticCacheAge),
		JanitorInterval: getEnvDuration("JANITOR_INTERVAL", DefaultJanitorInterval),
		RateLimitRPS:    getEnvInt("RATE_LIMIT_RPS", 5),
		RateLimitBurst:  getEnvInt("RATE_LIMIT_BURST", 10),
	}

	if isProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	router := app.setupRouter()

	if err := app.run(ctx, router, getEnvString("PORT", DefaultPort)); err != nil {
		logFatal("Server failed: %v", err)
	}
	logInfo("Server shutdown complete")
}

// openBackend opens the device store selected by kind.
func openBackend(ctx context.Context, kind, dataDir string, deviceTimeout time.Duration) (store.Backend, error) {
	switch kind {
	case BackendMemory:
		return store.NewMemory(), nil
	case BackendFile, "":
		return store.NewFileStore(filepath.Join(dataDir, "devices"), deviceTimeout)
	case BackendSQLite:
		if !dirExists(dataDir) {
			logInfo("Creating data directory %s", dataDir)
			if err := os.MkdirAll(dataDir, 0755); err != nil {
				return nil, err
			}
		}
		return store.NewSQLiteStore(ctx, filepath.Join(dataDir, "memaheret.db"))
	default:
		return nil, fmt.Errorf("unknown store backend %q", kind)
	}
}

// setupRouter builds the gin engine with middleware and routes.
func (app *App) setupRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), requestIDMiddleware())

	router.Use(ginGzip.Gzip(ginGzip.DefaultCompression,
		ginGzip.WithExcludedPaths([]string{RouteHealth})))

	if err := router.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logWarn("Failed to set trusted proxies: %v", err)
	}
	router.Use(app.cacheHeadersMiddleware())

	router.GET(RouteState, app.stateHandler)
	router.POST(RouteGuess, app.rateLimitMiddleware(), app.guessHandler)
	router.GET(RouteShare, app.shareHandler)
	router.GET(RouteStats, app.statsHandler)
	router.GET(RouteWords, app.wordsHandler)
	router.GET(RouteHealth, app.healthzHandler)
	return router
}

// run serves HTTP and the janitor until ctx is cancelled, then shuts the
// server down gracefully.
func (app *App) run(ctx context.Context, router *gin.Engine, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logInfo("Server starting on http://localhost:%s", port)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logInfo("Shutdown signal received, shutting down server gracefully...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		app.janitor(gctx)
		return nil
	})
	return g.Wait()
}

// janitor runs housekeeping on every tick until ctx is done.
func (app *App) janitor(ctx context.Context) {
	interval := app.JanitorInterval
	if interval <= 0 {
		interval = DefaultJanitorInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	app.tick()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			app.tick()
		}
	}
}

// tick notices the day rollover, evicts idle cached sessions and prunes
// devices the store has not seen for DeviceTimeout.
func (app *App) tick() {
	today := daily.Today(app.Clock)
	if app.Daily.Advance(today, daily.Index(today, app.Words.Len())) {
		logInfo("Word of the day rolled over to %s", today)
	}

	if n := app.pruneSessions(app.SessionTimeout); n > 0 {
		logInfo("Evicted %d idle sessions", n)
	}

	if c, ok := app.Backend.(cleaner); ok && app.DeviceTimeout > 0 {
		n, err := c.Cleanup(app.DeviceTimeout)
		if err != nil {
			logWarn("Device cleanup failed: %v", err)
		} else if n > 0 {
			logInfo("Removed %d stale device entries", n)
		}
	}
}
