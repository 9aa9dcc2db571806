package main

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"memaheret/internal/daily"
	"memaheret/internal/store"
	"memaheret/internal/types"
	"memaheret/internal/wordlist"
)

var testWords = []string{"מדינה", "תלמיד", "ספרים", "חברים", "משפחה", "מכונה", "עבודה", "ילדים"}

// testNow is 12:00 in Jerusalem on 17.10.2026.
var testNow = time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// newTestApp creates an App backed by an in-memory store and a fixed clock.
func newTestApp(t *testing.T) *App {
	t.Helper()
	words, err := wordlist.New(testWords)
	if err != nil {
		t.Fatalf("failed to build word list: %v", err)
	}
	return &App{
		StartTime:       time.Now(),
		Words:           words,
		Backend:         store.NewMemory(),
		Clock:           daily.FixedClock(testNow),
		Sessions:        make(map[string]*deviceSession),
		LimiterMap:      make(map[string]*rate.Limiter),
		CookieMaxAge:    time.Hour,
		SessionTimeout:  time.Hour,
		StaticCacheAge:  5 * time.Minute,
		JanitorInterval: time.Minute,
		RateLimitRPS:    5,
		RateLimitBurst:  10,
	}
}

// targetAndMiss returns today's word and some other word from the list.
func targetAndMiss(app *App) (string, string) {
	target := daily.Select(daily.Today(app.Clock), app.Words)
	for _, w := range app.Words.Words() {
		if w != target {
			return target, w
		}
	}
	return target, ""
}

type client struct {
	t      *testing.T
	router *gin.Engine
	device *http.Cookie
}

func newClient(t *testing.T, app *App) *client {
	return &client{t: t, router: app.setupRouter()}
}

func (cl *client) do(req *http.Request) *httptest.ResponseRecorder {
	cl.t.Helper()
	if cl.device != nil {
		req.AddCookie(cl.device)
	}
	w := httptest.NewRecorder()
	cl.router.ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		if c.Name == DeviceCookieName {
			cl.device = c
		}
	}
	return w
}

func (cl *client) get(path string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	return cl.do(req)
}

func (cl *client) guess(word string) *httptest.ResponseRecorder {
	form := url.Values{"guess": {word}}.Encode()
	req, _ := http.NewRequest(http.MethodPost, RouteGuess, strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return cl.do(req)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	return v
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, w)["error"]
}

func TestStateHandlerIssuesDevice(t *testing.T) {
	cl := newClient(t, newTestApp(t))
	w := cl.get(RouteState)
	if w.Code != http.StatusOK {
		t.Fatalf("GET %s returned status %d, want 200", RouteState, w.Code)
	}
	if cl.device == nil {
		t.Fatal("Expected device_id cookie to be set")
	}
	if !cl.device.HttpOnly {
		t.Error("device_id cookie should be HttpOnly")
	}
	state := decode[types.GameState](t, w)
	if state.Date != "17.10.2026" {
		t.Errorf("date = %q, want 17.10.2026", state.Date)
	}
	if state.GameOver || state.TargetWord != "" {
		t.Errorf("fresh round should be active with hidden target, got %+v", state)
	}
	if state.SecondsToNextWord != 12*3600 {
		t.Errorf("secondsToNextWord = %d, want %d", state.SecondsToNextWord, 12*3600)
	}
}

func TestStateHandlerReplacesBadCookie(t *testing.T) {
	cl := newClient(t, newTestApp(t))
	cl.device = &http.Cookie{Name: DeviceCookieName, Value: "../../etc/passwd"}
	cl.get(RouteState)
	if cl.device.Value == "../../etc/passwd" {
		t.Error("Expected malformed device_id to be replaced")
	}
}

func TestGuessHandlerRejections(t *testing.T) {
	app := newTestApp(t)
	cl := newClient(t, app)

	cases := []struct {
		guess string
		code  string
	}{
		{"", ErrorTooShort},
		{"ספר", ErrorTooShort},
		{"אבגדה", ErrorNotInDictionary},
		{"ספרים!!!מדינה", ErrorNotInDictionary},
		{"מדינהמדינה", ErrorNotInDictionary},
	}
	for _, c := range cases {
		w := cl.guess(c.guess)
		if w.Code != http.StatusUnprocessableEntity {
			t.Errorf("guess %q returned status %d, want 422", c.guess, w.Code)
			continue
		}
		if got := errorCode(t, w); got != c.code {
			t.Errorf("guess %q error = %q, want %q", c.guess, got, c.code)
		}
	}

	state := decode[types.GameState](t, cl.get(RouteState))
	if len(state.GuessHistory) != 0 {
		t.Errorf("rejected guesses must not be recorded, got %v", state.GuessHistory)
	}
}

func TestGuessHandlerWin(t *testing.T) {
	app := newTestApp(t)
	target, miss := targetAndMiss(app)
	cl := newClient(t, app)

	w := cl.guess(miss)
	if w.Code != http.StatusOK {
		t.Fatalf("guess returned status %d, want 200: %s", w.Code, w.Body.String())
	}
	state := decode[types.GameState](t, w)
	if state.CurrentRow != 1 || state.GameOver {
		t.Errorf("after a miss: row=%d over=%v", state.CurrentRow, state.GameOver)
	}

	w = cl.guess(target)
	state = decode[types.GameState](t, w)
	if !state.Won || !state.GameOver {
		t.Fatalf("expected a win, got %+v", state)
	}
	if state.TargetWord != target {
		t.Errorf("targetWord = %q, want %q", state.TargetWord, target)
	}
	if state.RevealAfterMs != 3600 {
		t.Errorf("revealAfterMs = %d, want 3600", state.RevealAfterMs)
	}
	if state.Congratulation == "" {
		t.Error("Expected a congratulation after a win")
	}

	w = cl.guess(target)
	if w.Code != http.StatusUnprocessableEntity || errorCode(t, w) != ErrorRoundOver {
		t.Errorf("guess after win: status %d body %s, want 422 round_over", w.Code, w.Body.String())
	}

	stats := decode[types.PlayerStats](t, cl.get(RouteStats))
	if stats.GamesPlayed != 1 || stats.GamesWon != 1 || stats.WinPercent != 100 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if len(stats.Results) != 1 || stats.Results[0] != float64(2) {
		t.Errorf("results = %v, want [2]", stats.Results)
	}
}

func TestGuessHandlerJSONBody(t *testing.T) {
	app := newTestApp(t)
	_, miss := targetAndMiss(app)
	cl := newClient(t, app)

	body, _ := json.Marshal(guessRequest{Guess: miss})
	req, _ := http.NewRequest(http.MethodPost, RouteGuess, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := cl.do(req)
	if w.Code != http.StatusOK {
		t.Fatalf("JSON guess returned status %d, want 200: %s", w.Code, w.Body.String())
	}
	if state := decode[types.GameState](t, w); len(state.GuessHistory) != 1 {
		t.Errorf("guessHistory = %v, want one entry", state.GuessHistory)
	}
}

func TestGuessHandlerLoss(t *testing.T) {
	app := newTestApp(t)
	_, miss := targetAndMiss(app)
	cl := newClient(t, app)

	var w *httptest.ResponseRecorder
	for i := 0; i < 6; i++ {
		w = cl.guess(miss)
		if w.Code != http.StatusOK {
			t.Fatalf("guess %d returned status %d", i+1, w.Code)
		}
	}
	state := decode[types.GameState](t, w)
	if !state.GameOver || state.Won {
		t.Fatalf("expected a loss, got %+v", state)
	}
	if state.RevealAfterMs != 2000 {
		t.Errorf("revealAfterMs = %d, want 2000", state.RevealAfterMs)
	}

	stats := decode[types.PlayerStats](t, cl.get(RouteStats))
	if len(stats.Results) != 1 || stats.Results[0] != "X" {
		t.Errorf("results = %v, want [X]", stats.Results)
	}
}

func TestDevicesAreIsolated(t *testing.T) {
	app := newTestApp(t)
	_, miss := targetAndMiss(app)
	router := app.setupRouter()
	alice := &client{t: t, router: router}
	bob := &client{t: t, router: router}

	alice.guess(miss)
	state := decode[types.GameState](t, bob.get(RouteState))
	if len(state.GuessHistory) != 0 {
		t.Errorf("second device sees guesses %v", state.GuessHistory)
	}
}

func TestRoundSurvivesSessionEviction(t *testing.T) {
	app := newTestApp(t)
	_, miss := targetAndMiss(app)
	cl := newClient(t, app)

	cl.guess(miss)
	if n := app.pruneSessions(-time.Second); n != 1 {
		t.Fatalf("pruneSessions removed %d, want 1", n)
	}
	state := decode[types.GameState](t, cl.get(RouteState))
	if len(state.GuessHistory) != 1 || state.GuessHistory[0] != miss {
		t.Errorf("guessHistory after reload = %v, want [%s]", state.GuessHistory, miss)
	}
}

func TestShareHandler(t *testing.T) {
	app := newTestApp(t)
	target, _ := targetAndMiss(app)
	cl := newClient(t, app)

	w := cl.get(RouteShare)
	if w.Code != http.StatusConflict || errorCode(t, w) != ErrorRoundActive {
		t.Errorf("share while active: status %d body %s, want 409", w.Code, w.Body.String())
	}

	cl.guess(target)
	w = cl.get(RouteShare)
	if w.Code != http.StatusOK {
		t.Fatalf("share returned status %d, want 200", w.Code)
	}
	text := decode[map[string]string](t, w)["text"]
	if !strings.HasPrefix(text, "ממהרת 17.10.2026 - 1/6\n\n") {
		t.Errorf("unexpected share text %q", text)
	}
	if !strings.Contains(text, "🟩🟩🟩🟩🟩") {
		t.Errorf("share text %q should contain a solved row", text)
	}
}

func TestWordsHandler(t *testing.T) {
	cl := newClient(t, newTestApp(t))
	w := cl.get(RouteWords)
	if w.Code != http.StatusOK {
		t.Fatalf("GET %s returned status %d", RouteWords, w.Code)
	}
	wl := decode[types.WordList](t, w)
	if len(wl.Words) != len(testWords) {
		t.Errorf("served %d words, want %d", len(wl.Words), len(testWords))
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	app := newTestApp(t)
	router := gin.New()
	router.Use(app.rateLimitMiddleware())
	router.GET("/limited", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	req, _ := http.NewRequest("GET", "/limited", nil)
	req.RemoteAddr = "127.0.0.1:12345"

	// First 10 requests should succeed
	for i := 0; i < 10; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("Request %d: expected 200, got %d", i+1, w.Code)
		}
	}

	// 11th request should be rate limited
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("11th request: expected 429 Too Many Requests, got %d", w.Code)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	cl := newClient(t, newTestApp(t))
	req, _ := http.NewRequest(http.MethodGet, RouteHealth, nil)
	req.Header.Set("X-Request-Id", "abc-123")
	w := cl.do(req)
	if got := w.Header().Get("X-Request-Id"); got != "abc-123" {
		t.Errorf("X-Request-Id = %q, want abc-123", got)
	}

	w = cl.get(RouteHealth)
	if w.Header().Get("X-Request-Id") == "" {
		t.Error("Expected a generated X-Request-Id")
	}
}

func TestHealthzHandlerFields(t *testing.T) {
	app := newTestApp(t)
	app.tick()
	cl := newClient(t, app)

	w := cl.get(RouteHealth)
	if w.Code != http.StatusOK {
		t.Fatalf("GET %s returned status %d, want 200", RouteHealth, w.Code)
	}
	resp := decode[map[string]any](t, w)
	for _, field := range []string{"status", "env", "words_loaded", "daily", "uptime", "timestamp"} {
		if _, ok := resp[field]; !ok {
			t.Errorf("Expected '%s' field in %s response", field, RouteHealth)
		}
	}
	day, _ := resp["daily"].(map[string]any)
	if day["date"] != "17.10.2026" {
		t.Errorf("daily.date = %v, want 17.10.2026", day["date"])
	}
	if want := float64(daily.Index("17.10.2026", app.Words.Len())); day["index"] != want {
		t.Errorf("daily.index = %v, want %v", day["index"], want)
	}
	if env, ok := resp["env"].(string); !ok || env != "development" {
		t.Errorf("env = %v, want development", resp["env"])
	}
}

func TestCacheHeaders(t *testing.T) {
	app := newTestApp(t)
	app.IsProduction = true
	cl := newClient(t, app)

	if cc := cl.get(RouteWords).Header().Get("Cache-Control"); !strings.Contains(cc, "public") {
		t.Errorf("word list Cache-Control = %q, want public", cc)
	}
	if cc := cl.get(RouteState).Header().Get("Cache-Control"); !strings.Contains(cc, "no-store") {
		t.Errorf("state Cache-Control = %q, want no-store", cc)
	}

	app.IsProduction = false
	if cc := cl.get(RouteWords).Header().Get("Cache-Control"); !strings.Contains(cc, "no-store") {
		t.Errorf("development word list Cache-Control = %q, want no-store", cc)
	}
}

func decompressGzip(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

func TestGzipMiddleware_CompressesJSON(t *testing.T) {
	cl := newClient(t, newTestApp(t))
	req, _ := http.NewRequest(http.MethodGet, RouteWords, nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := cl.do(req)
	if w.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("Expected gzip Content-Encoding for %s", RouteWords)
	}
	body, err := decompressGzip(w.Body.Bytes())
	if err != nil {
		t.Fatalf("Failed to decompress: %v", err)
	}
	var wl types.WordList
	if err := json.Unmarshal(body, &wl); err != nil || len(wl.Words) != len(testWords) {
		t.Errorf("unexpected decompressed body %q: %v", body, err)
	}
}

func TestGzipMiddleware_SkipsHealthz(t *testing.T) {
	cl := newClient(t, newTestApp(t))
	req, _ := http.NewRequest(http.MethodGet, RouteHealth, nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := cl.do(req)
	if w.Header().Get("Content-Encoding") == "gzip" {
		t.Errorf("Did not expect gzip Content-Encoding for %s", RouteHealth)
	}
}
