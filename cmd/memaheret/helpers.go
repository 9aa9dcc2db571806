package main

import (
	"context"
	"fmt"
	"os"
	"os/user"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/viper"

	"memaheret/internal/daily"
	"memaheret/internal/game"
	"memaheret/internal/store"
	"memaheret/internal/wordlist"
)

// gameEnv is everything a command needs to work on today's round.
type gameEnv struct {
	words   *wordlist.List
	backend store.Backend
	session *game.Session
}

func (e *gameEnv) Close() {
	if err := e.backend.Close(); err != nil {
		log.Warnw("failed to close store", "error", err)
	}
}

// openGame loads the word list, opens the configured store and today's
// session for this device.
func openGame(ctx context.Context, clock daily.Clock) (*gameEnv, error) {
	words, err := wordlist.Load(viper.GetString("words"))
	if err != nil {
		return nil, fmt.Errorf("failed to load word list: %w", err)
	}
	for _, w := range words.Skipped() {
		log.Warnw("skipping malformed word", "word", w)
	}

	backend, err := openStore(ctx, viper.GetString("store"), viper.GetString("data_dir"))
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	kv, err := backend.Device(deviceID())
	if err != nil {
		_ = backend.Close()
		return nil, err
	}
	s := game.Open(ctx, game.Deps{
		Words: words,
		Store: store.NewAdapter(kv),
		Clock: clock,
		OnStoreError: func(op string, err error) {
			log.Warnw("store operation failed", "op", op, "error", err)
		},
	})
	return &gameEnv{words: words, backend: backend, session: s}, nil
}

func openStore(ctx context.Context, kind, dir string) (store.Backend, error) {
	switch kind {
	case "memory":
		return store.NewMemory(), nil
	case "file", "":
		// The terminal is a single long-lived device; documents never expire.
		return store.NewFileStore(filepath.Join(dir, "devices"), 0)
	case "sqlite":
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
		return store.NewSQLiteStore(ctx, filepath.Join(dir, "memaheret.db"))
	default:
		return nil, fmt.Errorf("unknown store backend %q", kind)
	}
}

// deviceID returns the configured device, or a stable ID derived from the
// current user so every run continues the same round.
func deviceID() string {
	if id := viper.GetString("device"); id != "" {
		return id
	}
	name := "memaheret"
	if u, err := user.Current(); err == nil {
		name = u.Username
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("memaheret:cli:"+name)).String()
}
