package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// FileStore keeps one JSON document per device under dir. Documents not
// touched for maxAge are treated as abandoned and removed.
type FileStore struct {
	dir    string
	maxAge time.Duration
	mu     sync.Mutex
}

func NewFileStore(dir string, maxAge time.Duration) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create devices directory: %w", err)
	}
	return &FileStore{dir: dir, maxAge: maxAge}, nil
}

func (fs *FileStore) Device(id string) (KV, error) {
	path, err := fs.devicePath(id)
	if err != nil {
		return nil, err
	}
	return &fileKV{fs: fs, path: path}, nil
}

func (fs *FileStore) Close() error { return nil }

// devicePath validates id and returns the document path for it. Only UUIDs
// are accepted so an id can never escape dir.
func (fs *FileStore) devicePath(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\.`+"\x00") {
		return "", ErrInvalidDeviceID
	}
	if err := uuid.Validate(id); err != nil || len(id) != 36 {
		return "", ErrInvalidDeviceID
	}

	path := filepath.Join(fs.dir, id+".json")
	absDir, err := filepath.Abs(fs.dir)
	if err != nil {
		return "", err
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(absPath, filepath.Clean(absDir)+string(filepath.Separator)) {
		return "", ErrInvalidDeviceID
	}
	return path, nil
}

// read loads a device document. Expired and corrupted documents are removed
// and reported as empty. The caller holds fs.mu.
func (fs *FileStore) read(path string) (map[string]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, err
	}
	if fs.maxAge > 0 && time.Since(info.ModTime()) > fs.maxAge {
		_ = os.Remove(path)
		return map[string]string{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc := map[string]string{}
	if err := json.Unmarshal(data, &doc); err != nil {
		_ = os.Remove(path)
		return map[string]string{}, nil
	}
	return doc, nil
}

func (fs *FileStore) write(path string, doc map[string]string) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Cleanup removes device documents older than maxAge and returns how many
// were removed.
func (fs *FileStore) Cleanup(maxAge time.Duration) (int, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	entries, err := os.ReadDir(fs.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	var errs []error
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(fs.dir, entry.Name())); err != nil {
				errs = append(errs, err)
				continue
			}
			removed++
		}
	}
	if len(errs) > 0 {
		return removed, fmt.Errorf("cleanup: %d files failed, first: %w", len(errs), errs[0])
	}
	return removed, nil
}

type fileKV struct {
	fs   *FileStore
	path string
}

func (kv *fileKV) Get(_ context.Context, key string) (string, bool, error) {
	kv.fs.mu.Lock()
	defer kv.fs.mu.Unlock()
	doc, err := kv.fs.read(kv.path)
	if err != nil {
		return "", false, err
	}
	v, ok := doc[key]
	return v, ok, nil
}

func (kv *fileKV) Set(_ context.Context, key, value string) error {
	kv.fs.mu.Lock()
	defer kv.fs.mu.Unlock()
	doc, err := kv.fs.read(kv.path)
	if err != nil {
		return err
	}
	doc[key] = value
	return kv.fs.write(kv.path, doc)
}

func (kv *fileKV) Delete(_ context.Context, keys ...string) error {
	kv.fs.mu.Lock()
	defer kv.fs.mu.Unlock()
	doc, err := kv.fs.read(kv.path)
	if err != nil {
		return err
	}
	for _, k := range keys {
		delete(doc, k)
	}
	return kv.fs.write(kv.path, doc)
}
