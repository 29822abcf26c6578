package seenset

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileStore keeps identifiers in a newline-delimited log file. The file is
// read once on first use and only appended to afterwards.
type FileStore struct {
	path string

	mu     sync.RWMutex
	loaded bool
	ids    map[string]struct{}
	order  []string
}

// NewFileStore creates a store backed by path. The file does not need to
// exist: a missing file means nothing has been seen yet.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (f *FileStore) Path() string {
	return f.path
}

// Contains reports whether id has been recorded.
func (f *FileStore) Contains(ctx context.Context, id string) (bool, error) {
	if err := f.ensureLoaded(); err != nil {
		return false, err
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.ids[strings.TrimSpace(id)]
	return ok, nil
}

// Add appends id to the log unless it is already present.
func (f *FileStore) Add(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("empty track id")
	}
	if strings.ContainsAny(id, "\r\n") {
		return fmt.Errorf("track id %q contains a line break", id)
	}
	if err := f.ensureLoaded(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.ids[id]; ok {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return fmt.Errorf("create seen directory: %w", err)
	}

	file, err := os.OpenFile(f.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open seen file: %w", err)
	}
	if _, err := file.WriteString(id + "\n"); err != nil {
		file.Close()
		return fmt.Errorf("append seen id: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		return fmt.Errorf("sync seen file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close seen file: %w", err)
	}

	f.ids[id] = struct{}{}
	f.order = append(f.order, id)
	return nil
}

// Len returns the number of recorded ids.
func (f *FileStore) Len(ctx context.Context) (int, error) {
	if err := f.ensureLoaded(); err != nil {
		return 0, err
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.order), nil
}

// List returns every recorded id in insertion order.
func (f *FileStore) List(ctx context.Context) ([]string, error) {
	if err := f.ensureLoaded(); err != nil {
		return nil, err
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]string, len(f.order))
	copy(out, f.order)
	return out, nil
}

// Close is a no-op; every Add is already flushed.
func (f *FileStore) Close() error {
	return nil
}

func (f *FileStore) ensureLoaded() error {
	f.mu.RLock()
	loaded := f.loaded
	f.mu.RUnlock()
	if loaded {
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loaded {
		return nil
	}

	ids, order, err := readLog(f.path)
	if err != nil {
		return err
	}
	f.ids = ids
	f.order = order
	f.loaded = true
	return nil
}

// ReadFile parses a newline-delimited id log. Used by the importer.
func ReadFile(path string) ([]string, error) {
	_, order, err := readLog(path)
	return order, err
}

func readLog(path string) (map[string]struct{}, []string, error) {
	ids := make(map[string]struct{})
	var order []string

	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return ids, order, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open seen file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		id := strings.TrimSpace(scanner.Text())
		if id == "" {
			continue
		}
		if _, ok := ids[id]; ok {
			continue
		}
		ids[id] = struct{}{}
		order = append(order, id)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("read seen file: %w", err)
	}

	return ids, order, nil
}
