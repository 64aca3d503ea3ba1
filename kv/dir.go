package kv

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sync"
)

// Dir stores each key as a file in a directory. Writes go to a temporary
// file that is renamed over the target, so a crash never leaves a torn
// value behind.
type Dir struct {
	root   string
	mu     sync.Mutex
	closed bool
}

var _ Store = (*Dir)(nil)

// OpenDir returns a Dir rooted at root, creating it if needed.
func OpenDir(root string) (*Dir, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("kv: create %s: %w", root, err)
	}
	return &Dir{root: root}, nil
}

func (d *Dir) file(key string) string {
	return filepath.Join(d.root, url.PathEscape(key)+".json")
}

// Load implements Store.
func (d *Dir) Load(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return "", false, ErrClosed
	}
	b, err := os.ReadFile(d.file(key))
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("kv: read %q: %w", key, err)
	}
	return string(b), true, nil
}

// Save implements Store.
func (d *Dir) Save(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}

	tmp, err := os.CreateTemp(d.root, ".kv-*")
	if err != nil {
		return fmt.Errorf("kv: write %q: %w", key, err)
	}
	name := tmp.Name()
	if _, err := tmp.WriteString(value); err != nil {
		_ = tmp.Close()
		_ = os.Remove(name)
		return fmt.Errorf("kv: write %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(name)
		return fmt.Errorf("kv: write %q: %w", key, err)
	}
	if err := os.Rename(name, d.file(key)); err != nil {
		_ = os.Remove(name)
		return fmt.Errorf("kv: write %q: %w", key, err)
	}
	return nil
}

// Delete implements Store.
func (d *Dir) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	if err := os.Remove(d.file(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("kv: delete %q: %w", key, err)
	}
	return nil
}

// Close implements Store.
func (d *Dir) Close() error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	return nil
}
