package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

const fileExt = ".json"

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// FS implements Cache with one file per key under a root directory.
type FS struct {
	root     string // absolute path to cache directory
	maxBytes int64  // 0 means unlimited
}

// FSOption configures an FS cache.
type FSOption func(*FS)

// WithQuota caps the total size of all stored values in bytes.
func WithQuota(n int64) FSOption {
	return func(f *FS) { f.maxBytes = n }
}

// NewFS creates a cache rooted at dir, creating the directory if needed.
func NewFS(dir string, opts ...FSOption) (*FS, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("storage: mkdir root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	f := &FS{root: abs}
	for _, o := range opts {
		o(f)
	}
	return f, nil
}

// Root returns the absolute cache directory.
func (f *FS) Root() string { return f.root }

// Path returns the file that holds key.
func (f *FS) Path(key string) (string, error) {
	if !keyPattern.MatchString(key) {
		return "", fmt.Errorf("storage: invalid key %q", key)
	}
	p := filepath.Join(f.root, key+fileExt)
	// Ensure the resolved path is still under root.
	if filepath.Dir(p) != f.root {
		return "", fmt.Errorf("storage: key escapes cache root: %s", key)
	}
	return p, nil
}

// Get returns the value stored under key.
func (f *FS) Get(key string) (string, bool, error) {
	p, err := f.Path(key)
	if err != nil {
		return "", false, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("storage: read %s: %w", key, err)
	}
	return string(data), true, nil
}

// Set atomically writes value: tmp file → fsync → rename.
func (f *FS) Set(key, value string) error {
	p, err := f.Path(key)
	if err != nil {
		return err
	}
	if f.maxBytes > 0 {
		used, err := f.usage(key)
		if err != nil {
			return err
		}
		if used+int64(len(value)) > f.maxBytes {
			return fmt.Errorf("storage: set %s: %w", key, ErrQuotaExceeded)
		}
	}

	tmp, err := os.CreateTemp(f.root, ".taborg-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.WriteString(value); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, p); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}

// Delete removes key from the cache.
func (f *FS) Delete(key string) error {
	p, err := f.Path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage: delete %s: %w", key, err)
	}
	return nil
}

// Keys lists stored keys.
func (f *FS) Keys() ([]string, error) {
	entries, err := os.ReadDir(f.root)
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	var out []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, fileExt) || strings.HasPrefix(name, ".") {
			continue
		}
		out = append(out, strings.TrimSuffix(name, fileExt))
	}
	sort.Strings(out)
	return out, nil
}

// usage sums the size of every stored value except the one under skip.
func (f *FS) usage(skip string) (int64, error) {
	keys, err := f.Keys()
	if err != nil {
		return 0, err
	}
	var total int64
	for _, k := range keys {
		if k == skip {
			continue
		}
		info, err := os.Stat(filepath.Join(f.root, k+fileExt))
		if err != nil {
			continue
		}
		total += info.Size()
	}
	return total, nil
}
