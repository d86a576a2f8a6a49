package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	appscans "github.com/bryanwahyu/leakbridge/internal/application/scans"
)

// File keeps the most recent result in a JSON file so the CLI can show it
// from a later invocation. Secrets are masked before they touch disk.
type File struct {
	path string
	mu   sync.Mutex
}

var _ appscans.ResultStore = (*File)(nil)

func NewFile(path string) *File { return &File{path: path} }

func (f *File) Path() string { return f.path }

func (f *File) Put(_ context.Context, r *appscans.Result) error {
	data, err := json.MarshalIndent(r.Masked(), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("creating state dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".last-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.path)
}

func (f *File) Last(_ context.Context) (*appscans.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, appscans.ErrNoResult
	}
	if err != nil {
		return nil, err
	}
	var r appscans.Result
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", f.path, err)
	}
	return &r, nil
}

// Get only knows about the last result.
func (f *File) Get(ctx context.Context, id string) (*appscans.Result, error) {
	r, err := f.Last(ctx)
	if err != nil {
		return nil, err
	}
	if r.ID != id {
		return nil, appscans.ErrNoResult
	}
	return r, nil
}
