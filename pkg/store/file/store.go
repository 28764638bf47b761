// Package file provides a storage.MockStore persisted as a single JSON file.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/afero"

	"github.com/getmockd/mockserve/internal/storage"
	"github.com/getmockd/mockserve/pkg/logging"
	"github.com/getmockd/mockserve/pkg/mock"
)

// Current data format version for migration support
const dataVersion = 1

// DefaultSaveDebounce is how long the store waits after a change before
// writing the file.
const DefaultSaveDebounce = 500 * time.Millisecond

// FileStore keeps definitions in memory and writes them to a JSON file.
// Writes are debounced; Close flushes any pending change.
type FileStore struct {
	path string
	fs   afero.Fs
	log  *slog.Logger

	mem *storage.InMemoryMockStore

	// saveMu serializes snapshot and write so files land in change order.
	saveMu       sync.Mutex
	dirty        atomic.Bool
	saveDebounce time.Duration
	saveCh       chan struct{}
	closeCh      chan struct{}
	closeOnce    sync.Once
	closedCh     chan struct{} // signals when saveLoop has exited
}

// storeData is the on-disk layout.
type storeData struct {
	Version int                `json:"version"`
	Mocks   []*mock.Definition `json:"mocks"`
}

// Option configures a FileStore.
type Option func(*FileStore)

// WithFs sets the filesystem. Defaults to the OS filesystem.
func WithFs(fsys afero.Fs) Option {
	return func(s *FileStore) { s.fs = fsys }
}

// WithLogger sets the logger used for background save failures.
func WithLogger(log *slog.Logger) Option {
	return func(s *FileStore) {
		if log != nil {
			s.log = log
		}
	}
}

// WithSaveDebounce sets the delay between a change and the write.
func WithSaveDebounce(d time.Duration) Option {
	return func(s *FileStore) { s.saveDebounce = d }
}

// New creates a FileStore backed by the file at path. Call Open to load
// existing data and Close to flush.
func New(path string, opts ...Option) *FileStore {
	s := &FileStore{
		path:         path,
		fs:           afero.NewOsFs(),
		log:          logging.Nop(),
		mem:          storage.NewInMemoryMockStore(),
		saveDebounce: DefaultSaveDebounce,
		saveCh:       make(chan struct{}, 1),
		closeCh:      make(chan struct{}),
		closedCh:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	go s.saveLoop()
	return s
}

// Open loads definitions from disk. A missing file starts an empty store.
func (s *FileStore) Open(_ context.Context) error {
	if dir := filepath.Dir(s.path); dir != "" {
		if err := s.fs.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("create data directory: %w", err)
		}
	}

	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.mem.Load(nil)
			return nil
		}
		return fmt.Errorf("read data file: %w", err)
	}

	var stored storeData
	if err := json.Unmarshal(data, &stored); err != nil {
		return fmt.Errorf("parse data file %s: %w", s.path, err)
	}
	s.mem.Load(stored.Mocks)
	s.dirty.Store(false)
	return nil
}

// Close saves any pending changes. Safe to call multiple times.
func (s *FileStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.closeCh)
	})
	// Wait for saveLoop to complete its final save and exit
	<-s.closedCh
	return nil
}

// Path returns the data file path.
func (s *FileStore) Path() string {
	return s.path
}

// Define creates or replaces a definition and schedules a save.
func (s *FileStore) Define(ctx context.Context, d *mock.Definition) error {
	if err := s.mem.Define(ctx, d); err != nil {
		return err
	}
	s.markDirty()
	return nil
}

// Patch updates an existing definition and schedules a save.
func (s *FileStore) Patch(ctx context.Context, key mock.Key, p mock.Patch) error {
	if err := s.mem.Patch(ctx, key, p); err != nil {
		return err
	}
	s.markDirty()
	return nil
}

// Lookup returns the definition stored under key.
func (s *FileStore) Lookup(ctx context.Context, key mock.Key) (*mock.Definition, error) {
	return s.mem.Lookup(ctx, key)
}

// List returns all definitions.
func (s *FileStore) List(ctx context.Context) ([]*mock.Definition, error) {
	return s.mem.List(ctx)
}

// saveLoop handles debounced saving to prevent excessive disk writes.
func (s *FileStore) saveLoop() {
	defer close(s.closedCh)
	var timer *time.Timer
	for {
		select {
		case <-s.saveCh:
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(s.saveDebounce, func() {
				if s.dirty.Load() {
					if err := s.save(); err != nil {
						s.log.Error("failed to save mock definitions", "path", s.path, "error", err)
					}
				}
			})
		case <-s.closeCh:
			if timer != nil {
				timer.Stop()
			}
			if s.dirty.Load() {
				if err := s.save(); err != nil {
					s.log.Error("failed to save mock definitions on close", "path", s.path, "error", err)
				}
			}
			return
		}
	}
}

// ForceSave immediately writes the current definitions to disk.
func (s *FileStore) ForceSave() error {
	s.dirty.Store(true)
	return s.save()
}

// save writes a snapshot atomically: temp file, then rename.
func (s *FileStore) save() error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	// Clear before snapshotting so a concurrent change re-marks it.
	s.dirty.Store(false)
	defs, err := s.mem.List(context.Background())
	if err != nil {
		s.dirty.Store(true)
		return err
	}
	data, err := json.MarshalIndent(storeData{Version: dataVersion, Mocks: defs}, "", "  ")
	if err != nil {
		s.dirty.Store(true)
		return err
	}

	tmpFile := s.path + ".tmp"
	if err := afero.WriteFile(s.fs, tmpFile, data, 0600); err != nil {
		s.dirty.Store(true)
		return err
	}
	if err := s.fs.Rename(tmpFile, s.path); err != nil {
		_ = s.fs.Remove(tmpFile)
		s.dirty.Store(true)
		return err
	}
	return nil
}

// markDirty marks data as needing to be saved and wakes the save loop.
func (s *FileStore) markDirty() {
	s.dirty.Store(true)
	select {
	case s.saveCh <- struct{}{}:
	default:
		// Channel full, save already pending
	}
}

var _ storage.MockStore = (*FileStore)(nil)
