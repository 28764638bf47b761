package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/getmockd/mockserve/internal/storage"
	"github.com/getmockd/mockserve/pkg/blob"
	"github.com/getmockd/mockserve/pkg/logging"
	"github.com/getmockd/mockserve/pkg/mock"
)

// Seeder registers seed entries through the normal define path.
type Seeder struct {
	store storage.MockStore
	blobs *blob.Storage
	log   *slog.Logger
}

// NewSeeder creates a Seeder.
func NewSeeder(store storage.MockStore, blobs *blob.Storage, log *slog.Logger) *Seeder {
	if log == nil {
		log = logging.Nop()
	}
	return &Seeder{store: store, blobs: blobs, log: log}
}

// Apply defines every entry, uploading file entries first. It stops at the
// first failure. Later entries replace earlier ones with the same route key.
func (s *Seeder) Apply(ctx context.Context, entries []SeedEntry) (int, error) {
	for i := range entries {
		e := &entries[i]
		def, err := s.definition(ctx, e)
		if err != nil {
			return i, fmt.Errorf("%s: %s %s: %w", e.Source, e.Method, e.Path, err)
		}
		if err := s.store.Define(ctx, def); err != nil {
			return i, fmt.Errorf("%s: %s %s: %w", e.Source, e.Method, e.Path, err)
		}
		s.log.Debug("seeded mock", "method", def.Method, "path", def.Path, "type", def.ResponseType, "source", e.Source)
	}
	return len(entries), nil
}

// ApplyFiles loads pattern and applies the result.
func (s *Seeder) ApplyFiles(ctx context.Context, pattern string) (int, error) {
	entries, err := LoadSeedFiles(pattern)
	if err != nil {
		return 0, err
	}
	return s.Apply(ctx, entries)
}

func (s *Seeder) definition(ctx context.Context, e *SeedEntry) (*mock.Definition, error) {
	if e.File == "" {
		return e.Definition()
	}

	data, err := os.ReadFile(e.FilePath())
	if err != nil {
		return nil, fmt.Errorf("read seed file content: %w", err)
	}
	loc, err := s.blobs.Ingest(ctx, data, e.File)
	if err != nil {
		return nil, err
	}
	key := mock.NormalizeKey(e.Method, e.Path)
	return &mock.Definition{
		Method:       key.Method,
		Path:         key.Path,
		StatusCode:   e.StatusCode,
		ResponseType: mock.ResponseFile,
		Data:         mock.FileData{Locator: loc},
	}, nil
}
