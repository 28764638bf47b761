package blob

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/getmockd/mockserve/pkg/logging"
)

// RemoteBackend is an object store that Storage can upload to and read from.
// S3Backend is the production implementation.
type RemoteBackend interface {
	Put(ctx context.Context, key string, data []byte) (RemoteLocator, error)
	Get(ctx context.Context, loc RemoteLocator) ([]byte, error)
}

// Storage writes uploads to a remote backend with a local fallback and serves
// them back as redirects or byte streams.
type Storage struct {
	local     *LocalBackend
	remote    RemoteBackend
	cdnDomain string
	bucketURL string
	log       *slog.Logger
}

// Option configures a Storage.
type Option func(*Storage)

// WithRemote enables uploads to the given remote backend.
func WithRemote(r RemoteBackend) Option {
	return func(s *Storage) {
		s.remote = r
	}
}

// WithCDNDomain serves remote files by redirecting to https://<domain>/<key>.
func WithCDNDomain(domain string) Option {
	return func(s *Storage) {
		s.cdnDomain = domain
	}
}

// WithBucketURL serves remote files by redirecting to <url>/<key>.
// A CDN domain takes precedence when both are set.
func WithBucketURL(url string) Option {
	return func(s *Storage) {
		s.bucketURL = url
	}
}

// WithLogger sets the operational logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Storage) {
		if log != nil {
			s.log = log
		}
	}
}

// New creates a Storage. local is required: it is the only backend when no
// remote is configured and the fallback when a remote upload fails.
func New(local *LocalBackend, opts ...Option) *Storage {
	if local == nil {
		local = NewLocalBackend(DefaultUploadDir)
	}
	s := &Storage{
		local: local,
		log:   logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HasRemote reports whether a remote backend is configured.
func (s *Storage) HasRemote() bool {
	return s.remote != nil
}

// RedirectMode reports whether remote files are served by redirect.
func (s *Storage) RedirectMode() bool {
	return s.cdnDomain != "" || s.bucketURL != ""
}

// Ingest stores data and returns where it ended up. With a remote backend the
// upload is attempted there first; any failure falls back to local disk.
func (s *Storage) Ingest(ctx context.Context, data []byte, suggestedName string) (Locator, error) {
	if s.remote != nil {
		loc, err := s.remote.Put(ctx, UniqueName(suggestedName), data)
		if err == nil {
			return loc, nil
		}
		s.log.Error("remote upload failed, falling back to local storage", "error", err)
	}

	loc, err := s.local.Write(UniqueName(suggestedName), data)
	if err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}
	return loc, nil
}

// Retrieve resolves a locator into a redirect, a byte stream, NotFound or
// ReadFailure.
func (s *Storage) Retrieve(ctx context.Context, loc Locator) Outcome {
	switch l := loc.(type) {
	case RemoteLocator:
		return s.retrieveRemote(ctx, l)
	case LocalLocator:
		data, err := s.local.Read(l)
		if err != nil {
			return failure(err)
		}
		return Stream{Data: data, Filename: l.Filename()}
	default:
		return NotFound{}
	}
}

func (s *Storage) retrieveRemote(ctx context.Context, loc RemoteLocator) Outcome {
	if url := s.redirectURL(loc.Key); url != "" {
		return Redirect{URL: url}
	}
	if s.remote == nil {
		return ReadFailure{Err: errors.New("remote storage is not configured")}
	}
	data, err := s.remote.Get(ctx, loc)
	if err != nil {
		return failure(err)
	}
	return Stream{Data: data, Filename: loc.Filename()}
}

func (s *Storage) redirectURL(key string) string {
	key = strings.Trim(key, "/")
	switch {
	case s.cdnDomain != "":
		domain := strings.Trim(s.cdnDomain, "/")
		if !strings.Contains(domain, "://") {
			domain = "https://" + domain
		}
		return domain + "/" + key
	case s.bucketURL != "":
		return strings.Trim(s.bucketURL, "/") + "/" + key
	}
	return ""
}

func failure(err error) Outcome {
	if errors.Is(err, ErrNotExist) {
		return NotFound{}
	}
	return ReadFailure{Err: err}
}

// UniqueName prefixes the base of name with a random UUID.
func UniqueName(name string) string {
	return uuid.NewString() + "_" + SanitizeName(name)
}

// SanitizeName strips directory components from an uploaded file name.
func SanitizeName(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." {
		return "upload.bin"
	}
	return filepath.Clean(name)
}
