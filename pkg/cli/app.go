package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/getmockd/mockserve/internal/cliconfig"
	"github.com/getmockd/mockserve/internal/storage"
	"github.com/getmockd/mockserve/pkg/blob"
	"github.com/getmockd/mockserve/pkg/config"
	"github.com/getmockd/mockserve/pkg/engine"
	"github.com/getmockd/mockserve/pkg/requestlog"
	"github.com/getmockd/mockserve/pkg/store/file"
	"github.com/getmockd/mockserve/pkg/store/mongo"
)

// shutdownTimeout is the maximum time to wait for graceful shutdown.
const shutdownTimeout = 30 * time.Second

// serveApp holds all runtime state for the serve command.
type serveApp struct {
	cfg      *cliconfig.CLIConfig
	log      *slog.Logger
	store    storage.MockStore
	blobs    *blob.Storage
	requests *requestlog.MemoryStore // nil when requests go to MongoDB
	recorder *requestlog.Recorder
	server   *engine.Server

	// closers run in reverse registration order on shutdown.
	closers []closer
}

type closer struct {
	name  string
	close func(context.Context) error
}

// newServeApp opens storage, runs seeds and builds the server. Anything
// opened before a failure is closed again.
func newServeApp(ctx context.Context, cfg *cliconfig.CLIConfig, log *slog.Logger) (_ *serveApp, err error) {
	a := &serveApp{cfg: cfg, log: log}
	defer func() {
		if err != nil {
			_ = a.closeAll(context.Background())
		}
	}()

	sink, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}
	if a.blobs, err = a.openBlobs(ctx); err != nil {
		return nil, err
	}

	a.recorder = requestlog.NewRecorder(sink,
		requestlog.WithQueueSize(cfg.LogQueue),
		requestlog.WithLogger(log.With("component", "requestlog")),
	)
	a.onClose("request log", a.recorder.Close)

	if cfg.Seed != "" {
		n, err := config.NewSeeder(a.store, a.blobs, log.With("component", "seed")).ApplyFiles(ctx, cfg.Seed)
		if err != nil {
			return nil, fmt.Errorf("seed mocks: %w", err)
		}
		log.Info("seeded mocks", "count", n, "pattern", cfg.Seed)
	}

	a.server = engine.NewServer(engine.Deps{
		Store:         a.store,
		Blobs:         a.blobs,
		Recorder:      a.recorder,
		MaxUploadSize: cfg.MaxUploadSize,
	},
		engine.WithPort(cfg.Port),
		engine.WithLogger(log.With("component", "engine")),
		engine.WithTimeouts(cfg.ReadTimeout, cfg.WriteTimeout),
	)
	return a, nil
}

// openStore selects the definition store and returns the matching request
// log sink.
func (a *serveApp) openStore(ctx context.Context) (requestlog.Sink, error) {
	cfg := a.cfg
	switch cfg.StoreKind() {
	case "mongodb":
		client, err := mongo.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		a.onClose("mongodb", client.Close)
		a.store = client.Mocks()
		return client.Requests(), nil
	case "file":
		fs := file.New(cfg.DataFile, file.WithLogger(a.log.With("component", "store")))
		if err := fs.Open(ctx); err != nil {
			return nil, err
		}
		a.onClose("data file", func(context.Context) error { return fs.Close() })
		a.store = fs
	default:
		a.store = storage.NewInMemoryMockStore()
	}
	a.requests = requestlog.NewMemoryStore(cfg.MaxLogEntries)
	return a.requests, nil
}

func (a *serveApp) openBlobs(ctx context.Context) (*blob.Storage, error) {
	cfg := a.cfg
	opts := []blob.Option{blob.WithLogger(a.log.With("component", "blob"))}
	if cfg.S3Bucket != "" {
		client, err := blob.NewS3Client(ctx, blob.S3Config{Region: cfg.S3Region, Endpoint: cfg.S3Endpoint})
		if err != nil {
			return nil, err
		}
		opts = append(opts, blob.WithRemote(blob.NewS3Backend(client, cfg.S3Bucket)))
		if cfg.CDNDomain != "" {
			opts = append(opts, blob.WithCDNDomain(cfg.CDNDomain))
		}
		if cfg.S3BucketURL != "" {
			opts = append(opts, blob.WithBucketURL(cfg.S3BucketURL))
		}
	}
	return blob.New(blob.NewLocalBackend(cfg.UploadDir), opts...), nil
}

func (a *serveApp) onClose(name string, fn func(context.Context) error) {
	a.closers = append(a.closers, closer{name: name, close: fn})
}

// run starts the server and blocks until ctx is cancelled or serving fails,
// then shuts everything down.
func (a *serveApp) run(ctx context.Context) error {
	if err := a.server.Start(); err != nil {
		_ = a.closeAll(context.Background())
		return err
	}
	a.logStartup()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(a.server.Serve)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})
	serveErr := g.Wait()

	closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return errors.Join(serveErr, a.closeAll(closeCtx))
}

func (a *serveApp) logStartup() {
	uploads := "local"
	if a.blobs.HasRemote() {
		uploads = "s3:" + a.cfg.S3Bucket
		if a.blobs.RedirectMode() {
			uploads += " (redirect)"
		}
	}
	requests := "mongodb"
	if a.requests != nil {
		requests = "memory"
	}
	a.log.Info("mockserve started",
		"addr", a.server.Addr(),
		"store", a.cfg.StoreKind(),
		"uploads", uploads,
		"uploadDir", a.cfg.UploadDir,
		"requestLog", requests,
	)
}

// closeAll runs the registered closers once, newest first.
func (a *serveApp) closeAll(ctx context.Context) error {
	closers := a.closers
	a.closers = nil

	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		c := closers[i]
		if err := c.close(ctx); err != nil {
			a.log.Warn("shutdown step failed", "step", c.name, "error", err)
			errs = append(errs, fmt.Errorf("close %s: %w", c.name, err))
		}
	}
	if a.recorder != nil {
		a.log.Debug("request log closed", "dropped", a.recorder.Dropped(), "failed", a.recorder.Failed())
	}
	return errors.Join(errs...)
}
