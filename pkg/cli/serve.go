package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/getmockd/mockserve/internal/cliconfig"
	"github.com/getmockd/mockserve/pkg/cli/internal/output"
	"github.com/getmockd/mockserve/pkg/logging"
)

// lokiFlushTimeout bounds the final log push on exit.
const lokiFlushTimeout = 5 * time.Second

func newServeCmd() *cobra.Command {
	f := &configFlags{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the mock server (default command)",
		Long: `Start the mock server in the foreground.

Definitions are stored in MongoDB when --mongodb-uri is set, otherwise in
--data-file when set, otherwise in memory. Uploaded files go to --s3-bucket
when set, with a local fallback under --upload-dir.

The server shuts down gracefully on SIGINT or SIGTERM.`,
		Example: `  # Start with defaults on port 3000
  mockserve serve

  # Persist definitions to a JSON file and load seeds
  mockserve serve --data-file mocks.json --seed 'mocks/*.yaml'

  # Store definitions in MongoDB and uploads in S3 behind CloudFront
  mockserve serve --mongodb-uri mongodb://localhost:27017 \
    --s3-bucket assets --cdn-domain d1234.cloudfront.net

  # Use a local MinIO for uploads
  mockserve serve --s3-bucket mocks --s3-endpoint http://localhost:9000 --s3-region us-east-1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd, f)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, cmd.ErrOrStderr())
		},
	}
	f.register(cmd)
	return cmd
}

// runServe builds the server from cfg and blocks until ctx is done or the
// server fails.
func runServe(ctx context.Context, cfg *cliconfig.CLIConfig, stderr io.Writer) error {
	level := logging.ParseLevel(cfg.LogLevel)
	log := logging.New(logging.Config{
		Level:   level,
		Format:  logging.ParseFormat(cfg.LogFormat),
		Output:  stderr,
		Service: "mockserve",
	})

	if cfg.LokiEndpoint != "" {
		loki := logging.NewLokiHandler(cfg.LokiEndpoint,
			logging.WithLokiLabels(map[string]string{
				"service": "mockserve",
				"port":    strconv.Itoa(cfg.Port),
			}),
			logging.WithLokiLevel(level),
		)
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), lokiFlushTimeout)
			defer cancel()
			if err := loki.Close(flushCtx); err != nil {
				output.Warn(stderr, "flush logs to loki: %v", err)
			}
		}()
		log = logging.Tee(log, loki)
		log.Info("log aggregation enabled", "endpoint", cfg.LokiEndpoint)
	}

	app, err := newServeApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	return app.run(ctx)
}
