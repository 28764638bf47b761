package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/getmockd/mockserve/internal/cliconfig"
)

// configFlags holds the flags that override cliconfig values.
type configFlags struct {
	port          int
	readTimeout   time.Duration
	writeTimeout  time.Duration
	maxUploadSize int64

	mongoURI string
	mongoDB  string
	dataFile string
	seed     string

	uploadDir   string
	s3Bucket    string
	s3BucketURL string
	s3Endpoint  string
	s3Region    string
	cdnDomain   string

	logQueue      int
	maxLogEntries int

	logLevel     string
	logFormat    string
	lokiEndpoint string
}

func (f *configFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()

	// Server flags
	fs.IntVarP(&f.port, "port", "p", cliconfig.DefaultPort, "HTTP server port ($PORT)")
	fs.DurationVar(&f.readTimeout, "read-timeout", cliconfig.DefaultReadTimeout, "HTTP read timeout")
	fs.DurationVar(&f.writeTimeout, "write-timeout", cliconfig.DefaultWriteTimeout, "HTTP write timeout")
	fs.Int64Var(&f.maxUploadSize, "max-upload-size", cliconfig.DefaultMaxUploadSize, "Maximum multipart upload size in bytes")

	// Definition storage flags
	fs.StringVar(&f.mongoURI, "mongodb-uri", "", "MongoDB connection URI; enables the MongoDB store ($MONGODB_URI)")
	fs.StringVar(&f.mongoDB, "mongodb-db", cliconfig.DefaultMongoDB, "MongoDB database name ($MONGODB_DB)")
	fs.StringVar(&f.dataFile, "data-file", "", "JSON file for definitions when MongoDB is not configured")
	fs.StringVar(&f.seed, "seed", "", "Glob of YAML/JSON seed files loaded at startup")

	// File storage flags
	fs.StringVar(&f.uploadDir, "upload-dir", cliconfig.DefaultUploadDir, "Local directory for uploaded files ($UPLOAD_DIR)")
	fs.StringVar(&f.s3Bucket, "s3-bucket", "", "S3 bucket for uploaded files ($S3_BUCKET)")
	fs.StringVar(&f.s3BucketURL, "s3-bucket-url", "", "Public bucket base URL; serves files as redirects ($S3_BUCKET_URL)")
	fs.StringVar(&f.s3Endpoint, "s3-endpoint", "", "Custom S3 endpoint for MinIO or LocalStack ($S3_ENDPOINT)")
	fs.StringVar(&f.s3Region, "s3-region", "", "S3 region override ($S3_REGION)")
	fs.StringVar(&f.cdnDomain, "cdn-domain", "", "CDN domain; serves files as redirects ($CLOUDFRONT_DOMAIN)")

	// Request log flags
	fs.IntVar(&f.logQueue, "log-queue", cliconfig.DefaultLogQueue, "Request log queue size")
	fs.IntVar(&f.maxLogEntries, "max-log-entries", cliconfig.DefaultMaxLogEntries, "Request log entries kept in memory without MongoDB")

	// Logging flags
	fs.StringVar(&f.logLevel, "log-level", cliconfig.DefaultLogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&f.logFormat, "log-format", cliconfig.DefaultLogFormat, "Log format (text, json)")
	fs.StringVar(&f.lokiEndpoint, "loki-endpoint", "", "Loki push endpoint for log aggregation ($LOKI_ENDPOINT)")
}

// apply copies the flags the user set onto cfg.
func (f *configFlags) apply(cmd *cobra.Command, cfg *cliconfig.CLIConfig) {
	if cfg.Sources == nil {
		cfg.Sources = make(map[string]string)
	}
	set := func(flag, name string, assign func()) {
		if cmd.Flags().Changed(flag) {
			assign()
			cfg.Sources[name] = cliconfig.SourceFlag
		}
	}

	set("port", "port", func() { cfg.Port = f.port })
	set("read-timeout", "readTimeout", func() { cfg.ReadTimeout = f.readTimeout })
	set("write-timeout", "writeTimeout", func() { cfg.WriteTimeout = f.writeTimeout })
	set("max-upload-size", "maxUploadSize", func() { cfg.MaxUploadSize = f.maxUploadSize })
	set("mongodb-uri", "mongodbUri", func() { cfg.MongoURI = f.mongoURI })
	set("mongodb-db", "mongodbDb", func() { cfg.MongoDB = f.mongoDB })
	set("data-file", "dataFile", func() { cfg.DataFile = f.dataFile })
	set("seed", "seed", func() { cfg.Seed = f.seed })
	set("upload-dir", "uploadDir", func() { cfg.UploadDir = f.uploadDir })
	set("s3-bucket", "s3Bucket", func() { cfg.S3Bucket = f.s3Bucket })
	set("s3-bucket-url", "s3BucketUrl", func() { cfg.S3BucketURL = f.s3BucketURL })
	set("s3-endpoint", "s3Endpoint", func() { cfg.S3Endpoint = f.s3Endpoint })
	set("s3-region", "s3Region", func() { cfg.S3Region = f.s3Region })
	set("cdn-domain", "cdnDomain", func() { cfg.CDNDomain = f.cdnDomain })
	set("log-queue", "logQueue", func() { cfg.LogQueue = f.logQueue })
	set("max-log-entries", "maxLogEntries", func() { cfg.MaxLogEntries = f.maxLogEntries })
	set("log-level", "logLevel", func() { cfg.LogLevel = f.logLevel })
	set("log-format", "logFormat", func() { cfg.LogFormat = f.logFormat })
	set("loki-endpoint", "lokiEndpoint", func() { cfg.LokiEndpoint = f.lokiEndpoint })
}

// resolveConfig layers defaults, .env, the environment and flags. The
// returned config is non-nil when only validation failed.
func resolveConfig(cmd *cobra.Command, f *configFlags) (*cliconfig.CLIConfig, error) {
	cfg, err := cliconfig.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	f.apply(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
