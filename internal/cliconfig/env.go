package cliconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Environment variable names
const (
	EnvPort          = "PORT"
	EnvMongoURI      = "MONGODB_URI"
	EnvMongoDB       = "MONGODB_DB"
	EnvS3Bucket      = "S3_BUCKET"
	EnvS3BucketURL   = "S3_BUCKET_URL"
	EnvS3Endpoint    = "S3_ENDPOINT"
	EnvS3Region      = "S3_REGION"
	EnvCDNDomain     = "CLOUDFRONT_DOMAIN"
	EnvUploadDir     = "UPLOAD_DIR"
	EnvDataFile      = "MOCKSERVE_DATA_FILE"
	EnvSeed          = "MOCKSERVE_SEED"
	EnvMaxUploadSize = "MOCKSERVE_MAX_UPLOAD_SIZE"
	EnvLogQueue      = "MOCKSERVE_LOG_QUEUE"
	EnvMaxLogEntries = "MOCKSERVE_MAX_LOG_ENTRIES"
	EnvReadTimeout   = "MOCKSERVE_READ_TIMEOUT"
	EnvWriteTimeout  = "MOCKSERVE_WRITE_TIMEOUT"
	EnvLogLevel      = "LOG_LEVEL"
	EnvLogFormat     = "LOG_FORMAT"
	EnvLokiEndpoint  = "LOKI_ENDPOINT"
)

// DotEnvFile is the optional env file read from the working directory.
const DotEnvFile = ".env"

// LoadDotEnv loads variables from the given files (default .env) into the
// process environment without overriding variables that are already set.
// Missing files are ignored. It returns the names of the variables it set.
func LoadDotEnv(files ...string) ([]string, error) {
	if len(files) == 0 {
		files = []string{DotEnvFile}
	}
	var set []string
	for _, file := range files {
		values, err := godotenv.Read(file)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return set, fmt.Errorf("read %s: %w", file, err)
		}
		for k, v := range values {
			if _, exists := os.LookupEnv(k); exists {
				continue
			}
			if err := os.Setenv(k, v); err != nil {
				return set, err
			}
			set = append(set, k)
		}
	}
	return set, nil
}

// LoadEnvConfig loads configuration from environment variables.
// It only sets values that are present in the environment. Variables named
// in fromDotEnv are recorded with SourceDotEnv.
func LoadEnvConfig(cfg *CLIConfig, fromDotEnv ...string) error {
	if cfg.Sources == nil {
		cfg.Sources = make(map[string]string)
	}
	dotenv := make(map[string]bool, len(fromDotEnv))
	for _, k := range fromDotEnv {
		dotenv[k] = true
	}
	source := func(env string) string {
		if dotenv[env] {
			return SourceDotEnv
		}
		return SourceEnv
	}

	var errs []error
	str := func(env, name string, dst *string) {
		if v := os.Getenv(env); v != "" {
			*dst = v
			cfg.Sources[name] = source(env)
		}
	}
	integer := func(env, name string, dst *int) {
		if v := os.Getenv(env); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %q is not an integer", env, v))
				return
			}
			*dst = n
			cfg.Sources[name] = source(env)
		}
	}
	duration := func(env, name string, dst *time.Duration) {
		if v := os.Getenv(env); v != "" {
			d, err := parseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", env, err))
				return
			}
			*dst = d
			cfg.Sources[name] = source(env)
		}
	}

	integer(EnvPort, "port", &cfg.Port)
	str(EnvMongoURI, "mongodbUri", &cfg.MongoURI)
	str(EnvMongoDB, "mongodbDb", &cfg.MongoDB)
	str(EnvS3Bucket, "s3Bucket", &cfg.S3Bucket)
	str(EnvS3BucketURL, "s3BucketUrl", &cfg.S3BucketURL)
	str(EnvS3Endpoint, "s3Endpoint", &cfg.S3Endpoint)
	str(EnvS3Region, "s3Region", &cfg.S3Region)
	str(EnvCDNDomain, "cdnDomain", &cfg.CDNDomain)
	str(EnvUploadDir, "uploadDir", &cfg.UploadDir)
	str(EnvDataFile, "dataFile", &cfg.DataFile)
	str(EnvSeed, "seed", &cfg.Seed)
	integer(EnvLogQueue, "logQueue", &cfg.LogQueue)
	integer(EnvMaxLogEntries, "maxLogEntries", &cfg.MaxLogEntries)
	duration(EnvReadTimeout, "readTimeout", &cfg.ReadTimeout)
	duration(EnvWriteTimeout, "writeTimeout", &cfg.WriteTimeout)
	str(EnvLogLevel, "logLevel", &cfg.LogLevel)
	str(EnvLogFormat, "logFormat", &cfg.LogFormat)
	str(EnvLokiEndpoint, "lokiEndpoint", &cfg.LokiEndpoint)

	if v := os.Getenv(EnvMaxUploadSize); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %q is not an integer", EnvMaxUploadSize, v))
		} else {
			cfg.MaxUploadSize = n
			cfg.Sources["maxUploadSize"] = source(EnvMaxUploadSize)
		}
	}

	return errors.Join(errs...)
}

// parseDuration accepts Go durations ("90s") or whole seconds ("90").
func parseDuration(v string) (time.Duration, error) {
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%q is not a duration", v)
	}
	return d, nil
}
