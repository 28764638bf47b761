package cliconfig

import "time"

// CLIConfig is the complete configuration for `mockserve serve`.
type CLIConfig struct {
	// Server settings
	Port          int           `json:"port"`
	ReadTimeout   time.Duration `json:"readTimeout"`
	WriteTimeout  time.Duration `json:"writeTimeout"`
	MaxUploadSize int64         `json:"maxUploadSize"`

	// Definition storage. MongoURI wins over DataFile; with neither set
	// definitions are kept in memory.
	MongoURI string `json:"mongodbUri,omitempty"`
	MongoDB  string `json:"mongodbDb"`
	DataFile string `json:"dataFile,omitempty"`
	Seed     string `json:"seed,omitempty"`

	// File storage
	UploadDir   string `json:"uploadDir"`
	S3Bucket    string `json:"s3Bucket,omitempty"`
	S3BucketURL string `json:"s3BucketUrl,omitempty"`
	S3Endpoint  string `json:"s3Endpoint,omitempty"`
	S3Region    string `json:"s3Region,omitempty"`
	CDNDomain   string `json:"cdnDomain,omitempty"`

	// Request log
	LogQueue      int `json:"logQueue"`
	MaxLogEntries int `json:"maxLogEntries"`

	// Operational logging
	LogLevel     string `json:"logLevel"`
	LogFormat    string `json:"logFormat"`
	LokiEndpoint string `json:"lokiEndpoint,omitempty"`

	// Sources tracks where each value came from (for debugging)
	Sources map[string]string `json:"-"`
}

// ConfigSource identifies where a config value originated.
const (
	SourceDefault = "default"
	SourceDotEnv  = "dotenv"
	SourceEnv     = "env"
	SourceFlag    = "flag"
)
