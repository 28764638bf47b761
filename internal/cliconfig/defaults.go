package cliconfig

import "time"

// Defaults.
const (
	DefaultPort          = 3000
	DefaultReadTimeout   = 60 * time.Second
	DefaultWriteTimeout  = 60 * time.Second
	DefaultMaxUploadSize = 32 << 20
	DefaultMongoDB       = "mock-services"
	DefaultUploadDir     = "uploads"
	DefaultLogQueue      = 1024
	DefaultMaxLogEntries = 1000
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "text"
)

// NewDefault creates a CLIConfig with default values.
func NewDefault() *CLIConfig {
	cfg := &CLIConfig{
		Port:          DefaultPort,
		ReadTimeout:   DefaultReadTimeout,
		WriteTimeout:  DefaultWriteTimeout,
		MaxUploadSize: DefaultMaxUploadSize,
		MongoDB:       DefaultMongoDB,
		UploadDir:     DefaultUploadDir,
		LogQueue:      DefaultLogQueue,
		MaxLogEntries: DefaultMaxLogEntries,
		LogLevel:      DefaultLogLevel,
		LogFormat:     DefaultLogFormat,
		Sources:       make(map[string]string),
	}
	for _, name := range []string{
		"port", "readTimeout", "writeTimeout", "maxUploadSize", "mongodbDb",
		"uploadDir", "logQueue", "maxLogEntries", "logLevel", "logFormat",
	} {
		cfg.Sources[name] = SourceDefault
	}
	return cfg
}
