package cliconfig

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// LoadAll builds the configuration from defaults, .env and the environment.
// Flags are applied afterwards by the caller.
func LoadAll() (*CLIConfig, error) {
	cfg := NewDefault()

	fromDotEnv, err := LoadDotEnv()
	if err != nil {
		return nil, err
	}
	if err := LoadEnvConfig(cfg, fromDotEnv...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges and combinations.
func (c *CLIConfig) Validate() error {
	var errs []error
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d is out of range (0-65535)", c.Port))
	}
	if c.ReadTimeout < 0 {
		errs = append(errs, fmt.Errorf("readTimeout %s must not be negative", c.ReadTimeout))
	}
	if c.WriteTimeout < 0 {
		errs = append(errs, fmt.Errorf("writeTimeout %s must not be negative", c.WriteTimeout))
	}
	if c.MaxUploadSize <= 0 {
		errs = append(errs, fmt.Errorf("maxUploadSize %d must be positive", c.MaxUploadSize))
	}
	if c.LogQueue <= 0 {
		errs = append(errs, fmt.Errorf("logQueue %d must be positive", c.LogQueue))
	}
	if c.UploadDir == "" {
		errs = append(errs, errors.New("uploadDir must not be empty"))
	}
	if c.S3Bucket == "" && (c.S3BucketURL != "" || c.CDNDomain != "" || c.S3Endpoint != "") {
		errs = append(errs, errors.New("S3 redirect and endpoint settings require s3Bucket"))
	}
	if c.LokiEndpoint != "" {
		if u, err := url.Parse(c.LokiEndpoint); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("lokiEndpoint %q must be an absolute URL", c.LokiEndpoint))
		}
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logFormat %q must be text or json", c.LogFormat))
	}
	return errors.Join(errs...)
}

// StoreKind names the definition store the configuration selects.
func (c *CLIConfig) StoreKind() string {
	switch {
	case c.MongoURI != "":
		return "mongodb"
	case c.DataFile != "":
		return "file"
	default:
		return "memory"
	}
}
