// Package cli provides the command-line interface for mockserve.
//
// Commands:
//   - serve: run the mock server in the foreground (the default command)
//   - config: print the effective configuration and where each value came from
//   - version: show build information
//
// Configuration is read from defaults, an optional .env file, the
// environment and finally flags; later sources win.
//
// Usage:
//
//	mockserve
//	mockserve serve --port 8080 --data-file mocks.json
//	mockserve serve --s3-bucket assets --cdn-domain d1234.cloudfront.net
//	mockserve serve --seed 'mocks/**/*.yaml'
//	mockserve config --json
//	mockserve version
package cli
