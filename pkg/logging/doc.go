// Package logging configures the operational logger for mockserve.
//
// It wraps log/slog so every component logs the same way. Operational logs
// are for whoever runs the server; the per-request history captured for users
// lives in package requestlog.
//
//	logger := logging.New(logging.Config{
//	    Level:  logging.LevelInfo,
//	    Format: logging.FormatJSON,
//	})
//	logger.Info("server started", "port", 3000)
//
// Components accept a *slog.Logger through their constructor or an option and
// fall back to Nop() when none is given.
package logging
