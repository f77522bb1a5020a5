// Package logging provides structured logging utilities for the KB-maskin
// application.
//
// This package centralizes logging patterns to ensure consistent, structured
// logging throughout the codebase using the standard library's slog package.
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithOperation(slog.Default(), "kb.process")
//	logger.Info("processing batch",
//	    logging.Batch(name),
//	    logging.Status(logging.StatusSuccess))
//
// Errors are attached with a nil-safe helper:
//
//	logger.Warn("could not remove source", logging.Err(err))
package logging
