// Package logger configures the application's structured slog logger and
// carries request-scoped loggers through context.Context.
package logger
