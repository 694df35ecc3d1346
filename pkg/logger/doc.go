// Package logger provides structured logging with configurable log levels.
// It wraps the standard log/slog package and picks a JSON or text handler
// depending on the deployment environment.
package logger
