package logger

import "log/slog"

// Error wraps an error as a log attribute under the conventional key.
func Error(err error) slog.Attr {
	return slog.Any("error", err)
}

// Component tags records with the emitting subsystem.
func Component(name string) slog.Attr {
	return slog.String("component", name)
}
