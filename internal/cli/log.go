package cli

import (
	"io"
	"log/slog"
)

func setupLogging(writer io.Writer, debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(
		writer,
		&slog.HandlerOptions{
			Level: level,
		},
	))
	slog.SetDefault(logger)
	return logger
}
