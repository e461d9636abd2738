package utils

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
)

var ErrUnknownLogLevel = errors.New("unexpected log level")

var logLevels = map[string]slog.Level{
	"error": slog.LevelError,
	"warn":  slog.LevelWarn,
	"info":  slog.LevelInfo,
	"debug": slog.LevelDebug,
}

// Install the default slog logger used by chew and every device it opens.
//
// logLevel is one of "none", "error", "warn", "info" or "debug"; "none" discards
// everything. Records go to stdout as text, or as JSON to logFile when it is set,
// so rendered sessions can be inspected alongside their .wav output.
//
// The mixing callback never logs, so the level only affects startup, producers
// and teardown. The returned file, if any, should be closed at shutdown:
//
//	logFilePointer, err := utils.ConfigureDefaultLogger(level, file, slog.HandlerOptions{})
//	if logFilePointer != nil {
//		defer logFilePointer.Close()
//	}
func ConfigureDefaultLogger(logLevel string, logFile string, loggerOptions slog.HandlerOptions) (*os.File, error) {
	if logLevel == "none" {
		slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
		return nil, nil
	}

	level, ok := logLevels[logLevel]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLogLevel, logLevel)
	}
	loggerOptions.Level = level

	// --------------------------------------------------------------------------------

	if logFile == "" {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &loggerOptions)))
		return nil, nil
	}

	logFilePointer, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(logFilePointer, &loggerOptions)))
	return logFilePointer, nil
}
