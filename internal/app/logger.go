package app

import (
	"fmt"
	"io"
	"log/slog"
)

// Log formats accepted by -log-format.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

func parseLogLevel(name string) (slog.Level, error) {
	level, ok := logLevels[name]
	if !ok {
		return 0, fmt.Errorf("invalid log-level %q: must be 'debug', 'info', 'warn', or 'error'", name)
	}
	return level, nil
}

func checkLogFormat(name string) error {
	if name != LogFormatText && name != LogFormatJSON {
		return fmt.Errorf("invalid log-format %q: must be 'text' or 'json'", name)
	}
	return nil
}

// newLogger builds an isolated logger for cfg; the global logger is left
// alone. Every record carries the command being run.
func newLogger(cfg *Config, w io.Writer) (*slog.Logger, error) {
	level, err := parseLogLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	if err := checkLogFormat(cfg.LogFormat); err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(w, opts)
	if cfg.LogFormat == LogFormatJSON {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler).With("command", string(cfg.Command)), nil
}
