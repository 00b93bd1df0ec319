package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/gekatateam/parrot/config"
	"github.com/gekatateam/parrot/pkg/prettylog"
)

var Default = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
	Level:       slog.LevelInfo,
	ReplaceAttr: attrReplacer,
}))

var (
	mu                = &sync.Mutex{}
	current           = config.Default.Common
	output  io.Writer = os.Stdout
)

func Init(cfg config.Common) error {
	logger, err := New(cfg, os.Stdout)
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()
	Default, current, output = logger, cfg, os.Stdout

	return nil
}

// New builds a logger from common settings writing to w.
func New(cfg config.Common, w io.Writer) (*slog.Logger, error) {
	level, err := ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	var opts = &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: attrReplacer,
	}
	var handler slog.Handler = nil

	switch f := cfg.LogFormat; f {
	case "logfmt":
		handler = slog.NewTextHandler(w, opts)
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	case "pretty":
		handler = prettylog.New(w, opts)
	default:
		return nil, fmt.Errorf("unknown log format: %v", f)
	}

	logger := slog.New(handler)
	for k, v := range cfg.LogFields {
		logger = logger.With(k, v)
	}

	return logger, nil
}

// Leveled returns a logger that shares Default format and fields
// but has its own level; empty level means Default itself.
func Leveled(level string) (*slog.Logger, error) {
	mu.Lock()
	defer mu.Unlock()

	if len(level) == 0 {
		return Default, nil
	}

	cfg := current
	cfg.LogLevel = level
	return New(cfg, output)
}

func ParseLevel(l string) (slog.Level, error) {
	switch l {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %v", l)
	}
}

func Mock() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func attrReplacer(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey {
		a.Key = "@timestamp"
	}

	if a.Key == slog.MessageKey {
		a.Key = "message"
	}

	return a
}
