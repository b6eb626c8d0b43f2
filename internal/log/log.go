package log

import (
	"io"
	"os"
	"strings"
	"sync"

	charmlog "github.com/charmbracelet/log"
)

type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

var (
	logger     *charmlog.Logger
	loggerOnce sync.Once
)

// initLogger initializes the global logger to write to stderr with timestamps.
func initLogger() {
	loggerOnce.Do(func() {
		logger = newLogger(os.Stderr)
	})
}

func newLogger(w io.Writer) *charmlog.Logger {
	return charmlog.NewWithOptions(w, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      "2006-01-02T15:04:05.000Z07:00",
		Level:           charmlog.InfoLevel,
	})
}

// SetOutput redirects all log output to w. Tests use it to capture lines.
func SetOutput(w io.Writer) {
	initLogger()
	logger.SetOutput(w)
}

func SetLevel(l Level) {
	initLogger()
	logger.SetLevel(toCharm(l))
}

// ParseLevel maps a config value such as "debug" or "WARN" to a Level.
// Unknown values map to LevelInfo.
func ParseLevel(s string) Level {
	switch Level(strings.ToUpper(strings.TrimSpace(s))) {
	case LevelDebug:
		return LevelDebug
	case LevelWarn, "WARNING":
		return LevelWarn
	case LevelError:
		return LevelError
	default:
		return LevelInfo
	}
}

func Debug(msg string, kv ...any) {
	initLogger()
	logger.Debug(msg, pairs(kv)...)
}

func Info(msg string, kv ...any) {
	initLogger()
	logger.Info(msg, pairs(kv)...)
}

func Warn(msg string, kv ...any) {
	initLogger()
	logger.Warn(msg, pairs(kv)...)
}

func Error(msg string, err error, kv ...any) {
	initLogger()
	// Prepend error into key-value list.
	extended := append([]any{"err", err}, pairs(kv)...)
	logger.Error(msg, extended...)
}

func toCharm(l Level) charmlog.Level {
	switch l {
	case LevelDebug:
		return charmlog.DebugLevel
	case LevelWarn:
		return charmlog.WarnLevel
	case LevelError:
		return charmlog.ErrorLevel
	default:
		return charmlog.InfoLevel
	}
}

// pairs drops a trailing key without a value and any non-string key.
func pairs(kv []any) []any {
	out := make([]any, 0, len(kv))
	for i := 0; i+1 < len(kv); i += 2 {
		if _, ok := kv[i].(string); !ok {
			continue
		}
		out = append(out, kv[i], kv[i+1])
	}
	return out
}
