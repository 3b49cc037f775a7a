package log

import (
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// This package is a thin key-value facade over zerolog so call sites can
// stay in the form:
//
//	appLog.Info("ics export built", "event_count", n)
//	appLog.Error("persist failed", err, "key", key)

type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelError Level = "ERROR"
)

var (
	logger     zerolog.Logger
	loggerOnce sync.Once
)

func initLogger() {
	loggerOnce.Do(func() {
		zerolog.TimeFieldFormat = time.RFC3339Nano
		logger = zerolog.New(os.Stderr).Level(zerolog.InfoLevel).With().Timestamp().Logger()
	})
}

// SetLevel adjusts the minimum level. Unknown values fall back to INFO.
func SetLevel(l Level) {
	initLogger()
	switch l {
	case LevelDebug:
		logger = logger.Level(zerolog.DebugLevel)
	case LevelError:
		logger = logger.Level(zerolog.ErrorLevel)
	default:
		logger = logger.Level(zerolog.InfoLevel)
	}
}

func Debug(msg string, kv ...any) {
	initLogger()
	applyKVs(logger.Debug(), kv).Msg(msg)
}

func Info(msg string, kv ...any) {
	initLogger()
	applyKVs(logger.Info(), kv).Msg(msg)
}

func Error(msg string, err error, kv ...any) {
	initLogger()
	applyKVs(logger.Error().Err(err), kv).Msg(msg)
}

// applyKVs attaches kv as pairs: key, value, key, value, ...
// Non-string keys and a trailing odd value are ignored.
func applyKVs(ev *zerolog.Event, kv []any) *zerolog.Event {
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		ev = ev.Interface(key, kv[i+1])
	}
	return ev
}
