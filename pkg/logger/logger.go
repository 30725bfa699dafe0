package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap.Logger so call sites depend on a single package.
type Logger struct {
	*zap.Logger
}

// New creates a logger with the given level (debug/info/warn/error) and
// encoding (json/console).
func New(level, encoding string) (*Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	if encoding != "" {
		cfg.Encoding = encoding
	}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	l, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return &Logger{l}, nil
}

// NewNop returns a logger that discards everything. Intended for tests.
func NewNop() *Logger {
	return &Logger{zap.NewNop()}
}

// Field helpers keep zap out of the import lists of callers.

func StringField(key, value string) zap.Field { return zap.String(key, value) }

func IntField(key string, value int) zap.Field { return zap.Int(key, value) }

func Float64Field(key string, value float64) zap.Field { return zap.Float64(key, value) }

func BoolField(key string, value bool) zap.Field { return zap.Bool(key, value) }

func ErrorField(err error) zap.Field { return zap.Error(err) }

func Field(key string, value interface{}) zap.Field { return zap.Any(key, value) }
