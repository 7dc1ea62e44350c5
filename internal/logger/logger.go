package logger

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum enabled level: "debug", "info", "warn", "error".
	// Default: "info"
	Level string

	// Encoding is "console" (human-readable) or "json".
	// Default: "console"
	Encoding string

	// Output receives log entries. Default: os.Stderr, so that scan results
	// on stdout stay pipeable.
	Output io.Writer
}

// New builds a logger from cfg. A nil cfg yields the defaults.
func New(cfg *Config) (*zap.Logger, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	levelName := cfg.Level
	if levelName == "" {
		levelName = "info"
	}
	encoding := cfg.Encoding
	if encoding == "" {
		encoding = "console"
	}
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(levelName)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", levelName, err)
	}

	var encoder zapcore.Encoder
	switch encoding {
	case "console":
		ec := zap.NewDevelopmentEncoderConfig()
		ec.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
		ec.CallerKey = zapcore.OmitKey
		encoder = zapcore.NewConsoleEncoder(ec)
	case "json":
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	default:
		return nil, fmt.Errorf("invalid log encoding %q: want console or json", encoding)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(out), level)
	return zap.New(core), nil
}

// WithComponent returns a logger with a "component" field.
func WithComponent(logger *zap.Logger, component string) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger.With(zap.String("component", component))
}
