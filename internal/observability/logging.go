// Package observability provides logging and metrics for the battle runtime.
package observability

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cory-johannsen/battlecore/internal/config"
)

// ServiceName is attached to every log line produced by NewLogger.
const ServiceName = "battlecore"

// NewLogger builds the process logger from cfg. Lines are never sampled:
// a battle emits its per-action lines in bursts and all of them matter.
//
// Precondition: cfg.Level must be one of "debug", "info", "warn", "error";
// cfg.Format must be "json" or "console". An empty cfg.Output means stderr.
// Postcondition: Returns a logger carrying the service field, or a non-nil error.
func NewLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", cfg.Level, err)
	}

	var enc zapcore.Encoder
	switch cfg.Format {
	case "json":
		ec := zap.NewProductionEncoderConfig()
		ec.EncodeTime = zapcore.ISO8601TimeEncoder
		enc = zapcore.NewJSONEncoder(ec)
	case "console":
		ec := zap.NewDevelopmentEncoderConfig()
		ec.EncodeTime = zapcore.ISO8601TimeEncoder
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		enc = zapcore.NewConsoleEncoder(ec)
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	output := cfg.Output
	if output == "" {
		output = "stderr"
	}
	sink, _, err := zap.Open(output)
	if err != nil {
		return nil, fmt.Errorf("opening log output %q: %w", output, err)
	}

	core := zapcore.NewCore(enc, sink, zap.NewAtomicLevelAt(level))
	return zap.New(core,
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.Fields(zap.String("service", ServiceName)),
	), nil
}
