// Package logging builds the zap logger shared by the command line.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/BlackOrder/zollpilot/internal/registry"
)

// New returns a production logger writing to stderr. Verbose switches the
// level to debug.
func New(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableStacktrace = true
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// Issues logs registry findings, errors at error level and the rest at warn
// level.
func Issues(logger *zap.Logger, issues registry.IssueList) {
	for _, i := range issues {
		fields := []zap.Field{zap.String("procedure", i.Key.String())}
		if i.FieldKey != "" {
			fields = append(fields, zap.String("field", i.FieldKey))
		}
		if i.Severity == registry.SeverityError {
			logger.Error(i.Message, fields...)
		} else {
			logger.Warn(i.Message, fields...)
		}
	}
}
