// Package actionlog opens the append-only audit log of trading actions.
//
// Lines look like:
//
//	2025-10-09T12:00:00.000Z	INFO	FINISH BUY	{"username": "alice", "currency": "BTC", "amount": "0.1", "result": "OK", "rate": "60000.00", "base": "USD"}
package actionlog

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Open returns a logger appending to dir/file. The folder is created if needed.
func Open(dir, file string) (*zap.Logger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create log folder %q: %w", dir, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.CallerKey = zapcore.OmitKey
	cfg.EncoderConfig.StacktraceKey = zapcore.OmitKey
	cfg.Sampling = nil
	cfg.OutputPaths = []string{filepath.Join(dir, file)}
	cfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("cannot open action log: %w", err)
	}
	return logger, nil
}
