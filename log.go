//go:build !ios && !android && (amd64 || arm64)

package adlgo

import (
	"sync/atomic"

	"go.uber.org/zap"
)

// The package is silent unless a logger is installed.
var logger atomic.Pointer[zap.Logger]

func init() {
	logger.Store(zap.NewNop())
}

// SetLogger sets the logger used by contexts created without WithLogger.
// Pass nil to silence logging.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger.Store(l)
}

// Logger returns the package logger.
func Logger() *zap.Logger {
	return logger.Load()
}

// logStatus records positive statuses, which are successes the caller may
// want to know about.
func logStatus(l *zap.Logger, op string, st Status) {
	if st > StatusOk {
		l.Info("ADL call succeeded with advisory status",
			zap.String("op", op),
			zap.Stringer("status", st),
		)
	}
}
