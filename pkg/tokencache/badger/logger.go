package badger

import (
	"strings"

	"go.uber.org/zap"
)

// badgerLoggerAdapter routes badger's internal logging through zap.
type badgerLoggerAdapter struct {
	logger *zap.Logger
}

func (l *badgerLoggerAdapter) Errorf(format string, args ...interface{}) {
	l.logger.Sugar().Errorf(strings.TrimSuffix(format, "\n"), args...)
}

func (l *badgerLoggerAdapter) Warningf(format string, args ...interface{}) {
	l.logger.Sugar().Warnf(strings.TrimSuffix(format, "\n"), args...)
}

func (l *badgerLoggerAdapter) Infof(format string, args ...interface{}) {
	// Badger's info output is chatty; keep it at debug level.
	l.logger.Sugar().Debugf(strings.TrimSuffix(format, "\n"), args...)
}

func (l *badgerLoggerAdapter) Debugf(format string, args ...interface{}) {
	l.logger.Sugar().Debugf(strings.TrimSuffix(format, "\n"), args...)
}
