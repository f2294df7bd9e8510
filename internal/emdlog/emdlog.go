// Package emdlog wraps logrus the way the teacher's pkg/util/log wraps it
// elsewhere in the agent: a package-level logger, a small level-parsing
// helper, and thin Printf-style forwarders so call sites don't import
// logrus directly.
package emdlog

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

var logger = newDefault()

func newDefault() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// SetLevel parses one of "error", "warn", "info", "debug", "trace" (the
// CLI's --loglevel values) and applies it. An unrecognized level is an
// error, not silently ignored.
func SetLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("parse log level %q: %w", level, err)
	}
	logger.SetLevel(lvl)
	return nil
}

// Errorf logs at error level.
func Errorf(format string, args ...interface{}) { logger.Errorf(format, args...) }

// Warnf logs at warn level.
func Warnf(format string, args ...interface{}) { logger.Warnf(format, args...) }

// Infof logs at info level.
func Infof(format string, args ...interface{}) { logger.Infof(format, args...) }

// Debugf logs at debug level.
func Debugf(format string, args ...interface{}) { logger.Debugf(format, args...) }

// Tracef logs at trace level.
func Tracef(format string, args ...interface{}) { logger.Tracef(format, args...) }
