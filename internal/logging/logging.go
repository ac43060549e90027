// Package logging configures the logrus logger shared by every component.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Setup builds a logger writing to stderr at the given level. format is
// "text" (full timestamps) or "json".
func Setup(level, format string) (*logrus.Logger, error) {
	return SetupWithOutput(level, format, os.Stderr)
}

// SetupWithOutput is Setup with an explicit destination.
func SetupWithOutput(level, format string, out io.Writer) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(out)

	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level '%s': %w", level, err)
	}
	logger.SetLevel(lvl)

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("invalid log format '%s': must be 'text' or 'json'", format)
	}
	return logger, nil
}

// Component returns an entry tagged with the component name. A nil logger
// falls back to the logrus standard logger.
func Component(logger *logrus.Logger, name string) *logrus.Entry {
	if logger == nil {
		return logrus.WithField("component", name)
	}
	return logger.WithField("component", name)
}

// Discard returns an entry that drops everything, for tests.
func Discard() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logrus.NewEntry(logger)
}
