// Package logger provides component loggers backed by logrus.
package logger

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Logger writes messages tagged with the component that produced them.
type Logger struct {
	entry *logrus.Entry
}

// New creates a logger for component writing to out at the given level
// ("debug", "info", "warning", "error") and format ("text" or "json").
func New(component, level, format string, out io.Writer) (*Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level: %w", err)
	}

	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(lvl)
	switch strings.ToLower(format) {
	case "", FormatText:
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})
	case FormatJSON:
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}

	return &Logger{entry: l.WithField("component", component)}, nil
}

// Named returns a logger sharing the same output and level for another
// component.
func (l *Logger) Named(component string) *Logger {
	return &Logger{entry: l.entry.WithField("component", component)}
}

// With returns a logger that adds key=value to every line.
func (l *Logger) With(key string, value any) *Logger {
	return &Logger{entry: l.entry.WithField(key, value)}
}

func (l *Logger) Debug(msg string)   { l.entry.Debug(msg) }
func (l *Logger) Info(msg string)    { l.entry.Info(msg) }
func (l *Logger) Warning(msg string) { l.entry.Warn(msg) }
func (l *Logger) Error(msg string)   { l.entry.Error(msg) }
