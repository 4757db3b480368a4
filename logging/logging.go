// Package logging adapts github.com/go-kit/log to mink.Logger.
//
// Processors and scenarios accept any mink.Logger; this package provides the
// structured implementation used by the CLI and the examples:
//
//	logger, err := logging.New(os.Stderr, logging.FormatLogfmt, "debug")
//	processor := mink.NewProcessor(mink.WithLogger(logger))
//	scenario := bdd.NewScenario(t, processor, bdd.WithLogger(logger))
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/AshkanYarmoradi/minkspec"
)

// Output formats.
const (
	FormatLogfmt = "logfmt"
	FormatJSON   = "json"
)

var _ mink.Logger = (*KitLogger)(nil)

// KitLogger is a mink.Logger writing leveled records to a go-kit logger.
type KitLogger struct {
	logger log.Logger
}

// NewKitLogger wraps an existing go-kit logger. Level filtering, if any, is
// left to the wrapped logger.
func NewKitLogger(logger log.Logger) *KitLogger {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &KitLogger{logger: logger}
}

// New creates a logger writing to w in the given format, dropping records
// below minLevel.
func New(w io.Writer, format, minLevel string) (*KitLogger, error) {
	allow, err := ParseLevel(minLevel)
	if err != nil {
		return nil, err
	}

	var logger log.Logger
	switch strings.ToLower(format) {
	case FormatLogfmt, "":
		logger = log.NewLogfmtLogger(log.NewSyncWriter(w))
	case FormatJSON:
		logger = log.NewJSONLogger(log.NewSyncWriter(w))
	default:
		return nil, fmt.Errorf("logging: unknown format %q", format)
	}

	logger = level.NewFilter(logger, allow)
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)
	return NewKitLogger(logger), nil
}

// NewLogfmt creates a logfmt logger. An invalid level falls back to info.
func NewLogfmt(w io.Writer, minLevel string) *KitLogger {
	logger, err := New(w, FormatLogfmt, minLevel)
	if err != nil {
		logger, _ = New(w, FormatLogfmt, "info")
	}
	return logger
}

// NewJSON creates a JSON logger. An invalid level falls back to info.
func NewJSON(w io.Writer, minLevel string) *KitLogger {
	logger, err := New(w, FormatJSON, minLevel)
	if err != nil {
		logger, _ = New(w, FormatJSON, "info")
	}
	return logger
}

// ParseLevel maps a level name to a go-kit filter option.
func ParseLevel(name string) (level.Option, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return level.AllowDebug(), nil
	case "info", "":
		return level.AllowInfo(), nil
	case "warn", "warning":
		return level.AllowWarn(), nil
	case "error":
		return level.AllowError(), nil
	case "none", "off":
		return level.AllowNone(), nil
	default:
		return nil, fmt.Errorf("logging: unknown level %q", name)
	}
}

// With returns a logger that adds keyvals to every record.
func (l *KitLogger) With(keyvals ...interface{}) *KitLogger {
	return &KitLogger{logger: log.With(l.logger, keyvals...)}
}

// Kit returns the wrapped go-kit logger.
func (l *KitLogger) Kit() log.Logger {
	return l.logger
}

// Debug implements mink.Logger.
func (l *KitLogger) Debug(msg string, args ...interface{}) {
	l.log(level.Debug(l.logger), msg, args)
}

// Info implements mink.Logger.
func (l *KitLogger) Info(msg string, args ...interface{}) {
	l.log(level.Info(l.logger), msg, args)
}

// Warn implements mink.Logger.
func (l *KitLogger) Warn(msg string, args ...interface{}) {
	l.log(level.Warn(l.logger), msg, args)
}

// Error implements mink.Logger.
func (l *KitLogger) Error(msg string, args ...interface{}) {
	l.log(level.Error(l.logger), msg, args)
}

func (l *KitLogger) log(logger log.Logger, msg string, args []interface{}) {
	keyvals := make([]interface{}, 0, len(args)+2)
	keyvals = append(keyvals, "msg", msg)
	keyvals = append(keyvals, args...)
	_ = logger.Log(keyvals...)
}
