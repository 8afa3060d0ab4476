// Package logging builds the structured loggers used across quadkey.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/cockroachdb/errors"
)

// New returns a logger writing to w at level ("debug", "info", "warn",
// "error") in format ("text" or "json").
func New(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, errors.Wrapf(err, "invalid log level %q", level)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, errors.Newf("invalid log format %q", format)
	}
}

// BadgerLogger adapts a slog.Logger to badger's printf-style Logger.
type BadgerLogger struct {
	l *slog.Logger
}

// Badger wraps l for use as badger.Options.Logger.
func Badger(l *slog.Logger) *BadgerLogger {
	return &BadgerLogger{l: l.With("component", "badger")}
}

func (b *BadgerLogger) Errorf(format string, args ...interface{}) {
	b.l.Error(trim(format, args))
}

func (b *BadgerLogger) Warningf(format string, args ...interface{}) {
	b.l.Warn(trim(format, args))
}

func (b *BadgerLogger) Infof(format string, args ...interface{}) {
	b.l.Info(trim(format, args))
}

func (b *BadgerLogger) Debugf(format string, args ...interface{}) {
	b.l.Debug(trim(format, args))
}

// trim formats a badger message, which usually ends in a newline.
func trim(format string, args []interface{}) string {
	return strings.TrimRight(fmt.Sprintf(format, args...), "\n")
}
