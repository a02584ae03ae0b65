// Package logger holds the process-wide logrus logger of skillctl and carries
// request scoped entries through context.Context.
package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Format names a terminal log format
type Format string

const (
	// FormatText is logrus' key=value text output
	FormatText Format = "fmt"
	// FormatJSON is one JSON object per line
	FormatJSON Format = "json"
)

// L is the root entry; G falls back to it when a context carries no logger.
var L = logrus.NewEntry(newLogger())

type ctxKey struct{}

// WithLogger returns a copy of ctx whose G lookups yield entry.
func WithLogger(ctx context.Context, entry *logrus.Entry) context.Context {
	return context.WithValue(ctx, ctxKey{}, entry.WithContext(ctx))
}

// G returns the entry stored in ctx by WithLogger, or L.
func G(ctx context.Context) *logrus.Entry {
	if entry, ok := ctx.Value(ctxKey{}).(*logrus.Entry); ok {
		return entry
	}
	return L.WithContext(ctx)
}

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.Formatter = formatterFor(FormatText)
	return l
}

// ParseFormat accepts "fmt", "text" and "json", case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fmt", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", errors.Errorf("unknown log format %q", s)
	}
}

func formatterFor(f Format) logrus.Formatter {
	if f == FormatJSON {
		return jsonFormatter()
	}
	return &logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339Nano}
}

// jsonFormatter is shared with the file hook so files always look the same.
func jsonFormatter() *logrus.JSONFormatter {
	return &logrus.JSONFormatter{
		TimestampFormat: time.RFC3339Nano,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "logLevel",
			logrus.FieldKeyMsg:   "message",
		},
	}
}

// Configure applies a level and format to the root logger.
func Configure(level, format string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return errors.Wrap(err, "invalid log level")
	}
	f, err := ParseFormat(format)
	if err != nil {
		return errors.Wrap(err, "invalid log format")
	}
	L.Logger.SetLevel(lvl)
	L.Logger.Formatter = formatterFor(f)
	return nil
}

// SetOutput redirects the terminal output of the root logger.
func SetOutput(w io.Writer) {
	L.Logger.SetOutput(w)
}
