package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	l := newLogger()

	formatter, ok := l.Formatter.(*logrus.TextFormatter)
	require.True(t, ok)
	assert.Equal(t, time.RFC3339Nano, formatter.TimestampFormat)
	assert.True(t, formatter.FullTimestamp)
}

func TestG(t *testing.T) {
	t.Run("falls back to the root entry", func(t *testing.T) {
		assert.Equal(t, L.Logger, G(context.Background()).Logger)
	})

	t.Run("returns the context entry", func(t *testing.T) {
		custom := logrus.NewEntry(logrus.New()).WithField("skill", "docker-patterns")
		ctx := WithLogger(context.Background(), custom)

		assert.Equal(t, "docker-patterns", G(ctx).Data["skill"])
	})
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatText, "fmt": FormatText, "Text": FormatText, " json ": FormatJSON} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseFormat("xml")
	assert.ErrorContains(t, err, `unknown log format "xml"`)
}

func TestConfigure(t *testing.T) {
	origLevel := L.Logger.GetLevel()
	origFormatter := L.Logger.Formatter
	origOut := L.Logger.Out
	defer func() {
		L.Logger.SetLevel(origLevel)
		L.Logger.Formatter = origFormatter
		L.Logger.SetOutput(origOut)
	}()

	var buf bytes.Buffer
	SetOutput(&buf)
	require.NoError(t, Configure("debug", "json"))
	assert.Equal(t, logrus.DebugLevel, L.Logger.GetLevel())

	L.WithField("path", "01-foundations/python-standards/SKILL.md").Debug("scanned")

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "scanned", decoded["message"])
	assert.Equal(t, "debug", decoded["logLevel"])
	assert.Contains(t, decoded, "timestamp")

	assert.ErrorContains(t, Configure("loud", "json"), "invalid log level")
	assert.ErrorContains(t, Configure("info", "xml"), "invalid log format")
	assert.Equal(t, logrus.DebugLevel, L.Logger.GetLevel())
}

func TestTeeToFile(t *testing.T) {
	origOut := L.Logger.Out
	defer L.Logger.SetOutput(origOut)
	SetOutput(io.Discard)

	path := filepath.Join(t.TempDir(), "skill_generation.log")
	closer := TeeToFile(FileOptions{Path: path})

	L.WithField("batch", "01").Info("generation started")
	require.NoError(t, closer.Close())
	require.NoError(t, closer.Close())
	L.Info("after close")

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &decoded))
	assert.Equal(t, "generation started", decoded["message"])
	assert.Equal(t, "01", decoded["batch"])
	assert.NotContains(t, string(data), "after close")
	assert.Empty(t, L.Logger.Hooks[logrus.InfoLevel])
}
