package logger

import (
	"io"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileOptions configures rotation for file-backed log output.
type FileOptions struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

const defaultMaxSizeMB = 50

// NewRotatingWriter returns a size-rotated log file writer.
func NewRotatingWriter(opts FileOptions) io.WriteCloser {
	if opts.MaxSizeMB <= 0 {
		opts.MaxSizeMB = defaultMaxSizeMB
	}
	return &lumberjack.Logger{
		Filename:   opts.Path,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: max(opts.MaxBackups, 0),
		MaxAge:     opts.MaxAgeDays,
		Compress:   opts.Compress,
	}
}

// fileHook writes every entry the logger emits to a file as JSON, regardless
// of the formatter used for the terminal.
type fileHook struct {
	mu        sync.Mutex
	w         io.WriteCloser
	formatter logrus.Formatter
	logger    *logrus.Logger
	closed    bool
}

func (h *fileHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *fileHook) Fire(entry *logrus.Entry) error {
	line, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	_, err = h.w.Write(line)
	return err
}

// Close detaches the hook from the logger and closes the file
func (h *fileHook) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true

	hooks := make(logrus.LevelHooks)
	for level, levelHooks := range h.logger.Hooks {
		for _, hook := range levelHooks {
			if hook != h {
				hooks[level] = append(hooks[level], hook)
			}
		}
	}
	h.logger.ReplaceHooks(hooks)
	return h.w.Close()
}

// TeeToFile additionally writes the global logger's entries as JSON lines to
// a rotating file. Closing the returned closer stops the file output.
func TeeToFile(opts FileOptions) io.Closer {
	hook := &fileHook{
		w:         NewRotatingWriter(opts),
		formatter: jsonFormatter(),
		logger:    L.Logger,
	}
	L.Logger.AddHook(hook)
	return hook
}
