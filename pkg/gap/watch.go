package gap

import (
	"context"
	"path/filepath"
	"time"

	"github.com/cerebratechai/skillctl/pkg/logger"
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
)

// FileEvent is a change to one of the watched manifests
type FileEvent struct {
	Path string
	Op   fsnotify.Op
	Time time.Time
}

// Watch runs fn once immediately and again whenever a dependency manifest in
// target changes, after changes have settled for the debounce period. fn
// errors are logged and watching continues. Watch returns when ctx is done.
func Watch(ctx context.Context, target string, debounce time.Duration, fn func(context.Context) error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create file watcher")
	}
	defer watcher.Close()

	if err := watcher.Add(target); err != nil {
		return errors.Wrapf(err, "failed to watch %s", target)
	}

	watched := make(map[string]bool, len(ManifestFiles))
	for _, name := range ManifestFiles {
		watched[name] = true
	}

	run := func() {
		if err := fn(ctx); err != nil {
			logger.G(ctx).WithError(err).Error("gap analysis failed")
		}
	}
	run()

	events := make(chan FileEvent)
	debounced := make(chan FileEvent, 1)
	go debounceFileEvents(ctx, events, debounced, debounce)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !watched[filepath.Base(event.Name)] || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			select {
			case events <- FileEvent{Path: event.Name, Op: event.Op, Time: time.Now()}:
			case <-ctx.Done():
				return nil
			}
		case event := <-debounced:
			logger.G(ctx).WithField("file", event.Path).WithField("operation", event.Op.String()).
				Info("dependency manifest changed")
			run()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.G(ctx).WithError(err).Error("error watching files")
		case <-ctx.Done():
			return nil
		}
	}
}

// debounceFileEvents collapses a burst of events into the last one once no
// further event has arrived for delay. output must be buffered; an event is
// dropped while a previous one is still waiting to be consumed.
func debounceFileEvents(ctx context.Context, input <-chan FileEvent, output chan<- FileEvent, delay time.Duration) {
	var (
		timer   *time.Timer
		fire    <-chan time.Time
		pending FileEvent
	)
	stop := func() {
		if timer != nil {
			timer.Stop()
		}
	}

	for {
		select {
		case event, ok := <-input:
			if !ok {
				stop()
				return
			}
			stop()
			pending = event
			timer = time.NewTimer(delay)
			fire = timer.C
		case <-fire:
			fire = nil
			select {
			case output <- pending:
			default:
			}
		case <-ctx.Done():
			stop()
			return
		}
	}
}
