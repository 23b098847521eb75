package fs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/aretw0/lifecycle/pkg/core/worker"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/harp/pkg/core"
)

// DebounceDelay is how long the watcher waits for a burst of writes to settle.
const DebounceDelay = 50 * time.Millisecond

// watchTarget describes what a watcher reports on.
type watchTarget struct {
	dir     string
	pattern string // doublestar pattern matched against the file name
	logger  *slog.Logger
	// onActive is told when the watch loop starts and stops.
	onActive func(bool)
	// onChange runs in the background for every debounced event.
	onChange func(context.Context, core.Event) error
}

type watchWorker struct {
	*worker.BaseWorker
	target    watchTarget
	events    chan core.Event
	watcher   *fsnotify.Watcher
	debouncer *debouncer
	cancel    context.CancelFunc
	// hooks tracks running onChange calls; the events channel closes after them.
	hooks sync.WaitGroup
}

func newWatchWorker(target watchTarget) *watchWorker {
	return &watchWorker{
		BaseWorker: worker.NewBaseWorker("fs-watcher"),
		target:     target,
		events:     make(chan core.Event),
	}
}

// Watch reports changes to profile files. path is either a directory, where
// every *.org file directly inside is watched, or a single file. The channel
// closes once ctx is done.
func Watch(ctx context.Context, path string, logger *slog.Logger) (<-chan core.Event, error) {
	if logger == nil {
		logger = slog.Default()
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	target := watchTarget{dir: path, pattern: "*" + ProfileExt, logger: logger}
	if !info.IsDir() {
		target.dir = filepath.Dir(path)
		target.pattern = escapeMeta(filepath.Base(path))
	}
	return startWatch(ctx, target)
}

// Watch reports changes to the profile files of the repository.
func (r *Repository) Watch(ctx context.Context) (<-chan core.Event, error) {
	return startWatch(ctx, watchTarget{
		dir:      r.Path,
		pattern:  "*" + ProfileExt,
		logger:   r.logger,
		onActive: r.setWatcherActive,
		onChange: r.refresh,
	})
}

func startWatch(ctx context.Context, target watchTarget) (<-chan core.Event, error) {
	w := newWatchWorker(target)
	if err := w.Start(ctx); err != nil {
		return nil, err
	}
	return w.events, nil
}

func (w *watchWorker) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	status := w.State().Status
	if status != worker.StatusCreated && status != worker.StatusPending {
		return fmt.Errorf("watcher already started (status: %s)", status)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	// Watch the directory rather than the file: editors replace files by
	// renaming, which drops a watch placed on the file itself.
	if err := watcher.Add(w.target.dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", w.target.dir, err)
	}

	w.watcher = watcher
	w.debouncer = newDebouncer(DebounceDelay)
	w.setActive(true)

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.SetStatus(worker.StatusRunning)
	return w.StartFunc(runCtx, w.run)
}

func (w *watchWorker) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.StopRequested = true
		w.cancel()
	}
	return w.BaseWorker.Stop(ctx)
}

func (w *watchWorker) State() worker.State {
	return w.ExportState(func(s *worker.State) {
		s.Metadata = map[string]string{
			worker.MetadataType: string(worker.TypeGoroutine),
			"dir":               w.target.dir,
			"pattern":           w.target.pattern,
		}
	})
}

func (w *watchWorker) setActive(active bool) {
	if w.target.onActive != nil {
		w.target.onActive(active)
	}
}

// run is the main loop. It owns the events channel and closes it on exit.
func (w *watchWorker) run(ctx context.Context) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("watcher panic: %v", recovered)
			if w.target.logger.Enabled(ctx, slog.LevelDebug) {
				w.target.logger.Error("watcher panic", "error", err, "stack", string(debug.Stack()))
			} else {
				w.target.logger.Error("watcher panic", "error", err)
			}
		}
		w.debouncer.stopAndWait(5 * time.Second)
		waitTimeout(&w.hooks, 5*time.Second)
		close(w.events)
	}()
	defer w.setActive(false)
	defer w.watcher.Close()

	return w.loop(ctx)
}

func (w *watchWorker) loop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			w.handle(ctx, event)

		case wErr, ok := <-w.watcher.Errors:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			w.target.logger.Error("fsnotify error", "error", wErr)
		}
	}
}

// handle filters, maps and debounces one filesystem event.
func (w *watchWorker) handle(ctx context.Context, event fsnotify.Event) {
	w.target.logger.Debug("event received", "name", event.Name, "op", event.Op.String())

	name := filepath.Base(event.Name)
	if isTempFile(name) {
		return
	}
	if ok, _ := doublestar.Match(w.target.pattern, name); !ok {
		return
	}

	eType := mapEventType(event)
	if eType == "" {
		return
	}

	w.debouncer.add(core.Event{
		Type:      eType,
		ID:        strings.TrimSuffix(name, ProfileExt),
		Timestamp: time.Now().Unix(),
	}, func(e core.Event) {
		w.changed(ctx, e)
		select {
		case w.events <- e:
		case <-ctx.Done():
		}
	})
}

// changed runs the onChange hook without holding up event delivery.
func (w *watchWorker) changed(ctx context.Context, e core.Event) {
	if w.target.onChange == nil {
		return
	}
	logger := w.target.logger
	w.hooks.Add(1)
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer w.hooks.Done()
		if err := w.target.onChange(ctx, e); err != nil {
			logger.Warn("change handler failed", "id", e.ID, "error", err)
			return err
		}
		return nil
	}, lifecycle.WithErrorHandler(func(err error) {
		logger.Error("change handler panic", "id", e.ID, "error", err)
	}))
}

func waitTimeout(wg *sync.WaitGroup, timeout time.Duration) {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
	}
}

func mapEventType(event fsnotify.Event) core.EventType {
	switch {
	case event.Has(fsnotify.Create):
		return core.EventCreate
	case event.Has(fsnotify.Write):
		return core.EventModify
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return core.EventDelete
	default:
		return ""
	}
}

// escapeMeta quotes glob metacharacters so a literal file name matches only itself.
func escapeMeta(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch r {
		case '*', '?', '[', ']', '{', '}', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
