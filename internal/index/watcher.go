package index

import (
	"context"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/folio/internal/slug"
)

// DefaultDebounce is how long Watch waits for a burst of file events to
// settle before calling back.
const DefaultDebounce = 200 * time.Millisecond

// ChangeCallback receives the slugs of the posts touched since the last call,
// sorted and without duplicates.
type ChangeCallback func(slugs []string)

// Watch starts an fsnotify watcher on the content root and calls cb once per
// burst of Markdown file changes until ctx is cancelled. The content root is
// flat, so subdirectories are not watched.
func Watch(ctx context.Context, dir string, debounce time.Duration, logger *slog.Logger, cb ChangeCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	logger.Info("watcher: started", slog.String("root", dir))

	pending := make(map[string]struct{})
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-fire:
			fire = nil
			changed := make([]string, 0, len(pending))
			for s := range pending {
				changed = append(changed, s)
			}
			clear(pending)
			sort.Strings(changed)
			logger.Debug("watcher: flush", slog.Int("posts", len(changed)))
			if cb != nil {
				cb(changed)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Ext(ev.Name) != ".md" || ev.Op == fsnotify.Chmod {
				continue
			}
			pending[slug.FromFilename(ev.Name)] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
