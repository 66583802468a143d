package content

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"dipanshu.dev/internal/logger"
)

// reloadDebounce batches the burst of events an editor save produces.
const reloadDebounce = 250 * time.Millisecond

// Watch reloads path into svc whenever the file changes, until ctx is
// done. Content that fails to parse, or that changes the playlist, is
// logged and skipped; the previous content stays live.
//
// The parent directory is watched rather than the file, since editors
// commonly save by renaming a temp file over the original.
func Watch(ctx context.Context, path string, svc *Service, log *logger.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create content watcher: %w", err)
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	log = log.WithFields(map[string]any{"path": path})
	log.Info("watching content file")

	debounce := time.NewTimer(reloadDebounce)
	debounce.Stop()
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			debounce.Reset(reloadDebounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error(err, "content watcher error")

		case <-debounce.C:
			site, err := Load(path)
			if err != nil {
				log.Error(err, "content reload failed, keeping previous content")
				continue
			}
			if err := svc.Replace(site); err != nil {
				log.Error(err, "content reload rejected, keeping previous content")
				continue
			}
			log.Info("content reloaded")
		}
	}
}
