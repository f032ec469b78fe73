package printout

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/tartampluch/go-manse/internal/config"
)

// WatchLayout calls onChange with the reloaded layout whenever the file at
// path is written, created, renamed or removed. The parent directory is
// watched so that editors replacing the file are noticed too.
//
// It returns once the watch is established; events are handled in a
// goroutine that stops when ctx is done.
func WatchLayout(ctx context.Context, path string, onChange func(Layout)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrLayoutWatch, err)
	}

	target := filepath.Clean(path)
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, config.DirPermUserRWX); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("%s: %w", config.ErrLayoutWatch, err)
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("%s: %w", config.ErrLayoutWatch, err)
	}

	log := slog.With(
		config.LogKeyComponent, config.CompPrint,
		config.LogKeyFile, target,
	)

	go func() {
		defer func() { _ = watcher.Close() }()
		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target || event.Op == fsnotify.Chmod {
					continue
				}
				onChange(LoadLayout(target))
				log.Info(config.MsgLayoutReloaded, config.LogKeyValue, event.Op.String())

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn(config.ErrLayoutWatch, config.LogKeyError, err)
			}
		}
	}()
	return nil
}
