package tenant

import (
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the registry whenever the forums file changes. The parent
// directory is watched so editors that replace the file are picked up. A
// file that fails to parse leaves the current registry untouched.
func Watch(path string, registry *Registry, done <-chan struct{}) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return err
	}

	target := filepath.Clean(path)
	go func() {
		defer watcher.Close()
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				forums, err := readForums(path)
				if err != nil {
					slog.Error("forums reload failed", "path", path, "error", err)
					continue
				}
				registry.Replace(forums)
				slog.Info("forums reloaded", "path", path, "forums", len(forums))
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Error("forums watcher error", "error", err)
			case <-done:
				return
			}
		}
	}()
	return nil
}
