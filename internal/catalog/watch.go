package catalog

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 100 * time.Millisecond

// Watch reloads the catalog at path whenever the file changes and passes each
// successfully parsed catalog to onReload. Parse and watcher errors go to
// onError (may be nil). Watch blocks until ctx is done.
//
// The parent directory is watched so editors that replace the file by rename
// keep triggering reloads.
func Watch(ctx context.Context, path string, onReload func(*Catalog), onError func(error)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}
	report := func(err error) {
		if onError != nil {
			onError(err)
		}
	}

	var (
		timer  *time.Timer
		fire   <-chan time.Time
		target = filepath.Clean(abs)
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if name, err := filepath.Abs(event.Name); err != nil || filepath.Clean(name) != target {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(reloadDebounce)
			} else {
				timer.Reset(reloadDebounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			c, err := Load(abs)
			if err != nil {
				report(err)
				continue
			}
			onReload(c)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			report(err)
		}
	}
}
