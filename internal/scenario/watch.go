package scenario

import (
	"context"
	"os"

	"github.com/fsnotify/fsnotify"
)

// Reload carries a freshly loaded catalog after the case directory changed.
type Reload struct {
	Catalog  *Catalog
	Warnings []string
	Err      error
}

// Watch reloads the catalog whenever a case file in dir is written, created,
// removed or renamed, and sends the result on out until ctx is cancelled. A
// missing dir is created so authors can start dropping files into it.
func Watch(ctx context.Context, dir string, out chan<- Reload) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return err
	}

	const relevant = fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&relevant == 0 || !IsCaseFile(ev.Name) {
				continue
			}
			cat, warnings, err := LoadCatalog(dir)
			select {
			case out <- Reload{Catalog: cat, Warnings: warnings, Err: err}:
			case <-ctx.Done():
				return nil
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			select {
			case out <- Reload{Err: err}:
			case <-ctx.Done():
				return nil
			}
		}
	}
}
