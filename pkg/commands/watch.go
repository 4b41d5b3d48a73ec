package commands

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/sambeau/harq/pkg/filter"
	"github.com/sambeau/harq/pkg/har"
)

// Watch reloads path and re-runs fn whenever the file changes. Used by
// `filter --watch` to keep a query live against a capture that a browser
// or proxy is still appending to. Watches the parent directory so
// rename-and-replace saves (the common editor/exporter pattern) are seen.
func Watch(path string, errw io.Writer, fn func(*har.Har) error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	runOnce := func() {
		h, err := har.Load(path)
		if err != nil {
			fmt.Fprintf(errw, "reload: %v\n", err)
			return
		}
		if err := fn(h); err != nil {
			fmt.Fprintf(errw, "%v\n", err)
		}
	}

	runOnce()

	// Exporters often fire several write events per save; debounce them.
	var pending <-chan time.Time
	target := filepath.Clean(path)

	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				pending = time.After(100 * time.Millisecond)
			}
		case <-pending:
			pending = nil
			runOnce()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(errw, "watch: %v\n", err)
		}
	}
}

// RunWatch wires a FilterCmd into the watch loop.
func (c *FilterCmd) RunWatch(path string, w, errw io.Writer) error {
	if path == "-" {
		return fmt.Errorf("--watch requires a file path, not stdin")
	}
	pred, err := filter.Compile(c.Expr)
	if err != nil {
		return err
	}
	return Watch(path, errw, func(h *har.Har) error {
		return c.apply(w, errw, h, pred)
	})
}
