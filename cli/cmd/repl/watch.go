package repl

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/run/log"
)

// runfileChangedMsg is sent when the Runfile may have changed on disk.
type runfileChangedMsg struct{}

// watch calls send with a [runfileChangedMsg] whenever path is written or
// replaced. The parent directory is watched so that editors that save by
// renaming a new file over the old one are noticed. Watching ends when ctx
// is done or stop is called.
func watch(
	ctx context.Context,
	path string,
	send func(tea.Msg),
	logger log.Logger,
) (stop func(), err error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	path = filepath.Clean(path)

	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()

		return nil, err
	}

	logger.TraceContext(ctx, "runfile watch", slog.String("path", path))

	go func() {
		for {
			select {
			case <-ctx.Done():
				return

			case ev, ok := <-w.Events:
				if !ok {
					return
				}

				if filepath.Clean(ev.Name) != path {
					continue
				}

				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
					logger.TraceContext(ctx, "runfile event", slog.String("op", ev.Op.String()))
					send(runfileChangedMsg{})
				}

			case err, ok := <-w.Errors:
				if !ok {
					return
				}

				logger.DebugContext(ctx, "runfile watch", slog.Any("error", err))
			}
		}
	}()

	return func() { _ = w.Close() }, nil
}
