package cli

import (
	"context"
	"path/filepath"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/treadline/pathfollow/config"
	"github.com/treadline/pathfollow/logging"
)

// A save usually arrives as several write events.
const watchDebounce = 50 * time.Millisecond

// WatchAction regenerates and saves a path every time its waypoint file is written, until
// interrupted. Generation errors are logged and the watch goes on.
func WatchAction(c *cli.Context) error {
	cfg, state, err := readConfig(c)
	if err != nil {
		return err
	}
	return watchWaypoints(c.Context, cfg, c.String(flagWaypoints), directoryFlag(c, cfg), c.String(flagID),
		state.sublogger("watch"), func(left, right string) {
			printf(c.App.Writer, "%s", left)
			printf(c.App.Writer, "%s", right)
		})
}

func watchWaypoints(
	ctx context.Context,
	cfg *config.Config,
	waypointsPath, directory, id string,
	logger logging.Logger,
	onSaved func(left, right string),
) error {
	absPath, err := filepath.Abs(waypointsPath)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "cannot create file watcher")
	}
	//nolint:errcheck
	defer watcher.Close()

	// Editors often replace files rather than write them, so watch the directory.
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		return errors.Wrapf(err, "cannot watch %s", filepath.Dir(absPath))
	}

	regenerate := func() {
		left, right, err := generateAndSave(cfg, absPath, directory, id)
		if err != nil {
			logger.Errorw("cannot regenerate path", "path_id", id, "error", err)
			return
		}
		if left == "" {
			logger.Warnw("waypoint file holds no waypoints", "file", absPath)
			return
		}
		logger.Infow("regenerated path", "path_id", id)
		onSaved(left, right)
	}

	changed := make(chan struct{}, 1)
	debounced := debounce.New(watchDebounce)
	notify := func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	}

	regenerate()
	logger.Infow("watching waypoints", "file", absPath)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changed:
			regenerate()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != absPath || !event.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			logger.Debugw("waypoint file changed", "op", event.Op.String())
			debounced(notify)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warnw("file watcher error", "error", err)
		}
	}
}
