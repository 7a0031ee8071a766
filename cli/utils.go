package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/pkg/errors"

	"github.com/treadline/pathfollow/config"
	"github.com/treadline/pathfollow/kinematics"
	"github.com/treadline/pathfollow/pathstore"
)

// printf prints a message with no prefix.
func printf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	fmt.Fprintf(w, format+"\n", a...)
}

var warningPrefix = color.New(color.Bold, color.FgYellow).Sprint("Warning:")

// warningf prints a message prefixed with a bold "Warning:". Color is dropped when the output is
// not a terminal.
func warningf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	fmt.Fprintf(w, warningPrefix+" "+format+"\n", a...)
}

// generateAndSave generates the path in `waypointsPath` and writes it under `directory`. It returns
// the written files, or empty names if the file holds no waypoints.
func generateAndSave(cfg *config.Config, waypointsPath, directory, id string) (left, right string, err error) {
	waypoints, err := config.ReadWaypoints(waypointsPath)
	if err != nil {
		return "", "", err
	}
	if len(waypoints) == 0 {
		return "", "", nil
	}

	pair, err := kinematics.GeneratePair(waypoints, cfg.Constraints())
	if err != nil {
		return "", "", errors.Wrapf(err, "cannot generate path %q", id)
	}

	store := cfg.NewStore()
	if err := store.Put(id, pair); err != nil {
		return "", "", errors.Wrapf(err, "cannot save path %q", id)
	}
	if err := store.SaveFiles(directory, id); err != nil {
		return "", "", errors.Wrapf(err, "cannot save path %q", id)
	}
	return store.FilePaths(directory, id)
}

// loadPath reads a saved path into a fresh store.
func loadPath(cfg *config.Config, directory, id string) (*pathstore.Store, error) {
	store := cfg.NewStore()
	if err := store.LoadFiles(directory, id); err != nil {
		return nil, errors.Wrapf(err, "cannot load path %q", id)
	}
	return store, nil
}
