package cli

import (
	"github.com/urfave/cli/v2"
)

// GenerateAction generates a path from a waypoint file and saves it to the path store.
func GenerateAction(c *cli.Context) error {
	cfg, state, err := readConfig(c)
	if err != nil {
		return err
	}
	logger := state.sublogger("generate")

	id := c.String(flagID)
	left, right, err := generateAndSave(cfg, c.String(flagWaypoints), directoryFlag(c, cfg), id)
	if err != nil {
		return err
	}
	if left == "" {
		warningf(c.App.ErrWriter, "%s holds no waypoints, nothing was generated", c.String(flagWaypoints))
		return nil
	}

	logger.Debugw("saved path", "path_id", id, "left", left, "right", right)
	printf(c.App.Writer, "%s", left)
	printf(c.App.Writer, "%s", right)
	return nil
}
