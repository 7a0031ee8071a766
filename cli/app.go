// Package cli implements pathgen, the command line tool for generating, inspecting and dry-running
// skid-steer paths.
package cli

import (
	"io"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap/zapcore"

	"github.com/treadline/pathfollow/config"
	"github.com/treadline/pathfollow/logging"
)

const (
	flagConfig    = "config"
	flagWaypoints = "waypoints"
	flagID        = "id"
	flagDir       = "dir"
	flagOut       = "out"
	flagHistogram = "histogram"
	flagBackward  = "backward"
	flagMirrored  = "mirrored"
	flagDebug     = "debug"
	flagLogFile   = "log-file"

	logFileMaxSizeMB  = 10
	logFileMaxBackups = 3
)

var (
	configFlag = &cli.StringFlag{
		Name:     flagConfig,
		Aliases:  []string{"c"},
		Required: true,
		Usage:    "load configuration from `FILE`",
	}
	idFlag = &cli.StringFlag{
		Name:     flagID,
		Required: true,
		Usage:    "path `ID`",
	}
	dirFlag = &cli.StringFlag{
		Name:  flagDir,
		Usage: "directory under the storage root; defaults to the config's storage directory",
	}
	waypointsFlag = &cli.StringFlag{
		Name:     flagWaypoints,
		Aliases:  []string{"w"},
		Required: true,
		Usage:    "read waypoints from `FILE`",
	}
)

// NewApp returns the pathgen application writing to the given streams.
func NewApp(out, errOut io.Writer) *cli.App {
	return &cli.App{
		Name:            "pathgen",
		Usage:           "generate and follow skid-steer motion profiles",
		HideHelpCommand: true,
		Writer:          out,
		ErrWriter:       errOut,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
			&cli.StringFlag{
				Name:  flagLogFile,
				Usage: "also write logs to `FILE`, rotated by size",
			},
		},
		Before: setupLogging,
		After:  teardownLogging,
		Commands: []*cli.Command{
			{
				Name:      "generate",
				Usage:     "generate a path from waypoints and save it",
				UsageText: "pathgen generate --config <cfg.json> --waypoints <wp.json> --id <id> [--dir <dir>]",
				Flags:     []cli.Flag{configFlag, waypointsFlag, idFlag, dirFlag},
				Action:    GenerateAction,
			},
			{
				Name:  "inspect",
				Usage: "print statistics of a saved path",
				Flags: []cli.Flag{
					configFlag, idFlag, dirFlag,
					&cli.IntFlag{
						Name:  flagHistogram,
						Usage: "also print a velocity histogram with `N` bins per wheel",
					},
				},
				Action: InspectAction,
			},
			{
				Name:  "plot",
				Usage: "plot the wheel velocities of a saved path",
				Flags: []cli.Flag{
					configFlag, idFlag, dirFlag,
					&cli.StringFlag{
						Name:     flagOut,
						Aliases:  []string{"o"},
						Required: true,
						Usage:    "write the PNG to `FILE`",
					},
				},
				Action: PlotAction,
			},
			{
				Name:  "follow",
				Usage: "dry-run a saved path against fake motors",
				Flags: []cli.Flag{
					configFlag, idFlag, dirFlag,
					&cli.BoolFlag{Name: flagBackward, Usage: "drive the path in reverse"},
					&cli.BoolFlag{Name: flagMirrored, Usage: "swap the left and right wheels"},
				},
				Action: FollowAction,
			},
			{
				Name:   "watch",
				Usage:  "regenerate a path whenever its waypoint file changes",
				Flags:  []cli.Flag{configFlag, waypointsFlag, idFlag, dirFlag},
				Action: WatchAction,
			},
			{
				Name:   "schema",
				Usage:  "print the JSON schema of the configuration file",
				Action: SchemaAction,
			},
		},
	}
}

type appState struct {
	logger   logging.Logger
	registry *logging.Registry
	logFile  *logging.FileAppender
}

const stateKey = "pathgen"

func setupLogging(c *cli.Context) error {
	logger := logging.NewBlankLogger("pathgen")
	logger.SetLevel(logging.INFO)
	logger.AddAppender(logging.NewWriterAppender(c.App.ErrWriter))
	state := &appState{logger: logger, registry: logging.NewRegistry()}

	if c.Bool(flagDebug) {
		logging.GlobalLogLevel.SetLevel(zapcore.DebugLevel)
	}
	if path := c.String(flagLogFile); path != "" {
		state.logFile = logging.NewFileAppender(path, logFileMaxSizeMB, logFileMaxBackups)
		logger.AddAppender(state.logFile)
	}
	state.registry.Register(logger)

	if c.App.Metadata == nil {
		c.App.Metadata = map[string]interface{}{}
	}
	c.App.Metadata[stateKey] = state
	return nil
}

func teardownLogging(c *cli.Context) error {
	state, err := stateFrom(c)
	if err != nil {
		return nil
	}
	if state.logFile != nil {
		return errors.Wrap(state.logFile.Close(), "cannot close log file")
	}
	return nil
}

func stateFrom(c *cli.Context) (*appState, error) {
	state, ok := c.App.Metadata[stateKey].(*appState)
	if !ok {
		return nil, errors.New("pathgen was not initialized")
	}
	return state, nil
}

// sublogger returns a named logger that follows the config's level patterns.
func (s *appState) sublogger(name string) logging.Logger {
	logger := s.logger.Sublogger(name)
	s.registry.Register(logger)
	return logger
}

// readConfig reads the --config file and applies its log levels.
func readConfig(c *cli.Context) (*config.Config, *appState, error) {
	state, err := stateFrom(c)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := config.Read(c.String(flagConfig), state.logger)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Debug {
		logging.GlobalLogLevel.SetLevel(zapcore.DebugLevel)
	}
	if err := state.registry.UpdateConfig(cfg.LogConfig, state.logger); err != nil {
		return nil, nil, err
	}
	return cfg, state, nil
}

func directoryFlag(c *cli.Context, cfg *config.Config) string {
	if dir := c.String(flagDir); dir != "" {
		return dir
	}
	return cfg.Storage.Directory
}
