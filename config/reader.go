package config

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/a8m/envsubst"
	"github.com/pkg/errors"

	"github.com/treadline/pathfollow/logging"
	"github.com/treadline/pathfollow/trajectory"
)

// Read reads a config from the given file. Environment variables in the file are expanded.
func Read(filePath string, logger logging.Logger) (*Config, error) {
	buf, err := envsubst.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	return FromReader(filePath, bytes.NewReader(buf), logger)
}

// FromReader reads a config from the given reader and specifies
// where, if applicable, the file the reader originated from.
func FromReader(originalPath string, r io.Reader, logger logging.Logger) (*Config, error) {
	cfg := Config{ConfigFilePath: originalPath}

	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to decode Config from json")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "failed to process Config")
	}

	logger.Debugw("read config", "path", originalPath, "debug", cfg.Debug, "log_patterns", len(cfg.LogConfig))
	return &cfg, nil
}

type waypointJSON struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	HeadingDeg float64 `json:"heading_deg"`
}

// ReadWaypoints reads a JSON array of {"x": m, "y": m, "heading_deg": deg} objects.
func ReadWaypoints(filePath string) ([]trajectory.Waypoint, error) {
	buf, err := envsubst.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return WaypointsFromReader(bytes.NewReader(buf))
}

// WaypointsFromReader is ReadWaypoints on an already opened stream.
func WaypointsFromReader(r io.Reader) ([]trajectory.Waypoint, error) {
	var raw []waypointJSON
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&raw); err != nil {
		return nil, errors.Wrap(err, "failed to decode waypoints from json")
	}

	waypoints := make([]trajectory.Waypoint, 0, len(raw))
	for _, wp := range raw {
		waypoints = append(waypoints, trajectory.NewWaypoint(wp.X, wp.Y, wp.HeadingDeg))
	}
	return waypoints, nil
}
