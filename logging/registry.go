package logging

import (
	"sync"

	"github.com/pkg/errors"
)

// Registry tracks named loggers so that level patterns from configuration can be applied to
// loggers created before or after the configuration is loaded.
type Registry struct {
	mu        sync.RWMutex
	loggers   map[string]Logger
	logConfig []LoggerPatternConfig
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		loggers: make(map[string]Logger),
	}
}

// Register adds a logger under its own name and applies any matching level pattern to it.
func (lr *Registry) Register(logger Logger) {
	lr.mu.Lock()
	defer lr.mu.Unlock()
	lr.loggers[logger.Name()] = logger
	if level, ok := lr.levelFor(logger.Name()); ok {
		logger.SetLevel(level)
	}
}

// Deregister removes the logger with the given name. Returns whether it was present.
func (lr *Registry) Deregister(name string) bool {
	lr.mu.Lock()
	defer lr.mu.Unlock()
	_, ok := lr.loggers[name]
	if ok {
		delete(lr.loggers, name)
	}
	return ok
}

// LoggerNamed returns a registered logger.
func (lr *Registry) LoggerNamed(name string) (logger Logger, ok bool) {
	lr.mu.RLock()
	defer lr.mu.RUnlock()
	logger, ok = lr.loggers[name]
	return
}

// UpdateConfig replaces the pattern configuration and re-levels every registered logger. Loggers
// that match no pattern are reset to INFO. Invalid patterns are skipped with a warning.
func (lr *Registry) UpdateConfig(logConfig []LoggerPatternConfig, errorLogger Logger) error {
	valid := make([]LoggerPatternConfig, 0, len(logConfig))
	for _, lpc := range logConfig {
		if err := lpc.Validate(); err != nil {
			errorLogger.Warnw("ignoring log pattern", "pattern", lpc.Pattern, "error", err)
			continue
		}
		valid = append(valid, lpc)
	}

	lr.mu.Lock()
	defer lr.mu.Unlock()
	lr.logConfig = valid
	for name, logger := range lr.loggers {
		level, ok := lr.levelFor(name)
		if !ok {
			level = INFO
		}
		logger.SetLevel(level)
	}
	return nil
}

// SetLevel changes the level of a single registered logger.
func (lr *Registry) SetLevel(name string, level Level) error {
	lr.mu.RLock()
	defer lr.mu.RUnlock()
	logger, ok := lr.loggers[name]
	if !ok {
		return errors.Errorf("logger named %s not recognized", name)
	}
	logger.SetLevel(level)
	return nil
}

// levelFor returns the level of the last pattern matching name. Callers hold mu.
func (lr *Registry) levelFor(name string) (Level, bool) {
	var (
		level Level
		found bool
	)
	for _, lpc := range lr.logConfig {
		if !lpc.Matches(name) {
			continue
		}
		parsed, err := LevelFromString(lpc.Level)
		if err != nil {
			continue
		}
		level, found = parsed, true
	}
	return level, found
}
