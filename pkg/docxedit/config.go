package docxedit

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Config contains the configuration options for the engine.
type Config struct {
	// LogLevel controls the verbosity of logging (debug, info, warn, error, off)
	LogLevel string
	// MaxFieldDepth bounds field nesting during resolution. Nesting depth is
	// otherwise bounded only by input size; the limit is defensive hardening
	// against pathological input, not a correctness requirement.
	MaxFieldDepth int
	// ScrubByDefault makes Transform remove cosmetic markup even when the
	// caller did not ask for it.
	ScrubByDefault bool
}

var (
	globalConfig      *Config
	globalConfigMutex sync.RWMutex
	configOnce        sync.Once
)

func init() {
	configOnce.Do(func() {
		globalConfig = ConfigFromEnvironment()
	})
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		LogLevel:       "info",
		MaxFieldDepth:  64,
		ScrubByDefault: false,
	}
}

// ConfigFromEnvironment creates a configuration from environment variables
func ConfigFromEnvironment() *Config {
	config := DefaultConfig()

	// DOCXEDIT_LOG_LEVEL
	if val := os.Getenv("DOCXEDIT_LOG_LEVEL"); val != "" {
		config.LogLevel = val
	}

	// DOCXEDIT_MAX_FIELD_DEPTH
	if val := os.Getenv("DOCXEDIT_MAX_FIELD_DEPTH"); val != "" {
		if depth, err := strconv.Atoi(val); err == nil {
			config.MaxFieldDepth = depth
		}
	}

	// DOCXEDIT_SCRUB
	if val := os.Getenv("DOCXEDIT_SCRUB"); val != "" {
		config.ScrubByDefault = parseBool(val)
	}

	return config
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"off":   true,
	}

	if !validLogLevels[c.LogLevel] {
		return errors.New("invalid log level: " + c.LogLevel)
	}

	if c.MaxFieldDepth <= 0 {
		return errors.New("max field depth must be positive")
	}

	return nil
}

// GetGlobalConfig returns the global configuration
func GetGlobalConfig() *Config {
	globalConfigMutex.RLock()
	defer globalConfigMutex.RUnlock()

	if globalConfig == nil {
		return DefaultConfig()
	}

	// Return a copy to prevent modification
	configCopy := *globalConfig
	return &configCopy
}

// SetGlobalConfig sets the global configuration
func SetGlobalConfig(config *Config) {
	globalConfigMutex.Lock()
	globalConfig = config
	globalConfigMutex.Unlock()

	// Update logger based on new config (outside the lock to avoid deadlock)
	UpdateLoggerFromConfig()
}

// parseBool parses a boolean value from a string
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}
