package config

import "sync"

var (
	// global holds the process-wide configuration instance.
	global *Config

	globalMu sync.RWMutex

	// initOnce ensures the gateway loads its configuration exactly once
	// at startup; later edits to the file take effect on restart.
	// Endpoint descriptors have their own hot-reload path and are not
	// part of this singleton.
	initOnce sync.Once
)

// Initialize loads the configuration file, applies LENTERA_* environment
// overrides and installs the result as the process-wide configuration.
// Only the first call does anything; subsequent calls return nil without
// reloading.
func Initialize(path string) error {
	var initErr error

	initOnce.Do(func() {
		cfg, err := LoadConfigWithEnvOverrides(path)
		if err != nil {
			initErr = err
			return
		}

		globalMu.Lock()
		global = cfg
		globalMu.Unlock()
	})

	return initErr
}

// GetConfig returns the process-wide configuration, or nil before a
// successful Initialize. Safe for concurrent use.
func GetConfig() *Config {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return global
}

// SetConfig replaces the process-wide configuration. Intended for tests;
// production code goes through Initialize.
func SetConfig(cfg *Config) {
	globalMu.Lock()
	defer globalMu.Unlock()
	global = cfg
}

// MustGetConfig returns the process-wide configuration and panics if
// Initialize has not run. For code paths that only execute after a
// successful startup.
func MustGetConfig() *Config {
	cfg := GetConfig()
	if cfg == nil {
		panic("configuration not initialized: call Initialize first")
	}
	return cfg
}
