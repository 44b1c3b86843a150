package config

import (
	"fmt"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// ConfigWatcher watches the loaded configuration file and reports changes.
type ConfigWatcher struct {
	v         *viper.Viper
	mu        sync.RWMutex
	callbacks []func(*CalcConfig)
}

// NewConfigWatcher creates a watcher for cfgFile (or the first config found
// on the search path when cfgFile is empty).
func NewConfigWatcher(cfgFile string) (*ConfigWatcher, error) {
	v := newViper(AppName)
	setViperDefaults(v, DefaultCalcConfig())

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config file not available for watching: %w", err)
	}

	return &ConfigWatcher{v: v}, nil
}

// Path returns the file being watched.
func (cw *ConfigWatcher) Path() string {
	return cw.v.ConfigFileUsed()
}

// OnChange registers a callback to be called when configuration changes.
func (cw *ConfigWatcher) OnChange(callback func(*CalcConfig)) {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	cw.callbacks = append(cw.callbacks, callback)
}

// Start begins watching for configuration changes.
func (cw *ConfigWatcher) Start() {
	cw.v.OnConfigChange(func(e fsnotify.Event) {
		if e.Has(fsnotify.Write) || e.Has(fsnotify.Create) {
			cw.handleChange()
		}
	})
	cw.v.WatchConfig()
}

// handleChange reloads the configuration and notifies callbacks. Invalid
// configurations are ignored so a half-saved file does not break the session.
func (cw *ConfigWatcher) handleChange() {
	var cfg CalcConfig
	if err := cw.v.Unmarshal(&cfg); err != nil {
		return
	}
	if err := Validate(&cfg); err != nil {
		return
	}

	cw.mu.RLock()
	callbacks := make([]func(*CalcConfig), len(cw.callbacks))
	copy(callbacks, cw.callbacks)
	cw.mu.RUnlock()

	for _, cb := range callbacks {
		cb(&cfg)
	}
}

// Reload re-reads the file and notifies callbacks, for callers that
// trigger reloads themselves (for example on SIGHUP).
func (cw *ConfigWatcher) Reload() error {
	if err := cw.v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to reload config: %w", err)
	}
	cw.handleChange()
	return nil
}
