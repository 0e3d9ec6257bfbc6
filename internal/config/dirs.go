// SPDX-License-Identifier: MPL-2.0

package config

import (
	"os"
	"sync/atomic"
)

// ConfigDirEnv names a directory that replaces the platform config directory.
const ConfigDirEnv = EnvPrefix + "_CONFIG_DIR"

// configDirPin holds the directory set by SetConfigDirOverride.
var configDirPin atomic.Pointer[string]

// SetConfigDirOverride pins ConfigDir to dir for the whole process. An empty
// dir removes the pin.
func SetConfigDirOverride(dir string) {
	if dir == "" {
		configDirPin.Store(nil)
		return
	}
	configDirPin.Store(&dir)
}

// overriddenConfigDir returns the pinned directory, else the one named by
// DEPOT_CONFIG_DIR.
func overriddenConfigDir() (string, bool) {
	if p := configDirPin.Load(); p != nil {
		return *p, true
	}
	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		return dir, true
	}
	return "", false
}
