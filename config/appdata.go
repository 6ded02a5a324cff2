package config

import "os"

// appDataDir resolves the per-user application-data directory
// (AppData on Windows, XDG config dir elsewhere).
func appDataDir() (string, error) {
	return os.UserConfigDir()
}
