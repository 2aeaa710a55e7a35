package platform

import (
	"fmt"
	"os"
	"path/filepath"
)

// ConfigDir returns the per-user configuration directory of the app. It falls
// back to a dot directory in the home directory when the OS has no config dir.
func ConfigDir(appName string) (string, error) {
	if configDir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(configDir, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(home, "."+appName), nil
}

// LogDir returns the directory the app writes its log file to.
func LogDir(appName string) (string, error) {
	if cacheDir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(cacheDir, appName, "logs"), nil
	}
	configDir, err := ConfigDir(appName)
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "logs"), nil
}
