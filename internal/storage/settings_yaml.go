package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"alarmsound/internal/platform"
	"alarmsound/internal/ui/preferences"

	"gopkg.in/yaml.v3"
)

const (
	settingsFileName  = "settings.yaml"
	recordingsDirName = "recordings"
	soundsDirName     = "sounds"
)

type yamlSettings struct {
	DefaultSleepMinutes  int    `yaml:"default_sleep_minutes"`
	AmbientSound         string `yaml:"ambient_sound"`
	AlarmSound           string `yaml:"alarm_sound"`
	SoundsDir            string `yaml:"sounds_dir"`
	RecordingsDir        string `yaml:"recordings_dir"`
	NotificationsEnabled *bool  `yaml:"notifications_enabled"`
	TickIntervalMillis   int    `yaml:"tick_interval_ms"`
	LogLevel             string `yaml:"log_level"`
}

// LoadSettings reads user preferences from YAML.
// If the config file does not exist, default settings are returned.
// Empty directories are resolved inside the app's config directory.
func LoadSettings(appName string) (preferences.Settings, error) {
	configDir, err := platform.ConfigDir(appName)
	if err != nil {
		return preferences.DefaultSettings(), err
	}
	settings, err := loadSettingsFile(filepath.Join(configDir, settingsFileName))
	applyDefaultDirs(&settings, configDir)
	return settings, err
}

func loadSettingsFile(configPath string) (preferences.Settings, error) {
	settings := preferences.DefaultSettings()
	rawData, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	var fileData yamlSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}

	applyYamlSettings(&settings, fileData)
	return settings.Normalize(), nil
}

// SaveSettings writes user preferences to YAML.
func SaveSettings(appName string, settings preferences.Settings) error {
	configDir, err := platform.ConfigDir(appName)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	notifications := settings.NotificationsEnabled
	fileData := yamlSettings{
		DefaultSleepMinutes:  settings.DefaultSleepMinutes,
		AmbientSound:         settings.AmbientSound,
		AlarmSound:           settings.AlarmSound,
		SoundsDir:            settings.SoundsDir,
		RecordingsDir:        settings.RecordingsDir,
		NotificationsEnabled: &notifications,
		TickIntervalMillis:   int(settings.TickInterval / time.Millisecond),
		LogLevel:             settings.LogLevel,
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}

	if err := writeFileAtomic(filepath.Join(configDir, settingsFileName), serialized); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}

	return nil
}

func applyYamlSettings(settings *preferences.Settings, fileData yamlSettings) {
	if fileData.DefaultSleepMinutes > 0 {
		settings.DefaultSleepMinutes = fileData.DefaultSleepMinutes
	}
	if fileData.AmbientSound != "" {
		settings.AmbientSound = fileData.AmbientSound
	}
	if fileData.AlarmSound != "" {
		settings.AlarmSound = fileData.AlarmSound
	}
	if fileData.TickIntervalMillis > 0 {
		settings.TickInterval = time.Duration(fileData.TickIntervalMillis) * time.Millisecond
	}
	if fileData.NotificationsEnabled != nil {
		settings.NotificationsEnabled = *fileData.NotificationsEnabled
	}
	if fileData.LogLevel != "" {
		settings.LogLevel = fileData.LogLevel
	}

	settings.SoundsDir = fileData.SoundsDir
	settings.RecordingsDir = fileData.RecordingsDir
}

func applyDefaultDirs(settings *preferences.Settings, configDir string) {
	if settings.SoundsDir == "" {
		settings.SoundsDir = filepath.Join(configDir, soundsDirName)
	}
	if settings.RecordingsDir == "" {
		settings.RecordingsDir = filepath.Join(configDir, recordingsDirName)
	}
}

// writeFileAtomic replaces path through a temporary file in the same directory.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
