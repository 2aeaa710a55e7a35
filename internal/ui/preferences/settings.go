package preferences

import (
	"time"

	"alarmsound/internal/core/alarm"
	"alarmsound/internal/core/countdown"
	"alarmsound/internal/core/model"

	"github.com/rs/zerolog"
)

// Settings defines editable user preferences.
type Settings struct {
	DefaultSleepMinutes int
	AmbientSound        string
	AlarmSound          string
	// SoundsDir holds user FLAC files that override the built-in sounds.
	SoundsDir     string
	RecordingsDir string

	NotificationsEnabled bool
	TickInterval         time.Duration
	LogLevel             string
}

// DefaultSettings returns default settings for Alarm Sound.
func DefaultSettings() Settings {
	return Settings{
		DefaultSleepMinutes:  model.DefaultSleepMinutes,
		AmbientSound:         alarm.DefaultAmbientSound,
		AlarmSound:           alarm.DefaultAlarmSound,
		NotificationsEnabled: true,
		TickInterval:         time.Second,
		LogLevel:             zerolog.InfoLevel.String(),
	}
}

// Normalize replaces out-of-range values with defaults.
func (settings Settings) Normalize() Settings {
	defaults := DefaultSettings()
	settings.DefaultSleepMinutes = model.ClampSleepMinutes(settings.DefaultSleepMinutes)
	if settings.AmbientSound == "" {
		settings.AmbientSound = defaults.AmbientSound
	}
	if settings.AlarmSound == "" {
		settings.AlarmSound = defaults.AlarmSound
	}
	if settings.TickInterval <= 0 {
		settings.TickInterval = defaults.TickInterval
	}
	if _, err := zerolog.ParseLevel(settings.LogLevel); err != nil || settings.LogLevel == "" {
		settings.LogLevel = defaults.LogLevel
	}
	return settings
}

// ControllerOptions converts settings to alarm controller options.
func (settings Settings) ControllerOptions(logger zerolog.Logger) alarm.Options {
	return alarm.Options{
		AmbientSound:  settings.AmbientSound,
		AlarmSound:    settings.AlarmSound,
		RecordingsDir: settings.RecordingsDir,
		RecordingsKey: alarm.DefaultRecordingsKey,
		MaxRange:      model.RangeDay,
		Countdown:     countdown.Options{Interval: settings.TickInterval},
		Logger:        logger,
	}
}
