package tui

import (
	"context"
	"fmt"
	"time"

	"alarmsound/internal/core/alarm"
	"alarmsound/internal/notify"
	"alarmsound/internal/sound"
	"alarmsound/internal/storage"
	"alarmsound/internal/ui/preferences"
	"alarmsound/resources"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
)

// Config holds everything the terminal frontend needs.
type Config struct {
	AppName  string
	Settings preferences.Settings
	// SleepMinutes overrides the default sleep time when positive.
	SleepMinutes int
	// AlarmTime overrides the default alarm time when set.
	AlarmTime time.Time
	AutoStart bool
	Logger    zerolog.Logger
}

// Run starts the terminal frontend and blocks until the user quits or ctx
// is cancelled.
func Run(ctx context.Context, config Config) error {
	logger := config.Logger.With().Str("component", "tui").Logger()
	settings := config.Settings

	soundService, err := sound.NewService(config.Logger)
	if err != nil {
		return fmt.Errorf("start sound service: %w", err)
	}
	defer soundService.Close()

	store, err := storage.OpenListStore(config.AppName, config.Logger)
	if err != nil {
		return fmt.Errorf("open list store: %w", err)
	}
	defer store.Close()

	scheduler := notify.NewScheduler(notify.DesktopSender(config.AppName), notify.Options{
		Enabled: settings.NotificationsEnabled,
		Logger:  config.Logger,
	})
	defer scheduler.CancelAll()

	options := settings.ControllerOptions(config.Logger)
	options.AlarmFallback = notify.Beep
	controller := alarm.New(alarm.Dependencies{
		Sound:    soundService,
		Notifier: scheduler,
		Store:    store,
		Locator:  resources.NewLocator(settings.SoundsDir, config.Logger),
	}, options)
	defer controller.Close()

	sleepMinutes := settings.DefaultSleepMinutes
	if config.SleepMinutes > 0 {
		sleepMinutes = config.SleepMinutes
	}
	controller.SetSleepTime(sleepMinutes)
	if !config.AlarmTime.IsZero() {
		controller.SetAlarmTime(config.AlarmTime)
	}
	if config.AutoStart {
		controller.Start()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go controller.Run(ctx)

	retrieve := func(deliver func([]string)) {
		store.Retrieve(options.RecordingsKey, deliver)
	}
	model := NewModel(controller, controller.Subscribe(16), retrieve, nil)
	program := tea.NewProgram(model, tea.WithContext(ctx), tea.WithReportFocus())

	logger.Info().Msg("terminal frontend started")
	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("run terminal ui: %w", err)
	}
	logger.Info().Msg("terminal frontend stopped")
	return nil
}
