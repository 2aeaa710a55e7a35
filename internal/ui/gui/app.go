package gui

import (
	"context"
	"errors"
	"fmt"

	"alarmsound/internal/core/alarm"
	"alarmsound/internal/notify"
	"alarmsound/internal/platform"
	"alarmsound/internal/sound"
	"alarmsound/internal/storage"
	"alarmsound/internal/ui/mainwindow"
	"alarmsound/internal/ui/overlay"
	"alarmsound/internal/ui/preferences"
	"alarmsound/internal/ui/tray"
	"alarmsound/resources"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
	"github.com/rs/zerolog"
)

const (
	overlayOpacity = 230
	eventBuffer    = 16
)

// Config holds everything the desktop frontend needs.
type Config struct {
	AppName  string
	AppID    string
	Title    string
	Settings preferences.Settings
	Logger   zerolog.Logger
	// SaveSettings persists edited preferences.
	SaveSettings func(preferences.Settings) error
}

// Run starts the desktop frontend and blocks until it quits. If another
// instance is running it is brought forward and platform.ErrAlreadyRunning
// is returned.
func Run(config Config) error {
	logger := config.Logger.With().Str("component", "gui").Logger()

	guard, err := platform.AcquireSingleInstance(config.AppName)
	if err != nil {
		if errors.Is(err, platform.ErrAlreadyRunning) {
			if activateErr := platform.ActivateRunning(config.AppName); activateErr != nil {
				logger.Warn().Err(activateErr).Msg("activate running instance")
			}
		}
		return err
	}
	defer func() {
		_ = guard.Release()
	}()

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

	settings := config.Settings
	fyneApp := app.NewWithID(config.AppID)
	fyneApp.SetIcon(resources.MustLogo(resources.AppLogo))

	locator := resources.NewLocator(settings.SoundsDir, config.Logger)
	scheduler := notify.NewScheduler(notify.FyneSender(fyneApp), notify.Options{
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
		Locator:  locator,
	}, options)
	controller.SetSleepTime(settings.DefaultSleepMinutes)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go controller.Run(ctx)

	var mainWindow *mainwindow.Window
	refreshRecordings := func() {
		store.Retrieve(options.RecordingsKey, func(list []string) {
			fyne.Do(func() {
				mainWindow.SetRecordings(list)
			})
		})
	}

	prefsWindow := preferences.New(fyneApp, settings, locator.Names(), func(updated preferences.Settings) {
		settings = updated
		if config.SaveSettings != nil {
			if err := config.SaveSettings(updated); err != nil {
				logger.Error().Err(err).Msg("save settings")
			}
		}
		locator.SetSoundsDir(updated.SoundsDir)
		controller.SetSounds(updated.AmbientSound, updated.AlarmSound)
		controller.SetRecordingsDir(updated.RecordingsDir)
		scheduler.SetEnabled(updated.NotificationsEnabled)
	})

	mainWindow = mainwindow.New(fyneApp, config.Title, mainwindow.Callbacks{
		OnSleepTime:    controller.SetSleepTime,
		OnAlarmTime:    controller.SetAlarmTime,
		OnCommand:      controller.Command,
		OnStop:         controller.Abort,
		OnDismissError: controller.DismissError,
		OnPreferences:  prefsWindow.Show,
	}, nil)

	alarmOverlay := overlay.New(fyneApp, overlay.Config{
		Opacity:    overlayOpacity,
		Fullscreen: false,
		Title:      config.Title,
	})
	alarmOverlay.SetOnStop(controller.DismissError)

	quit := func() {
		cancel()
		controller.Close()
		fyneApp.Quit()
	}

	var trayManager *tray.Manager
	if desktopApp, ok := fyneApp.(desktop.App); ok {
		desktopApp.SetSystemTrayIcon(resources.MustLogo(resources.AppLogo))
		trayManager = tray.New(desktopApp, config.Title, tray.Callbacks{
			OnShow:    mainWindow.Show,
			OnCommand: controller.Command,
			OnStop:    controller.Abort,
			OnQuickStart: func(minutes int) {
				controller.SetSleepTime(minutes)
				controller.Start()
			},
			OnPreferences: prefsWindow.Show,
			OnQuit:        quit,
		})
		mainWindow.Window().SetCloseIntercept(func() {
			mainWindow.Window().Hide()
		})
	} else {
		logger.Info().Msg("system tray unsupported on this platform")
		mainWindow.Window().SetCloseIntercept(quit)
	}

	render := func(snapshot alarm.Snapshot) {
		mainWindow.Update(snapshot)
		if trayManager != nil {
			trayManager.SetStatus(statusText(snapshot))
			trayManager.SetCommand(alarm.CommandName(snapshot.State))
			trayManager.SetActive(snapshot.State != alarm.StateIdle)
		}
		if snapshot.State == alarm.StateAlarm {
			if !alarmOverlay.Visible() {
				alarmOverlay.Show(alarmMessage(snapshot), snapshot.Settings.AlarmTime)
				mainWindow.Show()
			}
		} else {
			alarmOverlay.Hide()
		}
	}

	events := controller.Subscribe(eventBuffer)
	go func() {
		for event := range events {
			snapshot := event.Snapshot
			fyne.Do(func() {
				render(snapshot)
			})
			if event.Type == alarm.EventStateChange && snapshot.State == alarm.StateAlarm {
				refreshRecordings()
			}
		}
	}()

	guard.OnActivate(func() {
		fyne.Do(mainWindow.Show)
	})

	lifecycle := fyneApp.Lifecycle()
	lifecycle.SetOnEnteredForeground(controller.EnterForeground)
	lifecycle.SetOnExitedForeground(controller.EnterBackground)

	render(controller.Snapshot())
	refreshRecordings()
	mainWindow.Show()
	logger.Info().Msg("desktop frontend started")
	fyneApp.Run()
	controller.Close()
	logger.Info().Msg("desktop frontend stopped")
	return nil
}

func alarmMessage(snapshot alarm.Snapshot) string {
	if snapshot.Error != nil {
		return snapshot.Error.Message
	}
	return alarm.ErrorTitle(alarm.ErrorAlarmFired)
}

func statusText(snapshot alarm.Snapshot) string {
	label := alarm.StateLabel(snapshot)
	if snapshot.Remaining > 0 {
		return fmt.Sprintf("%s, %s left", label, alarm.FormatRemaining(snapshot.Remaining))
	}
	return label
}
