package preferences

import (
	"strconv"

	"alarmsound/internal/core/model"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// Window handles the preferences UI.
type Window struct {
	window        fyne.Window
	settings      Settings
	onSave        func(Settings)
	onCancel      func()
	sleep         *widget.Select
	ambient       *widget.SelectEntry
	alarm         *widget.SelectEntry
	soundsDir     *widget.Entry
	recordingsDir *widget.Entry
	notifications *widget.Check
}

// New creates a preferences window. soundNames fills the sound pickers.
func New(app fyne.App, settings Settings, soundNames []string, onSave func(Settings)) *Window {
	window := app.NewWindow("Alarm Sound Settings")

	minuteOptions := make([]string, 0, model.MaxSleepMinutes)
	for _, minutes := range model.SleepMinuteOptions() {
		minuteOptions = append(minuteOptions, strconv.Itoa(minutes))
	}
	sleep := widget.NewSelect(minuteOptions, nil)

	ambient := widget.NewSelectEntry(soundNames)
	alarm := widget.NewSelectEntry(soundNames)
	soundsDir := widget.NewEntry()
	recordingsDir := widget.NewEntry()
	notifications := widget.NewCheck("Notify at alarm time while in background", nil)

	form := container.NewVBox(
		widget.NewLabelWithStyle("General", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewHBox(widget.NewLabel("Default sleep time"), sleep, widget.NewLabel("min")),
		notifications,
		widget.NewLabelWithStyle("Sounds", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewForm(
			widget.NewFormItem("Ambient sound", ambient),
			widget.NewFormItem("Alarm sound", alarm),
			widget.NewFormItem("Sounds folder", soundsDir),
			widget.NewFormItem("Recordings folder", recordingsDir),
		),
	)

	saveButton := widget.NewButton("Save", nil)
	cancelButton := widget.NewButton("Cancel", nil)
	buttons := container.NewHBox(saveButton, layout.NewSpacer(), cancelButton)

	content := container.NewBorder(nil, buttons, nil, nil, form)
	window.SetContent(content)
	window.Resize(fyne.NewSize(460, 380))
	window.SetCloseIntercept(func() {
		window.Hide()
	})

	prefs := &Window{
		window:        window,
		onSave:        onSave,
		sleep:         sleep,
		ambient:       ambient,
		alarm:         alarm,
		soundsDir:     soundsDir,
		recordingsDir: recordingsDir,
		notifications: notifications,
	}
	prefs.UpdateSettings(settings)

	saveButton.OnTapped = prefs.handleSave
	cancelButton.OnTapped = func() {
		prefs.UpdateSettings(prefs.settings)
		window.Hide()
		if prefs.onCancel != nil {
			prefs.onCancel()
		}
	}

	return prefs
}

// Show displays the preferences window.
func (prefs *Window) Show() {
	prefs.window.Show()
	prefs.window.RequestFocus()
}

// SetOnCancel sets the cancel handler.
func (prefs *Window) SetOnCancel(handler func()) {
	prefs.onCancel = handler
}

// UpdateSettings replaces window values.
func (prefs *Window) UpdateSettings(settings Settings) {
	prefs.settings = settings
	prefs.sleep.SetSelected(strconv.Itoa(settings.DefaultSleepMinutes))
	prefs.ambient.SetText(settings.AmbientSound)
	prefs.alarm.SetText(settings.AlarmSound)
	prefs.soundsDir.SetText(settings.SoundsDir)
	prefs.recordingsDir.SetText(settings.RecordingsDir)
	prefs.notifications.SetChecked(settings.NotificationsEnabled)
}

func (prefs *Window) handleSave() {
	settings := prefs.settings

	if minutes, ok := parsePositiveInt(prefs.sleep.Selected); ok {
		settings.DefaultSleepMinutes = minutes
	}
	settings.AmbientSound = prefs.ambient.Text
	settings.AlarmSound = prefs.alarm.Text
	settings.SoundsDir = prefs.soundsDir.Text
	if prefs.recordingsDir.Text != "" {
		settings.RecordingsDir = prefs.recordingsDir.Text
	}
	settings.NotificationsEnabled = prefs.notifications.Checked

	prefs.settings = settings.Normalize()
	if prefs.onSave != nil {
		prefs.onSave(prefs.settings)
	}
	prefs.window.Hide()
}

func parsePositiveInt(value string) (int, bool) {
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return 0, false
	}
	return parsed, true
}
