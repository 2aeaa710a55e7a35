package mainwindow

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"alarmsound/internal/core/alarm"
	"alarmsound/internal/core/model"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

// Callbacks defines main window action handlers.
type Callbacks struct {
	OnSleepTime    func(minutes int)
	OnAlarmTime    func(alarmTime time.Time)
	OnCommand      func()
	OnStop         func()
	OnDismissError func()
	OnPreferences  func()
}

// Window is the main control window.
type Window struct {
	window      fyne.Window
	callbacks   Callbacks
	now         func() time.Time
	sleep       *widget.Select
	alarmEntry  *widget.Entry
	alarmLabel  *widget.Label
	statusLabel *widget.Label
	remaining   *widget.Label
	command     *widget.Button
	stop        *widget.Button
	recordings  []string
	list        *widget.List
	alarmText   string
	shownError  *alarm.Error
	updating    bool
}

// New creates the main window.
func New(app fyne.App, title string, callbacks Callbacks, now func() time.Time) *Window {
	if now == nil {
		now = time.Now
	}
	control := &Window{
		window:      app.NewWindow(title),
		callbacks:   callbacks,
		now:         now,
		alarmLabel:  widget.NewLabel(""),
		statusLabel: widget.NewLabelWithStyle("Idle", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		remaining:   widget.NewLabelWithStyle("", fyne.TextAlignTrailing, fyne.TextStyle{Monospace: true}),
	}

	options := make([]string, 0, model.MaxSleepMinutes)
	for _, minutes := range model.SleepMinuteOptions() {
		options = append(options, sleepOption(minutes))
	}
	control.sleep = widget.NewSelect(options, func(selected string) {
		if control.updating || control.callbacks.OnSleepTime == nil {
			return
		}
		if minutes, ok := parseSleepOption(selected); ok {
			control.callbacks.OnSleepTime(minutes)
		}
	})

	control.alarmEntry = widget.NewEntry()
	control.alarmEntry.SetPlaceHolder("HH:MM")
	control.alarmEntry.Validator = func(value string) error {
		_, _, err := alarm.ParseClock(value)
		return err
	}
	control.alarmEntry.OnSubmitted = func(string) { control.submitAlarmTime() }
	setAlarm := widget.NewButton("Set", control.submitAlarmTime)

	control.command = widget.NewButton("Play", func() {
		if control.callbacks.OnCommand != nil {
			control.callbacks.OnCommand()
		}
	})
	control.command.Importance = widget.HighImportance
	control.stop = widget.NewButton("Stop", func() {
		if control.callbacks.OnStop != nil {
			control.callbacks.OnStop()
		}
	})
	control.stop.Disable()

	control.list = widget.NewList(
		func() int { return len(control.recordings) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.ListItemID, item fyne.CanvasObject) {
			item.(*widget.Label).SetText(filepath.Base(control.recordings[id]))
		},
	)

	settingsButton := widget.NewButton("Settings", func() {
		if control.callbacks.OnPreferences != nil {
			control.callbacks.OnPreferences()
		}
	})

	form := widget.NewForm(
		widget.NewFormItem("Sleep time", control.sleep),
		widget.NewFormItem("Alarm time", container.NewBorder(nil, nil, nil, setAlarm, control.alarmEntry)),
		widget.NewFormItem("", control.alarmLabel),
	)
	top := container.NewVBox(
		container.NewBorder(nil, nil, nil, control.remaining, control.statusLabel),
		form,
		container.NewGridWithColumns(2, control.command, control.stop),
		widget.NewSeparator(),
		container.NewBorder(nil, nil, nil, settingsButton, widget.NewLabelWithStyle("Recordings", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})),
	)
	control.window.SetContent(container.NewBorder(top, nil, nil, nil, control.list))
	control.window.Resize(fyne.NewSize(380, 460))
	return control
}

// Window returns the underlying Fyne window.
func (control *Window) Window() fyne.Window {
	return control.window
}

// Show displays the window.
func (control *Window) Show() {
	control.window.Show()
	control.window.RequestFocus()
}

// Update renders a controller snapshot. It must run on the UI goroutine.
func (control *Window) Update(snapshot alarm.Snapshot) {
	control.updating = true
	control.sleep.SetSelected(sleepOption(snapshot.Settings.SleepTime))
	control.updating = false

	now := control.now()
	// Keep text the user is still editing.
	alarmText := snapshot.Settings.AlarmTime.Format("15:04")
	if control.alarmEntry.Text == control.alarmText {
		control.alarmEntry.SetText(alarmText)
	}
	control.alarmText = alarmText
	control.alarmLabel.SetText("Rings " + alarm.FormatAlarmTime(snapshot.Settings.AlarmTime, now))

	control.statusLabel.SetText(alarm.StateLabel(snapshot))
	if snapshot.Remaining > 0 {
		control.remaining.SetText(alarm.FormatRemaining(snapshot.Remaining))
	} else {
		control.remaining.SetText("")
	}

	control.command.SetText(alarm.CommandName(snapshot.State))
	if snapshot.State == alarm.StateIdle {
		control.stop.Disable()
	} else {
		control.stop.Enable()
	}

	control.showError(snapshot.Error)
}

// SetRecordings replaces the recordings list, newest first.
func (control *Window) SetRecordings(recordings []string) {
	reversed := make([]string, len(recordings))
	for i, recording := range recordings {
		reversed[len(recordings)-1-i] = recording
	}
	control.recordings = reversed
	control.list.Refresh()
}

func (control *Window) showError(current *alarm.Error) {
	if current == nil || current == control.shownError {
		if current == nil {
			control.shownError = nil
		}
		return
	}
	control.shownError = current
	info := dialog.NewInformation(alarm.ErrorTitle(current.Kind), current.Message, control.window)
	info.SetOnClosed(func() {
		if control.callbacks.OnDismissError != nil {
			control.callbacks.OnDismissError()
		}
	})
	info.Show()
}

func (control *Window) submitAlarmTime() {
	hour, minute, err := alarm.ParseClock(control.alarmEntry.Text)
	if err != nil {
		dialog.ShowError(err, control.window)
		return
	}
	control.alarmText = control.alarmEntry.Text
	if control.callbacks.OnAlarmTime != nil {
		control.callbacks.OnAlarmTime(alarm.NextOccurrence(control.now(), hour, minute))
	}
}

func sleepOption(minutes int) string {
	return fmt.Sprintf("%d min", minutes)
}

func parseSleepOption(option string) (int, bool) {
	minutes, err := strconv.Atoi(strings.TrimSuffix(option, " min"))
	if err != nil {
		return 0, false
	}
	return minutes, true
}
