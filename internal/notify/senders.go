package notify

import (
	"time"

	"fyne.io/fyne/v2"
	"github.com/gen2brain/beeep"
)

const (
	beepFrequency = 880
	beepMillis    = 250
	beepRepeat    = 3
)

// FyneSender delivers through the desktop notification center of a Fyne app.
func FyneSender(app fyne.App) Sender {
	return SenderFunc(func(title, body string) error {
		fyne.Do(func() {
			app.SendNotification(fyne.NewNotification(title, body))
		})
		return nil
	})
}

// DesktopSender delivers through the OS notification daemon.
func DesktopSender(appName string) Sender {
	if appName != "" {
		beeep.AppName = appName
	}
	return SenderFunc(func(title, body string) error {
		return beeep.Notify(title, body, "")
	})
}

// Beep sounds the system beeper a few times. It is used when the alarm sound
// cannot be played.
func Beep() {
	for i := 0; i < beepRepeat; i++ {
		if err := beeep.Beep(beepFrequency, beepMillis); err != nil {
			return
		}
		time.Sleep(beepMillis * time.Millisecond)
	}
}
