package overlay

import (
	"image/color"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// Config defines overlay visuals.
type Config struct {
	Opacity    uint8
	Fullscreen bool
	Title      string
}

// Window is the alarm overlay shown while the alarm is ringing.
type Window struct {
	app          fyne.App
	window       fyne.Window
	config       Config
	background   *canvas.Rectangle
	titleLabel   *canvas.Text
	messageLabel *canvas.Text
	clockLabel   *canvas.Text
	stopButton   *widget.Button
	onStop       func()
	visible      bool
}

const (
	overlayWidthFraction  = float32(0.25)
	overlayHeightFraction = float32(0.25)
	defaultScreenWidth    = float32(1920)
	defaultScreenHeight   = float32(1080)
)

var accentColor = color.NRGBA{R: 242, G: 193, B: 78, A: 255}

type splashWindowDriver interface {
	CreateSplashWindow() fyne.Window
}

// New creates a hidden overlay window.
func New(app fyne.App, config Config) *Window {
	window := app.NewWindow(config.Title)
	if driver, ok := app.Driver().(splashWindowDriver); ok {
		// Splash window is undecorated (no native frame/buttons).
		window = driver.CreateSplashWindow()
	}
	if app.Icon() != nil {
		window.SetIcon(app.Icon())
	}
	window.SetPadded(false)

	background := canvas.NewRectangle(color.NRGBA{R: 10, G: 14, B: 28, A: config.Opacity})

	titleLabel := canvas.NewText(config.Title, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	titleLabel.Alignment = fyne.TextAlignCenter
	titleLabel.TextStyle = fyne.TextStyle{Bold: true}
	titleLabel.TextSize = 21

	clockLabel := canvas.NewText("--:--", accentColor)
	clockLabel.Alignment = fyne.TextAlignCenter
	clockLabel.TextStyle = fyne.TextStyle{Bold: true, Monospace: true}
	clockLabel.TextSize = 42

	messageLabel := canvas.NewText("", color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	messageLabel.Alignment = fyne.TextAlignCenter
	messageLabel.TextSize = 17

	stopButton := widget.NewButton("Stop alarm", nil)
	stopButton.Importance = widget.HighImportance

	content := container.NewVBox(
		layout.NewSpacer(),
		titleLabel,
		clockLabel,
		messageLabel,
		container.NewCenter(stopButton),
		layout.NewSpacer(),
	)
	root := container.NewStack(background, container.NewPadded(content))
	window.SetContent(root)

	overlay := &Window{
		app:          app,
		window:       window,
		config:       config,
		background:   background,
		titleLabel:   titleLabel,
		messageLabel: messageLabel,
		clockLabel:   clockLabel,
		stopButton:   stopButton,
	}
	stopButton.OnTapped = func() {
		if overlay.onStop != nil {
			overlay.onStop()
		}
	}
	window.SetCloseIntercept(stopButton.OnTapped)
	return overlay
}

// Show displays the overlay with the alarm message and clock time.
func (overlay *Window) Show(message string, at time.Time) {
	overlay.messageLabel.Text = message
	overlay.messageLabel.Refresh()
	overlay.SetClock(at)
	overlay.applyWindowMode()
	overlay.visible = true
	overlay.window.Show()
	overlay.window.RequestFocus()
}

// Hide closes the overlay.
func (overlay *Window) Hide() {
	if !overlay.visible {
		return
	}
	overlay.visible = false
	if overlay.config.Fullscreen {
		overlay.window.SetFullScreen(false)
	}
	overlay.window.Hide()
}

// Visible reports whether the overlay is shown.
func (overlay *Window) Visible() bool {
	return overlay.visible
}

// SetClock updates the clock label.
func (overlay *Window) SetClock(at time.Time) {
	overlay.clockLabel.Text = at.Format("15:04")
	overlay.clockLabel.Refresh()
}

// SetOnStop sets the stop handler. Closing the window also stops the alarm.
func (overlay *Window) SetOnStop(handler func()) {
	overlay.onStop = handler
}

// UpdateConfig updates overlay visuals.
func (overlay *Window) UpdateConfig(config Config) {
	overlay.config = config
	overlay.background.FillColor = color.NRGBA{R: 10, G: 14, B: 28, A: config.Opacity}
	overlay.titleLabel.Text = config.Title
	canvas.Refresh(overlay.background)
	overlay.titleLabel.Refresh()
	if overlay.visible {
		overlay.applyWindowMode()
	}
}

func (overlay *Window) applyWindowMode() {
	if overlay.config.Fullscreen {
		overlay.window.SetFullScreen(true)
		return
	}
	overlay.window.SetFullScreen(false)
	overlay.resizeToScreenFraction()
}

func (overlay *Window) resizeToScreenFraction() {
	screenSize := fyne.NewSize(defaultScreenWidth, defaultScreenHeight)
	canvasSize := overlay.window.Canvas().Size()
	// Canvas size can be reused as a proxy for monitor size when it is clearly screen-like.
	if canvasSize.Width >= 1024 && canvasSize.Height >= 720 {
		screenSize = canvasSize
	}

	width := screenSize.Width * overlayWidthFraction
	height := screenSize.Height * overlayHeightFraction
	minSize := overlay.window.Content().MinSize()
	if width < minSize.Width {
		width = minSize.Width
	}
	if height < minSize.Height {
		height = minSize.Height
	}

	overlay.window.Resize(fyne.NewSize(width, height))
	overlay.window.CenterOnScreen()
}
