package tray

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
)

// QuickStartMinutes are the sleep times offered in the "Sleep for" submenu.
var QuickStartMinutes = []int{15, 30, 45, 60}

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnShow        func()
	OnCommand     func()
	OnStop        func()
	OnQuickStart  func(minutes int)
	OnPreferences func()
	OnQuit        func()
}

// Manager handles system tray state.
type Manager struct {
	app         desktop.App
	title       string
	statusItem  *fyne.MenuItem
	commandItem *fyne.MenuItem
	stopItem    *fyne.MenuItem
	sleepFor    *fyne.MenuItem
	callbacks   Callbacks
	statusLabel string
}

// New creates a tray manager with the provided callbacks.
func New(app desktop.App, title string, callbacks Callbacks) *Manager {
	manager := &Manager{
		app:       app,
		title:     title,
		callbacks: callbacks,
	}

	manager.statusItem = fyne.NewMenuItem("Status: idle", nil)
	manager.statusItem.Disabled = true

	manager.commandItem = fyne.NewMenuItem("Play", func() {
		if manager.callbacks.OnCommand != nil {
			manager.callbacks.OnCommand()
		}
	})

	manager.stopItem = fyne.NewMenuItem("Stop", func() {
		if manager.callbacks.OnStop != nil {
			manager.callbacks.OnStop()
		}
	})
	manager.stopItem.Disabled = true

	items := make([]*fyne.MenuItem, 0, len(QuickStartMinutes))
	for _, minutes := range QuickStartMinutes {
		items = append(items, fyne.NewMenuItem(fmt.Sprintf("%d minutes", minutes), func() {
			if manager.callbacks.OnQuickStart != nil {
				manager.callbacks.OnQuickStart(minutes)
			}
		}))
	}
	manager.sleepFor = fyne.NewMenuItem("Sleep for...", nil)
	manager.sleepFor.ChildMenu = fyne.NewMenu("", items...)

	manager.refreshMenu()
	return manager
}

// SetStatus updates the status label.
func (manager *Manager) SetStatus(status string) {
	if status == manager.statusLabel {
		return
	}
	manager.statusLabel = status
	manager.statusItem.Label = fmt.Sprintf("Status: %s", status)
	manager.refreshMenu()
}

// SetCommand updates the command item label.
func (manager *Manager) SetCommand(label string) {
	if manager.commandItem.Label == label {
		return
	}
	manager.commandItem.Label = label
	manager.refreshMenu()
}

// SetActive enables Stop while something is running and hides quick starts.
func (manager *Manager) SetActive(active bool) {
	if manager.stopItem.Disabled == !active {
		return
	}
	manager.stopItem.Disabled = !active
	manager.sleepFor.Disabled = active
	manager.refreshMenu()
}

func (manager *Manager) refreshMenu() {
	if manager.app == nil {
		return
	}
	manager.app.SetSystemTrayMenu(fyne.NewMenu(manager.title,
		manager.statusItem,
		fyne.NewMenuItem("Show", func() {
			if manager.callbacks.OnShow != nil {
				manager.callbacks.OnShow()
			}
		}),
		fyne.NewMenuItemSeparator(),
		manager.commandItem,
		manager.stopItem,
		manager.sleepFor,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Preferences", func() {
			if manager.callbacks.OnPreferences != nil {
				manager.callbacks.OnPreferences()
			}
		}),
		fyne.NewMenuItem("Quit", func() {
			if manager.callbacks.OnQuit != nil {
				manager.callbacks.OnQuit()
			}
		}),
	))
}
