package tui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"alarmsound/internal/core/alarm"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const shownRecordings = 5

// Controller is the part of the alarm controller the terminal UI drives.
type Controller interface {
	Snapshot() alarm.Snapshot
	Command()
	Abort()
	DismissError()
	SetSleepTime(minutes int)
	SetAlarmTime(alarmTime time.Time)
	EnterBackground()
	EnterForeground()
}

// Model is the bubbletea model of the terminal frontend.
type Model struct {
	controller Controller
	events     <-chan alarm.Event
	retrieve   func(deliver func([]string))
	now        func() time.Time

	snapshot   alarm.Snapshot
	recordings []string
	alarmInput textinput.Model
	editing    bool
	inputErr   error
	width      int
	quitting   bool
}

type snapshotMsg alarm.Snapshot
type recordingsMsg []string
type eventsClosedMsg struct{}

// NewModel creates a model rendering controller state. retrieve loads the
// recordings list and may be nil.
func NewModel(controller Controller, events <-chan alarm.Event, retrieve func(func([]string)), now func() time.Time) Model {
	if now == nil {
		now = time.Now
	}
	input := textinput.New()
	input.Placeholder = "HH:MM"
	input.CharLimit = 5
	input.Width = 6
	input.Prompt = "Alarm at "
	return Model{
		controller: controller,
		events:     events,
		retrieve:   retrieve,
		now:        now,
		snapshot:   controller.Snapshot(),
		alarmInput: input,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.waitForEvent(), m.loadRecordings())
}

func (m Model) waitForEvent() tea.Cmd {
	if m.events == nil {
		return nil
	}
	events := m.events
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return eventsClosedMsg{}
		}
		return snapshotMsg(event.Snapshot)
	}
}

func (m Model) loadRecordings() tea.Cmd {
	if m.retrieve == nil {
		return nil
	}
	retrieve := m.retrieve
	return func() tea.Msg {
		delivered := make(chan []string, 1)
		retrieve(func(list []string) { delivered <- list })
		return recordingsMsg(<-delivered)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case snapshotMsg:
		previous := m.snapshot.State
		m.snapshot = alarm.Snapshot(msg)
		cmds := []tea.Cmd{m.waitForEvent()}
		if m.snapshot.State == alarm.StateAlarm && previous != alarm.StateAlarm {
			cmds = append(cmds, m.loadRecordings())
		}
		return m, tea.Batch(cmds...)

	case recordingsMsg:
		m.recordings = msg
		return m, nil

	case tea.BlurMsg:
		m.controller.EnterBackground()
		return m, nil

	case tea.FocusMsg:
		m.controller.EnterForeground()
		return m, nil

	case eventsClosedMsg:
		m.quitting = true
		return m, tea.Quit

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.editing {
		return m.handleAlarmInput(msg)
	}
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case " ":
		m.controller.Command()
	case "s":
		m.controller.Abort()
	case "enter", "d":
		if m.snapshot.Error != nil {
			m.controller.DismissError()
		}
	case "+", "=":
		m.controller.SetSleepTime(m.snapshot.Settings.SleepTime + 1)
	case "-":
		m.controller.SetSleepTime(m.snapshot.Settings.SleepTime - 1)
	case "a":
		m.editing = true
		m.inputErr = nil
		m.alarmInput.SetValue(m.snapshot.Settings.AlarmTime.Format("15:04"))
		m.alarmInput.CursorEnd()
		return m, m.alarmInput.Focus()
	default:
		return m, nil
	}
	m.snapshot = m.controller.Snapshot()
	return m, nil
}

func (m Model) handleAlarmInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.editing = false
		m.inputErr = nil
		m.alarmInput.Blur()
		return m, nil
	case tea.KeyEnter:
		hour, minute, err := alarm.ParseClock(m.alarmInput.Value())
		if err != nil {
			m.inputErr = err
			return m, nil
		}
		m.editing = false
		m.inputErr = nil
		m.alarmInput.Blur()
		m.controller.SetAlarmTime(alarm.NextOccurrence(m.now(), hour, minute))
		m.snapshot = m.controller.Snapshot()
		return m, nil
	case tea.KeyCtrlC:
		m.quitting = true
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.alarmInput, cmd = m.alarmInput.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	snapshot := m.snapshot
	now := m.now()

	var b strings.Builder
	b.WriteString(titleStyle.Render("Alarm Sound"))
	b.WriteString("\n\n")

	rows := []string{
		row("State", stateStyle(snapshot.State).Render(alarm.StateLabel(snapshot))),
		row("Sleep time", fmt.Sprintf("%d min", snapshot.Settings.SleepTime)),
		row("Alarm", alarm.FormatAlarmTime(snapshot.Settings.AlarmTime, now)),
	}
	if snapshot.Remaining > 0 {
		rows = append(rows, row("Remaining", alarm.FormatRemaining(snapshot.Remaining)))
	}
	if snapshot.Recording != "" {
		rows = append(rows, row("Recording", filepath.Base(snapshot.Recording)))
	}
	b.WriteString(panelStyle.Render(strings.Join(rows, "\n")))
	b.WriteString("\n")

	if snapshot.Error != nil {
		message := alarm.ErrorTitle(snapshot.Error.Kind) + ": " + snapshot.Error.Message
		b.WriteString(errorStyle.Render(message + "\n[enter] dismiss"))
		b.WriteString("\n")
	}

	if m.editing {
		b.WriteString(m.alarmInput.View())
		if m.inputErr != nil {
			b.WriteString("  " + errorTextStyle.Render(m.inputErr.Error()))
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("[enter] set  [esc] cancel"))
		b.WriteString("\n")
	}

	if len(m.recordings) > 0 {
		b.WriteString("\nRecordings\n")
		start := max(0, len(m.recordings)-shownRecordings)
		for i := len(m.recordings) - 1; i >= start; i-- {
			b.WriteString("  " + filepath.Base(m.recordings[i]) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render(fmt.Sprintf("[space] %s  [s] stop  [+/-] sleep time  [a] alarm time  [q] quit",
		strings.ToLower(alarm.CommandName(snapshot.State)))))
	return b.String()
}

func row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), value)
}

func stateStyle(state alarm.State) lipgloss.Style {
	switch state {
	case alarm.StatePlaying, alarm.StateRecording:
		return activeStyle
	case alarm.StateAlarm:
		return alarmStyle
	default:
		return lipgloss.NewStyle()
	}
}
