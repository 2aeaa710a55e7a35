package alarm

import (
	"time"

	"alarmsound/internal/core/model"
)

// State represents the current application mode.
type State string

const (
	StateIdle      State = "idle"
	StatePlaying   State = "playing"
	StateRecording State = "recording"
	StatePaused    State = "paused"
	StateAlarm     State = "alarm"
)

// EventType defines the type of Controller event.
type EventType string

const (
	EventStateChange    EventType = "state_change"
	EventSettingsChange EventType = "settings_change"
	EventProgress       EventType = "progress"
	EventError          EventType = "error"
)

// Snapshot is a consistent copy of the controller's observable state.
type Snapshot struct {
	State State
	// PausedFrom is the phase that was paused; empty unless State is StatePaused.
	PausedFrom State
	Settings   model.AlarmSettings
	// Remaining is the sleep countdown left while playing or paused from playing.
	Remaining time.Duration
	// Recording is the location of the recording in progress.
	Recording string
	Error     *Error
}

// Active reports whether playback or recording is in progress or paused.
func (snapshot Snapshot) Active() bool {
	switch snapshot.State {
	case StatePlaying, StateRecording, StatePaused:
		return true
	default:
		return false
	}
}

// Event represents a Controller update for observers.
type Event struct {
	Type     EventType
	Snapshot Snapshot
	At       time.Time
}
