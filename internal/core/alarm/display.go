package alarm

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrClockFormat is returned for alarm times not written as HH:MM.
var ErrClockFormat = errors.New("use HH:MM")

// CommandName returns the label of the single command button.
func CommandName(state State) string {
	switch state {
	case StatePlaying, StateRecording:
		return "Pause"
	default:
		return "Play"
	}
}

// StateLabel returns the display name of the snapshot's state.
func StateLabel(snapshot Snapshot) string {
	switch snapshot.State {
	case StateIdle:
		return "Idle"
	case StatePlaying:
		return "Playing"
	case StateRecording:
		return "Recording"
	case StatePaused:
		if snapshot.PausedFrom == StateRecording {
			return "Paused (recording)"
		}
		return "Paused (playing)"
	case StateAlarm:
		return "Alarm"
	default:
		return string(snapshot.State)
	}
}

// ErrorTitle returns a short heading for an error kind.
func ErrorTitle(kind ErrorKind) string {
	switch kind {
	case ErrorIncorrectAlarmTime:
		return "Incorrect alarm time"
	case ErrorCannotStartRecording:
		return "Cannot start"
	case ErrorSettingsChanged:
		return "Settings changed"
	case ErrorAlarmFired:
		return "Alarm"
	default:
		return "Error"
	}
}

// FormatRemaining renders a duration as MM:SS, or H:MM:SS past an hour.
func FormatRemaining(remaining time.Duration) string {
	if remaining < 0 {
		remaining = 0
	}
	seconds := int(remaining.Seconds())
	hours := seconds / 3600
	minutes := seconds / 60 % 60
	seconds = seconds % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// FormatAlarmTime renders the alarm clock time, marking times on a later day.
func FormatAlarmTime(alarmTime, now time.Time) string {
	clock := alarmTime.Format("15:04")
	alarmDay := time.Date(alarmTime.Year(), alarmTime.Month(), alarmTime.Day(), 0, 0, 0, 0, alarmTime.Location())
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, alarmTime.Location())
	switch days := int(alarmDay.Sub(today).Hours() / 24); {
	case days == 1:
		return clock + " tomorrow"
	case days > 1:
		return alarmTime.Format("Mon 15:04")
	default:
		return clock
	}
}

// NextOccurrence returns the first time at hour:minute strictly after now.
func NextOccurrence(now time.Time, hour, minute int) time.Time {
	candidate := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !candidate.After(now) {
		candidate = candidate.AddDate(0, 0, 1)
	}
	return candidate
}

// ParseClock parses a 24-hour HH:MM time.
func ParseClock(value string) (int, int, error) {
	hourText, minuteText, ok := strings.Cut(strings.TrimSpace(value), ":")
	if !ok {
		return 0, 0, ErrClockFormat
	}
	hour, err := strconv.Atoi(hourText)
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("hour %q: %w", hourText, ErrClockFormat)
	}
	minute, err := strconv.Atoi(minuteText)
	if err != nil || minute < 0 || minute > 59 || len(minuteText) != 2 {
		return 0, 0, fmt.Errorf("minute %q: %w", minuteText, ErrClockFormat)
	}
	return hour, minute, nil
}
